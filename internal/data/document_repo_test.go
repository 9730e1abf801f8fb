package data

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
	"github.com/vetdesk/vetdesk/internal/testutil"
)

func TestNewDocumentRepo_UnknownTablePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewDocumentRepo[model.Customer](nil, "customers; DROP TABLE users", DocumentRepoOptions{})
	})
}

func TestDocumentRepo_InvalidIDsShortCircuit(t *testing.T) {
	// No database is touched for malformed ids.
	repo := NewDocumentRepo[model.Customer](nil, TableCustomers, DocumentRepoOptions{})
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "not-a-uuid")
	assert.True(t, apperrors.IsNotFound(err))

	deleted, err := repo.Delete(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.False(t, deleted)

	list, err := repo.ListByOwner(ctx, "", model.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.FindByEmail(ctx, "  ")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.Create(ctx, nil)
	assert.ErrorIs(t, err, ErrDocumentRequired)
}

func TestDocumentRepo_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		customers := NewDocumentRepo[model.Customer](db, TableCustomers, DocumentRepoOptions{})
		dogs := NewDocumentRepo[model.Dog](db, TableDogs, DocumentRepoOptions{})

		c, err := customers.Create(ctx, &model.Customer{Name: "Ana", Email: "ana@example.com"})
		require.NoError(t, err)
		require.NotEmpty(t, c.ID)
		assert.False(t, c.CreatedAt.IsZero())

		got, err := customers.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.Name)
		assert.Equal(t, c.ID, got.ID)

		byEmail, err := customers.FindByEmail(ctx, "ANA@example.com ")
		require.NoError(t, err)
		assert.Equal(t, c.ID, byEmail.ID)

		_, err = customers.Create(ctx, &model.Customer{Name: "Dup", Email: "ana@example.com"})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))

		d, err := dogs.Create(ctx, &model.Dog{CustomerID: c.ID, Name: "Rex", Sex: model.DogSexMale})
		require.NoError(t, err)

		owned, err := dogs.ListByOwner(ctx, c.ID, model.ListOptions{})
		require.NoError(t, err)
		require.Len(t, owned, 1)
		assert.Equal(t, d.ID, owned[0].ID)

		got.City = "Lima"
		updated, err := customers.Update(ctx, got)
		require.NoError(t, err)
		assert.Equal(t, "Lima", updated.City)
		assert.True(t, !updated.UpdatedAt.Before(updated.CreatedAt))

		all, err := customers.List(ctx, model.ListOptions{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, all, 1)

		deleted, err := customers.Delete(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		// dogs cascade with their customer
		_, err = dogs.GetByID(ctx, d.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestDocumentRepo_DogRequiresExistingCustomer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testutil.WithAutoDB(t, func(db *sql.DB) {
		dogs := NewDocumentRepo[model.Dog](db, TableDogs, DocumentRepoOptions{})
		_, err := dogs.Create(context.Background(), &model.Dog{
			CustomerID: "7b0e3a52-6f4e-4d8b-9f5c-0d2f6c1a9e11",
			Name:       "Ghost",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsForeignKey(err))
	})
}

func TestDocumentRepo_Numbering(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		loc := time.FixedZone("UTC-6", -6*60*60)
		clock := NewFixedTimeProvider(time.Date(2024, time.March, 6, 3, 0, 0, 0, time.UTC))
		opts := DocumentRepoOptions{TimeProvider: clock, Location: loc}

		customers := NewDocumentRepo[model.Customer](db, TableCustomers, opts)
		invoices := NewDocumentRepo[model.Invoice](db, TableInvoices, opts)
		diagnoses := NewDocumentRepo[model.Diagnose](db, TableDiagnoses, opts)

		c, err := customers.Create(ctx, &model.Customer{Name: "Ana", Email: "ana@example.com"})
		require.NoError(t, err)

		// 03:00 UTC on the 6th is the 5th at UTC-6.
		inv1, err := invoices.Create(ctx, &model.Invoice{CustomerID: c.ID})
		require.NoError(t, err)
		assert.Equal(t, "INV/2024/03/05/01", inv1.Number)

		inv2, err := invoices.Create(ctx, &model.Invoice{CustomerID: c.ID})
		require.NoError(t, err)
		assert.Equal(t, "INV/2024/03/05/02", inv2.Number)

		// kinds are counted independently
		dg, err := diagnoses.Create(ctx, &model.Diagnose{CustomerID: c.ID, DogID: c.ID, Diagnosis: "ok"})
		require.NoError(t, err)
		assert.Equal(t, "DIAG/2024/03/05/01", dg.Number)

		// a new local day restarts the sequence
		clock.AddTime(24 * time.Hour)
		inv3, err := invoices.Create(ctx, &model.Invoice{CustomerID: c.ID})
		require.NoError(t, err)
		assert.Equal(t, "INV/2024/03/06/01", inv3.Number)

		// deleting an earlier document never reissues a surviving number
		clock.AddTime(-24 * time.Hour)
		_, err = invoices.Delete(ctx, inv1.ID)
		require.NoError(t, err)
		inv4, err := invoices.Create(ctx, &model.Invoice{CustomerID: c.ID})
		require.NoError(t, err)
		assert.Equal(t, "INV/2024/03/05/03", inv4.Number)

		// update keeps the number
		inv4.Paid = true
		upd, err := invoices.Update(ctx, inv4)
		require.NoError(t, err)
		reloaded, err := invoices.GetByID(ctx, upd.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV/2024/03/05/03", reloaded.Number)
		assert.True(t, reloaded.Paid)
	})
}

func TestDocumentRepo_ConcurrentNumbersAreUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		customers := NewDocumentRepo[model.Customer](db, TableCustomers, DocumentRepoOptions{})
		invoices := NewDocumentRepo[model.Invoice](db, TableInvoices, DocumentRepoOptions{})

		c, err := customers.Create(ctx, &model.Customer{Name: "Ana", Email: "ana@example.com"})
		require.NoError(t, err)

		const n = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			numbers = map[string]struct{}{}
		)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				inv, err := invoices.Create(ctx, &model.Invoice{CustomerID: c.ID})
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				numbers[inv.Number] = struct{}{}
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Len(t, numbers, n)
	})
}
