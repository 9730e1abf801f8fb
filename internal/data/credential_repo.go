package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vetdesk/vetdesk/internal/data/pgxutil"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
)

// CredentialRepo stores password hashes outside the document tables.
type CredentialRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCredentialRepo creates a new CredentialRepo with real time provider.
func NewCredentialRepo(db *sql.DB) *CredentialRepo {
	return &CredentialRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Set creates or replaces the password hash for a subject.
func (r *CredentialRepo) Set(ctx context.Context, cred model.Credential) error {
	if _, err := uuid.Parse(cred.SubjectID); err != nil {
		return apperrors.ValidationField("subject_id", "subject_id must be a valid id")
	}
	if cred.PasswordHash == "" {
		return apperrors.ValidationField("password", "password hash is required")
	}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO credentials (subject_id, subject_kind, password_hash, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (subject_id) DO UPDATE
			SET subject_kind = EXCLUDED.subject_kind,
			    password_hash = EXCLUDED.password_hash,
			    updated_at = EXCLUDED.updated_at`,
			cred.SubjectID, string(cred.SubjectKind), cred.PasswordHash, r.timeProvider.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// Get returns the credential for subjectID, or ErrCredentialNotFound.
func (r *CredentialRepo) Get(ctx context.Context, subjectID string) (*model.Credential, error) {
	if _, err := uuid.Parse(subjectID); err != nil {
		return nil, ErrCredentialNotFound
	}
	var out model.Credential
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT subject_id::text AS subject_id, subject_kind, password_hash
			FROM credentials WHERE subject_id = $1`, subjectID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Credential])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &out, nil
}

// Delete removes the credential for subjectID. Missing rows are not an error.
func (r *CredentialRepo) Delete(ctx context.Context, subjectID string) error {
	if _, err := uuid.Parse(subjectID); err != nil {
		return nil
	}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `DELETE FROM credentials WHERE subject_id = $1`, subjectID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
