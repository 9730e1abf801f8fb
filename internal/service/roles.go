package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vetdesk/vetdesk/internal/adapters/authroles"
	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
)

// RoleStore is the storage surface of the legacy role migration.
type RoleStore interface {
	ListNonCanonical(ctx context.Context) ([]model.StoredRole, error)
	SetRole(ctx context.Context, userID string, role domainauth.Role) error
}

// RoleChange records one rewritten (or, in a dry run, rewritable) role.
type RoleChange struct {
	UserID string
	Email  string
	From   string
	To     domainauth.Role
}

// RoleNormalizationReport summarizes a NormalizeStoredRoles run.
type RoleNormalizationReport struct {
	Changed []RoleChange
	// Unmapped lists users whose role has no staff mapping. They keep their stored
	// value and cannot sign in until an operator fixes them.
	Unmapped []model.StoredRole
	DryRun   bool
}

// NormalizeStoredRoles maps legacy role spellings ("Admin", "SUPER-ADMIN", ...) onto
// the canonical staff roles. Nothing is guessed: a value without a mapping, or one
// that maps to the customer role, is reported and left alone.
func NormalizeStoredRoles(
	ctx context.Context,
	store RoleStore,
	dryRun bool,
	logger *slog.Logger,
) (*RoleNormalizationReport, error) {
	if store == nil {
		return nil, errors.New("RoleStore is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	stored, err := store.ListNonCanonical(ctx)
	if err != nil {
		return nil, err
	}

	report := &RoleNormalizationReport{DryRun: dryRun}
	for _, sr := range stored {
		role, ok := authroles.Normalize(sr.Raw)
		if !ok || !role.IsStaff() {
			logger.WarnContext(ctx, "stored role has no staff mapping", "user_id", sr.UserID, "role", sr.Raw)
			report.Unmapped = append(report.Unmapped, sr)
			continue
		}
		change := RoleChange{UserID: sr.UserID, Email: sr.Email, From: sr.Raw, To: role}
		if !dryRun {
			if setErr := store.SetRole(ctx, sr.UserID, role); setErr != nil {
				return report, fmt.Errorf("normalize role of %s: %w", sr.UserID, setErr)
			}
			logger.InfoContext(ctx, "normalized stored role", "user_id", sr.UserID, "from", sr.Raw, "to", role)
		}
		report.Changed = append(report.Changed, change)
	}
	return report, nil
}
