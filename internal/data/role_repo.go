package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vetdesk/vetdesk/internal/data/pgxutil"
	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
)

// RoleRepo reads and rewrites the role stored on staff user documents.
// It exists for the one-time legacy role migration; the API itself goes through DocumentRepo.
type RoleRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewRoleRepo creates a RoleRepo.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// ListNonCanonical returns users whose stored role is not one of the canonical staff roles.
func (r *RoleRepo) ListNonCanonical(ctx context.Context) ([]model.StoredRole, error) {
	var out []model.StoredRole
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id::text, COALESCE(email, ''), COALESCE(doc->>'role', '')
			FROM `+TableUsers+`
			WHERE COALESCE(doc->>'role', '') NOT IN ($1, $2, $3)
			ORDER BY created_at`,
			string(domainauth.RoleAdmin), string(domainauth.RoleAdmin2), string(domainauth.RoleSuperAdmin))
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var sr model.StoredRole
			if scanErr := rows.Scan(&sr.UserID, &sr.Email, &sr.Raw); scanErr != nil {
				return scanErr
			}
			out = append(out, sr)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list non-canonical roles: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// SetRole overwrites the role of one user document.
func (r *RoleRepo) SetRole(ctx context.Context, userID string, role domainauth.Role) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE `+TableUsers+`
			SET doc = jsonb_set(doc, '{role}', to_jsonb($2::text)), updated_at = $3
			WHERE id = $1::uuid`,
			userID, string(role), r.timeProvider.Now())
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("set role: %w", apperrors.MapDBError(err))
	}
	if affected == 0 {
		return apperrors.NotFound("user record not found")
	}
	return nil
}
