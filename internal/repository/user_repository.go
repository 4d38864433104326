package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/project-workflow/internal/model"
)

// UserRepo manages persistence for user profiles and their role history.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,external_id,email,display_name,role,created_at,last_login"

// GetByExternalID fetches a profile by the identity provider's stable
// account id. Returns ErrNotFound when no profile exists yet.
func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (model.UserProfile, error) {
	var u model.UserProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user_profiles WHERE external_id=? LIMIT 1",
		externalID).Scan(&u.ID, &u.ExternalID, &u.Email, &u.DisplayName, &u.Role, &u.CreatedAt, &u.LastLogin)
	if err == sql.ErrNoRows {
		return model.UserProfile{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a profile by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.UserProfile, error) {
	var u model.UserProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user_profiles WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.ExternalID, &u.Email, &u.DisplayName, &u.Role, &u.CreatedAt, &u.LastLogin)
	if err == sql.ErrNoRows {
		return model.UserProfile{}, ErrNotFound
	}
	return u, err
}

// Create inserts a fresh profile resolved from a first sign-in and returns
// its generated id.
func (r *UserRepo) Create(ctx context.Context, externalID, email, displayName, role string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_profiles (external_id, email, display_name, role, last_login) VALUES (?,?,?,?,?)",
		externalID, email, displayName, role, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateOnLogin refreshes the mutable profile fields on every sign-in. Role
// is always overwritten with the freshly resolved value; it is never edited
// through any other path.
func (r *UserRepo) UpdateOnLogin(ctx context.Context, id uint64, email, displayName, role string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_profiles SET email=?, display_name=?, role=?, last_login=? WHERE id=?",
		email, displayName, role, time.Now().UTC(), id)
	return err
}

// AppendRoleChange records that a sign-in resolved a different role than
// the one stored. The history table is append-only.
func (r *UserRepo) AppendRoleChange(ctx context.Context, userID uint64, previousRole, newRole, reason string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_role_history (user_id, previous_role, new_role, reason) VALUES (?,?,?,?)",
		userID, previousRole, newRole, reason)
	return err
}

// RoleHistory returns a user's role changes, newest first.
func (r *UserRepo) RoleHistory(ctx context.Context, userID uint64) ([]model.RoleChange, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,previous_role,new_role,reason,created_at FROM user_role_history WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RoleChange
	for rows.Next() {
		var rc model.RoleChange
		if err := rows.Scan(&rc.ID, &rc.UserID, &rc.PreviousRole, &rc.NewRole, &rc.Reason, &rc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// ListByRole returns all profiles holding the given role, ordered by
// display name. The project form uses this to offer assignable managers.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]model.UserProfile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM user_profiles WHERE role=? ORDER BY display_name",
		role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserProfile
	for rows.Next() {
		var u model.UserProfile
		if err := rows.Scan(&u.ID, &u.ExternalID, &u.Email, &u.DisplayName, &u.Role, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
