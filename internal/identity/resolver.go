package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/project-workflow/internal/model"
	"github.com/iliyamo/project-workflow/internal/repository"
)

// roleChangeReason is recorded on every appended role-history row; today
// the only trigger for a role change is a membership update at sign-in.
const roleChangeReason = "group membership update"

// GroupFetcher supplies the directory group names of the signed-in account.
type GroupFetcher interface {
	Groups(ctx context.Context, bearer string) ([]string, error)
}

// ProfileStore is the slice of the user repository the resolver needs.
type ProfileStore interface {
	GetByExternalID(ctx context.Context, externalID string) (model.UserProfile, error)
	GetByID(ctx context.Context, id uint64) (model.UserProfile, error)
	Create(ctx context.Context, externalID, email, displayName, role string) (uint64, error)
	UpdateOnLogin(ctx context.Context, id uint64, email, displayName, role string) error
	AppendRoleChange(ctx context.Context, userID uint64, previousRole, newRole, reason string) error
}

// Resolver exchanges a federated account for an internal user profile,
// deriving the role from the account's current group membership on every
// sign-in.
type Resolver struct {
	Groups GroupFetcher
	Users  ProfileStore
}

func NewResolver(groups GroupFetcher, users ProfileStore) *Resolver {
	return &Resolver{Groups: groups, Users: users}
}

// RoleFromGroups maps a membership list onto a role. Membership in the
// designated operations-manager group wins; everyone else is a project
// manager.
func RoleFromGroups(groups []string) string {
	for _, g := range groups {
		if g == model.OperationsManagerGroup {
			return model.RoleOperationsManager
		}
	}
	return model.RoleProjectManager
}

// Resolve produces or refreshes the internal profile for the given account.
// The group fetch is fail-closed: if membership cannot be read, no role is
// guessed and no profile is written. Existing profiles get their display
// name, email and last-login refreshed and their role overwritten; a role
// that changed since the last sign-in is additionally recorded in the
// append-only role history.
func (r *Resolver) Resolve(ctx context.Context, account Account, bearer string) (model.UserProfile, error) {
	groups, err := r.Groups.Groups(ctx, bearer)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("fetch group membership: %w", err)
	}
	role := RoleFromGroups(groups)

	existing, err := r.Users.GetByExternalID(ctx, account.ExternalID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		id, err := r.Users.Create(ctx, account.ExternalID, account.Email, account.DisplayName, role)
		if err != nil {
			return model.UserProfile{}, fmt.Errorf("create profile: %w", err)
		}
		return r.Users.GetByID(ctx, id)
	case err != nil:
		return model.UserProfile{}, fmt.Errorf("look up profile: %w", err)
	}

	if err := r.Users.UpdateOnLogin(ctx, existing.ID, account.Email, account.DisplayName, role); err != nil {
		return model.UserProfile{}, fmt.Errorf("refresh profile: %w", err)
	}
	if existing.Role != role {
		if err := r.Users.AppendRoleChange(ctx, existing.ID, existing.Role, role, roleChangeReason); err != nil {
			return model.UserProfile{}, fmt.Errorf("record role change: %w", err)
		}
	}
	return r.Users.GetByID(ctx, existing.ID)
}
