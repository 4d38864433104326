package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/project-workflow/internal/model"
	"github.com/iliyamo/project-workflow/internal/repository"
)

type fakeGroups struct {
	names []string
	err   error
}

func (f *fakeGroups) Groups(ctx context.Context, bearer string) ([]string, error) {
	return f.names, f.err
}

type fakeUsers struct {
	byExternal map[string]model.UserProfile
	nextID     uint64
	history    []model.RoleChange
	updateErr  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byExternal: map[string]model.UserProfile{}, nextID: 1}
}

func (f *fakeUsers) GetByExternalID(ctx context.Context, externalID string) (model.UserProfile, error) {
	u, ok := f.byExternal[externalID]
	if !ok {
		return model.UserProfile{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id uint64) (model.UserProfile, error) {
	for _, u := range f.byExternal {
		if u.ID == id {
			return u, nil
		}
	}
	return model.UserProfile{}, repository.ErrNotFound
}

func (f *fakeUsers) Create(ctx context.Context, externalID, email, displayName, role string) (uint64, error) {
	id := f.nextID
	f.nextID++
	f.byExternal[externalID] = model.UserProfile{
		ID: id, ExternalID: externalID, Email: email, DisplayName: displayName,
		Role: role, CreatedAt: time.Now().UTC(), LastLogin: time.Now().UTC(),
	}
	return id, nil
}

func (f *fakeUsers) UpdateOnLogin(ctx context.Context, id uint64, email, displayName, role string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for key, u := range f.byExternal {
		if u.ID == id {
			u.Email = email
			u.DisplayName = displayName
			u.Role = role
			u.LastLogin = time.Now().UTC()
			f.byExternal[key] = u
		}
	}
	return nil
}

func (f *fakeUsers) AppendRoleChange(ctx context.Context, userID uint64, previousRole, newRole, reason string) error {
	f.history = append(f.history, model.RoleChange{
		UserID: userID, PreviousRole: previousRole, NewRole: newRole, Reason: reason,
	})
	return nil
}

func TestRoleFromGroups(t *testing.T) {
	assert.Equal(t, model.RoleOperationsManager,
		RoleFromGroups([]string{"Staff", model.OperationsManagerGroup, "Leads"}))
	assert.Equal(t, model.RoleProjectManager, RoleFromGroups([]string{"Staff", "Leads"}))
	assert.Equal(t, model.RoleProjectManager, RoleFromGroups(nil))
}

func TestResolveCreatesProfileOnFirstLogin(t *testing.T) {
	users := newFakeUsers()
	r := NewResolver(&fakeGroups{names: []string{model.OperationsManagerGroup}}, users)

	got, err := r.Resolve(context.Background(), Account{
		ExternalID: "ext-1", Email: "pat@example.com", DisplayName: "Pat",
	}, "token")
	require.NoError(t, err)
	assert.Equal(t, model.RoleOperationsManager, got.Role)
	assert.Equal(t, "ext-1", got.ExternalID)
	assert.Empty(t, users.history, "first login is not a role change")
}

func TestResolveUnchangedMembershipAppendsNothing(t *testing.T) {
	users := newFakeUsers()
	r := NewResolver(&fakeGroups{names: nil}, users)
	acct := Account{ExternalID: "ext-2", Email: "a@example.com", DisplayName: "A"}

	_, err := r.Resolve(context.Background(), acct, "token")
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), acct, "token")
	require.NoError(t, err)

	assert.Empty(t, users.history)
}

func TestResolveChangedMembershipAppendsExactlyOne(t *testing.T) {
	users := newFakeUsers()
	groups := &fakeGroups{names: nil}
	r := NewResolver(groups, users)
	acct := Account{ExternalID: "ext-3", Email: "b@example.com", DisplayName: "B"}

	_, err := r.Resolve(context.Background(), acct, "token")
	require.NoError(t, err)

	groups.names = []string{model.OperationsManagerGroup}
	got, err := r.Resolve(context.Background(), acct, "token")
	require.NoError(t, err)

	assert.Equal(t, model.RoleOperationsManager, got.Role)
	require.Len(t, users.history, 1)
	assert.Equal(t, model.RoleProjectManager, users.history[0].PreviousRole)
	assert.Equal(t, model.RoleOperationsManager, users.history[0].NewRole)
	assert.Equal(t, "group membership update", users.history[0].Reason)
}

func TestResolveFailsClosedOnGroupFetchError(t *testing.T) {
	users := newFakeUsers()
	r := NewResolver(&fakeGroups{err: errors.New("graph unavailable")}, users)

	_, err := r.Resolve(context.Background(), Account{ExternalID: "ext-4"}, "token")
	require.Error(t, err)
	assert.Empty(t, users.byExternal, "no profile may be written without a resolved role")
}

func TestResolveNoPartialProfileOnPersistFailure(t *testing.T) {
	users := newFakeUsers()
	r := NewResolver(&fakeGroups{names: nil}, users)
	acct := Account{ExternalID: "ext-5", Email: "c@example.com", DisplayName: "C"}

	_, err := r.Resolve(context.Background(), acct, "token")
	require.NoError(t, err)

	users.updateErr = errors.New("write failed")
	_, err = r.Resolve(context.Background(), acct, "token")
	require.Error(t, err)
	assert.Empty(t, users.history, "a failed refresh must not record a role change")
}
