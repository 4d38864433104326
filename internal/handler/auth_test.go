package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/project-workflow/internal/config"
	"github.com/iliyamo/project-workflow/internal/identity"
	"github.com/iliyamo/project-workflow/internal/model"
	"github.com/iliyamo/project-workflow/internal/utils"
)

type fakeAccounts struct {
	account identity.Account
	err     error
}

func (f *fakeAccounts) Me(_ context.Context, _ string) (identity.Account, error) {
	return f.account, f.err
}

type fakeResolver struct {
	profile model.UserProfile
	err     error
}

func (f *fakeResolver) Resolve(_ context.Context, _ identity.Account, _ string) (model.UserProfile, error) {
	return f.profile, f.err
}

type fakeTokens struct {
	stored  map[string]uint64 // hash -> userID
	revoked []string
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	f.stored[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	uid, ok := f.stored[hash]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return uid, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(f.stored, hash)
	f.revoked = append(f.revoked, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for hash, uid := range f.stored {
		if uid == userID {
			delete(f.stored, hash)
			f.revoked = append(f.revoked, hash)
		}
	}
	return nil
}

func newAuthFixture(resolveErr error) (*AuthHandler, *fakeTokens) {
	tokens := &fakeTokens{stored: map[string]uint64{}}
	profile := model.UserProfile{ID: 5, Email: "dana@example.com", DisplayName: "Dana Cruz", Role: model.RoleProjectManager}
	h := NewAuthHandler(
		config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7},
		&fakeAccounts{account: identity.Account{ExternalID: "ext-1", Email: "dana@example.com", DisplayName: "Dana Cruz"}},
		&fakeResolver{profile: profile, err: resolveErr},
		&fakeProfiles{users: map[uint64]model.UserProfile{5: profile}},
		tokens,
	)
	return h, tokens
}

func authCtx(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLoginIssuesSessionPair(t *testing.T) {
	h, tokens := newAuthFixture(nil)
	c, rec := authCtx(t, `{"provider_token":"provider-jwt"}`)

	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(5), resp.User.ID)
	assert.Equal(t, model.RoleProjectManager, resp.User.Role)
	assert.NotEmpty(t, resp.Access.Token)
	assert.NotEmpty(t, resp.Refresh.Token)

	// Only the hash is stored, never the raw refresh token.
	hash := utils.HashRefreshRaw(resp.Refresh.Token)
	assert.Contains(t, tokens.stored, hash)
	assert.NotContains(t, tokens.stored, resp.Refresh.Token)
}

func TestLoginRejectedProviderToken(t *testing.T) {
	h, _ := newAuthFixture(nil)
	h.Accounts = &fakeAccounts{err: errors.New("401 from provider")}
	c, rec := authCtx(t, `{"provider_token":"expired"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginFailsClosedOnResolveError(t *testing.T) {
	h, tokens := newAuthFixture(errors.New("group fetch failed"))
	c, rec := authCtx(t, `{"provider_token":"provider-jwt"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, tokens.stored, "no session issued when the role cannot be resolved")
}

func TestRefreshRotatesToken(t *testing.T) {
	h, tokens := newAuthFixture(nil)
	c, rec := authCtx(t, `{"provider_token":"provider-jwt"}`)
	require.NoError(t, h.Login(c))
	var first authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	c, rec = authCtx(t, `{"refresh_token":"`+first.Refresh.Token+`"}`)
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var second authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.NotEqual(t, first.Refresh.Token, second.Refresh.Token)

	oldHash := utils.HashRefreshRaw(first.Refresh.Token)
	assert.NotContains(t, tokens.stored, oldHash, "old token revoked on rotation")
	assert.Contains(t, tokens.revoked, oldHash)

	// Replaying the rotated-out token must fail.
	c, rec = authCtx(t, `{"refresh_token":"`+first.Refresh.Token+`"}`)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshAccessDoesNotRotate(t *testing.T) {
	h, tokens := newAuthFixture(nil)
	c, rec := authCtx(t, `{"provider_token":"provider-jwt"}`)
	require.NoError(t, h.Login(c))
	var pair authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))

	c, rec = authCtx(t, `{"refresh_token":"`+pair.Refresh.Token+`"}`)
	require.NoError(t, h.RefreshAccess(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, tokens.stored, utils.HashRefreshRaw(pair.Refresh.Token),
		"refresh token remains valid")
	assert.Contains(t, rec.Body.String(), `"access"`)
	assert.NotContains(t, rec.Body.String(), `"refresh"`)
}

func TestLogoutIsIdempotent(t *testing.T) {
	h, _ := newAuthFixture(nil)
	c, rec := authCtx(t, `{"refresh_token":"never-issued"}`)

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	h, tokens := newAuthFixture(nil)
	for i := 0; i < 2; i++ {
		c, rec := authCtx(t, `{"provider_token":"provider-jwt"}`)
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Len(t, tokens.stored, 2)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(5))

	require.NoError(t, h.LogoutAll(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, tokens.stored)
}

func TestLoginRequiresProviderToken(t *testing.T) {
	h, _ := newAuthFixture(nil)
	c, rec := authCtx(t, `{"provider_token":"  "}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
