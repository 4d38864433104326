package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/project-workflow/internal/model"
)

type fakeRoleHistory struct{ byUser map[uint64][]model.RoleChange }

func (f *fakeRoleHistory) RoleHistory(_ context.Context, userID uint64) ([]model.RoleChange, error) {
	return f.byUser[userID], nil
}

func TestRoleHistoryNewestFirst(t *testing.T) {
	h := NewUserHandler(&fakeRoleHistory{byUser: map[uint64][]model.RoleChange{
		5: {
			{ID: 2, UserID: 5, PreviousRole: model.RoleOperationsManager, NewRole: model.RoleProjectManager,
				Reason: "group membership update", CreatedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)},
			{ID: 1, UserID: 5, PreviousRole: model.RoleProjectManager, NewRole: model.RoleOperationsManager,
				Reason: "group membership update", CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)},
		},
	}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.RoleHistory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		RoleHistory []roleChangeResp `json:"roleHistory"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.RoleHistory, 2)
	assert.Equal(t, uint64(2), resp.RoleHistory[0].ID, "most recent change first")
	assert.Equal(t, model.RoleProjectManager, resp.RoleHistory[0].NewRole)
}

func TestRoleHistoryEmptyForStableRole(t *testing.T) {
	h := NewUserHandler(&fakeRoleHistory{byUser: map[uint64][]model.RoleChange{}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.RoleHistory(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"roleHistory":[]}`, rec.Body.String())
}
