package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/project-workflow/internal/model"
)

// RoleHistoryReader lists a user's recorded role changes.
type RoleHistoryReader interface {
	RoleHistory(ctx context.Context, userID uint64) ([]model.RoleChange, error)
}

// UserHandler serves the admin-side user audit reads. Roles are derived
// from group membership on every login and never edited here; the history
// endpoint is how an operations manager answers "when did this person's
// role change, and from what".
type UserHandler struct {
	History RoleHistoryReader
}

func NewUserHandler(history RoleHistoryReader) *UserHandler {
	return &UserHandler{History: history}
}

type roleChangeResp struct {
	ID           uint64    `json:"id"`
	PreviousRole string    `json:"previousRole"`
	NewRole      string    `json:"newRole"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RoleHistory returns a user's role changes, newest first. An empty list
// means the role has never moved since the profile was created.
func (h *UserHandler) RoleHistory(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	changes, err := h.History.RoleHistory(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load role history failed"})
	}
	out := make([]roleChangeResp, 0, len(changes))
	for _, rc := range changes {
		out = append(out, roleChangeResp{
			ID: rc.ID, PreviousRole: rc.PreviousRole, NewRole: rc.NewRole,
			Reason: rc.Reason, CreatedAt: rc.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"roleHistory": out})
}
