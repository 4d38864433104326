package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/project-workflow/internal/model"
	"github.com/iliyamo/project-workflow/internal/repository"
)

// ProjectStore persists projects and their generated tasks.
type ProjectStore interface {
	Create(ctx context.Context, p *model.Project, templates []model.TaskTemplate) error
	ListByCreator(ctx context.Context, userID uint64) ([]model.Project, error)
	GetByID(ctx context.Context, id, userID uint64) (model.Project, error)
}

// TemplateLister supplies the active templates to clone at creation time.
type TemplateLister interface {
	List(ctx context.Context) ([]model.TaskTemplate, error)
}

// ManagerLister lists profiles by role for the assignment picker.
type ManagerLister interface {
	ListByRole(ctx context.Context, role string) ([]model.UserProfile, error)
}

// ProjectHandler owns project creation and the aggregate project/task
// reads that drive the dashboard.
type ProjectHandler struct {
	Projects  ProjectStore
	Templates TemplateLister
	Users     ManagerLister
}

func NewProjectHandler(projects ProjectStore, templates TemplateLister, users ManagerLister) *ProjectHandler {
	return &ProjectHandler{Projects: projects, Templates: templates, Users: users}
}

// ----- DTOs -----

type createProjectReq struct {
	Name       string `json:"name"`
	StartDate  string `json:"startDate"` // YYYY-MM-DD
	EndDate    string `json:"endDate"`   // YYYY-MM-DD
	AssignedTo string `json:"assignedTo"`
}

type taskResp struct {
	ID               uint64     `json:"id"`
	Name             string     `json:"name"`
	Sequence         float64    `json:"sequence"`
	Phase            string     `json:"phase"`
	CompletionStatus string     `json:"completionStatus"`
	UploadRequired   bool       `json:"uploadRequired"`
	ReportType       string     `json:"reportType"`
	UpdateFrequency  string     `json:"updateFrequency"`
	LastUpdated      time.Time  `json:"lastUpdated"`
	NextUpdateDue    *time.Time `json:"nextUpdateDue,omitempty"`
	AssignedTo       string     `json:"assignedTo,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
}

type projectResp struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      time.Time  `json:"endDate"`
	Status       string     `json:"status"`
	AssignedTo   string     `json:"assignedTo"`
	Progress     int        `json:"progress"`
	CurrentPhase string     `json:"currentPhase"`
	Tasks        []taskResp `json:"tasks"`
}

func taskView(t model.Task) taskResp {
	return taskResp{
		ID: t.ID, Name: t.Name, Sequence: t.Sequence, Phase: t.Phase,
		CompletionStatus: t.CompletionStatus, UploadRequired: t.UploadRequired,
		ReportType: t.ReportType, UpdateFrequency: t.UpdateFrequency,
		LastUpdated: t.LastUpdated, NextUpdateDue: t.NextUpdateDue,
		AssignedTo: t.AssignedTo, StartDate: t.StartDate, DueDate: t.DueDate,
	}
}

func projectView(p model.Project) projectResp {
	out := projectResp{
		ID: p.ID, Name: p.Name, StartDate: p.StartDate, EndDate: p.EndDate,
		Status: p.Status, AssignedTo: p.AssignedTo, Progress: p.Progress,
		CurrentPhase: p.CurrentPhase, Tasks: make([]taskResp, 0, len(p.Tasks)),
	}
	for _, t := range p.Tasks {
		out.Tasks = append(out.Tasks, taskView(t))
	}
	return out
}

// Create inserts a project and clones every active template into its task
// list. The new project starts in "Planning" with zero progress and one
// "Not Started" task per template, ordered by template sequence.
func (h *ProjectHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req createProjectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid startDate"})
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid endDate"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	templates, err := h.Templates.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load templates failed"})
	}

	p := model.Project{
		Name:         req.Name,
		StartDate:    start,
		EndDate:      end,
		Status:       "Planning",
		AssignedTo:   strings.TrimSpace(req.AssignedTo),
		Progress:     0,
		CurrentPhase: "Planning",
		CreatedBy:    uid,
	}
	if err := h.Projects.Create(ctx, &p, templates); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create project failed"})
	}
	return c.JSON(http.StatusCreated, projectView(p))
}

// List returns every project the authenticated user created, tasks
// included. The result is either complete or an error, never partial.
func (h *ProjectHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	projects, err := h.Projects.ListByCreator(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load projects failed"})
	}
	out := make([]projectResp, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectView(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": out})
}

// Get returns one project with its tasks.
func (h *ProjectHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load project failed"})
	}
	return c.JSON(http.StatusOK, projectView(p))
}

// ListProjectManagers returns the profiles the project form can assign.
func (h *ProjectHandler) ListProjectManagers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListByRole(ctx, model.RoleProjectManager)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load managers failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, profilePart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"managers": out})
}
