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

// PhaseStore persists project phases.
type PhaseStore interface {
	Create(ctx context.Context, p *model.ProjectPhase) error
	List(ctx context.Context) ([]model.ProjectPhase, error)
	Update(ctx context.Context, p *model.ProjectPhase) error
	Delete(ctx context.Context, id uint64) error
}

// TemplateStore persists task templates.
type TemplateStore interface {
	Create(ctx context.Context, t *model.TaskTemplate) error
	List(ctx context.Context) ([]model.TaskTemplate, error)
	Update(ctx context.Context, t *model.TaskTemplate) error
	Delete(ctx context.Context, id uint64) error
}

// RegistryHandler owns the admin CRUD over phases and task templates that
// seed new projects. All routes are gated on the operations_manager role.
type RegistryHandler struct {
	Phases    PhaseStore
	Templates TemplateStore
}

func NewRegistryHandler(phases PhaseStore, templates TemplateStore) *RegistryHandler {
	return &RegistryHandler{Phases: phases, Templates: templates}
}

// validFrequencies mirrors the options the admin form offers.
var validFrequencies = map[string]bool{
	model.FreqOnce: true, model.FreqDaily: true, model.FreqWeekly: true,
	model.FreqBiWeekly: true, model.FreqMonthly: true, model.FreqQuarterly: true,
	model.FreqSemiAnnual: true, model.FreqAnnual: true,
}

// ----- DTOs -----

type phaseReq struct {
	Name        string `json:"name"`
	Sequence    int    `json:"sequence"`
	Description string `json:"description"`
}

type phaseResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Sequence    int    `json:"sequence"`
	Description string `json:"description"`
}

type templateReq struct {
	Sequence         float64  `json:"sequence"`
	Name             string   `json:"name"`
	PhaseID          uint64   `json:"phaseId"`
	UploadRequired   bool     `json:"uploadRequired"`
	UpdateFrequency  string   `json:"updateFrequency"`
	AllowedStatuses  []string `json:"allowedStatuses,omitempty"`
	ApprovalRequired bool     `json:"approvalRequired"`
}

type templateResp struct {
	ID               uint64   `json:"id"`
	Sequence         float64  `json:"sequence"`
	Name             string   `json:"name"`
	PhaseID          uint64   `json:"phaseId"`
	Phase            string   `json:"phase"`
	UploadRequired   bool     `json:"uploadRequired"`
	UpdateFrequency  string   `json:"updateFrequency"`
	AllowedStatuses  []string `json:"allowedStatuses,omitempty"`
	ApprovalRequired bool     `json:"approvalRequired"`
}

func templateView(t model.TaskTemplate) templateResp {
	return templateResp{
		ID: t.ID, Sequence: t.Sequence, Name: t.Name, PhaseID: t.PhaseID, Phase: t.Phase,
		UploadRequired: t.UploadRequired, UpdateFrequency: t.UpdateFrequency,
		AllowedStatuses: t.AllowedStatuses, ApprovalRequired: t.ApprovalRequired,
	}
}

// ----- Phases -----

// CreatePhase inserts a phase. The sequence is taken as given: the UI
// suggests max+1 as a default but the data layer enforces nothing.
func (h *RegistryHandler) CreatePhase(c echo.Context) error {
	var req phaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := model.ProjectPhase{Name: req.Name, Sequence: req.Sequence, Description: req.Description}
	if err := h.Phases.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create phase failed"})
	}
	return c.JSON(http.StatusCreated, phaseResp{ID: p.ID, Name: p.Name, Sequence: p.Sequence, Description: p.Description})
}

// ListPhases returns all phases ordered by sequence.
func (h *RegistryHandler) ListPhases(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	phases, err := h.Phases.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list phases failed"})
	}
	out := make([]phaseResp, 0, len(phases))
	for _, p := range phases {
		out = append(out, phaseResp{ID: p.ID, Name: p.Name, Sequence: p.Sequence, Description: p.Description})
	}
	return c.JSON(http.StatusOK, echo.Map{"phases": out})
}

// UpdatePhase rewrites a phase's fields.
func (h *RegistryHandler) UpdatePhase(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req phaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := model.ProjectPhase{ID: id, Name: req.Name, Sequence: req.Sequence, Description: req.Description}
	if err := h.Phases.Update(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "phase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update phase failed"})
	}
	return c.JSON(http.StatusOK, phaseResp{ID: p.ID, Name: p.Name, Sequence: p.Sequence, Description: p.Description})
}

// DeletePhase removes a phase unconditionally. Templates and tasks that
// reference the phase name keep their denormalized copies; nothing checks
// for remaining references.
func (h *RegistryHandler) DeletePhase(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Phases.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "phase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete phase failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- Templates -----

// CreateTemplate inserts a task template. The fractional sequence comes
// from the caller; the admin UI suggests max+0.01 but nothing is enforced.
func (h *RegistryHandler) CreateTemplate(c echo.Context) error {
	var req templateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PhaseID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phaseId required"})
	}
	if !validFrequencies[req.UpdateFrequency] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown update frequency"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t := model.TaskTemplate{
		Sequence: req.Sequence, Name: req.Name, PhaseID: req.PhaseID,
		UploadRequired: req.UploadRequired, UpdateFrequency: req.UpdateFrequency,
		AllowedStatuses: req.AllowedStatuses, ApprovalRequired: req.ApprovalRequired,
	}
	if err := h.Templates.Create(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create template failed"})
	}
	return c.JSON(http.StatusCreated, templateView(t))
}

// ListTemplates returns all templates ordered by sequence with phase names
// resolved.
func (h *RegistryHandler) ListTemplates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	templates, err := h.Templates.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list templates failed"})
	}
	out := make([]templateResp, 0, len(templates))
	for _, t := range templates {
		out = append(out, templateView(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"templates": out})
}

// UpdateTemplate rewrites a template's fields.
func (h *RegistryHandler) UpdateTemplate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req templateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PhaseID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phaseId required"})
	}
	if !validFrequencies[req.UpdateFrequency] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown update frequency"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t := model.TaskTemplate{
		ID: id, Sequence: req.Sequence, Name: req.Name, PhaseID: req.PhaseID,
		UploadRequired: req.UploadRequired, UpdateFrequency: req.UpdateFrequency,
		AllowedStatuses: req.AllowedStatuses, ApprovalRequired: req.ApprovalRequired,
	}
	if err := h.Templates.Update(ctx, &t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "template not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update template failed"})
	}
	return c.JSON(http.StatusOK, templateView(t))
}

// DeleteTemplate removes a template unconditionally. Tasks already cloned
// from it are untouched; they carry their own copies of every field.
func (h *RegistryHandler) DeleteTemplate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Templates.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "template not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete template failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
