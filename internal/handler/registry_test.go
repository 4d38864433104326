package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/project-workflow/internal/model"
	"github.com/iliyamo/project-workflow/internal/repository"
)

type fakePhases struct {
	phases map[uint64]model.ProjectPhase
	nextID uint64
}

func (f *fakePhases) Create(_ context.Context, p *model.ProjectPhase) error {
	f.nextID++
	p.ID = f.nextID
	f.phases[p.ID] = *p
	return nil
}

func (f *fakePhases) List(_ context.Context) ([]model.ProjectPhase, error) {
	var out []model.ProjectPhase
	for _, p := range f.phases {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePhases) Update(_ context.Context, p *model.ProjectPhase) error {
	if _, ok := f.phases[p.ID]; !ok {
		return repository.ErrNotFound
	}
	f.phases[p.ID] = *p
	return nil
}

func (f *fakePhases) Delete(_ context.Context, id uint64) error {
	if _, ok := f.phases[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.phases, id)
	return nil
}

type fakeTemplates struct {
	templates map[uint64]model.TaskTemplate
	nextID    uint64
}

func (f *fakeTemplates) Create(_ context.Context, t *model.TaskTemplate) error {
	f.nextID++
	t.ID = f.nextID
	f.templates[t.ID] = *t
	return nil
}

func (f *fakeTemplates) List(_ context.Context) ([]model.TaskTemplate, error) {
	var out []model.TaskTemplate
	for _, t := range f.templates {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTemplates) Update(_ context.Context, t *model.TaskTemplate) error {
	if _, ok := f.templates[t.ID]; !ok {
		return repository.ErrNotFound
	}
	f.templates[t.ID] = *t
	return nil
}

func (f *fakeTemplates) Delete(_ context.Context, id uint64) error {
	if _, ok := f.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.templates, id)
	return nil
}

func newRegistryFixture() (*RegistryHandler, *fakePhases, *fakeTemplates) {
	phases := &fakePhases{phases: map[uint64]model.ProjectPhase{}}
	templates := &fakeTemplates{templates: map[uint64]model.TaskTemplate{}}
	return NewRegistryHandler(phases, templates), phases, templates
}

func registryCtx(t *testing.T, method, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	return c, rec
}

func TestCreatePhase(t *testing.T) {
	h, phases, _ := newRegistryFixture()
	c, rec := registryCtx(t, http.MethodPost, `{"name":"Commissioning","sequence":4,"description":"Final checks"}`)

	require.NoError(t, h.CreatePhase(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, phases.phases, 1)
	assert.Equal(t, "Commissioning", phases.phases[1].Name)
	assert.Equal(t, 4, phases.phases[1].Sequence)
}

func TestCreatePhaseRequiresName(t *testing.T) {
	h, _, _ := newRegistryFixture()
	c, rec := registryCtx(t, http.MethodPost, `{"name":"  ","sequence":1}`)

	require.NoError(t, h.CreatePhase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePhaseNotFound(t *testing.T) {
	h, _, _ := newRegistryFixture()
	c, rec := registryCtx(t, http.MethodPut, `{"name":"Renamed","sequence":1}`, "id", "42")

	require.NoError(t, h.UpdatePhase(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePhaseRemovesOnlyThePhase(t *testing.T) {
	h, phases, templates := newRegistryFixture()
	phases.phases[1] = model.ProjectPhase{ID: 1, Name: "Execution"}
	phases.nextID = 1
	templates.templates[1] = model.TaskTemplate{ID: 1, Name: "Weekly report", PhaseID: 1, UpdateFrequency: model.FreqWeekly}
	templates.nextID = 1

	c, rec := registryCtx(t, http.MethodDelete, "", "id", "1")
	require.NoError(t, h.DeletePhase(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Templates referencing the phase are left behind untouched.
	assert.Len(t, templates.templates, 1)
}

func TestCreateTemplateValidatesFrequency(t *testing.T) {
	h, _, templates := newRegistryFixture()
	c, rec := registryCtx(t, http.MethodPost,
		`{"name":"Safety audit","phaseId":1,"sequence":1.5,"updateFrequency":"Fortnightly"}`)

	require.NoError(t, h.CreateTemplate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, templates.templates)
}

func TestCreateTemplateKeepsAllowedStatuses(t *testing.T) {
	h, _, templates := newRegistryFixture()
	c, rec := registryCtx(t, http.MethodPost,
		`{"name":"Safety audit","phaseId":1,"sequence":1.5,"updateFrequency":"Monthly","uploadRequired":true,"allowedStatuses":["Not Started","Complete"]}`)

	require.NoError(t, h.CreateTemplate(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID              uint64   `json:"id"`
		Sequence        float64  `json:"sequence"`
		UploadRequired  bool     `json:"uploadRequired"`
		AllowedStatuses []string `json:"allowedStatuses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1.5, resp.Sequence)
	assert.True(t, resp.UploadRequired)
	assert.Equal(t, []string{"Not Started", "Complete"}, resp.AllowedStatuses)
	assert.Len(t, templates.templates, 1)
}

func TestDeleteTemplateNotFound(t *testing.T) {
	h, _, _ := newRegistryFixture()
	c, rec := registryCtx(t, http.MethodDelete, "", "id", "9")

	require.NoError(t, h.DeleteTemplate(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
