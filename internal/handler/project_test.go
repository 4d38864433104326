package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/project-workflow/internal/model"
	"github.com/iliyamo/project-workflow/internal/repository"
)

// fakeProjects mimics the repository's cloning behaviour: every template
// becomes one "Not Started" task on the new project.
type fakeProjects struct {
	projects map[uint64]model.Project
	nextID   uint64
}

func (f *fakeProjects) Create(_ context.Context, p *model.Project, templates []model.TaskTemplate) error {
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now().UTC()
	for _, tpl := range templates {
		f.nextID++
		p.Tasks = append(p.Tasks, model.Task{
			ID:               f.nextID,
			ProjectID:        p.ID,
			TemplateID:       tpl.ID,
			Name:             tpl.Name,
			Sequence:         tpl.Sequence,
			Phase:            tpl.Phase,
			CompletionStatus: model.StatusNotStarted,
			UploadRequired:   tpl.UploadRequired,
			UpdateFrequency:  tpl.UpdateFrequency,
			LastUpdated:      time.Now().UTC(),
		})
	}
	f.projects[p.ID] = *p
	return nil
}

func (f *fakeProjects) ListByCreator(_ context.Context, userID uint64) ([]model.Project, error) {
	var out []model.Project
	for _, p := range f.projects {
		if p.CreatedBy == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) GetByID(_ context.Context, id, userID uint64) (model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return model.Project{}, repository.ErrNotFound
	}
	if p.CreatedBy != userID {
		return model.Project{}, repository.ErrForbidden
	}
	return p, nil
}

type fakeTemplateList struct{ templates []model.TaskTemplate }

func (f *fakeTemplateList) List(_ context.Context) ([]model.TaskTemplate, error) {
	return f.templates, nil
}

type fakeManagers struct{ byRole map[string][]model.UserProfile }

func (f *fakeManagers) ListByRole(_ context.Context, role string) ([]model.UserProfile, error) {
	return f.byRole[role], nil
}

func newProjectHandlerFixture() (*ProjectHandler, *fakeProjects) {
	projects := &fakeProjects{projects: map[uint64]model.Project{}}
	templates := &fakeTemplateList{templates: []model.TaskTemplate{
		{ID: 1, Sequence: 1, Name: "Kickoff meeting", Phase: "Planning", UpdateFrequency: model.FreqOnce},
		{ID: 2, Sequence: 2.5, Name: "Weekly progress report", Phase: "Execution", UploadRequired: true, UpdateFrequency: model.FreqWeekly},
		{ID: 3, Sequence: 3, Name: "Closeout", Phase: "Closeout", UpdateFrequency: model.FreqOnce},
	}}
	managers := &fakeManagers{byRole: map[string][]model.UserProfile{
		model.RoleProjectManager: {{ID: 1, DisplayName: "Dana Cruz", Email: "dana@example.com"}},
	}}
	return NewProjectHandler(projects, templates, managers), projects
}

func projectCtx(t *testing.T, method, path, body string, uid uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uid)
	return c, rec
}

func TestCreateProjectClonesEveryTemplate(t *testing.T) {
	h, projects := newProjectHandlerFixture()
	c, rec := projectCtx(t, http.MethodPost, "/v1/projects",
		`{"name":"Substation refresh","startDate":"2026-09-01","endDate":"2027-03-31","assignedTo":"Dana Cruz"}`, 1)

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID     uint64 `json:"id"`
		Status string `json:"status"`
		Tasks  []struct {
			Name             string  `json:"name"`
			Sequence         float64 `json:"sequence"`
			CompletionStatus string  `json:"completionStatus"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Planning", resp.Status)
	require.Len(t, resp.Tasks, 3, "one task per template")
	for _, task := range resp.Tasks {
		assert.Equal(t, model.StatusNotStarted, task.CompletionStatus)
	}
	assert.Equal(t, 2.5, resp.Tasks[1].Sequence, "fractional template sequences survive cloning")

	stored := projects.projects[resp.ID]
	assert.Equal(t, uint64(1), stored.CreatedBy)
}

func TestCreateProjectRejectsBadDates(t *testing.T) {
	h, _ := newProjectHandlerFixture()
	c, rec := projectCtx(t, http.MethodPost, "/v1/projects",
		`{"name":"X","startDate":"September 1","endDate":"2027-03-31"}`, 1)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProjectRequiresName(t *testing.T) {
	h, _ := newProjectHandlerFixture()
	c, rec := projectCtx(t, http.MethodPost, "/v1/projects",
		`{"name":"   ","startDate":"2026-09-01","endDate":"2027-03-31"}`, 1)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProjectScopedToCreator(t *testing.T) {
	h, _ := newProjectHandlerFixture()
	c, rec := projectCtx(t, http.MethodPost, "/v1/projects",
		`{"name":"Substation refresh","startDate":"2026-09-01","endDate":"2027-03-31"}`, 1)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Another user cannot read it.
	c, rec = projectCtx(t, http.MethodGet, "/", "", 2)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The creator can.
	c, rec = projectCtx(t, http.MethodGet, "/", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTemplateDeleteLeavesClonedTasks(t *testing.T) {
	// Cloned tasks carry their own copies of every template field, so
	// removing the template afterwards must not touch them.
	templates := &fakeTemplates{templates: map[uint64]model.TaskTemplate{
		1: {ID: 1, Sequence: 1, Name: "Kickoff meeting", Phase: "Planning", UpdateFrequency: model.FreqOnce},
	}, nextID: 1}
	registry := NewRegistryHandler(&fakePhases{phases: map[uint64]model.ProjectPhase{}}, templates)
	projects := &fakeProjects{projects: map[uint64]model.Project{}}
	h := NewProjectHandler(projects, templates, &fakeManagers{})

	c, rec := projectCtx(t, http.MethodPost, "/v1/projects",
		`{"name":"Depot move","startDate":"2026-09-01","endDate":"2026-12-01"}`, 1)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = registryCtx(t, http.MethodDelete, "", "id", "1")
	require.NoError(t, registry.DeleteTemplate(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = projectCtx(t, http.MethodGet, "/", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kickoff meeting")
}

func TestListProjectManagers(t *testing.T) {
	h, _ := newProjectHandlerFixture()
	c, rec := projectCtx(t, http.MethodGet, "/v1/users/project-managers", "", 1)

	require.NoError(t, h.ListProjectManagers(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dana Cruz")
}
