package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/project-workflow/internal/model"
)

// ProjectRepo manages persistence for projects and the tasks generated for
// them at creation time.
type ProjectRepo struct{ DB *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{DB: db} }

// Create inserts a project and clones the given templates into its task
// list inside one transaction, so a project can never exist half-seeded.
// Every generated task starts as "Not Started" with the template's
// sequence, phase name, upload flag and update frequency copied over.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project, templates []model.TaskTemplate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO projects (name, start_date, end_date, status, assigned_to, progress, current_phase, created_by) VALUES (?,?,?,?,?,?,?,?)",
		p.Name, p.StartDate, p.EndDate, p.Status, p.AssignedTo, p.Progress, p.CurrentPhase, p.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	now := time.Now().UTC()
	p.Tasks = p.Tasks[:0]
	for _, t := range templates {
		taskRes, err := tx.ExecContext(ctx,
			"INSERT INTO project_tasks (project_id, template_id, name, sequence, phase, completion_status, upload_required, update_frequency, last_updated) VALUES (?,?,?,?,?,?,?,?,?)",
			p.ID, t.ID, t.Name, t.Sequence, t.Phase, model.StatusNotStarted, t.UploadRequired, t.UpdateFrequency, now)
		if err != nil {
			return err
		}
		taskID, err := taskRes.LastInsertId()
		if err != nil {
			return err
		}
		p.Tasks = append(p.Tasks, model.Task{
			ID:               uint64(taskID),
			ProjectID:        p.ID,
			TemplateID:       t.ID,
			Name:             t.Name,
			Sequence:         t.Sequence,
			Phase:            t.Phase,
			CompletionStatus: model.StatusNotStarted,
			UploadRequired:   t.UploadRequired,
			UpdateFrequency:  t.UpdateFrequency,
			LastUpdated:      now,
		})
	}
	return tx.Commit()
}

const projectColumns = "id,name,start_date,end_date,status,assigned_to,progress,current_phase,created_by,created_at"

// ListByCreator returns every project created by the given user with its
// tasks attached, ordered by creation time. Either the full reshaped list
// is returned or an error, never a partial mix.
func (r *ProjectRepo) ListByCreator(ctx context.Context, userID uint64) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE created_by=? ORDER BY created_at",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Project
	index := map[uint64]int{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	taskRows, err := r.DB.QueryContext(ctx,
		`SELECT t.id, t.project_id, t.template_id, t.name, t.sequence, t.phase, t.completion_status,
		        t.upload_required, t.report_type, t.update_frequency, t.last_updated, t.next_update_due,
		        t.assigned_to, t.start_date, t.due_date
		   FROM project_tasks t
		   JOIN projects pr ON pr.id = t.project_id
		  WHERE pr.created_by=?
		  ORDER BY t.sequence`,
		userID)
	if err != nil {
		return nil, err
	}
	defer taskRows.Close()

	for taskRows.Next() {
		t, err := scanTask(taskRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[t.ProjectID]; ok {
			out[i].Tasks = append(out[i].Tasks, t)
		}
	}
	return out, taskRows.Err()
}

// GetByID fetches one project with its tasks. ErrForbidden is returned
// when the project exists but was created by someone else.
func (r *ProjectRepo) GetByID(ctx context.Context, id, userID uint64) (model.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id=? LIMIT 1", id)
	if err != nil {
		return model.Project{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.Project{}, err
		}
		return model.Project{}, ErrNotFound
	}
	p, err := scanProject(rows)
	if err != nil {
		return model.Project{}, err
	}
	if p.CreatedBy != userID {
		return model.Project{}, ErrForbidden
	}

	taskRows, err := r.DB.QueryContext(ctx,
		`SELECT id, project_id, template_id, name, sequence, phase, completion_status,
		        upload_required, report_type, update_frequency, last_updated, next_update_due,
		        assigned_to, start_date, due_date
		   FROM project_tasks WHERE project_id=? ORDER BY sequence`, id)
	if err != nil {
		return model.Project{}, err
	}
	defer taskRows.Close()

	for taskRows.Next() {
		t, err := scanTask(taskRows)
		if err != nil {
			return model.Project{}, err
		}
		p.Tasks = append(p.Tasks, t)
	}
	return p, taskRows.Err()
}

// Meta fetches just the name and creator of a project, enough context for
// notification routing without loading the task list.
func (r *ProjectRepo) Meta(ctx context.Context, id uint64) (string, uint64, error) {
	var (
		name      string
		createdBy uint64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT name, created_by FROM projects WHERE id=? LIMIT 1", id).Scan(&name, &createdBy)
	if err == sql.ErrNoRows {
		return "", 0, ErrNotFound
	}
	return name, createdBy, err
}

// scanProject reads one projects row, applying the defaults the UI relies
// on: absent progress becomes 0 and an absent current phase "Planning".
func scanProject(rows *sql.Rows) (model.Project, error) {
	var (
		p        model.Project
		progress sql.NullInt64
		phase    sql.NullString
	)
	err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.AssignedTo,
		&progress, &phase, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return model.Project{}, err
	}
	p.Progress = int(progress.Int64) // zero when NULL
	p.CurrentPhase = phase.String
	if p.CurrentPhase == "" {
		p.CurrentPhase = "Planning"
	}
	return p, nil
}

func scanTask(rows *sql.Rows) (model.Task, error) {
	var (
		t          model.Task
		reportType sql.NullString
		assignedTo sql.NullString
		nextDue    sql.NullTime
		lastUpd    sql.NullTime
		startDate  sql.NullTime
		dueDate    sql.NullTime
	)
	err := rows.Scan(&t.ID, &t.ProjectID, &t.TemplateID, &t.Name, &t.Sequence, &t.Phase,
		&t.CompletionStatus, &t.UploadRequired, &reportType, &t.UpdateFrequency,
		&lastUpd, &nextDue, &assignedTo, &startDate, &dueDate)
	if err != nil {
		return model.Task{}, err
	}
	t.ReportType = reportType.String
	t.AssignedTo = assignedTo.String
	if lastUpd.Valid {
		t.LastUpdated = lastUpd.Time
	} else {
		t.LastUpdated = time.Now().UTC() // mirror the UI default for legacy rows
	}
	if nextDue.Valid {
		d := nextDue.Time
		t.NextUpdateDue = &d
	}
	if startDate.Valid {
		d := startDate.Time
		t.StartDate = &d
	}
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	return t, nil
}
