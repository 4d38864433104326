package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/project-workflow/internal/model"
)

// TemplateRepo manages persistence for task templates. Templates reference
// their phase by id but every read resolves the phase name through a join,
// because the rest of the system (and the tasks cloned from templates)
// works with the denormalized name.
type TemplateRepo struct{ DB *sql.DB }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{DB: db} }

const templateSelect = `SELECT t.id, t.sequence, t.name, t.phase_id, p.name,
       t.upload_required, t.update_frequency, t.allowed_statuses, t.approval_required, t.created_at
  FROM task_templates t
  JOIN project_phases p ON p.id = t.phase_id`

// Create inserts a template and assigns the generated id back onto the
// model. The fractional sequence is caller-supplied.
func (r *TemplateRepo) Create(ctx context.Context, t *model.TaskTemplate) error {
	statuses, err := encodeStatuses(t.AllowedStatuses)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO task_templates (sequence, name, phase_id, upload_required, update_frequency, allowed_statuses, approval_required) VALUES (?,?,?,?,?,?,?)",
		t.Sequence, t.Name, t.PhaseID, t.UploadRequired, t.UpdateFrequency, statuses, t.ApprovalRequired)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// List returns all templates ordered by sequence, phase names resolved.
func (r *TemplateRepo) List(ctx context.Context) ([]model.TaskTemplate, error) {
	rows, err := r.DB.QueryContext(ctx, templateSelect+" ORDER BY t.sequence")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TaskTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID fetches a single template with its phase name resolved.
func (r *TemplateRepo) GetByID(ctx context.Context, id uint64) (model.TaskTemplate, error) {
	rows, err := r.DB.QueryContext(ctx, templateSelect+" WHERE t.id=? LIMIT 1", id)
	if err != nil {
		return model.TaskTemplate{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.TaskTemplate{}, err
		}
		return model.TaskTemplate{}, ErrNotFound
	}
	return scanTemplate(rows)
}

// Update rewrites a template's editable fields.
func (r *TemplateRepo) Update(ctx context.Context, t *model.TaskTemplate) error {
	statuses, err := encodeStatuses(t.AllowedStatuses)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE task_templates SET sequence=?, name=?, phase_id=?, upload_required=?, update_frequency=?, allowed_statuses=?, approval_required=? WHERE id=?",
		t.Sequence, t.Name, t.PhaseID, t.UploadRequired, t.UpdateFrequency, statuses, t.ApprovalRequired, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a template unconditionally. Tasks already cloned from it
// keep their denormalized copies and are unaffected.
func (r *TemplateRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM task_templates WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTemplate(rows *sql.Rows) (model.TaskTemplate, error) {
	var (
		t        model.TaskTemplate
		statuses sql.NullString
	)
	err := rows.Scan(&t.ID, &t.Sequence, &t.Name, &t.PhaseID, &t.Phase,
		&t.UploadRequired, &t.UpdateFrequency, &statuses, &t.ApprovalRequired, &t.CreatedAt)
	if err != nil {
		return model.TaskTemplate{}, err
	}
	if statuses.Valid && statuses.String != "" {
		if err := json.Unmarshal([]byte(statuses.String), &t.AllowedStatuses); err != nil {
			return model.TaskTemplate{}, err
		}
	}
	return t, nil
}

func encodeStatuses(s []string) (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
