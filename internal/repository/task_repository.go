package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/project-workflow/internal/model"
)

// TaskRepo manages persistence for the tasks generated under projects.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

// GetByID fetches a single task.
func (r *TaskRepo) GetByID(ctx context.Context, id uint64) (model.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, project_id, template_id, name, sequence, phase, completion_status,
		        upload_required, report_type, update_frequency, last_updated, next_update_due,
		        assigned_to, start_date, due_date
		   FROM project_tasks WHERE id=? LIMIT 1`, id)
	if err != nil {
		return model.Task{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.Task{}, err
		}
		return model.Task{}, ErrNotFound
	}
	return scanTask(rows)
}

// UpdateStatus persists a new completion status onto the task row together
// with the refreshed last_updated and, for recurring tasks, next_update_due
// timestamps. The matching status-log entry is written separately by the
// caller before this update; the two writes are deliberately not atomic.
func (r *TaskRepo) UpdateStatus(ctx context.Context, id uint64, status string, lastUpdated time.Time, nextDue *time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE project_tasks SET completion_status=?, last_updated=?, next_update_due=? WHERE id=?",
		status, lastUpdated, nextDue, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAssignment rewrites the optional planning fields on a task.
func (r *TaskRepo) UpdateAssignment(ctx context.Context, id uint64, assignedTo string, startDate, dueDate *time.Time) error {
	var assigned any
	if assignedTo != "" {
		assigned = assignedTo
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE project_tasks SET assigned_to=?, start_date=?, due_date=? WHERE id=?",
		assigned, startDate, dueDate, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
