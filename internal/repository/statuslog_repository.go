package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/project-workflow/internal/model"
)

// StatusLogRepo manages the append-only task audit trail. There are no
// update or delete operations on purpose: an entry, once written, is
// immutable history.
type StatusLogRepo struct{ DB *sql.DB }

func NewStatusLogRepo(db *sql.DB) *StatusLogRepo { return &StatusLogRepo{DB: db} }

// Append inserts one log entry and assigns the generated id and timestamp
// back onto the model.
func (r *StatusLogRepo) Append(ctx context.Context, e *model.StatusLogEntry) error {
	var fileName, fileURL any
	if e.FileName != "" {
		fileName = e.FileName
	}
	if e.FileURL != "" {
		fileURL = e.FileURL
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO task_status_logs (task_id, project_id, type, status, comments, user_id, user_name, file_name, file_url) VALUES (?,?,?,?,?,?,?,?,?)",
		e.TaskID, e.ProjectID, e.Type, e.Status, e.Comments, e.UserID, e.UserName, fileName, fileURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM task_status_logs WHERE id=?", e.ID).Scan(&e.CreatedAt)
}

// ListByTask returns a task's full history, newest first. Entries sharing a
// timestamp have no defined order between them.
func (r *StatusLogRepo) ListByTask(ctx context.Context, taskID uint64) ([]model.StatusLogEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, task_id, project_id, type, status, comments, user_id, user_name, file_name, file_url, created_at
		   FROM task_status_logs WHERE task_id=? ORDER BY created_at DESC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StatusLogEntry
	for rows.Next() {
		var (
			e        model.StatusLogEntry
			fileName sql.NullString
			fileURL  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.TaskID, &e.ProjectID, &e.Type, &e.Status, &e.Comments,
			&e.UserID, &e.UserName, &fileName, &fileURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.FileName = fileName.String
		e.FileURL = fileURL.String
		out = append(out, e)
	}
	return out, rows.Err()
}
