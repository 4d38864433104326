package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/project-workflow/internal/model"
)

// DocumentRepo manages metadata for uploaded project documents. The files
// themselves live in the object store; rows here only carry names and URLs.
type DocumentRepo struct{ DB *sql.DB }

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{DB: db} }

// Insert stores one document row and assigns the generated id back.
func (r *DocumentRepo) Insert(ctx context.Context, d *model.Document) error {
	var version any
	if d.Version > 0 {
		version = d.Version
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO project_documents (project_id, task_id, file_name, file_url, uploaded_by, version) VALUES (?,?,?,?,?,?)",
		d.ProjectID, d.TaskID, d.FileName, d.FileURL, d.UploadedBy, version)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// ListByTask returns a task's documents, newest first.
func (r *DocumentRepo) ListByTask(ctx context.Context, taskID uint64) ([]model.Document, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, project_id, task_id, file_name, file_url, uploaded_by, version, created_at
		   FROM project_documents WHERE task_id=? ORDER BY created_at DESC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		var (
			d       model.Document
			version sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.TaskID, &d.FileName, &d.FileURL,
			&d.UploadedBy, &version, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Version = int(version.Int64)
		out = append(out, d)
	}
	return out, rows.Err()
}
