package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/project-workflow/internal/model"
)

// PhaseRepo manages persistence for project phases.
type PhaseRepo struct{ DB *sql.DB }

func NewPhaseRepo(db *sql.DB) *PhaseRepo { return &PhaseRepo{DB: db} }

// Create inserts a phase and assigns the generated id back onto the model.
// Sequence is caller-supplied; the data layer does not enforce uniqueness
// or monotonicity.
func (r *PhaseRepo) Create(ctx context.Context, p *model.ProjectPhase) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO project_phases (name, sequence, description) VALUES (?,?,?)",
		p.Name, p.Sequence, p.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// List returns all phases ordered by sequence.
func (r *PhaseRepo) List(ctx context.Context) ([]model.ProjectPhase, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,sequence,description,created_at FROM project_phases ORDER BY sequence")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProjectPhase
	for rows.Next() {
		var p model.ProjectPhase
		if err := rows.Scan(&p.ID, &p.Name, &p.Sequence, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites a phase's editable fields.
func (r *PhaseRepo) Update(ctx context.Context, p *model.ProjectPhase) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE project_phases SET name=?, sequence=?, description=? WHERE id=?",
		p.Name, p.Sequence, p.Description, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a phase unconditionally. No referential check blocks
// deleting a phase still named by templates or cloned tasks; those keep
// their denormalized copy of the name.
func (r *PhaseRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM project_phases WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
