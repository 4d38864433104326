package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/project-workflow/internal/model"
)

// NotificationRepo manages persistence for in-app notifications.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Insert stores one notification row for a target user.
func (r *NotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	var link any
	if n.Link != "" {
		link = n.Link
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, type, title, message, link) VALUES (?,?,?,?,?)",
		n.UserID, n.Type, n.Title, n.Message, link)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// MarkRead sets the read flag on one notification, scoped to its owner so
// one user cannot dismiss another's notifications.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET `read`=1 WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadByUser returns a user's unread notifications, newest first.
func (r *NotificationRepo) UnreadByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, type, title, message, link, `read`, created_at FROM notifications WHERE user_id=? AND `read`=0 ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var (
			n    model.Notification
			link sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &link, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Link = link.String
		out = append(out, n)
	}
	return out, rows.Err()
}
