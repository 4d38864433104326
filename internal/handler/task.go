package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/project-workflow/internal/model"
	"github.com/iliyamo/project-workflow/internal/queue"
	"github.com/iliyamo/project-workflow/internal/repository"
	"github.com/iliyamo/project-workflow/internal/schedule"
)

// TaskStore reads and mutates task rows.
type TaskStore interface {
	GetByID(ctx context.Context, id uint64) (model.Task, error)
	UpdateStatus(ctx context.Context, id uint64, status string, lastUpdated time.Time, nextDue *time.Time) error
	UpdateAssignment(ctx context.Context, id uint64, assignedTo string, startDate, dueDate *time.Time) error
}

// LogStore owns the append-only task audit trail.
type LogStore interface {
	Append(ctx context.Context, e *model.StatusLogEntry) error
	ListByTask(ctx context.Context, taskID uint64) ([]model.StatusLogEntry, error)
}

// DocumentStore persists uploaded document metadata.
type DocumentStore interface {
	Insert(ctx context.Context, d *model.Document) error
	ListByTask(ctx context.Context, taskID uint64) ([]model.Document, error)
}

// ObjectStore stores uploaded files and hands back public URLs.
type ObjectStore interface {
	Save(projectID, taskID uint64, fileName string, r io.Reader) (string, error)
}

// ProjectMetaReader supplies the project context a notification needs.
type ProjectMetaReader interface {
	Meta(ctx context.Context, id uint64) (name string, createdBy uint64, err error)
}

// NotificationWriter inserts in-app notification rows.
type NotificationWriter interface {
	Insert(ctx context.Context, n *model.Notification) error
}

// TaskHandler owns the task lifecycle: status transitions, document
// uploads and the combined update, each of which appends to the audit log.
//
// The multi-step writes here are deliberately not transactional, matching
// how the workflow has always behaved: the log entry is written first and
// the task row second, so a failure in between leaves a logged status with
// an unchanged task row. Completed sub-steps (a stored file, an inserted
// document row) are never rolled back.
type TaskHandler struct {
	Tasks         TaskStore
	Logs          LogStore
	Documents     DocumentStore
	Store         ObjectStore
	Projects      ProjectMetaReader
	Users         ProfileReader
	Notifications NotificationWriter
	Publish       func(ctx context.Context, ev queue.TaskEvent) error
}

func NewTaskHandler(tasks TaskStore, logs LogStore, docs DocumentStore, store ObjectStore,
	projects ProjectMetaReader, users ProfileReader, notifications NotificationWriter,
	publish func(ctx context.Context, ev queue.TaskEvent) error) *TaskHandler {
	return &TaskHandler{
		Tasks: tasks, Logs: logs, Documents: docs, Store: store,
		Projects: projects, Users: users, Notifications: notifications, Publish: publish,
	}
}

// ----- DTOs -----

type statusUpdateReq struct {
	Status   string `json:"status"`
	Comments string `json:"comments"`
}

type logResp struct {
	ID        uint64    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Comments  string    `json:"comments"`
	UserName  string    `json:"userName"`
	FileName  string    `json:"fileName,omitempty"`
	FileURL   string    `json:"fileUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type documentResp struct {
	ID        uint64    `json:"id"`
	FileName  string    `json:"fileName"`
	FileURL   string    `json:"fileUrl"`
	Version   int       `json:"version,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func logView(e model.StatusLogEntry) logResp {
	return logResp{
		ID: e.ID, Type: e.Type, Status: e.Status, Comments: e.Comments,
		UserName: e.UserName, FileName: e.FileName, FileURL: e.FileURL, CreatedAt: e.CreatedAt,
	}
}

// UpdateStatus applies a status transition: an audit entry is appended
// first, then the task row is updated with the new status, the refreshed
// last-updated timestamp and, for recurring tasks, the next due date.
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.RuntimeStatuses[req.Status] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	task, profile, errResp := h.loadActor(ctx, c, taskID, uid)
	if errResp != nil {
		return errResp
	}

	entry := model.StatusLogEntry{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		Type:      model.LogTypeStatus,
		Status:    req.Status,
		Comments:  req.Comments,
		UserID:    profile.ID,
		UserName:  profile.DisplayName,
	}
	if err := h.Logs.Append(ctx, &entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record status failed"})
	}

	now := time.Now().UTC()
	if err := h.Tasks.UpdateStatus(ctx, task.ID, req.Status, now, nextDueFor(task.UpdateFrequency, now)); err != nil {
		// The audit entry above is already committed; see the type comment.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update task failed"})
	}

	h.notify(ctx, task, profile, queue.TaskEvent{
		Type:     queue.EventStatusChange,
		Status:   req.Status,
		Comments: req.Comments,
	})
	return c.JSON(http.StatusOK, echo.Map{"log": logView(entry), "status": req.Status})
}

// UploadDocument stores a file for a task without changing its status: the
// object store persists the bytes, a document row records the metadata and
// a "file" audit entry carries the task's current status together with the
// file name and URL.
func (h *TaskHandler) UploadDocument(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	task, profile, errResp := h.loadActor(ctx, c, taskID, uid)
	if errResp != nil {
		return errResp
	}

	doc, errResp := h.storeFile(ctx, c, task, profile, fh)
	if errResp != nil {
		return errResp
	}

	entry := model.StatusLogEntry{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		Type:      model.LogTypeFile,
		Status:    task.CompletionStatus, // uploading does not change status
		Comments:  fmt.Sprintf("File uploaded: %s", doc.FileName),
		UserID:    profile.ID,
		UserName:  profile.DisplayName,
		FileName:  doc.FileName,
		FileURL:   doc.FileURL,
	}
	if err := h.Logs.Append(ctx, &entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record upload failed"})
	}

	h.notify(ctx, task, profile, queue.TaskEvent{
		Type:     queue.EventFileUpload,
		Status:   task.CompletionStatus,
		FileName: doc.FileName,
		FileURL:  doc.FileURL,
	})
	return c.JSON(http.StatusCreated, echo.Map{
		"document": documentResp{ID: doc.ID, FileName: doc.FileName, FileURL: doc.FileURL, Version: doc.Version, CreatedAt: doc.CreatedAt},
		"log":      logView(entry),
	})
}

// CombinedUpdate applies a status change that may carry a file. Unlike two
// separate calls, this writes ONE audit entry: when a file is present the
// entry is tagged "file" even though the status also changed, because the
// file evidence takes precedence in the audit record.
func (h *TaskHandler) CombinedUpdate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	status := c.FormValue("status")
	comments := c.FormValue("comments")
	if !model.RuntimeStatuses[status] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	task, profile, errResp := h.loadActor(ctx, c, taskID, uid)
	if errResp != nil {
		return errResp
	}

	entry := model.StatusLogEntry{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		Type:      model.LogTypeStatus,
		Status:    status,
		Comments:  comments,
		UserID:    profile.ID,
		UserName:  profile.DisplayName,
	}
	event := queue.TaskEvent{Type: queue.EventStatusChange, Status: status, Comments: comments}

	// Upload happens first; a failure here aborts before anything is logged.
	if fh, err := c.FormFile("file"); err == nil {
		doc, errResp := h.storeFile(ctx, c, task, profile, fh)
		if errResp != nil {
			return errResp
		}
		entry.Type = model.LogTypeFile
		entry.FileName = doc.FileName
		entry.FileURL = doc.FileURL
		event.Type = queue.EventFileUpload
		event.FileName = doc.FileName
		event.FileURL = doc.FileURL
	}

	if err := h.Logs.Append(ctx, &entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record update failed"})
	}

	now := time.Now().UTC()
	if err := h.Tasks.UpdateStatus(ctx, task.ID, status, now, nextDueFor(task.UpdateFrequency, now)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update task failed"})
	}

	h.notify(ctx, task, profile, event)
	return c.JSON(http.StatusOK, echo.Map{"log": logView(entry), "status": status})
}

type assignReq struct {
	AssignedTo string `json:"assignedTo"`
	StartDate  string `json:"startDate"` // YYYY-MM-DD, empty clears
	DueDate    string `json:"dueDate"`   // YYYY-MM-DD, empty clears
}

// Assign rewrites a task's planning fields: assignee display name and the
// optional start/due dates. Unlike status changes this is not an audited
// event; assignment is planning metadata, not workflow history.
func (h *TaskHandler) Assign(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid startDate"})
	}
	due, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dueDate"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tasks.UpdateAssignment(ctx, taskID, strings.TrimSpace(req.AssignedTo), start, due); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update assignment failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListLogs returns a task's full audit trail, newest first. Entries that
// share a timestamp have no defined relative order.
func (h *TaskHandler) ListLogs(c echo.Context) error {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Logs.ListByTask(ctx, taskID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load history failed"})
	}
	out := make([]logResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, logView(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"logs": out})
}

// ListDocuments returns a task's uploaded documents, newest first.
func (h *TaskHandler) ListDocuments(c echo.Context) error {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	docs, err := h.Documents.ListByTask(ctx, taskID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load documents failed"})
	}
	out := make([]documentResp, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResp{ID: d.ID, FileName: d.FileName, FileURL: d.FileURL, Version: d.Version, CreatedAt: d.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"documents": out})
}

// loadActor fetches the task and the acting user's profile, translating
// lookup failures into the right HTTP responses.
func (h *TaskHandler) loadActor(ctx context.Context, c echo.Context, taskID, uid uint64) (model.Task, model.UserProfile, error) {
	task, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Task{}, model.UserProfile{}, c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return model.Task{}, model.UserProfile{}, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load task failed"})
	}
	profile, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return model.Task{}, model.UserProfile{}, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return task, profile, nil
}

// storeFile streams the upload into the object store and inserts the
// document row. A stored file whose row insert fails is not removed.
func (h *TaskHandler) storeFile(ctx context.Context, c echo.Context, task model.Task, profile model.UserProfile, fh *multipart.FileHeader) (model.Document, error) {
	src, err := fh.Open()
	if err != nil {
		return model.Document{}, c.JSON(http.StatusBadRequest, echo.Map{"error": "read file failed"})
	}
	defer src.Close()

	url, err := h.Store.Save(task.ProjectID, task.ID, fh.Filename, src)
	if err != nil {
		return model.Document{}, c.JSON(http.StatusInternalServerError, echo.Map{"error": "store file failed"})
	}

	doc := model.Document{
		ProjectID:  task.ProjectID,
		TaskID:     task.ID,
		FileName:   fh.Filename,
		FileURL:    url,
		UploadedBy: profile.ID,
	}
	if err := h.Documents.Insert(ctx, &doc); err != nil {
		return model.Document{}, c.JSON(http.StatusInternalServerError, echo.Map{"error": "save document failed"})
	}
	return doc, nil
}

// notify is entirely best-effort: a notification row is written for the
// project's creator when someone else acted on their task, and the event
// is published for the email consumer. Failures are logged, never surfaced
// — notifications must not fail a completed update.
func (h *TaskHandler) notify(ctx context.Context, task model.Task, actor model.UserProfile, ev queue.TaskEvent) {
	ev.TaskID = task.ID
	ev.TaskName = task.Name
	ev.ProjectID = task.ProjectID
	ev.ActorName = actor.DisplayName
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)

	projectName, creatorID, err := h.Projects.Meta(ctx, task.ProjectID)
	if err != nil {
		log.Printf("notify: load project %d failed: %v", task.ProjectID, err)
	} else {
		ev.ProjectName = projectName
		if creatorID != actor.ID {
			title := fmt.Sprintf("Task update: %s", task.Name)
			message := fmt.Sprintf("%s set %q to %q", actor.DisplayName, task.Name, ev.Status)
			if ev.Type == queue.EventFileUpload {
				title = fmt.Sprintf("Document uploaded: %s", task.Name)
				message = fmt.Sprintf("%s uploaded %q to %q", actor.DisplayName, ev.FileName, task.Name)
			}
			n := model.Notification{
				UserID:  creatorID,
				Type:    ev.Type,
				Title:   title,
				Message: message,
				Link:    fmt.Sprintf("/projects/%d/tasks/%d", task.ProjectID, task.ID),
			}
			if err := h.Notifications.Insert(ctx, &n); err != nil {
				log.Printf("notify: insert notification failed: %v", err)
			}
			if creator, err := h.Users.GetByID(ctx, creatorID); err == nil {
				ev.RecipientEmail = creator.Email
			}
		}
	}

	if h.Publish != nil {
		_ = h.Publish(ctx, ev) // publisher logs its own failures
	}
}

// nextDueFor returns a pointer to the next due timestamp for recurring
// frequencies and nil for Once/unknown, which the task row stores as NULL.
func nextDueFor(frequency string, from time.Time) *time.Time {
	due := schedule.NextDue(frequency, from)
	if due.Equal(from) {
		return nil
	}
	return &due
}
