package model

import "time"

// Log entry types.  A file-upload entry keeps the task's current status; a
// combined status+file update is tagged as a file entry because the file
// evidence takes precedence in the audit record.
const (
    LogTypeStatus = "status"
    LogTypeFile   = "file"
)

// StatusLogEntry represents a row in the `task_status_logs` table.  The
// table is append-only: entries are never mutated or deleted, and a task's
// history is reconstructed by replaying the ordered log.
//
// Fields:
//  ID        – primary key identifier.
//  TaskID    – task the entry belongs to.
//  ProjectID – owning project, denormalized for project-level timelines.
//  Type      – LogTypeStatus or LogTypeFile.
//  Status    – completion status carried by the entry.
//  Comments  – free-text comment from the acting user.
//  UserID    – acting user's profile id.
//  UserName  – acting user's display name at the time of the entry.
//  FileName  – uploaded file name (file entries only).
//  FileURL   – public URL of the uploaded file (file entries only).
//  CreatedAt – timestamp of the entry; the timeline sorts newest first.
type StatusLogEntry struct {
    ID        uint64    // task_status_logs.id
    TaskID    uint64    // task_status_logs.task_id
    ProjectID uint64    // task_status_logs.project_id
    Type      string    // task_status_logs.type
    Status    string    // task_status_logs.status
    Comments  string    // task_status_logs.comments
    UserID    uint64    // task_status_logs.user_id
    UserName  string    // task_status_logs.user_name
    FileName  string    // task_status_logs.file_name (nullable)
    FileURL   string    // task_status_logs.file_url (nullable)
    CreatedAt time.Time // task_status_logs.created_at
}

// Document represents a row in the `project_documents` table: metadata for
// one uploaded file tied to a project and task.
//
// Fields:
//  ID         – primary key identifier.
//  ProjectID  – owning project.
//  TaskID     – task the upload belongs to.
//  FileName   – original file name as uploaded.
//  FileURL    – publicly resolvable URL returned by the object store.
//  UploadedBy – uploading user's profile id.
//  Version    – optional version number (zero when unset).
//  CreatedAt  – timestamp of the upload.
type Document struct {
    ID         uint64    // project_documents.id
    ProjectID  uint64    // project_documents.project_id
    TaskID     uint64    // project_documents.task_id
    FileName   string    // project_documents.file_name
    FileURL    string    // project_documents.file_url
    UploadedBy uint64    // project_documents.uploaded_by
    Version    int       // project_documents.version (nullable)
    CreatedAt  time.Time // project_documents.created_at
}

// Notification represents a row in the `notifications` table.  Email
// delivery is best-effort and separate; the row is the source of truth for
// the in-app notification center.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – addressee's profile id.
//  Type      – notification category (e.g. "status_change", "file_upload").
//  Title     – short headline.
//  Message   – body text.
//  Link      – optional deep link into the app.
//  Read      – read/unread flag.
//  CreatedAt – timestamp of creation; unread fetch sorts newest first.
type Notification struct {
    ID        uint64    // notifications.id
    UserID    uint64    // notifications.user_id
    Type      string    // notifications.type
    Title     string    // notifications.title
    Message   string    // notifications.message
    Link      string    // notifications.link (nullable)
    Read      bool      // notifications.read
    CreatedAt time.Time // notifications.created_at
}
