// Package queue defines message payloads exchanged over the message broker.
package queue

// TaskEvent is published whenever a task's status changes or a document is
// uploaded. It carries enough context for downstream consumers to write
// notification rows, send email, or feed analytics without querying the
// primary database.
type TaskEvent struct {
	Type           string `json:"type"` // "status_change" or "file_upload"
	TaskID         uint64 `json:"task_id"`
	TaskName       string `json:"task_name"`
	ProjectID      uint64 `json:"project_id"`
	ProjectName    string `json:"project_name"`
	Status         string `json:"status"`
	Comments       string `json:"comments"`
	FileName       string `json:"file_name,omitempty"`
	FileURL        string `json:"file_url,omitempty"`
	ActorName      string `json:"actor_name"`
	RecipientEmail string `json:"recipient_email,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}

// Event types carried in TaskEvent.Type.
const (
	EventStatusChange = "status_change"
	EventFileUpload   = "file_upload"
)
