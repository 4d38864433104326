package model

import "time"

// Completion statuses a task can carry.  The admin-defined allowed-status
// subsets on templates are a superset of this list, but the runtime status
// form only ever offers the first four; NotScheduled appears on tasks that
// were never started in a skipped phase.
const (
    StatusNotStarted      = "Not Started"
    StatusInProgress      = "In Progress"
    StatusPartialComplete = "Partial Complete"
    StatusComplete        = "Complete"
    StatusNotScheduled    = "Not Scheduled"
)

// RuntimeStatuses is the fixed set the status-update operation accepts.
var RuntimeStatuses = map[string]bool{
    StatusNotStarted:      true,
    StatusInProgress:      true,
    StatusPartialComplete: true,
    StatusComplete:        true,
}

// Project represents a row in the `projects` table.  A project's task set
// is fixed at creation by cloning every task template; afterwards tasks are
// only mutated in place, never re-seeded.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – project name.
//  StartDate    – planned start date.
//  EndDate      – planned end date.
//  Status       – free-form project status string ("Planning" on creation).
//  AssignedTo   – display name of the assigned project manager (denormalized).
//  Progress     – externally computed 0–100 value, defaulted to 0 when absent.
//  CurrentPhase – current phase name, defaulted to "Planning" when absent.
//  CreatedBy    – profile id of the creating user.
//  Tasks        – tasks cloned from templates at creation time.
//  CreatedAt    – timestamp of creation.
type Project struct {
    ID           uint64    // projects.id
    Name         string    // projects.name
    StartDate    time.Time // projects.start_date
    EndDate      time.Time // projects.end_date
    Status       string    // projects.status
    AssignedTo   string    // projects.assigned_to
    Progress     int       // projects.progress
    CurrentPhase string    // projects.current_phase
    CreatedBy    uint64    // projects.created_by
    Tasks        []Task    // project_tasks rows for this project
    CreatedAt    time.Time // projects.created_at
}

// Task represents a row in the `project_tasks` table.  Every task belongs
// to exactly one project and carries a denormalized copy of its template's
// sequence, phase name, upload flag and update frequency.
//
// Fields:
//  ID               – primary key identifier.
//  ProjectID        – owning project.
//  TemplateID       – template the task was cloned from (informational only).
//  Name             – task description.
//  Sequence         – fractional ordering value inherited from the template.
//  Phase            – phase name copied from the template at clone time.
//  CompletionStatus – one of the Status* constants.
//  UploadRequired   – whether a document upload is expected.
//  ReportType       – report classification shown on the task card.
//  UpdateFrequency  – recurring-update frequency (Freq* constants).
//  LastUpdated      – timestamp of the most recent status change.
//  NextUpdateDue    – computed next due timestamp for recurring tasks.
//  AssignedTo       – optional assignee display name.
//  StartDate        – optional planned start.
//  DueDate          – optional planned due date.
type Task struct {
    ID               uint64     // project_tasks.id
    ProjectID        uint64     // project_tasks.project_id
    TemplateID       uint64     // project_tasks.template_id
    Name             string     // project_tasks.name
    Sequence         float64    // project_tasks.sequence
    Phase            string     // project_tasks.phase
    CompletionStatus string     // project_tasks.completion_status
    UploadRequired   bool       // project_tasks.upload_required
    ReportType       string     // project_tasks.report_type
    UpdateFrequency  string     // project_tasks.update_frequency
    LastUpdated      time.Time  // project_tasks.last_updated
    NextUpdateDue    *time.Time // project_tasks.next_update_due (nullable)
    AssignedTo       string     // project_tasks.assigned_to (nullable)
    StartDate        *time.Time // project_tasks.start_date (nullable)
    DueDate          *time.Time // project_tasks.due_date (nullable)
}
