package model

import "time"

// Update frequencies accepted on task templates.  Anything outside this set
// (including Once) produces no recurring due date.
const (
    FreqOnce       = "Once"
    FreqDaily      = "Daily"
    FreqWeekly     = "Weekly"
    FreqBiWeekly   = "Bi-Weekly"
    FreqMonthly    = "Monthly"
    FreqQuarterly  = "Quarterly"
    FreqSemiAnnual = "Semi-Annual"
    FreqAnnual     = "Annual"
)

// ProjectPhase represents a row in the `project_phases` table.  Sequence
// drives display and task-grouping order only; the data layer does not
// enforce that sequences are unique or contiguous.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – phase label shown in the UI and denormalized onto tasks.
//  Sequence    – ordering number (1-step convention, not enforced).
//  Description – free-text description of the phase.
//  CreatedAt   – timestamp of creation.
type ProjectPhase struct {
    ID          uint64    // project_phases.id
    Name        string    // project_phases.name
    Sequence    int       // project_phases.sequence
    Description string    // project_phases.description
    CreatedAt   time.Time // project_phases.created_at
}

// TaskTemplate represents a row in the `task_templates` table.  Templates
// are cloned into project tasks at project creation; tasks keep a
// denormalized copy of the phase name, so deleting a template or phase
// never touches already-cloned tasks.
//
// The fractional Sequence allows inserting a template between two existing
// ones (the admin UI suggests max+0.01 as a default, nothing is enforced).
// AllowedStatuses and ApprovalRequired are captured by the admin form but
// the runtime status-update path does not consult them.
//
// Fields:
//  ID               – primary key identifier.
//  Sequence         – fractional ordering value.
//  Name             – task description cloned onto generated tasks.
//  PhaseID          – foreign key into project_phases.
//  Phase            – phase name resolved via join (not a column).
//  UploadRequired   – whether generated tasks require a document upload.
//  UpdateFrequency  – one of the Freq* constants.
//  AllowedStatuses  – optional admin-defined status subset (JSON column).
//  ApprovalRequired – optional flag captured for generated tasks.
//  CreatedAt        – timestamp of creation.
type TaskTemplate struct {
    ID               uint64    // task_templates.id
    Sequence         float64   // task_templates.sequence
    Name             string    // task_templates.name
    PhaseID          uint64    // task_templates.phase_id
    Phase            string    // project_phases.name via join
    UploadRequired   bool      // task_templates.upload_required
    UpdateFrequency  string    // task_templates.update_frequency
    AllowedStatuses  []string  // task_templates.allowed_statuses (JSON, nullable)
    ApprovalRequired bool      // task_templates.approval_required
    CreatedAt        time.Time // task_templates.created_at
}
