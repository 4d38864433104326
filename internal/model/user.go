package model

import "time"

// Role names resolved from the identity provider's group membership.  The
// set is closed: every signed-in user is exactly one of these two.
const (
    RoleProjectManager    = "project_manager"
    RoleOperationsManager = "operations_manager"
)

// OperationsManagerGroup is the identity-provider group whose presence in a
// user's membership list grants the operations_manager role.
const OperationsManagerGroup = "Project_Workflow_Operations_Manager"

// UserProfile represents a row in the `user_profiles` table.  Profiles are
// created and refreshed on sign-in from the identity provider's current
// claims; Role is always overwritten from group membership and is never a
// direct mutation target.
//
// Fields:
//  ID          – primary key identifier of the profile.
//  ExternalID  – stable id of the federated account at the identity provider.
//  Email       – email address from the provider account.
//  DisplayName – display name from the provider account.
//  Role        – resolved role (project_manager or operations_manager).
//  CreatedAt   – timestamp of profile creation.
//  LastLogin   – timestamp of the most recent sign-in.
type UserProfile struct {
    ID          uint64    // user_profiles.id
    ExternalID  string    // user_profiles.external_id
    Email       string    // user_profiles.email
    DisplayName string    // user_profiles.display_name
    Role        string    // user_profiles.role
    CreatedAt   time.Time // user_profiles.created_at
    LastLogin   time.Time // user_profiles.last_login
}

// RoleChange models an entry in the `user_role_history` table.  A row is
// appended whenever a sign-in resolves a role that differs from the stored
// one; an unchanged membership set appends nothing.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – profile whose role changed.
//  PreviousRole – role stored before the sign-in.
//  NewRole      – role resolved from the current membership set.
//  Reason       – why the role changed (always a membership update today).
//  CreatedAt    – timestamp of the change.
type RoleChange struct {
    ID           uint64    // user_role_history.id
    UserID       uint64    // user_role_history.user_id
    PreviousRole string    // user_role_history.previous_role
    NewRole      string    // user_role_history.new_role
    Reason       string    // user_role_history.reason
    CreatedAt    time.Time // user_role_history.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each refresh
// token belongs to a user and contains metadata for expiry and revocation.
// The plain token is not stored; only its SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
