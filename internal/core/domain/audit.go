package domain

import "time"

// AuditAction names a content mutation recorded in the audit trail.
type AuditAction string

const (
	AuditCreated  AuditAction = "created"
	AuditUpdated  AuditAction = "updated"
	AuditDeleted  AuditAction = "deleted"
	AuditPinned   AuditAction = "pinned"
	AuditUnpinned AuditAction = "unpinned"
)

// AuditEvent records who did what to which content item.
type AuditEvent struct {
	ContentID string
	Kind      ContentKind
	Action    AuditAction
	ActorID   string
	ActorRole Role
	Timestamp time.Time
}
