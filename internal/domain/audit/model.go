package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one row of the access/audit trail: who did what to which
// resource, when, from where, and with what outcome.
type Entry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	UserRole     string    `db:"user_role" json:"user_role"`
	Action       string    `db:"action" json:"action"`
	Resource     string    `db:"resource" json:"resource"`
	ResourceID   *string   `db:"resource_id" json:"resource_id,omitempty"`
	Details      *string   `db:"details" json:"details,omitempty"`
	Status       string    `db:"status" json:"status"`
	ErrorMessage *string   `db:"error_message" json:"error_message,omitempty"`
	IPAddress    string    `db:"ip_address" json:"ip_address"`
	UserAgent    string    `db:"user_agent" json:"user_agent"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Filter narrows audit trail reads. Zero-valued fields are ignored.
type Filter struct {
	UserID    string
	Action    string
	Resource  string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}
