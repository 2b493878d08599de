package domain

import "time"

// AuditLog represents one recorded governance action.
type AuditLog struct {
	ID        string
	TeamID    string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
