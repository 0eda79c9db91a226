package http

import (
	"github.com/mrlokans/phrasebook/internal/auth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Entries  EntryService
	Syncer   Syncer
	Database Pinger
	Index    IndexSizer

	// Audit log (optional)
	AuditEvents AuditReader

	// Task queue (optional)
	TaskQueue          TaskQueue
	AuditRetentionDays int

	// Device identification; when nil every request is anonymous
	AuthMiddleware *auth.Middleware

	// Send HSTS on HTTPS requests
	EnableHSTS bool

	// Application info
	Version string
}
