// Package queue defines the audit event payloads exchanged over RabbitMQ and
// the consumer that writes them to the audit log.
package queue

import "time"

// AuditQueue is the durable queue carrying every audit event.
const AuditQueue = "mcd.audit"

// Event types.
const (
	EventLogin      = "login"
	EventLogout     = "logout"
	EventPossession = "possession"
	EventAttendance = "attendance"
)

// SessionEvent is published when a user logs in or out.  It carries no
// token material.
type SessionEvent struct {
	Type     string `json:"type"`
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	At       string `json:"at"`
}

// CollectionEvent is published when a user records a possession or an
// attended performance.
type CollectionEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
	At         string `json:"at"`
}

// NewSessionEvent stamps a session event with the current UTC time.
func NewSessionEvent(typ string, userID uint64, username string) SessionEvent {
	return SessionEvent{Type: typ, UserID: userID, Username: username, At: stamp()}
}

// NewCollectionEvent stamps a collection event with the current UTC time.
func NewCollectionEvent(typ string, userID uint64, entityType string, entityID uint64) CollectionEvent {
	return CollectionEvent{Type: typ, UserID: userID, EntityType: entityType, EntityID: entityID, At: stamp()}
}

func stamp() string { return time.Now().UTC().Format(time.RFC3339) }
