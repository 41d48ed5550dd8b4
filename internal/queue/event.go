// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketIssuedEvent is published after a ticket artifact has been stored
// successfully. It carries enough information for downstream consumers to
// log, notify, or trigger mailers without querying the primary database.
type TicketIssuedEvent struct {
	RegistrantID uint64 `json:"registrant_id"`
	EventID      uint64 `json:"event_id"`
	EventSlug    string `json:"event_slug"`
	GuestName    string `json:"guest_name"`
	TicketURL    string `json:"ticket_url"`
	IssuedAt     string `json:"issued_at"`
}
