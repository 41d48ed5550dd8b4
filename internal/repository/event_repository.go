// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Event model and repository methods. An Event is
// identified publicly by its slug and internally by its auto-increment ID;
// both identifiers end up inside issued ticket tokens, and the validation
// path cross-checks them against each other.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Event represents an event row. Each event has exactly one organizer and a
// globally unique slug. Issuance and validation never mutate event rows.
type Event struct {
	ID          uint64 // ID is the stable internal key embedded in tokens
	Slug        string // Slug is the unique human-readable identifier
	OrganizerID uint64 // OrganizerID references users.id of the event organizer
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ErrEventNotFound is returned when no event row matches the lookup.
var ErrEventNotFound = errors.New("event not found")

// ErrSlugExists is returned when creating an event with a slug that is
// already taken.
var ErrSlugExists = errors.New("event slug already exists")

// EventRepo encapsulates all database queries related to events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the provided DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create inserts a new event. On success the event's ID, CreatedAt and
// UpdatedAt fields are populated from the stored row.
func (r *EventRepo) Create(ctx context.Context, e *Event) error {
	const qInsert = "INSERT INTO events (slug, organizer_id, title, description) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, e.Slug, e.OrganizerID, e.Title, e.Description)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)

	const qSelect = "SELECT slug, organizer_id, title, description, created_at, updated_at FROM events WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, e.ID).
		Scan(&e.Slug, &e.OrganizerID, &e.Title, &e.Description, &e.CreatedAt, &e.UpdatedAt)
}

// GetBySlug fetches an event by its slug. It returns ErrEventNotFound when
// no row exists; the authorization layer treats that as "no grant", not as
// a failure.
func (r *EventRepo) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	const q = "SELECT id, slug, organizer_id, title, description, created_at, updated_at FROM events WHERE slug = ?"
	var e Event
	if err := r.db.QueryRowContext(ctx, q, slug).
		Scan(&e.ID, &e.Slug, &e.OrganizerID, &e.Title, &e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListByOrganizer returns all events belonging to one organizer ordered by id.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]*Event, error) {
	const q = `SELECT id, slug, organizer_id, title, description, created_at, updated_at
	           FROM events WHERE organizer_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e := new(Event)
		if err := rows.Scan(&e.ID, &e.Slug, &e.OrganizerID, &e.Title, &e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
