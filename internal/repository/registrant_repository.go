// This file defines the Registrant model and repository. A registrant binds
// one user to one event; the denormalized name and email are what issued
// tickets carry, so a registrant without profile data cannot receive one.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Registrant represents a user's registration for a single event. The
// EventID foreign key is the fact the ticket validator cross-checks
// against the event id embedded in a scanned token.
type Registrant struct {
	ID           uint64
	EventID      uint64
	UserID       uint64
	Name         string // denormalized from users.full_name at registration time
	Email        string
	IsRegistered bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrRegistrantNotFound is returned when no registrant row matches the lookup.
var ErrRegistrantNotFound = errors.New("registrant not found")

// ErrAlreadyRegistered is returned when the (event, user) pair already has a row.
var ErrAlreadyRegistered = errors.New("already registered for this event")

// RegistrantRepo encapsulates all database queries related to registrants.
type RegistrantRepo struct {
	db *sql.DB
}

// NewRegistrantRepo constructs a RegistrantRepo with the provided DB handle.
func NewRegistrantRepo(db *sql.DB) *RegistrantRepo {
	return &RegistrantRepo{db: db}
}

// Create inserts a registration row. The (event_id, user_id) pair is unique
// in the schema, so double registration surfaces as ErrAlreadyRegistered.
func (r *RegistrantRepo) Create(ctx context.Context, reg *Registrant) error {
	const qInsert = "INSERT INTO registrants (event_id, user_id, name, email, is_registered) VALUES (?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, reg.EventID, reg.UserID, reg.Name, reg.Email, reg.IsRegistered)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrAlreadyRegistered
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = uint64(id)

	const qSelect = "SELECT event_id, user_id, name, email, is_registered, created_at, updated_at FROM registrants WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, reg.ID).
		Scan(&reg.EventID, &reg.UserID, &reg.Name, &reg.Email, &reg.IsRegistered, &reg.CreatedAt, &reg.UpdatedAt)
}

// GetByID fetches a registrant by id. Returns ErrRegistrantNotFound when
// absent; the validator reports that as a normal negative verdict.
func (r *RegistrantRepo) GetByID(ctx context.Context, id uint64) (Registrant, error) {
	const q = "SELECT id, event_id, user_id, name, email, is_registered, created_at, updated_at FROM registrants WHERE id = ?"
	var reg Registrant
	if err := r.db.QueryRowContext(ctx, q, id).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Name, &reg.Email, &reg.IsRegistered, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Registrant{}, ErrRegistrantNotFound
		}
		return Registrant{}, err
	}
	return reg, nil
}

// GetByEventAndUser fetches the registration of one user for one event.
func (r *RegistrantRepo) GetByEventAndUser(ctx context.Context, eventID, userID uint64) (Registrant, error) {
	const q = "SELECT id, event_id, user_id, name, email, is_registered, created_at, updated_at FROM registrants WHERE event_id = ? AND user_id = ?"
	var reg Registrant
	if err := r.db.QueryRowContext(ctx, q, eventID, userID).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Name, &reg.Email, &reg.IsRegistered, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Registrant{}, ErrRegistrantNotFound
		}
		return Registrant{}, err
	}
	return reg, nil
}

// ListRegisteredByEvent returns all registrants of an event whose
// is_registered flag is set, ordered by id. Bulk issuance feeds on this.
func (r *RegistrantRepo) ListRegisteredByEvent(ctx context.Context, eventID uint64) ([]Registrant, error) {
	const q = `SELECT id, event_id, user_id, name, email, is_registered, created_at, updated_at
	           FROM registrants WHERE event_id = ? AND is_registered = 1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Registrant
	for rows.Next() {
		var reg Registrant
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Name, &reg.Email, &reg.IsRegistered, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
