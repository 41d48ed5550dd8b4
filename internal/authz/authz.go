// Package authz decides whether an acting identity holds the "manage"
// capability for a given event. Managing an event covers issuing tickets
// for its registrants and validating scanned tickets at check-in.
//
// The decision is built from an ordered list of grant strategies that are
// tried in turn, stopping at the first success. Today there are two: an
// elevated-role grant (admins manage everything) and an ownership grant
// (the event's organizer manages their own event). Further grant types,
// such as delegated co-organizers, slot in as additional strategies
// without touching callers.
package authz

import (
	"context"

	"github.com/iliyamo/event-ticketing/internal/repository"
)

// Role values stored in users.role and carried in JWT role claims.
const (
	RoleAdmin     = "ADMIN"
	RoleOrganizer = "ORGANIZER"
	RoleAttendee  = "ATTENDEE"
)

// Actor is the authenticated identity attempting an operation, as
// reconstructed from the request's access token. A nil *Actor means the
// request is anonymous.
type Actor struct {
	ID   uint64
	Role string // role claim asserted by the access token
	Name string
}

// UserDirectory is the privileged role lookup. It may be unavailable in
// some deployments; the oracle degrades to "no grant from this path" when
// it fails.
type UserDirectory interface {
	GetByID(ctx context.Context, id uint64) (repository.User, error)
}

// EventReader resolves events by slug for the ownership grant.
type EventReader interface {
	GetBySlug(ctx context.Context, slug string) (*repository.Event, error)
}

// grant is one way an actor can obtain the manage capability.
type grant interface {
	allows(ctx context.Context, actor *Actor, eventSlug string) bool
}

// Oracle evaluates the manage capability. It performs reads only and never
// caches across requests, so results stay correct when roles or ownership
// change between calls.
type Oracle struct {
	grants []grant
}

// NewOracle builds the oracle with the standard grant order: elevated role
// first, event ownership second.
func NewOracle(users UserDirectory, events EventReader) *Oracle {
	return &Oracle{grants: []grant{
		adminGrant{users: users},
		ownerGrant{events: events},
	}}
}

// CanManage reports whether the actor may issue or validate tickets for the
// event identified by slug. Anonymous actors never hold the capability.
// Every failure inside a grant strategy counts as "no grant", so the oracle
// fails closed: a broken lookup path can only withhold access, never
// create it.
func (o *Oracle) CanManage(ctx context.Context, actor *Actor, eventSlug string) bool {
	if actor == nil {
		return false
	}
	for _, g := range o.grants {
		if g.allows(ctx, actor, eventSlug) {
			return true
		}
	}
	return false
}

// adminGrant checks the elevated role from two sources: the role asserted
// by the access token itself and, failing that, the role stored on the
// user row. The directory lookup is a privileged call that may be down;
// its errors are swallowed so evaluation falls through to the next grant.
type adminGrant struct {
	users UserDirectory
}

func (g adminGrant) allows(ctx context.Context, actor *Actor, _ string) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	if g.users == nil {
		return false
	}
	u, err := g.users.GetByID(ctx, actor.ID)
	if err != nil {
		// Includes ErrUserNotFound and transport failures alike: no grant
		// from this path.
		return false
	}
	return u.Role == RoleAdmin
}

// ownerGrant matches the actor against the event's organizer. An absent
// event row is a "no grant" outcome, not an error.
type ownerGrant struct {
	events EventReader
}

func (g ownerGrant) allows(ctx context.Context, actor *Actor, eventSlug string) bool {
	if g.events == nil || eventSlug == "" {
		return false
	}
	e, err := g.events.GetBySlug(ctx, eventSlug)
	if err != nil {
		// Covers an absent event row and an unreachable store alike.
		return false
	}
	return e.OrganizerID == actor.ID
}
