package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/iliyamo/event-ticketing/internal/authz"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/ticket"
)

// RegistrantSource looks up registrants for the existence and cross-check
// gates.
type RegistrantSource interface {
	GetByID(ctx context.Context, id uint64) (repository.Registrant, error)
}

// Verdict is the outcome of a validation attempt. Denied marks
// authorization failures apart from negative verdicts about the ticket
// itself; it is not part of the wire format.
type Verdict struct {
	Success   bool   `json:"success"`
	GuestName string `json:"guest_name,omitempty"`
	Error     string `json:"error,omitempty"`
	Denied    bool   `json:"-"`
}

// ValidationService checks a scanned ticket token against the event being
// checked in for. Validation is side-effect free: nothing records that a
// ticket was scanned, so each call is independent.
type ValidationService struct {
	authorizer  Authorizer
	registrants RegistrantSource
}

// NewValidationService wires the validation gates.
func NewValidationService(a Authorizer, r RegistrantSource) *ValidationService {
	return &ValidationService{authorizer: a, registrants: r}
}

// Validate runs the gate chain in order, short-circuiting on the first
// failure so no two reasons ever combine:
//
//  1. the actor must hold the manage capability for eventSlug
//  2. the token must carry an event slug at all (older tickets do not)
//  3. the token's slug must match the event being checked in for
//  4. the registrant must exist
//  5. the registrant's event id must match the token's event id
//
// The shape gate runs before the scope gate so a slugless legacy ticket
// reports "outdated format" rather than a confusing mismatch, and the
// existence gate runs before the cross-check because there is no event id
// to compare on a nonexistent registrant.
func (s *ValidationService) Validate(ctx context.Context, actor *authz.Actor, eventSlug string, tok ticket.Token) Verdict {
	if !s.authorizer.CanManage(ctx, actor, eventSlug) {
		return Verdict{Error: "not authorized to validate tickets for this event", Denied: true}
	}

	if tok.EventSlug == "" {
		return Verdict{Error: "ticket uses an outdated or invalid format; please re-issue it"}
	}

	if tok.EventSlug != eventSlug {
		// Naming both slugs is deliberate: staff can redirect the guest to
		// the right check-in desk.
		return Verdict{Error: fmt.Sprintf("ticket belongs to event %q, not %q", tok.EventSlug, eventSlug)}
	}

	regID, err := strconv.ParseUint(tok.RegistrantID, 10, 64)
	if err != nil {
		return Verdict{Error: "registrant not found"}
	}
	reg, err := s.registrants.GetByID(ctx, regID)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrantNotFound) {
			return Verdict{Error: "registrant not found"}
		}
		return Verdict{Error: "registrant lookup failed: " + err.Error()}
	}

	if strconv.FormatUint(reg.EventID, 10) != tok.EventID {
		return Verdict{Error: "event mismatch"}
	}

	return Verdict{Success: true, GuestName: tok.Name}
}
