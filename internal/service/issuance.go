// Package service orchestrates the ticketing core: issuing ticket
// artifacts for registrants and validating scanned tickets at check-in.
// Services hold no mutable state of their own; every negative outcome is a
// structured result value rather than an error, so callers can surface the
// reason string directly.
package service

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/iliyamo/event-ticketing/internal/authz"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/storage"
	"github.com/iliyamo/event-ticketing/internal/ticket"
)

// Authorizer resolves the manage capability for an actor and event.
type Authorizer interface {
	CanManage(ctx context.Context, actor *authz.Actor, eventSlug string) bool
}

// TokenRenderer renders a ticket token into an image artifact.
type TokenRenderer interface {
	Render(t ticket.Token) ([]byte, error)
}

// Publisher emits a ticket.issued event after a successful store. Failures
// are logged and otherwise ignored.
type Publisher func(ctx context.Context, ev queue.TicketIssuedEvent) error

// IssuanceResult is the outcome of issuing one ticket. Denied marks
// authorization failures apart from ordinary item failures; it stays out
// of the wire format, where the reason string is all a client sees.
type IssuanceResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
	Denied  bool   `json:"-"`
}

// BulkResult is the aggregate outcome of a bulk issuance run. Count is the
// number of registrants whose artifact reached the store.
type BulkResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
	Denied  bool   `json:"-"`
}

// IssuanceService builds, renders and stores ticket artifacts.
type IssuanceService struct {
	authorizer Authorizer
	renderer   TokenRenderer
	store      storage.BlobStore
	pacer      Pacer
	publish    Publisher // may be nil when no broker is configured
}

// NewIssuanceService wires the issuance orchestration. pacer must not be
// nil; pass NewFixedDelayPacer(0) to disable pacing in tests.
func NewIssuanceService(a Authorizer, r TokenRenderer, s storage.BlobStore, p Pacer, pub Publisher) *IssuanceService {
	return &IssuanceService{authorizer: a, renderer: r, store: s, pacer: p, publish: pub}
}

// IssueOne issues a ticket for a single registrant of the event identified
// by eventSlug. The authorization gate runs before any encoding or storage
// work; a registrant without profile data is a distinct failure from an
// authorization denial.
func (s *IssuanceService) IssueOne(ctx context.Context, actor *authz.Actor, eventSlug string, reg repository.Registrant) IssuanceResult {
	if !s.authorizer.CanManage(ctx, actor, eventSlug) {
		return IssuanceResult{Error: "not authorized to issue tickets for this event", Denied: true}
	}
	return s.issue(ctx, eventSlug, reg)
}

// IssueMany issues tickets for a batch of registrants of one event. The
// grant is event-scoped, so a single authorization check gates the whole
// batch. Items are processed strictly sequentially with a fixed pause
// between them; individual failures are skipped, never aborting the run,
// and the aggregate result reports how many artifacts reached the store.
func (s *IssuanceService) IssueMany(ctx context.Context, actor *authz.Actor, eventSlug string, regs []repository.Registrant) BulkResult {
	if !s.authorizer.CanManage(ctx, actor, eventSlug) {
		return BulkResult{Error: "not authorized to issue tickets for this event", Denied: true}
	}
	count := 0
	for i, reg := range regs {
		if i > 0 {
			// The pause respects downstream rate limits and is taken even
			// when the previous item failed.
			s.pacer.Wait()
		}
		res := s.issue(ctx, eventSlug, reg)
		if !res.Success {
			log.Printf("issuance: skipping registrant %d for %s: %s", reg.ID, eventSlug, res.Error)
			continue
		}
		count++
	}
	return BulkResult{Success: true, Count: count}
}

// issue performs the per-registrant pipeline: profile check, token build,
// render, store, publish.
func (s *IssuanceService) issue(ctx context.Context, eventSlug string, reg repository.Registrant) IssuanceResult {
	if reg.Name == "" || reg.Email == "" {
		return IssuanceResult{Error: "registrant has no profile data"}
	}

	tok := ticket.Token{
		RegistrantID: strconv.FormatUint(reg.ID, 10),
		EventID:      strconv.FormatUint(reg.EventID, 10),
		EventSlug:    eventSlug,
		Name:         reg.Name,
	}
	img, err := s.renderer.Render(tok)
	if err != nil {
		return IssuanceResult{Error: "render ticket: " + err.Error()}
	}

	key := ticket.ArtifactKey(eventSlug, tok.RegistrantID)
	url, err := s.store.Put(ctx, key, img, "image/png")
	if err != nil {
		return IssuanceResult{Error: err.Error()}
	}

	if s.publish != nil {
		ev := queue.TicketIssuedEvent{
			RegistrantID: reg.ID,
			EventID:      reg.EventID,
			EventSlug:    eventSlug,
			GuestName:    reg.Name,
			TicketURL:    url,
			IssuedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.publish(ctx, ev); err != nil {
			log.Printf("issuance: publish ticket.issued failed: %v", err)
		}
	}
	return IssuanceResult{Success: true, URL: url}
}
