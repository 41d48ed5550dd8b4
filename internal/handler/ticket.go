package handler // ticket issuance and validation endpoints

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-ticketing/internal/middleware"
    "github.com/iliyamo/event-ticketing/internal/repository"
    "github.com/iliyamo/event-ticketing/internal/service"
    "github.com/iliyamo/event-ticketing/internal/ticket"
)

// TicketHandler exposes the issuance and validation services over HTTP.
type TicketHandler struct {
	Issuance    *service.IssuanceService
	Validation  *service.ValidationService
	Events      EventStore
	Registrants RegistrantStore
}

// NewTicketHandler constructs a new TicketHandler and panics if any dependency is nil.
func NewTicketHandler(iss *service.IssuanceService, val *service.ValidationService, events EventStore, registrants RegistrantStore) *TicketHandler {
	if iss == nil || val == nil || events == nil || registrants == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{Issuance: iss, Validation: val, Events: events, Registrants: registrants}
}

// IssueOne handles POST /v1/events/:slug/tickets. The body names one
// registrant; the service decides whether the caller may issue for this
// event.
func (h *TicketHandler) IssueOne(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	slug := c.Param("slug")

	var body struct {
		RegistrantID uint64 `json:"registrant_id"`
	}
	if err := c.Bind(&body); err != nil || body.RegistrantID == 0 {
		return c.JSON(http.StatusBadRequest, service.IssuanceResult{Error: "registrant_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	reg, err := h.Registrants.GetByID(ctx, body.RegistrantID)
	if err != nil {
		if err == repository.ErrRegistrantNotFound {
			return c.JSON(http.StatusNotFound, service.IssuanceResult{Error: "registrant not found"})
		}
		return c.JSON(http.StatusInternalServerError, service.IssuanceResult{Error: "db error"})
	}

	res := h.Issuance.IssueOne(ctx, actor, slug, reg)
	return c.JSON(statusFor(res.Denied), res)
}

// IssueMany handles POST /v1/events/:slug/tickets/bulk. Without an explicit
// registrant list in the body, the batch covers every registered
// registrant of the event. Bulk runs are paced, so the request timeout is
// generous.
func (h *TicketHandler) IssueMany(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	slug := c.Param("slug")

	var body struct {
		RegistrantIDs []uint64 `json:"registrant_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, service.BulkResult{Error: "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Minute)
	defer cancel()

	e, err := h.Events.GetBySlug(ctx, slug)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, service.BulkResult{Error: "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, service.BulkResult{Error: "db error"})
	}

	var regs []repository.Registrant
	if len(body.RegistrantIDs) > 0 {
		for _, id := range body.RegistrantIDs {
			reg, err := h.Registrants.GetByID(ctx, id)
			if err != nil {
				// Unknown ids are skipped the same way items without
				// profile data are; the batch is best-effort throughout.
				continue
			}
			regs = append(regs, reg)
		}
	} else {
		regs, err = h.Registrants.ListRegisteredByEvent(ctx, e.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, service.BulkResult{Error: "db error"})
		}
	}

	res := h.Issuance.IssueMany(ctx, actor, slug, regs)
	return c.JSON(statusFor(res.Denied), res)
}

// Validate handles POST /v1/events/:slug/validate. The body carries the
// raw text decoded from a scanned QR symbol.
func (h *TicketHandler) Validate(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	slug := c.Param("slug")

	var body struct {
		Payload string `json:"payload"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Payload) == "" {
		return c.JSON(http.StatusBadRequest, service.Verdict{Error: "payload required"})
	}

	tok, err := ticket.Decode([]byte(body.Payload))
	if err != nil {
		return c.JSON(http.StatusOK, service.Verdict{Error: "ticket uses an outdated or invalid format; please re-issue it"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	v := h.Validation.Validate(ctx, actor, slug, tok)
	return c.JSON(statusFor(v.Denied), v)
}

// statusFor maps structured results onto HTTP statuses: verdicts and
// results travel in the body as 200s, with 403 reserved for authorization
// denials. The services flag denials explicitly so the mapping cannot
// drift when a reason string is reworded.
func statusFor(denied bool) int {
	if denied {
		return http.StatusForbidden
	}
	return http.StatusOK
}
