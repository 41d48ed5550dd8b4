package handler // handler package contains event management handlers

import (
    "context"
    "net/http"
    "regexp"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-ticketing/internal/middleware"
    "github.com/iliyamo/event-ticketing/internal/repository"
    "github.com/iliyamo/event-ticketing/internal/service"
)

// EventHandler bundles the storage surfaces used by event and registration
// endpoints, plus the authorization oracle for registrant listings.
type EventHandler struct {
	Events      EventStore
	Registrants RegistrantStore
	Users       UserSource
	Oracle      service.Authorizer
}

// NewEventHandler constructs a new EventHandler and panics if any dependency is nil.
func NewEventHandler(events EventStore, registrants RegistrantStore, users UserSource, oracle service.Authorizer) *EventHandler {
	if events == nil || registrants == nil || users == nil || oracle == nil {
		panic("nil dependency passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Registrants: registrants, Users: users, Oracle: oracle}
}

// slugPattern restricts event slugs to lowercase letters, digits and hyphens.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CreateEvent handles POST /v1/events and creates an event owned by the
// authenticated organizer.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Slug        string `json:"slug"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	slug := strings.ToLower(strings.TrimSpace(body.Slug))
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if !slugPattern.MatchString(slug) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug must be lowercase letters, digits and hyphens"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	event := &repository.Event{
		Slug:        slug,
		OrganizerID: ownerID,
		Title:       title,
		Description: strings.TrimSpace(body.Description),
	}
	if err := h.Events.Create(ctx, event); err != nil {
		if err == repository.ErrSlugExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "event slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create event"})
	}
	return c.JSON(http.StatusCreated, event)
}

// ListMyEvents handles GET /v1/events and returns the events organized by
// the authenticated user, ordered by id.
func (h *EventHandler) ListMyEvents(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Events.ListByOrganizer(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEvent handles GET /v1/events/:slug and returns public event details.
func (h *EventHandler) GetEvent(c echo.Context) error {
	slug := c.Param("slug")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Events.GetBySlug(ctx, slug)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	// Organizer id stays internal; slug and title are the public surface.
	return c.JSON(http.StatusOK, echo.Map{
		"slug":        e.Slug,
		"title":       e.Title,
		"description": e.Description,
	})
}

// Register handles POST /v1/events/:slug/register. It creates a registrant
// row binding the authenticated user to the event, denormalizing the
// user's name and email so tickets can be issued without joining back to
// the users table.
func (h *EventHandler) Register(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slug := c.Param("slug")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Events.GetBySlug(ctx, slug)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	// Pre-check for an existing registration so the common double-submit
	// case gets a clean 409 without hitting the unique index. The insert
	// below still maps the 1062 race to the same answer.
	if _, err := h.Registrants.GetByEventAndUser(ctx, e.ID, uid); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already registered for this event"})
	} else if err != repository.ErrRegistrantNotFound {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	reg := &repository.Registrant{
		EventID:      e.ID,
		UserID:       u.ID,
		Name:         u.FullName,
		Email:        u.Email,
		IsRegistered: true,
	}
	if err := h.Registrants.Create(ctx, reg); err != nil {
		if err == repository.ErrAlreadyRegistered {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already registered for this event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not register"})
	}
	return c.JSON(http.StatusCreated, reg)
}

// ListRegistrants handles GET /v1/events/:slug/registrants. Only actors
// holding the manage capability for the event may see its registrant list.
func (h *EventHandler) ListRegistrants(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	slug := c.Param("slug")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if !h.Oracle.CanManage(ctx, actor, slug) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	e, err := h.Events.GetBySlug(ctx, slug)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	items, err := h.Registrants.ListRegisteredByEvent(ctx, e.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
