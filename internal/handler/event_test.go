package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/authz"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

type fakeEventStore struct {
	bySlug      map[string]*repository.Event
	byOrganizer map[uint64][]*repository.Event
	created     int
}

func (f *fakeEventStore) Create(ctx context.Context, e *repository.Event) error {
	f.created++
	e.ID = uint64(f.created)
	return nil
}

func (f *fakeEventStore) GetBySlug(ctx context.Context, slug string) (*repository.Event, error) {
	e, ok := f.bySlug[slug]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return e, nil
}

func (f *fakeEventStore) ListByOrganizer(ctx context.Context, organizerID uint64) ([]*repository.Event, error) {
	return f.byOrganizer[organizerID], nil
}

type fakeRegistrantStore struct {
	byID        map[uint64]repository.Registrant
	byEventUser map[[2]uint64]repository.Registrant
	created     int
}

func (f *fakeRegistrantStore) Create(ctx context.Context, reg *repository.Registrant) error {
	f.created++
	reg.ID = uint64(f.created)
	return nil
}

func (f *fakeRegistrantStore) GetByID(ctx context.Context, id uint64) (repository.Registrant, error) {
	reg, ok := f.byID[id]
	if !ok {
		return repository.Registrant{}, repository.ErrRegistrantNotFound
	}
	return reg, nil
}

func (f *fakeRegistrantStore) GetByEventAndUser(ctx context.Context, eventID, userID uint64) (repository.Registrant, error) {
	reg, ok := f.byEventUser[[2]uint64{eventID, userID}]
	if !ok {
		return repository.Registrant{}, repository.ErrRegistrantNotFound
	}
	return reg, nil
}

func (f *fakeRegistrantStore) ListRegisteredByEvent(ctx context.Context, eventID uint64) ([]repository.Registrant, error) {
	var out []repository.Registrant
	for _, reg := range f.byID {
		if reg.EventID == eventID && reg.IsRegistered {
			out = append(out, reg)
		}
	}
	return out, nil
}

type fakeUserSource struct {
	users map[uint64]repository.User
}

func (f *fakeUserSource) GetByID(ctx context.Context, id uint64) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeOracle struct{ allow bool }

func (f fakeOracle) CanManage(ctx context.Context, actor *authz.Actor, eventSlug string) bool {
	return f.allow
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uint64) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(userID)) // JWT claims decode numbers as float64
	c.Set("role", authz.RoleOrganizer)
	return c
}

func TestListMyEvents_ReturnsOnlyOwnEvents(t *testing.T) {
	events := &fakeEventStore{byOrganizer: map[uint64][]*repository.Event{
		42: {
			{ID: 1, Slug: "adph-2026", OrganizerID: 42, Title: "ADPH 2026"},
			{ID: 2, Slug: "devconf", OrganizerID: 42, Title: "DevConf"},
		},
		7: {{ID: 3, Slug: "other", OrganizerID: 7}},
	}}
	h := NewEventHandler(events, &fakeRegistrantStore{}, &fakeUserSource{}, fakeOracle{allow: true})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodGet, "/v1/events", nil), rec, 42)

	if err := h.ListMyEvents(c); err != nil {
		t.Fatalf("list my events: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "adph-2026") || !strings.Contains(body, "devconf") {
		t.Fatalf("expected both owned events in %s", body)
	}
	if strings.Contains(body, `"other"`) {
		t.Fatalf("another organizer's event leaked into %s", body)
	}
}

func TestRegister_DuplicateRejectedBeforeInsert(t *testing.T) {
	events := &fakeEventStore{bySlug: map[string]*repository.Event{
		"adph-2026": {ID: 1, Slug: "adph-2026", OrganizerID: 7},
	}}
	registrants := &fakeRegistrantStore{byEventUser: map[[2]uint64]repository.Registrant{
		{1, 42}: {ID: 9, EventID: 1, UserID: 42},
	}}
	users := &fakeUserSource{users: map[uint64]repository.User{
		42: {ID: 42, Email: "jane@example.com", FullName: "Jane Doe"},
	}}
	h := NewEventHandler(events, registrants, users, fakeOracle{})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodPost, "/v1/events/adph-2026/register", nil), rec, 42)
	c.SetParamNames("slug")
	c.SetParamValues("adph-2026")

	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate registration, got %d", rec.Code)
	}
	if registrants.created != 0 {
		t.Fatal("a duplicate registration must not reach the insert")
	}
}
