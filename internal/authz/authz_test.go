package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/event-ticketing/internal/repository"
)

type fakeDirectory struct {
	users map[uint64]repository.User
	err   error
	calls int
}

func (f *fakeDirectory) GetByID(ctx context.Context, id uint64) (repository.User, error) {
	f.calls++
	if f.err != nil {
		return repository.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeEvents struct {
	events map[string]*repository.Event
	err    error
	calls  int
}

func (f *fakeEvents) GetBySlug(ctx context.Context, slug string) (*repository.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events[slug]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return e, nil
}

func TestCanManage_AnonymousDenied(t *testing.T) {
	o := NewOracle(&fakeDirectory{}, &fakeEvents{})
	if o.CanManage(context.Background(), nil, "adph-2026") {
		t.Fatal("anonymous actor must never hold the manage capability")
	}
}

func TestCanManage_AdminByTokenRole(t *testing.T) {
	dir := &fakeDirectory{}
	events := &fakeEvents{}
	o := NewOracle(dir, events)

	ok := o.CanManage(context.Background(), &Actor{ID: 7, Role: RoleAdmin}, "adph-2026")
	if !ok {
		t.Fatal("token-asserted admin role must grant")
	}
	if dir.calls != 0 || events.calls != 0 {
		t.Fatalf("admin token grant must short-circuit, got %d directory and %d event lookups", dir.calls, events.calls)
	}
}

func TestCanManage_AdminByDirectoryRole(t *testing.T) {
	dir := &fakeDirectory{users: map[uint64]repository.User{
		9: {ID: 9, Role: RoleAdmin},
	}}
	o := NewOracle(dir, &fakeEvents{})

	if !o.CanManage(context.Background(), &Actor{ID: 9, Role: RoleOrganizer}, "adph-2026") {
		t.Fatal("directory-stored admin role must grant")
	}
}

func TestCanManage_OrganizerOwnsEvent(t *testing.T) {
	events := &fakeEvents{events: map[string]*repository.Event{
		"adph-2026": {ID: 1, Slug: "adph-2026", OrganizerID: 42},
	}}
	o := NewOracle(&fakeDirectory{}, events)

	if !o.CanManage(context.Background(), &Actor{ID: 42, Role: RoleOrganizer}, "adph-2026") {
		t.Fatal("event organizer must hold the manage capability")
	}
	if o.CanManage(context.Background(), &Actor{ID: 43, Role: RoleOrganizer}, "adph-2026") {
		t.Fatal("non-organizer must not hold the manage capability")
	}
}

func TestCanManage_DirectoryFailureFallsThroughToOwnership(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("directory unavailable")}
	events := &fakeEvents{events: map[string]*repository.Event{
		"adph-2026": {ID: 1, Slug: "adph-2026", OrganizerID: 42},
	}}
	o := NewOracle(dir, events)

	if !o.CanManage(context.Background(), &Actor{ID: 42, Role: RoleOrganizer}, "adph-2026") {
		t.Fatal("directory outage must not block the ownership grant")
	}
}

func TestCanManage_FailsClosed(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("directory unavailable")}
	events := &fakeEvents{err: errors.New("db unreachable")}
	o := NewOracle(dir, events)

	if o.CanManage(context.Background(), &Actor{ID: 42, Role: RoleOrganizer}, "adph-2026") {
		t.Fatal("hard failure of both grant paths must deny, not grant")
	}
}

func TestCanManage_MissingEventIsNoGrant(t *testing.T) {
	o := NewOracle(&fakeDirectory{}, &fakeEvents{})
	if o.CanManage(context.Background(), &Actor{ID: 42, Role: RoleOrganizer}, "no-such-event") {
		t.Fatal("absent event row must be a plain denial")
	}
}
