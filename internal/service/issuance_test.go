package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iliyamo/event-ticketing/internal/authz"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/ticket"
)

type fakeAuthorizer struct {
	allow bool
	calls int
}

func (f *fakeAuthorizer) CanManage(ctx context.Context, actor *authz.Actor, eventSlug string) bool {
	f.calls++
	return f.allow
}

type fakeRenderer struct {
	err   error
	calls int
}

func (f *fakeRenderer) Render(t ticket.Token) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + t.RegistrantID), nil
}

type fakeStore struct {
	puts     []string
	failKeys map[string]bool
}

func (f *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.puts = append(f.puts, key)
	if f.failKeys[key] {
		return "", errors.New("bucket unreachable")
	}
	return "/tickets/" + key, nil
}

type fakePacer struct {
	waits int
}

func (f *fakePacer) Wait() { f.waits++ }

var organizer = &authz.Actor{ID: 42, Role: authz.RoleOrganizer, Name: "Org"}

func registrant(id uint64, name string) repository.Registrant {
	email := ""
	if name != "" {
		email = strings.ToLower(name) + "@example.com"
	}
	return repository.Registrant{ID: id, EventID: 1, Name: name, Email: email, IsRegistered: true}
}

func TestIssueOne_Success(t *testing.T) {
	store := &fakeStore{}
	svc := NewIssuanceService(&fakeAuthorizer{allow: true}, &fakeRenderer{}, store, &fakePacer{}, nil)

	res := svc.IssueOne(context.Background(), organizer, "adph-2026", registrant(123, "Jane"))
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.URL != "/tickets/adph-2026-123.png" {
		t.Fatalf("unexpected url %q", res.URL)
	}
}

func TestIssueOne_DeniedBeforeAnyWork(t *testing.T) {
	renderer := &fakeRenderer{}
	store := &fakeStore{}
	svc := NewIssuanceService(&fakeAuthorizer{allow: false}, renderer, store, &fakePacer{}, nil)

	res := svc.IssueOne(context.Background(), organizer, "adph-2026", registrant(123, "Jane"))
	if res.Success {
		t.Fatal("expected denial")
	}
	if !res.Denied {
		t.Fatal("authorization failure must be flagged as a denial")
	}
	if !strings.Contains(res.Error, "not authorized") {
		t.Fatalf("expected authorization error, got %q", res.Error)
	}
	if renderer.calls != 0 || len(store.puts) != 0 {
		t.Fatal("denied issuance must not encode or store anything")
	}
}

func TestIssueOne_MissingProfileIsNotAuthorizationFailure(t *testing.T) {
	svc := NewIssuanceService(&fakeAuthorizer{allow: true}, &fakeRenderer{}, &fakeStore{}, &fakePacer{}, nil)

	res := svc.IssueOne(context.Background(), organizer, "adph-2026", registrant(123, ""))
	if res.Success {
		t.Fatal("expected failure for missing profile data")
	}
	if !strings.Contains(res.Error, "profile data") {
		t.Fatalf("expected profile error, got %q", res.Error)
	}
	if res.Denied {
		t.Fatal("missing profile data is an item failure, not a denial")
	}
}

func TestIssueOne_StoreFailureSurfacesBackendMessage(t *testing.T) {
	store := &fakeStore{failKeys: map[string]bool{"adph-2026-123.png": true}}
	svc := NewIssuanceService(&fakeAuthorizer{allow: true}, &fakeRenderer{}, store, &fakePacer{}, nil)

	res := svc.IssueOne(context.Background(), organizer, "adph-2026", registrant(123, "Jane"))
	if res.Success {
		t.Fatal("expected store failure")
	}
	if !strings.Contains(res.Error, "bucket unreachable") {
		t.Fatalf("backend message must be surfaced, got %q", res.Error)
	}
}

func TestIssueMany_BestEffortCount(t *testing.T) {
	store := &fakeStore{failKeys: map[string]bool{"adph-2026-3.png": true}}
	svc := NewIssuanceService(&fakeAuthorizer{allow: true}, &fakeRenderer{}, store, &fakePacer{}, nil)

	regs := []repository.Registrant{
		registrant(1, "Jane"),
		registrant(2, ""), // no profile data: skipped
		registrant(3, "Joe"), // store fails: skipped
		registrant(4, "Amy"),
	}
	res := svc.IssueMany(context.Background(), organizer, "adph-2026", regs)
	if !res.Success {
		t.Fatalf("batch must not fail on item errors, got %q", res.Error)
	}
	if res.Count != 2 {
		t.Fatalf("expected count 2, got %d", res.Count)
	}
}

func TestIssueMany_SingleAuthorizationGate(t *testing.T) {
	auth := &fakeAuthorizer{allow: true}
	svc := NewIssuanceService(auth, &fakeRenderer{}, &fakeStore{}, &fakePacer{}, nil)

	svc.IssueMany(context.Background(), organizer, "adph-2026", []repository.Registrant{
		registrant(1, "Jane"), registrant(2, "Joe"), registrant(3, "Amy"),
	})
	if auth.calls != 1 {
		t.Fatalf("the grant is event-scoped, expected 1 authorization check, got %d", auth.calls)
	}
}

func TestIssueMany_DeniedBatch(t *testing.T) {
	store := &fakeStore{}
	svc := NewIssuanceService(&fakeAuthorizer{allow: false}, &fakeRenderer{}, store, &fakePacer{}, nil)

	res := svc.IssueMany(context.Background(), organizer, "adph-2026", []repository.Registrant{registrant(1, "Jane")})
	if res.Success || res.Count != 0 || !res.Denied {
		t.Fatalf("denied batch must not process items: %+v", res)
	}
	if len(store.puts) != 0 {
		t.Fatal("denied batch must not touch the store")
	}
}

func TestIssueMany_PacesBetweenItemsEvenOnFailure(t *testing.T) {
	pacer := &fakePacer{}
	svc := NewIssuanceService(&fakeAuthorizer{allow: true}, &fakeRenderer{}, &fakeStore{}, pacer, nil)

	svc.IssueMany(context.Background(), organizer, "adph-2026", []repository.Registrant{
		registrant(1, "Jane"),
		registrant(2, ""), // fails, but the pause around it is still taken
		registrant(3, "Amy"),
	})
	if pacer.waits != 2 {
		t.Fatalf("expected a pause between each pair of items, got %d", pacer.waits)
	}
}

func TestIssueMany_PublisherFailureDoesNotAffectCount(t *testing.T) {
	pub := func(ctx context.Context, ev queue.TicketIssuedEvent) error {
		return errors.New("broker down")
	}
	svc := NewIssuanceService(&fakeAuthorizer{allow: true}, &fakeRenderer{}, &fakeStore{}, &fakePacer{}, pub)

	res := svc.IssueMany(context.Background(), organizer, "adph-2026", []repository.Registrant{registrant(1, "Jane")})
	if !res.Success || res.Count != 1 {
		t.Fatalf("publish failures must be swallowed: %+v", res)
	}
}

func TestIssueOne_Reissue(t *testing.T) {
	store := &fakeStore{}
	svc := NewIssuanceService(&fakeAuthorizer{allow: true}, &fakeRenderer{}, store, &fakePacer{}, nil)

	first := svc.IssueOne(context.Background(), organizer, "adph-2026", registrant(123, "Jane"))
	second := svc.IssueOne(context.Background(), organizer, "adph-2026", registrant(123, "Jane"))
	if !first.Success || !second.Success {
		t.Fatalf("re-issuance must succeed: %+v %+v", first, second)
	}
	if first.URL != second.URL {
		t.Fatalf("re-issuance must land on the same key: %q vs %q", first.URL, second.URL)
	}
	if len(store.puts) != 2 || store.puts[0] != store.puts[1] {
		t.Fatalf("expected two writes to one key, got %v", store.puts)
	}
}
