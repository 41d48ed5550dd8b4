package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/config"
)

type fakeTokenStore struct {
	userID        uint64
	validateErr   error
	stored        int
	revokedByHash []string
	revokedAll    []uint64
}

func (f *fakeTokenStore) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.stored++
	return nil
}

func (f *fakeTokenStore) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	if f.validateErr != nil {
		return 0, f.validateErr
	}
	return f.userID, nil
}

func (f *fakeTokenStore) RevokeByHash(ctx context.Context, tokenHash string) error {
	f.revokedByHash = append(f.revokedByHash, tokenHash)
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(ctx context.Context, userID uint64) error {
	f.revokedAll = append(f.revokedAll, userID)
	return nil
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestLogout_RevokesAllSessions(t *testing.T) {
	tokens := &fakeTokenStore{userID: 42}
	h := NewAuthHandler(config.Config{}, nil, tokens)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/logout", `{"refresh_token":"raw-refresh"}`), rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(tokens.revokedAll) != 1 || tokens.revokedAll[0] != 42 {
		t.Fatalf("logout must revoke every session of the user, got %v", tokens.revokedAll)
	}
}

func TestLogout_InvalidRefreshRevokesNothing(t *testing.T) {
	tokens := &fakeTokenStore{validateErr: errors.New("no such token")}
	h := NewAuthHandler(config.Config{}, nil, tokens)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/logout", `{"refresh_token":"bogus"}`), rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(tokens.revokedAll) != 0 || len(tokens.revokedByHash) != 0 {
		t.Fatal("an unknown refresh token must not revoke anything")
	}
}
