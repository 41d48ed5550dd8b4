package handler // handler defines http handlers

import (
    "context" // context for the store interfaces below
    "errors"  // errors provides the sentinel value used in getUserID
    "strconv" // strconv converts strings to numeric types
    "time"    // time for refresh token expirations

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/event-ticketing/internal/repository"
)

// Handlers depend on narrow store interfaces rather than the concrete
// repositories, so tests can stand in fakes. The *Repo types in the
// repository package satisfy them.

// UserStore is the account storage the auth endpoints need.
type UserStore interface {
    Create(ctx context.Context, email, fullName, password, role string, cost int) (uint64, error)
    GetByEmail(ctx context.Context, email string) (repository.User, error)
    GetByID(ctx context.Context, id uint64) (repository.User, error)
}

// TokenStore persists and revokes refresh tokens.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// EventStore is the event storage surface used by handlers.
type EventStore interface {
    Create(ctx context.Context, e *repository.Event) error
    GetBySlug(ctx context.Context, slug string) (*repository.Event, error)
    ListByOrganizer(ctx context.Context, organizerID uint64) ([]*repository.Event, error)
}

// RegistrantStore is the registration storage surface used by handlers.
type RegistrantStore interface {
    Create(ctx context.Context, reg *repository.Registrant) error
    GetByID(ctx context.Context, id uint64) (repository.Registrant, error)
    GetByEventAndUser(ctx context.Context, eventID, userID uint64) (repository.Registrant, error)
    ListRegisteredByEvent(ctx context.Context, eventID uint64) ([]repository.Registrant, error)
}

// UserSource is the read-only user lookup event handlers need.
type UserSource interface {
    GetByID(ctx context.Context, id uint64) (repository.User, error)
}

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}
