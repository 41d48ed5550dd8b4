package middleware

// actor.go reconstructs the acting identity from the claims JWTAuth stored
// in the Echo context. Handlers pass the resulting *authz.Actor into the
// ticketing services; a nil actor means the request is anonymous and the
// authorization oracle will deny it.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-ticketing/internal/authz"
)

// ActorFrom builds an authz.Actor from the request context. It returns nil
// when no authenticated identity is present or the subject claim cannot be
// read as a numeric id.
func ActorFrom(c echo.Context) *authz.Actor {
    id, ok := claimUint64(c.Get("user_id"))
    if !ok {
        return nil
    }
    actor := &authz.Actor{ID: id}
    if role, ok := c.Get("role").(string); ok {
        actor.Role = role
    }
    if name, ok := c.Get("name").(string); ok {
        actor.Name = name
    }
    return actor
}

// claimUint64 copes with the numeric representations a JWT claim can take
// after JSON decoding.
func claimUint64(v interface{}) (uint64, bool) {
    switch t := v.(type) {
    case uint64:
        return t, true
    case int:
        return uint64(t), true
    case int64:
        return uint64(t), true
    case float64:
        return uint64(t), true
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, true
        }
    }
    return 0, false
}
