package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware that enforces that the authenticated
// user holds one of the specified roles. Roles correspond to the values the
// identity resolver writes into the JWT's "role" claim; JWTAuth must have
// run first and stored the claim under "role". A missing or unlisted role
// aborts the request with 403 Forbidden — roles are never guessed.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of the allowed role names once at registration time.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get("role")
            role, ok := v.(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
