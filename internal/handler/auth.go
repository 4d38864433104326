package handler

import (
    "context"  // provides context with cancellation for DB and provider calls
    "database/sql" // sentinel comparison for missing refresh tokens
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for remote calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/project-workflow/internal/config"   // app configuration
    "github.com/iliyamo/project-workflow/internal/identity" // identity provider integration
    "github.com/iliyamo/project-workflow/internal/model"    // domain models
    "github.com/iliyamo/project-workflow/internal/utils"    // token issuing helpers
)

// AccountSource reads the signed-in account behind a provider bearer token.
type AccountSource interface {
    Me(ctx context.Context, bearer string) (identity.Account, error)
}

// ProfileResolver exchanges a federated account for an internal profile.
type ProfileResolver interface {
    Resolve(ctx context.Context, account identity.Account, bearer string) (model.UserProfile, error)
}

// TokenStore persists refresh tokens.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// ProfileReader fetches stored profiles by id.
type ProfileReader interface {
    GetByID(ctx context.Context, id uint64) (model.UserProfile, error)
}

// AuthHandler bundles dependencies for auth endpoints. There is no local
// registration or password flow: the identity provider authenticates users
// in the browser, and Login exchanges the provider's token for an internal
// session pair.
type AuthHandler struct {
    Cfg      config.Config
    Accounts AccountSource
    Resolver ProfileResolver
    Users    ProfileReader
    Tokens   TokenStore
}

func NewAuthHandler(cfg config.Config, accounts AccountSource, resolver ProfileResolver, users ProfileReader, tokens TokenStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Accounts: accounts, Resolver: resolver, Users: users, Tokens: tokens}
}

// ----- DTOs -----

type loginReq struct {
    ProviderToken string `json:"provider_token"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID          uint64 `json:"id"`
    Email       string `json:"email"`
    DisplayName string `json:"displayName"`
    Role        string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

func profilePart(u model.UserProfile) userPart {
    return userPart{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role}
}

// Login: exchange a provider access token for an internal session. The
// provider is asked who the token belongs to, group membership resolves the
// role, and the profile is created or refreshed before tokens are issued.
// A group-fetch failure aborts the login; no fallback role is ever granted.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.ProviderToken = strings.TrimSpace(req.ProviderToken)
    if req.ProviderToken == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "provider_token required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    account, err := h.Accounts.Me(ctx, req.ProviderToken)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "identity provider rejected token"})
    }

    profile, err := h.Resolver.Resolve(ctx, account, req.ProviderToken)
    if err != nil {
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "profile resolution failed"})
    }

    return h.issuePair(c, http.StatusOK, profile)
}

// Refresh: rotate the refresh token and return a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
    uid, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validate refresh failed"})
    }
    profile, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
    }

    // Rotation: the old token is revoked before the new pair is issued.
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke refresh failed"})
    }
    return h.issuePair(c, http.StatusOK, profile)
}

// RefreshAccess: issue a new access token without rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken)))
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validate refresh failed"})
    }
    profile, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, profile.ID, profile.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "user":   profilePart(profile),
        "access": tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Logout: invalidate the presented refresh token. Succeeds with 204 even
// for already-revoked tokens so logout is idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// LogoutAll: revoke every active refresh token for the authenticated user,
// ending all of their sessions at once.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// Me: return the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    profile, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"user": profilePart(profile)})
}

func (h *AuthHandler) issuePair(c echo.Context, status int, profile model.UserProfile) error {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, profile.ID, profile.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Tokens.StoreRefresh(ctx, profile.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }

    return c.JSON(status, authResp{
        User:    profilePart(profile),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    })
}
