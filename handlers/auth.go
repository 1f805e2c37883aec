package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/letterwriter/letterwriter/internal/config"
	"github.com/letterwriter/letterwriter/internal/googleauth"
	"github.com/letterwriter/letterwriter/internal/tokens"
	"github.com/letterwriter/letterwriter/internal/users"
	"github.com/letterwriter/letterwriter/pkg/logger"
	"github.com/letterwriter/letterwriter/pkg/middleware"
)

// AuthHandler holds dependencies for the Google sign-in flow.
type AuthHandler struct {
	cfg    *config.Config
	users  *users.Service
	google *googleauth.Provider
}

func NewAuthHandler(cfg *config.Config, u *users.Service, g *googleauth.Provider) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: u, google: g}
}

// Register routes under /api/auth
func (h *AuthHandler) Register(rg *gin.RouterGroup, verifier middleware.Verifier) {
	a := rg.Group("/api/auth")
	a.POST("/google", h.GoogleAuth)
	a.GET("/google/callback", h.GoogleCallback)
	a.POST("/google/callback", h.GoogleCallback)
	a.GET("/me", middleware.AuthMiddleware(verifier), h.Me)
	a.GET("/reset", h.Reset)
}

// GoogleAuth returns the provider consent URL the frontend redirects to.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to initialize Google authentication"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": h.google.AuthURL(state)})
}

// GoogleCallback exchanges the authorization code, upserts the user and
// issues a session token. API callers (Accept: application/json) get a JSON
// body; browsers are redirected back to the SPA with the token in the query.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" && c.Request.Method == http.MethodPost {
		var req struct {
			Code string `json:"code"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			code = req.Code
		}
	}
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Authorization code is required"})
		return
	}

	tok, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Errorf("google callback: code exchange failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google authentication failed"})
		return
	}
	prof, err := h.google.Profile(c.Request.Context(), tok)
	if err != nil {
		logger.Errorf("google callback: profile fetch failed: %v", err)
		status, message := profileErrorResponse(err)
		c.JSON(status, gin.H{"message": message})
		return
	}

	u, err := h.users.UpsertFromGoogle(c.Request.Context(), prof.Email, prof.Name, prof.GoogleID,
		tok.AccessToken, tok.RefreshToken, tok.Expiry)
	if err != nil || u == nil {
		logger.Errorf("user upsert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store user"})
		return
	}

	session, err := tokens.Generate(h.cfg.JWT.Secret, u.ID, u.Email, h.cfg.JWT.SessionTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create session token"})
		return
	}

	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.JSON(http.StatusOK, gin.H{
			"message": "Google authentication successful",
			"data": gin.H{
				"user":  gin.H{"id": u.ID, "email": u.Email, "name": u.Name},
				"token": session,
			},
		})
		return
	}
	c.Redirect(http.StatusFound, h.cfg.Frontend.URL+"/auth/google/callback?token="+session)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	u, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve user"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "email": u.Email, "name": u.Name})
}

// Reset revokes the caller's stored Google access token (best-effort) so the
// next sign-in runs through a fresh consent screen. With ?returnTo=login the
// browser is redirected straight to that consent URL.
func (h *AuthHandler) Reset(c *gin.Context) {
	// identity is optional here: an unauthenticated reset still gets the redirect
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		if claims, err := tokens.Verify(h.cfg.JWT.Secret, raw); err == nil {
			if u, err := h.users.GetByID(c.Request.Context(), claims.UserID); err == nil && u != nil {
				if err := h.google.Revoke(c.Request.Context(), u.AccessToken); err != nil {
					logger.Warnf("failed to revoke token for user %s: %v", u.ID, err)
				}
			}
		}
	}

	if c.Query("returnTo") == "login" {
		state, err := randomState()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reset OAuth state"})
			return
		}
		c.Redirect(http.StatusFound, h.google.AuthURL(state))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OAuth state reset successfully"})
}

// profileErrorResponse distinguishes an account that withheld its email (a
// client-side problem, the user must adjust consent) from a failed exchange.
func profileErrorResponse(err error) (int, string) {
	if errors.Is(err, googleauth.ErrNoEmail) {
		return http.StatusBadRequest, "Email not provided by Google"
	}
	return http.StatusUnauthorized, "Google authentication failed"
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
