package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/whispr/internal/api/auth"
	"github.com/jon4hz/whispr/internal/api/models"
	"github.com/jon4hz/whispr/internal/session"
)

// GetSession reports the caller's session, from whichever source it came.
// Anonymous requests get a 200 with success=false rather than a 401 so the
// frontend can poll it without error handling.
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.resolver.Resolve(c)
	if err != nil {
		if errors.Is(err, session.ErrTokenInvalid) {
			fail(c, http.StatusInternalServerError, "invalid session token")
			return
		}
		log.Error("failed to resolve session", "error", err)
		fail(c, http.StatusInternalServerError, "failed to resolve session")
		return
	}

	if sess == nil {
		respond(c, http.StatusOK, models.Response{
			Success: false,
			Message: "You are not logged in",
		})
		return
	}

	respond(c, http.StatusOK, models.Response{
		Success: true,
		Message: "session fetched successfully",
		Data:    gin.H{"session": sess},
	})
}

// DeleteSession logs the caller out of both session sources.
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := auth.ClearLibrarySession(c); err != nil {
		log.Error("failed to clear session", "error", err)
		fail(c, http.StatusInternalServerError, "failed to clear session")
		return
	}

	// expire the token cookie as well
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cfg.Auth.CookieName, "", -1, "/", "", false, true)

	respond(c, http.StatusOK, models.Response{
		Success: true,
		Message: "Logged out successfully",
	})
}
