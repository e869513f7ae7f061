package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/whispr/internal/api/models"
	"github.com/jon4hz/whispr/internal/database"
	"github.com/jon4hz/whispr/internal/gravatar"
	"github.com/jon4hz/whispr/internal/validate"
	"github.com/samber/lo"
)

// VerifyUsername returns the public profile of a verified user. Profiles are
// cached briefly since they get hammered by the message form.
func (h *Handler) VerifyUsername(c *gin.Context) {
	username := c.Query("userName")
	if username == "" {
		fail(c, http.StatusNotFound, "userName expected from query params")
		return
	}

	if cached, ok := h.profileCache.Get(username); ok {
		respond(c, http.StatusOK, models.Response{
			Success: true,
			Message: "user verified successfully",
			Data:    cached,
		})
		return
	}

	user, err := h.db.GetVerifiedUserByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fail(c, http.StatusNotFound, "user not found with this userName")
			return
		}
		log.Error("failed to look up user profile", "error", err)
		fail(c, http.StatusInternalServerError, "error while verifying userName")
		return
	}

	profile := models.ProfileUser{
		ID:                 user.ID.Hex(),
		Email:              user.Email,
		Username:           user.Username,
		IsAcceptingMessage: user.IsAcceptingMessage,
		AvatarURL:          gravatar.GenerateURL(user.Email, h.cfg.Gravatar),
	}
	h.profileCache.SetDefault(username, profile)

	respond(c, http.StatusOK, models.Response{
		Success: true,
		Message: "user verified successfully",
		Data:    profile,
	})
}

// ValidateUsername checks whether a username is well formed and still free.
func (h *Handler) ValidateUsername(c *gin.Context) {
	username := c.Query("userName")
	if username == "" {
		fail(c, http.StatusNotFound, "userName expected from query params")
		return
	}

	if err := validate.Username(username); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	_, err := h.db.GetVerifiedUserByUsername(c.Request.Context(), username)
	if err == nil {
		fail(c, http.StatusForbidden, "User already exist with this userName")
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		log.Error("failed to check username availability", "error", err)
		fail(c, http.StatusInternalServerError, "error while validating userName")
		return
	}

	respond(c, http.StatusOK, models.Response{
		Success: true,
		Message: "Valid userName",
	})
}

// GetAllUsers lists every user in the public directory shape, verified or not.
func (h *Handler) GetAllUsers(c *gin.Context) {
	users, err := h.db.ListUsers(c.Request.Context())
	if err != nil {
		log.Error("failed to list users", "error", err)
		fail(c, http.StatusInternalServerError, "error while fetching users")
		return
	}

	publicUsers := lo.Map(users, func(u database.User, _ int) models.PublicUser {
		return models.PublicUser{
			ID:        u.ID.Hex(),
			Email:     u.Email,
			Username:  u.Username,
			AvatarURL: gravatar.GenerateURL(u.Email, h.cfg.Gravatar),
		}
	})

	respond(c, http.StatusOK, models.Response{
		Success: true,
		Message: "user Send successfully",
		Data:    gin.H{"users": publicUsers},
	})
}
