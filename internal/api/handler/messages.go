package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/whispr/internal/api/auth"
	"github.com/jon4hz/whispr/internal/api/models"
	"github.com/jon4hz/whispr/internal/database"
	"github.com/jon4hz/whispr/internal/notify/email"
	"github.com/jon4hz/whispr/internal/validate"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type sendMessageRequest struct {
	Username string `json:"userName"`
	Message  string `json:"message"`
}

// SendMessage appends an anonymous message to a recipient's inbox. No session
// is required, anyone who knows the username can send.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		fail(c, http.StatusNotFound, "userName is required")
		return
	}
	if req.Message == "" {
		fail(c, http.StatusNotFound, "message is required")
		return
	}

	if err := validate.MessageContent(req.Message); err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}
	if err := validate.Username(req.Username); err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}

	ctx := c.Request.Context()

	user, err := h.db.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fail(c, http.StatusNotFound, "username not found | wrong username")
			return
		}
		log.Error("failed to look up message recipient", "error", err)
		fail(c, http.StatusInternalServerError, "error while sending message")
		return
	}

	if !user.IsAcceptingMessage {
		// success so senders can't distinguish a muted inbox from a delivery
		respond(c, http.StatusOK, models.Response{
			Success: true,
			Message: "User is busy | Not accepting your msg",
		})
		return
	}

	msg := database.Message{
		ID:        bson.NewObjectID(),
		Content:   req.Message,
		CreatedAt: time.Now(),
	}
	if err := h.db.AppendMessage(ctx, user.ID, msg); err != nil {
		log.Error("failed to append message", "error", err, "user", user.Username)
		fail(c, http.StatusInternalServerError, "error while sending message")
		return
	}

	// The message is committed, notification delivery must not undo it.
	go func(mail email.NewMessageMail) {
		if err := h.mailer.SendNewMessageNotification(mail); err != nil {
			log.Error("failed to send new message notification", "error", err, "user", mail.Username)
		}
	}(email.NewMessageMail{
		UserEmail: user.Email,
		Username:  user.Username,
		AppName:   h.appName(),
		ServerURL: h.cfg.ServerURL,
	})

	respond(c, http.StatusOK, models.Response{
		Success: true,
		Message: "Message sent successfully 🎉",
	})
}

// GetMessages returns the caller's inbox, newest first.
func (h *Handler) GetMessages(c *gin.Context) {
	sess := auth.CurrentSession(c)

	userID, err := bson.ObjectIDFromHex(sess.UserID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid session")
		return
	}

	msgs, err := h.db.ListMessages(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to list messages", "error", err, "user", sess.Username)
		fail(c, http.StatusInternalServerError, "error while fetching messages")
		return
	}

	if len(msgs) == 0 {
		respond(c, http.StatusOK, models.Response{
			Success:  true,
			Message:  "no messages to show",
			Messages: []database.Message{},
		})
		return
	}

	respond(c, http.StatusOK, models.Response{
		Success:  true,
		Message:  "messages fetched successfully",
		Messages: msgs,
	})
}

// DeleteMessage removes a single message from the caller's inbox.
func (h *Handler) DeleteMessage(c *gin.Context) {
	sess := auth.CurrentSession(c)

	msgIDHex := c.Query("msgId")
	if msgIDHex == "" {
		fail(c, http.StatusUnauthorized, "Provide msgId in queryParams")
		return
	}
	msgID, err := bson.ObjectIDFromHex(msgIDHex)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Provide msgId in queryParams")
		return
	}

	userID, err := bson.ObjectIDFromHex(sess.UserID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid session")
		return
	}

	if err := h.db.DeleteMessage(c.Request.Context(), userID, msgID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "User not found with given session")
			return
		}
		log.Error("failed to delete message", "error", err, "user", sess.Username)
		fail(c, http.StatusInternalServerError, "error while deleting message")
		return
	}

	respond(c, http.StatusOK, models.Response{
		Success: true,
		Message: "message deleted successfully 🎉🎉",
	})
}

// GetAcceptingMessages reports whether the caller's inbox accepts messages.
// The flag is read fresh from the database, not from the session snapshot.
func (h *Handler) GetAcceptingMessages(c *gin.Context) {
	sess := auth.CurrentSession(c)

	userID, err := bson.ObjectIDFromHex(sess.UserID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid session")
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fail(c, http.StatusForbidden, "User doesn't exist")
			return
		}
		log.Error("failed to load user", "error", err, "user", sess.Username)
		fail(c, http.StatusInternalServerError, "error while fetching accept-messaging field")
		return
	}

	accepting := user.IsAcceptingMessage
	respond(c, http.StatusOK, models.Response{
		Success:            true,
		Message:            "fetched the accept-messaging field successfully",
		IsAcceptingMessage: &accepting,
	})
}

type setAcceptingRequest struct {
	IsAcceptingMessage *bool `json:"isAcceptingMessage"`
}

// SetAcceptingMessages toggles the caller's accept-messaging flag.
func (h *Handler) SetAcceptingMessages(c *gin.Context) {
	sess := auth.CurrentSession(c)

	var req setAcceptingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAcceptingMessage == nil {
		fail(c, http.StatusBadRequest, "isAcceptingMessage expected from body")
		return
	}

	userID, err := bson.ObjectIDFromHex(sess.UserID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid session")
		return
	}

	if err := h.db.SetAcceptingMessages(c.Request.Context(), userID, *req.IsAcceptingMessage); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fail(c, http.StatusForbidden, "User doesn't exist")
			return
		}
		log.Error("failed to toggle accept-messaging field", "error", err, "user", sess.Username)
		fail(c, http.StatusInternalServerError, "error while toggling accept-messaging field")
		return
	}

	respond(c, http.StatusOK, models.Response{
		Success:            true,
		Message:            "toggle the accept-messaging field successfully 🎉",
		IsAcceptingMessage: req.IsAcceptingMessage,
	})
}
