package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/whispr/internal/api/auth"
	"github.com/jon4hz/whispr/internal/api/models"
	"github.com/jon4hz/whispr/internal/config"
	"github.com/jon4hz/whispr/internal/database"
	"github.com/jon4hz/whispr/internal/notify/email"
	"github.com/jon4hz/whispr/internal/session"
	"github.com/jon4hz/whispr/internal/suggest"
	"github.com/patrickmn/go-cache"
)

const (
	profileCacheTTL     = 30 * time.Second
	profileCacheCleanup = time.Minute
)

// Mailer delivers the transactional emails.
type Mailer interface {
	SendVerificationCode(m email.VerificationMail) error
	SendNewMessageNotification(m email.NewMessageMail) error
}

type Handler struct {
	cfg          *config.Config
	db           database.DB
	mailer       Mailer
	suggester    *suggest.Client
	tokens       *session.TokenManager
	resolver     *auth.Resolver
	profileCache *cache.Cache
}

// New creates the API handler set.
func New(
	cfg *config.Config,
	db database.DB,
	mailer Mailer,
	suggester *suggest.Client,
	tokens *session.TokenManager,
	resolver *auth.Resolver,
) *Handler {
	return &Handler{
		cfg:          cfg,
		db:           db,
		mailer:       mailer,
		suggester:    suggester,
		tokens:       tokens,
		resolver:     resolver,
		profileCache: cache.New(profileCacheTTL, profileCacheCleanup),
	}
}

// respond writes the uniform response envelope.
func respond(c *gin.Context, status int, resp models.Response) {
	c.JSON(status, resp)
}

func fail(c *gin.Context, status int, message string) {
	respond(c, status, models.Response{Success: false, Message: message})
}
