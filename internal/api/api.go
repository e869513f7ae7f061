package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jon4hz/whispr/internal/api/auth"
	"github.com/jon4hz/whispr/internal/api/handler"
	"github.com/jon4hz/whispr/internal/config"
	"github.com/jon4hz/whispr/internal/database"
	"github.com/jon4hz/whispr/internal/notify/email"
	"github.com/jon4hz/whispr/internal/session"
	"github.com/jon4hz/whispr/internal/suggest"
)

type Server struct {
	cfg         *config.Config
	ginEngine   *gin.Engine
	resolver    *auth.Resolver
	credentials *auth.CredentialsProvider
	handler     *handler.Handler
}

func New(cfg *config.Config, db database.DB, mailer *email.Service, suggester *suggest.Client) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	tokens := session.NewTokenManager(cfg.Auth)
	resolver := auth.NewResolver(tokens, cfg.Auth.CookieName)

	return &Server{
		cfg:         cfg,
		ginEngine:   gin.Default(),
		resolver:    resolver,
		credentials: auth.NewCredentialsProvider(db),
		handler:     handler.New(cfg, db, mailer, suggester, tokens, resolver),
	}, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("whispr_session", store))
}

// requestID tags every request so log lines can be correlated across handlers.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) setupRoutes() {
	s.setupSession()

	s.ginEngine.Use(requestID())

	// suggestions are streamed, gzip would buffer the chunks
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/api/suggest-messages"})))

	api := s.ginEngine.Group("/api")

	// account lifecycle
	api.POST("/signUp", s.handler.SignUp)
	api.POST("/verify-otp", s.handler.VerifyOTP)
	api.POST("/sign-in", s.credentials.Login)

	// session
	api.GET("/get-session", s.handler.GetSession)
	api.DELETE("/delete-session", s.handler.DeleteSession)

	// public endpoints
	api.POST("/send-message", s.handler.SendMessage)
	api.GET("/verify-username", s.handler.VerifyUsername)
	api.GET("/validate-username", s.handler.ValidateUsername)
	api.GET("/get-all-users", s.handler.GetAllUsers)
	api.GET("/suggest-messages", s.handler.SuggestMessages)

	// endpoints requiring a session
	protected := api.Group("/")
	protected.Use(s.resolver.RequireAuth())
	protected.GET("/get-messages", s.handler.GetMessages)
	protected.DELETE("/delete-message", s.handler.DeleteMessage)
	protected.GET("/accepting-messages", s.handler.GetAcceptingMessages)
	protected.POST("/accepting-messages", s.handler.SetAcceptingMessages)
}

func (s *Server) Run() error {
	s.setupRoutes()

	return s.ginEngine.Run(s.cfg.Listen)
}
