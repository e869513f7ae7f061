package auth

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/whispr/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// CredentialsProvider handles email/password sign-in backed by the
// library-managed session.
type CredentialsProvider struct {
	db database.DB
}

// NewCredentialsProvider creates a credentials provider.
func NewCredentialsProvider(db database.DB) *CredentialsProvider {
	return &CredentialsProvider{db: db}
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user by email and password and populates the
// library-managed session.
func (p *CredentialsProvider) Login(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email and password are required"})
		return
	}

	user, err := p.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not exist with this email"})
			return
		}
		log.Error("failed to look up user for sign-in", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	if !user.IsVerified {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Verify email"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Wrong password"})
		return
	}

	libSession := sessions.Default(c)
	libSession.Set(sessionKeyUserID, user.ID.Hex())
	libSession.Set(sessionKeyUsername, user.Username)
	libSession.Set(sessionKeyIsVerified, user.IsVerified)
	libSession.Set(sessionKeyIsAccepting, user.IsAcceptingMessage)
	if err := libSession.Save(); err != nil {
		log.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "signed in successfully"})
}

// ClearLibrarySession wipes the library-managed session, used at logout.
func ClearLibrarySession(c *gin.Context) error {
	libSession := sessions.Default(c)
	libSession.Clear()
	return libSession.Save()
}
