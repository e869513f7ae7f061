package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/whispr/internal/api/models"
	"github.com/jon4hz/whispr/internal/database"
	"github.com/jon4hz/whispr/internal/notify/email"
	"github.com/jon4hz/whispr/internal/otp"
	"github.com/jon4hz/whispr/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

type signUpRequest struct {
	Username string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new user and mails the verification code. An unverified
// user colliding on email or username is overwritten, a verified one blocks
// the signup.
func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "userName, email and password are required")
		return
	}

	if err := validate.Username(req.Username); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Email(req.Email); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Password(req.Password); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()

	if _, err := h.db.GetVerifiedUserByEmailOrUsername(ctx, req.Email, req.Username); err == nil {
		fail(c, http.StatusForbidden, "User Already exist with this email or userName")
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		log.Error("failed to check for existing user", "error", err)
		fail(c, http.StatusInternalServerError, "error while registering user")
		return
	}

	code, err := otp.Generate()
	if err != nil {
		log.Error("failed to generate verification code", "error", err)
		fail(c, http.StatusInternalServerError, "error while registering user")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		fail(c, http.StatusInternalServerError, "error while registering user")
		return
	}

	user := &database.User{
		Email:                      req.Email,
		Username:                   req.Username,
		Password:                   string(hashed),
		VerificationCode:           code,
		VerificationCodeExpiration: otp.Expiry(),
	}
	if _, err := h.db.SaveUnverifiedUser(ctx, user); err != nil {
		log.Error("failed to save user", "error", err)
		fail(c, http.StatusInternalServerError, "error while registering user")
		return
	}

	// The user record is already written at this point. A failed delivery is
	// surfaced so the client can retry the signup, which reissues the code.
	if err := h.mailer.SendVerificationCode(email.VerificationMail{
		UserEmail: req.Email,
		Username:  req.Username,
		Code:      code,
		AppName:   h.appName(),
	}); err != nil {
		log.Error("failed to send verification email", "error", err, "user", req.Username)
		fail(c, http.StatusServiceUnavailable, "error while sending email "+err.Error())
		return
	}

	respond(c, http.StatusOK, models.Response{
		Success: true,
		Message: "user registered and otp is send to respective email",
	})
}

type verifyOTPRequest struct {
	OTP string `json:"otp"`
}

// VerifyOTP activates an account if the submitted code matches before expiry.
// The check order (existence, already verified, expiry, code match) decides
// which error a client sees when several apply, so it must not change.
func (h *Handler) VerifyOTP(c *gin.Context) {
	username := c.Query("userName")
	if username == "" {
		fail(c, http.StatusNotFound, "userName expected from query params")
		return
	}

	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OTP == "" {
		fail(c, http.StatusNotFound, "otp expected from body")
		return
	}

	ctx := c.Request.Context()

	user, err := h.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fail(c, http.StatusNotFound, "no user exist with this userName")
			return
		}
		log.Error("failed to look up user for verification", "error", err)
		fail(c, http.StatusInternalServerError, "error while verifying otp")
		return
	}

	if user.IsVerified {
		fail(c, http.StatusNotFound, "Account already verified")
		return
	}

	if time.Now().After(user.VerificationCodeExpiration) {
		fail(c, http.StatusNotFound, "older verification code expire")
		return
	}

	if user.VerificationCode != req.OTP {
		fail(c, http.StatusNotFound, "wrong entered verification code")
		return
	}

	if err := h.db.MarkUserVerified(ctx, user.ID); err != nil {
		log.Error("failed to mark user verified", "error", err)
		fail(c, http.StatusInternalServerError, "error while verifying otp")
		return
	}

	token, err := h.tokens.Encode(user.ID.Hex(), user.Username, true, user.IsAcceptingMessage)
	if err != nil {
		log.Error("failed to create session token", "error", err)
		fail(c, http.StatusInternalServerError, "error while creating session")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cfg.Auth.CookieName, token, h.cfg.Auth.CookieMaxAge, "/", "", false, true)

	respond(c, http.StatusOK, models.Response{
		Success: true,
		Message: "Account verified successfully",
	})
}

func (h *Handler) appName() string {
	if h.cfg.Email != nil && h.cfg.Email.FromName != "" {
		return h.cfg.Email.FromName
	}
	return "Whispr"
}
