package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todosync/internal/application"
	"todosync/pkg/helpers"
	"todosync/pkg/response"
	"todosync/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email           string `json:"email" binding:"omitempty,email"`
	Password        string `json:"password" binding:"omitempty,pwd"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerMessage maps the known registration failures to the exact
// human-readable wording clients show, with a generic fallback.
func registerMessage(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrMissingFields):
		return http.StatusBadRequest, "Please fill all fields."
	case errors.Is(err, application.ErrPasswordMismatch):
		return http.StatusBadRequest, "Passwords do not match."
	case errors.Is(err, application.ErrWeakPassword):
		return http.StatusBadRequest, "Password must be at least 6 characters long."
	case errors.Is(err, application.ErrEmailTaken):
		return http.StatusConflict, "This email is already registered. Please use a different email or try logging in."
	default:
		return http.StatusInternalServerError, "Registration failed. Please try again."
	}
}

// Register POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		details := validation.ToDetails(err)
		_, weakPwd := details["password"]
		_, badEmail := details["email"]
		// Emptiness and mismatch come before any format mapping, the
		// same order the submit path checks them in.
		switch {
		case details["payload"] != "":
			response.Error[any](c, http.StatusBadRequest, "invalid payload", details)
		case req.Email == "" || req.Password == "" || req.ConfirmPassword == "":
			response.Error[any](c, http.StatusBadRequest, "Please fill all fields.", nil)
		case req.Password != req.ConfirmPassword:
			response.Error[any](c, http.StatusBadRequest, "Passwords do not match.", nil)
		case weakPwd:
			response.Error[any](c, http.StatusBadRequest, "Password must be at least 6 characters long.", details)
		case badEmail:
			response.Error[any](c, http.StatusBadRequest, "Please enter a valid email address.", details)
		default:
			response.Error[any](c, http.StatusBadRequest, "invalid payload", details)
		}
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		status, msg := registerMessage(err)
		response.Error[any](c, status, msg, nil)
		return
	}

	// Sign the fresh account in right away; a token failure here is not
	// worth failing the registration over.
	if pair, terr := h.Svc.IssueTokens(c.Request.Context(), res.Identity); terr == nil {
		h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	} else if h.Logger != nil {
		h.Logger.WithError(terr).WithField("user_id", res.Identity.ID).Warn("post-register token issue failed")
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user_id":         res.Identity.ID,
		"email":           res.Identity.Email,
		"profile_created": res.ProfileErr == nil,
	}, "account created", nil)
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrMissingFields) {
			response.Error[any](c, http.StatusBadRequest, "Please enter both email and password.", nil)
			return
		}
		// The stored error text is surfaced verbatim; clients show it
		// without retrying.
		response.Error[any](c, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user_id": u.ID,
		"email":   u.Email,
	}, "login successful", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout POST /api/logout drops the session (publishing signed-out to
// every watcher) and clears cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString("userID")
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Warn("session delete failed")
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}
