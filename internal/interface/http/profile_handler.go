package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todosync/internal/application"
	"todosync/pkg/response"
	"todosync/pkg/validation"
)

type ProfileHandler struct {
	Svc    *application.ProfileService
	Logger *logrus.Logger
}

func NewProfileHandler(svc *application.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Logger: logger}
}

type updateUsernameRequest struct {
	Username string `json:"username" binding:"nonzero"`
}

type updateAvatarRequest struct {
	PhotoBase64 string `json:"photo_base64" binding:"required"`
}

// Get GET /api/profile is a one-shot read, never live-subscribed. A
// missing profile document comes back as empty fields, not an error.
func (h *ProfileHandler) Get(c *gin.Context) {
	uid := c.GetString("userID")
	p := h.Svc.Load(c.Request.Context(), uid)
	response.Success(c, http.StatusOK, gin.H{
		"user_id":      p.UserID,
		"email":        p.Email,
		"username":     p.Username,
		"photo_base64": p.PhotoBase64,
	}, "profile", nil)
}

// UpdateUsername PUT /api/profile/username
func (h *ProfileHandler) UpdateUsername(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.UpdateUsername(c.Request.Context(), uid, req.Username); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to update username", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"username": req.Username}, "Username updated!", nil)
}

// UpdateAvatar PUT /api/profile/avatar
func (h *ProfileHandler) UpdateAvatar(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.UpdateAvatar(c.Request.Context(), uid, req.PhotoBase64); err != nil {
		switch {
		case errors.Is(err, application.ErrAvatarTooLarge):
			response.Error[any](c, http.StatusRequestEntityTooLarge, "avatar image exceeds the size limit", nil)
		case errors.Is(err, application.ErrInvalidImage):
			response.Error[any](c, http.StatusBadRequest, "avatar image is not valid base64", nil)
		default:
			response.Error[any](c, http.StatusInternalServerError, "failed to update avatar", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"updated": true}, "avatar updated", nil)
}
