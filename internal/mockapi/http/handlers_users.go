package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	userdomain "github.com/GoSim-25-26J-441/go-sim-client/internal/users/domain"
)

// requestAPIKey issues a key for the email. The real backend mails it; the
// mock keeps it pending and logs it at debug level.
func (h *Handler) requestAPIKey(c *gin.Context) {
	var req userdomain.APIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		respondDetail(c, http.StatusUnprocessableEntity, "email is required")
		return
	}

	key := "gsk_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	email := strings.TrimSpace(req.Email)
	if err := h.store.SetPendingAPIKey(c.Request.Context(), email, key); err != nil {
		h.respondStoreError(c, "user.request_api_key", err)
		return
	}
	h.logger.Debug("api key issued", zap.String("email", email), zap.String("api_key", key))
	respondData(c, http.StatusOK, nil)
}

func (h *Handler) saveAPIKey(c *gin.Context) {
	var req userdomain.SaveAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.APIKey) == "" {
		respondDetail(c, http.StatusUnprocessableEntity, "api_key is required")
		return
	}
	if err := h.store.SetAPIKey(c.Request.Context(), userID(c), strings.TrimSpace(req.APIKey)); err != nil {
		h.respondStoreError(c, "user.save_api_key", err)
		return
	}
	respondData(c, http.StatusOK, nil)
}

func (h *Handler) getAPIKey(c *gin.Context) {
	key, err := h.store.GetAPIKey(c.Request.Context(), userID(c))
	if err != nil {
		h.respondStoreError(c, "user.get_api_key", err)
		return
	}
	respondData(c, http.StatusOK, userdomain.APIKey{APIKey: key})
}
