package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/mockapi/store"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
)

// Handler bundles the dependencies for the mock backend endpoints.
type Handler struct {
	store  store.Store
	logger *zap.Logger
}

func New(s store.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: s, logger: logger}
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

func respondDetail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

// respondStoreError maps store sentinels to backend status codes.
func (h *Handler) respondStoreError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, store.ErrProjectNotFound):
		respondDetail(c, http.StatusNotFound, "Project not found")
	case errors.Is(err, store.ErrAssetNotFound):
		respondDetail(c, http.StatusNotFound, "Asset not found")
	case errors.Is(err, store.ErrProcessNotFound):
		respondDetail(c, http.StatusNotFound, "Process not found")
	case errors.Is(err, store.ErrAPIKeyNotFound):
		respondDetail(c, http.StatusNotFound, "API key not found")
	default:
		h.logger.Error("store operation failed",
			zap.String("op", op),
			zap.String("request_id", c.GetString(ctxRequestID)),
			zap.Error(err))
		respondDetail(c, http.StatusInternalServerError, "internal error")
	}
}

// pageParams reads page and page_size; anything unparsable counts as absent.
func pageParams(c *gin.Context) domain.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return domain.Page{Page: page, PageSize: size}
}
