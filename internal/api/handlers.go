package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ComplyCheck/internal/retrieval/cache"
	"ComplyCheck/internal/retrieval/retriever"
	"ComplyCheck/pkg/logger"
)

// Handler exposes the retrieval library over HTTP.
type Handler struct {
	retriever   *retriever.Retriever
	cache       *cache.ResultCache // nil when caching is disabled
	log         *logger.Logger
	defaultTopK int
}

// NewHandler creates a Handler. cache may be nil.
func NewHandler(r *retriever.Retriever, c *cache.ResultCache, defaultTopK int, log *logger.Logger) *Handler {
	return &Handler{
		retriever:   r,
		cache:       c,
		log:         log,
		defaultTopK: defaultTopK,
	}
}

type retrieveRequest struct {
	Query     string   `json:"query" binding:"required"`
	TopK      int      `json:"top_k"`
	Standards []string `json:"standards"`
}

type loadRequest struct {
	Standards []string `json:"standards" binding:"required"`
}

// Retrieve handles POST /api/v1/retrieve.
func (h *Handler) Retrieve(c *gin.Context) {
	var req retrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TopK <= 0 {
		req.TopK = h.defaultTopK
	}

	if cached, ok := h.cache.Get(c.Request.Context(), req.Query, req.TopK, req.Standards); ok {
		h.log.Debug(fmt.Sprintf("Result cache hit for query %.50q", req.Query))
		c.JSON(http.StatusOK, cached)
		return
	}

	result := h.retriever.Retrieve(c.Request.Context(), req.Query, req.TopK, req.Standards)
	h.cache.Put(c.Request.Context(), req.Query, req.TopK, req.Standards, &result)

	c.JSON(http.StatusOK, result)
}

// LoadStandards handles POST /api/v1/standards/load.
func (h *Handler) LoadStandards(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loaded, errs := h.retriever.LoadSelectedStandards(c.Request.Context(), req.Standards)
	c.JSON(http.StatusOK, gin.H{
		"loaded": loaded,
		"errors": errs,
	})
}

// AvailableStandards handles GET /api/v1/standards.
func (h *Handler) AvailableStandards(c *gin.Context) {
	c.JSON(http.StatusOK, h.retriever.GetAvailableStandards(c.Request.Context()))
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
