package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"corpora/src/core/generation"
	"corpora/src/core/knowledgebase"
)

// Handler exposes the knowledge base and generation services over HTTP.
// Authentication is outside this layer: the tenant id arrives as a path
// parameter set by the fronting API gateway.
type Handler struct {
	kbService  *knowledgebase.Service
	genService *generation.Service
	prefWriter PreferenceWriter
}

// NewHandler builds the HTTP surface. prefWriter may be nil, in which
// case the model preference endpoint reports unavailable.
func NewHandler(kbService *knowledgebase.Service, genService *generation.Service, prefWriter PreferenceWriter) *Handler {
	return &Handler{
		kbService:  kbService,
		genService: genService,
		prefWriter: prefWriter,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	// Document routes
	api.POST("/tenants/:id/documents", h.UploadDocument)
	api.GET("/tenants/:id/documents", h.ListDocuments)
	api.DELETE("/tenants/:id/documents/:name", h.DeleteDocument)

	// Index routes
	api.POST("/tenants/:id/index", h.RebuildIndex)

	// Search and chat routes
	api.POST("/tenants/:id/search", h.Search)
	api.POST("/tenants/:id/chat", h.Chat)

	// Model preference routes
	api.GET("/tenants/:id/model", h.GetModel)
	api.PUT("/tenants/:id/model", h.SetModel)

	// Tenant lifecycle
	api.DELETE("/tenants/:id", h.ClearTenant)

	r.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendError(c *gin.Context, status int, err error) {
	code := "INTERNAL_ERROR"
	if status == http.StatusBadRequest {
		code = "BAD_REQUEST"
	} else if status == http.StatusNotFound {
		code = "NOT_FOUND"
	} else if status == http.StatusServiceUnavailable {
		code = "SERVICE_UNAVAILABLE"
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func tenantID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		sendError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

func (h *Handler) CheckHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
