package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadDocument stores one uploaded file in the tenant's corpus. The
// index is rebuilt on explicit request, not per upload.
func (h *Handler) UploadDocument(c *gin.Context) {
	id, ok := tenantID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	doc, err := h.kbService.UploadDocument(c.Request.Context(), id, fileHeader.Filename, content)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	id, ok := tenantID(c)
	if !ok {
		return
	}

	docs, err := h.kbService.ListDocuments(c.Request.Context(), id)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	id, ok := tenantID(c)
	if !ok {
		return
	}

	removed, err := h.kbService.DeleteDocument(c.Request.Context(), id, c.Param("name"))
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	if !removed {
		sendError(c, http.StatusNotFound, fmt.Errorf("document not found: %s", c.Param("name")))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// RebuildIndex recomputes the tenant's index from the current corpus.
func (h *Handler) RebuildIndex(c *gin.Context) {
	id, ok := tenantID(c)
	if !ok {
		return
	}

	built, err := h.kbService.BuildIndex(c.Request.Context(), id)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"built": built})
}

// ClearTenant discards every document and index artifact for a tenant.
func (h *Handler) ClearTenant(c *gin.Context) {
	id, ok := tenantID(c)
	if !ok {
		return
	}

	if err := h.kbService.ClearTenant(c.Request.Context(), id); err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
