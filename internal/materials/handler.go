package materials

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"edusphere/internal/sessions"
	"edusphere/internal/users"
)

// Handler handles HTTP requests for study materials
type Handler struct {
	service *Service
}

// NewHandler creates a new materials handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PresignUpload handles POST /materials/upload-url
func (h *Handler) PresignUpload(c *gin.Context) {
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.PresignUpload(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage service is not available"})
		case strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "not allowed"):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Create handles POST /session/:id/materials
func (h *Handler) Create(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	var req CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tutorEmail := c.GetString("email")

	material, err := h.service.Create(c.Request.Context(), sessionID, tutorEmail, req)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		case errors.Is(err, ErrInvalidMaterial):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotSessionOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Session belongs to another tutor"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create material"})
		}
		return
	}

	c.JSON(http.StatusCreated, material)
}

// ListBySession handles GET /session/:id/materials
func (h *Handler) ListBySession(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	materials, err := h.service.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list materials"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"materials": materials})
}

// Delete handles DELETE /materials/:id
func (h *Handler) Delete(c *gin.Context) {
	materialID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid material ID"})
		return
	}

	email := c.GetString("email")
	role := users.Role(c.GetString("role"))

	if err := h.service.Delete(c.Request.Context(), materialID, email, role); err != nil {
		switch {
		case errors.Is(err, ErrMaterialNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
		case errors.Is(err, ErrNotSessionOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Material belongs to another tutor"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete material"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Material deleted"})
}
