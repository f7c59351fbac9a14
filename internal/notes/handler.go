package notes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for personal notes
type Handler struct {
	service Service
}

// NewHandler creates a new notes handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /notes
func (h *Handler) Create(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.service.Create(c.Request.Context(), c.GetString("email"), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
		return
	}

	c.JSON(http.StatusCreated, note)
}

// Get handles GET /notes/:id
func (h *Handler) Get(c *gin.Context) {
	noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return
	}

	note, err := h.service.Get(c.Request.Context(), c.GetString("email"), noteID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get note"})
		}
		return
	}

	c.JSON(http.StatusOK, note)
}

// List handles GET /notes
func (h *Handler) List(c *gin.Context) {
	notes, err := h.service.List(c.Request.Context(), c.GetString("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// Update handles PUT /notes/:id
func (h *Handler) Update(c *gin.Context) {
	noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.service.Update(c.Request.Context(), c.GetString("email"), noteID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update note"})
		}
		return
	}

	c.JSON(http.StatusOK, note)
}

// Delete handles DELETE /notes/:id
func (h *Handler) Delete(c *gin.Context) {
	noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.GetString("email"), noteID); err != nil {
		switch {
		case errors.Is(err, ErrNoteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}
