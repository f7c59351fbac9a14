package bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"edusphere/internal/sessions"
	"edusphere/internal/users"
)

// Handler handles HTTP requests for bookings
type Handler struct {
	service *Service
}

// NewHandler creates a new bookings handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /bookedSession
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentEmail := c.GetString("email")

	booking, err := h.service.Book(c.Request.Context(), studentEmail, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		case errors.Is(err, ErrSessionNotBookable):
			c.JSON(http.StatusConflict, gin.H{"error": "Session is not open for booking"})
		case errors.Is(err, ErrAlreadyBooked):
			c.JSON(http.StatusConflict, gin.H{"error": "Session already booked"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book session"})
		}
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListMine handles GET /bookedSession
func (h *Handler) ListMine(c *gin.Context) {
	studentEmail := c.GetString("email")

	details, err := h.service.ListForStudent(c.Request.Context(), studentEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": details})
}

// ListForSession handles GET /session/:id/bookings
func (h *Handler) ListForSession(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	bookings, err := h.service.ListForSession(c.Request.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list session bookings"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Cancel handles DELETE /bookedSession/:id
func (h *Handler) Cancel(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	email := c.GetString("email")
	role := users.Role(c.GetString("role"))

	if err := h.service.Cancel(c.Request.Context(), bookingID, email, role); err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot cancel another student's booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}
