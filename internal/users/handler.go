package users

import (
	"log"
	"net/http"
	"strconv"

	"edusphere/internal/token"

	"github.com/gin-gonic/gin"
)

// Handler handles user and login HTTP requests
type Handler struct {
	service Service
	issuer  *token.Issuer
}

// NewHandler creates a new users handler
func NewHandler(service Service, issuer *token.Issuer) *Handler {
	return &Handler{
		service: service,
		issuer:  issuer,
	}
}

// IssueToken handles POST /jwt
// The client supplies the email it authenticated with; the response carries a
// long-lived signed token with no role claim.
func (h *Handler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.issuer.Issue(req.Email)
	if err != nil {
		log.Printf("Failed to issue token for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": t})
}

// Register handles POST /users/:email
// Repeat registrations return the stored record instead of failing.
func (h *Handler) Register(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.RegisterOrGet(c.Request.Context(), email, req.Name)
	if err != nil {
		log.Printf("Failed to register user %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Me handles GET /users/me
func (h *Handler) Me(c *gin.Context) {
	email := c.GetString("email")

	user, err := h.service.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if err == ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("Failed to get user %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// List handles GET /users?searchText=&page=&limit= (admin only)
func (h *Handler) List(c *gin.Context) {
	searchText := c.Query("searchText")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.service.List(c.Request.Context(), searchText, page, limit)
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateRole handles PATCH /users/role/:email (admin only)
func (h *Handler) UpdateRole(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.UpdateRole(c.Request.Context(), email, req.Role)
	if err != nil {
		log.Printf("Failed to update role for %s: %v", email, err)

		switch err {
		case ErrInvalidRole:
			c.JSON(http.StatusBadRequest, gin.H{"error": "role must be student, tutor, or admin"})
		case ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update role"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}
