package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"edusphere/internal/config"
	"edusphere/internal/middleware"
	"edusphere/internal/users"
)

// RegisterRoutes builds the gin engine with the full route table and the
// per-group access guards
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.GetEnvOrDefault("FRONTEND_ORIGIN", "http://localhost:5173")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/health", s.healthHandler)

	userHandler := users.NewHandler(s.users, s.issuer)

	// Public: token issuance and registration
	r.POST("/jwt", userHandler.IssueToken)
	r.POST("/users/:email", userHandler.Register)

	auth := middleware.RequireAuth(s.issuer)
	tutorOnly := middleware.RequireRole(s.users, users.RoleTutor)
	adminOnly := middleware.RequireRole(s.users, users.RoleAdmin)
	studentOnly := middleware.RequireRole(s.users, users.RoleStudent)
	tutorOrAdmin := middleware.RequireRole(s.users, users.RoleTutor, users.RoleAdmin)
	anyRole := middleware.RequireRole(s.users, users.RoleStudent, users.RoleTutor, users.RoleAdmin)

	r.GET("/users/me", auth, userHandler.Me)
	r.GET("/users", auth, adminOnly, userHandler.List)
	r.PATCH("/users/role/:email", auth, adminOnly, userHandler.UpdateRole)

	session := r.Group("/session", auth)
	{
		session.POST("", tutorOnly, s.sessions.Create)
		session.GET("", s.sessions.List)
		session.GET("/:id", s.sessions.Get)
		session.PATCH("/:id", adminOnly, s.sessions.UpdateStatus)
		session.DELETE("/:id", adminOnly, s.sessions.Delete)

		session.GET("/:id/bookings", tutorOrAdmin, s.bookings.ListForSession)

		session.POST("/:id/materials", tutorOnly, s.material.Create)
		session.GET("/:id/materials", s.material.ListBySession)
	}

	r.GET("/tutors/:email/session", auth, s.sessions.ListByTutor)

	booked := r.Group("/bookedSession", auth)
	{
		booked.POST("", studentOnly, s.bookings.Create)
		booked.GET("", s.bookings.ListMine)
		booked.DELETE("/:id", anyRole, s.bookings.Cancel)
	}

	material := r.Group("/materials", auth)
	{
		material.POST("/upload-url", tutorOnly, s.material.PresignUpload)
		material.DELETE("/:id", tutorOrAdmin, s.material.Delete)
	}

	note := r.Group("/notes", auth)
	{
		note.POST("", s.notes.Create)
		note.GET("", s.notes.List)
		note.GET("/:id", s.notes.Get)
		note.PUT("/:id", s.notes.Update)
		note.DELETE("/:id", s.notes.Delete)
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	response := make(map[string]interface{})

	response["database"] = s.db.Health()

	if s.cache != nil {
		cacheHealth := map[string]string{"status": "up"}
		if err := s.cache.Health(c.Request.Context()); err != nil {
			cacheHealth["status"] = "down"
			cacheHealth["error"] = err.Error()
		}
		response["cache"] = cacheHealth
	}

	if s.storage != nil {
		storageHealth := map[string]string{"status": "up"}
		if err := s.storage.Health(c.Request.Context()); err != nil {
			storageHealth["status"] = "down"
			storageHealth["error"] = err.Error()
		}
		response["storage"] = storageHealth
	}

	c.JSON(http.StatusOK, response)
}
