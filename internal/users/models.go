package users

import "time"

// Role determines a user's authorization scope. A user holds exactly one role
// at a time and storage is its single source of truth.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether the role is one of the known values
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleTutor || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// User represents a registered identity, uniquely keyed by email
type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the request payload for registering a user
type RegisterRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdateRoleRequest is the request payload for an admin role change
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

// TokenRequest is the request payload for issuing a login token
type TokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PaginatedUsersResponse wraps a page of users with the total count
type PaginatedUsersResponse struct {
	Users      []User `json:"users"`
	TotalCount int64  `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}
