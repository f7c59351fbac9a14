package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"edusphere/internal/token"
	"edusphere/internal/users"
)

type stubVerifier struct {
	claims *token.Claims
	err    error
}

func (s *stubVerifier) Verify(string) (*token.Claims, error) {
	return s.claims, s.err
}

type stubRegistry struct {
	roles map[string]users.Role
	err   error
}

func (s *stubRegistry) RoleOf(_ context.Context, email string) (users.Role, error) {
	if s.err != nil {
		return "", s.err
	}
	role, ok := s.roles[email]
	if !ok {
		return "", users.ErrUserNotFound
	}
	return role, nil
}

func newTestRouter(guards []gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(guards, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"email": c.GetString("email"),
			"role":  c.GetString("role"),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthMissingHeader(t *testing.T) {
	r := newTestRouter([]gin.HandlerFunc{RequireAuth(&stubVerifier{})})

	if w := doRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing header, got %d", w.Code)
	}
}

func TestRequireAuthBadScheme(t *testing.T) {
	r := newTestRouter([]gin.HandlerFunc{RequireAuth(&stubVerifier{})})

	if w := doRequest(r, "Basic abc123"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for non-bearer scheme, got %d", w.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	verifier := &stubVerifier{err: token.ErrInvalidToken}
	r := newTestRouter([]gin.HandlerFunc{RequireAuth(verifier)})

	if w := doRequest(r, "Bearer bad-token"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid token, got %d", w.Code)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	verifier := &stubVerifier{claims: &token.Claims{Email: "student@example.com"}}
	r := newTestRouter([]gin.HandlerFunc{RequireAuth(verifier)})

	w := doRequest(r, "Bearer good-token")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "student@example.com") {
		t.Errorf("expected email in response, got %s", body)
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	registry := &stubRegistry{roles: map[string]users.Role{}}
	r := newTestRouter([]gin.HandlerFunc{RequireRole(registry, users.RoleAdmin)})

	if w := doRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when auth guard did not run, got %d", w.Code)
	}
}

func TestRequireRoleNoUserRecord(t *testing.T) {
	verifier := &stubVerifier{claims: &token.Claims{Email: "ghost@example.com"}}
	registry := &stubRegistry{roles: map[string]users.Role{}}
	r := newTestRouter([]gin.HandlerFunc{
		RequireAuth(verifier),
		RequireRole(registry, users.RoleStudent),
	})

	if w := doRequest(r, "Bearer good-token"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for identity without a role, got %d", w.Code)
	}
}

func TestRequireRoleMismatch(t *testing.T) {
	verifier := &stubVerifier{claims: &token.Claims{Email: "student@example.com"}}
	registry := &stubRegistry{roles: map[string]users.Role{
		"student@example.com": users.RoleStudent,
	}}
	r := newTestRouter([]gin.HandlerFunc{
		RequireAuth(verifier),
		RequireRole(registry, users.RoleAdmin),
	})

	if w := doRequest(r, "Bearer good-token"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for insufficient role, got %d", w.Code)
	}
}

func TestRequireRoleMatch(t *testing.T) {
	verifier := &stubVerifier{claims: &token.Claims{Email: "admin@example.com"}}
	registry := &stubRegistry{roles: map[string]users.Role{
		"admin@example.com": users.RoleAdmin,
	}}
	r := newTestRouter([]gin.HandlerFunc{
		RequireAuth(verifier),
		RequireRole(registry, users.RoleAdmin),
	})

	w := doRequest(r, "Bearer good-token")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for matching role, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "admin") {
		t.Errorf("expected role in response, got %s", body)
	}
}

func TestRequireRoleAlternatives(t *testing.T) {
	registry := &stubRegistry{roles: map[string]users.Role{
		"tutor@example.com": users.RoleTutor,
		"admin@example.com": users.RoleAdmin,
		"kid@example.com":   users.RoleStudent,
	}}

	for email, want := range map[string]int{
		"tutor@example.com": http.StatusOK,
		"admin@example.com": http.StatusOK,
		"kid@example.com":   http.StatusForbidden,
	} {
		verifier := &stubVerifier{claims: &token.Claims{Email: email}}
		r := newTestRouter([]gin.HandlerFunc{
			RequireAuth(verifier),
			RequireRole(registry, users.RoleTutor, users.RoleAdmin),
		})

		if w := doRequest(r, "Bearer good-token"); w.Code != want {
			t.Errorf("%s: expected %d, got %d", email, want, w.Code)
		}
	}
}

// A role change takes effect on the very next request because the guard
// reads the registry, not the token.
func TestRequireRoleReadsFreshRole(t *testing.T) {
	verifier := &stubVerifier{claims: &token.Claims{Email: "user@example.com"}}
	registry := &stubRegistry{roles: map[string]users.Role{
		"user@example.com": users.RoleStudent,
	}}
	r := newTestRouter([]gin.HandlerFunc{
		RequireAuth(verifier),
		RequireRole(registry, users.RoleTutor),
	})

	if w := doRequest(r, "Bearer good-token"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before role change, got %d", w.Code)
	}

	registry.roles["user@example.com"] = users.RoleTutor

	if w := doRequest(r, "Bearer good-token"); w.Code != http.StatusOK {
		t.Errorf("expected 200 after role change with same token, got %d", w.Code)
	}
}

func TestRequireRoleLookupFailure(t *testing.T) {
	verifier := &stubVerifier{claims: &token.Claims{Email: "user@example.com"}}
	registry := &stubRegistry{err: context.DeadlineExceeded}
	r := newTestRouter([]gin.HandlerFunc{
		RequireAuth(verifier),
		RequireRole(registry, users.RoleStudent),
	})

	if w := doRequest(r, "Bearer good-token"); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for registry failure, got %d", w.Code)
	}
}

