package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foodmap/configs"
)

const testSecret = "test-secret"

func protectedRouter(cfg configs.Configuration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireAdmin(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("username"))
	})
	return r
}

func TestIssueAndParseToken(t *testing.T) {
	token, exp, err := IssueToken(testSecret, "admin", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) < 23*time.Hour {
		t.Errorf("expiry too soon: %v", exp)
	}
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Username != "admin" || claims.Role != RoleAdmin || claims.ID == "" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Error("token signed with a different secret should be rejected")
	}

	expired, _, err := IssueToken(testSecret, "admin", time.Now().Add(-48*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(testSecret, expired); err == nil {
		t.Error("expired token should be rejected")
	}

	AddToDenylist(claims.ID, exp)
	if _, err := ParseToken(testSecret, token); err == nil {
		t.Error("denylisted token should be rejected")
	}
}

func TestRequireAdmin(t *testing.T) {
	enabled := configs.Configuration{JWTSecret: testSecret, AdminUsername: "admin", AdminPasswordHash: "$2a$10$x"}
	token, _, err := IssueToken(testSecret, "admin", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		cfg    configs.Configuration
		header string
		want   int
	}{
		{"auth disabled passes through", configs.Configuration{}, "", http.StatusOK},
		{"missing header", enabled, "", http.StatusUnauthorized},
		{"wrong scheme", enabled, "Basic abc", http.StatusUnauthorized},
		{"garbage token", enabled, "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", enabled, "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedRouter(tt.cfg).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
