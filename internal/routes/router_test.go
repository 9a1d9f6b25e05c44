package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/foodmap/configs"
	"github.com/foodmap/internal/repositories"
	"github.com/foodmap/internal/services"
)

func newRouter(t *testing.T, cfg configs.Configuration, health func() error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := repositories.NewMemoryResourceStore()
	r := gin.New()
	SetupRoutes(r, Dependencies{
		Config:        cfg,
		Resources:     services.NewResourceService(store),
		Verification:  services.NewVerificationService(store),
		Submissions:   services.NewSubmissionService(store, nil),
		HealthChecker: health,
	})
	return r
}

func serve(r *gin.Engine, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAmbientRoutes(t *testing.T) {
	r := newRouter(t, configs.Configuration{APIBase: "/api"}, nil)

	if w := serve(r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/metrics", "", nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Errorf("metrics = %d", w.Code)
	}
	w := serve(r, http.MethodGet, "/api/nothing-here", "", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"status":"error"`) {
		t.Errorf("no route = %d %s", w.Code, w.Body.String())
	}

	down := newRouter(t, configs.Configuration{}, func() error {
		return errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	})
	w = serve(down, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy healthz = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "10.0.0.5") || strings.Contains(w.Body.String(), "5432") {
		t.Errorf("healthz exposes connection details: %s", w.Body.String())
	}
}

func TestStaticResourcePathsWinOverID(t *testing.T) {
	r := newRouter(t, configs.Configuration{APIBase: "/api"}, nil)
	for _, path := range []string{"/api/resources/flagged", "/api/resources/needs-verification"} {
		if w := serve(r, http.MethodGet, path, "", nil); w.Code != http.StatusOK {
			t.Errorf("%s = %d (%s)", path, w.Code, w.Body.String())
		}
	}
	if w := serve(r, http.MethodGet, "/api/resources/unknown-id", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown id = %d", w.Code)
	}
}

func TestAdminRoutesRequireTokenWhenEnabled(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg := configs.Configuration{
		APIBase: "/api", JWTSecret: "jwt-secret",
		AdminUsername: "admin", AdminPasswordHash: string(hash), StaleDays: 60,
	}
	r := newRouter(t, cfg, nil)

	if w := serve(r, http.MethodGet, "/api/resources/flagged", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("flagged without token = %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/resources", "", nil); w.Code != http.StatusOK {
		t.Errorf("public list = %d", w.Code)
	}

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "s3cret"})
	w := serve(r, http.MethodPost, "/api/admin/login", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Data.Token == "" {
		t.Fatalf("login response: %v %s", err, w.Body.String())
	}
	token := resp.Data.Token

	if w := serve(r, http.MethodGet, "/api/resources/flagged", token, nil); w.Code != http.StatusOK {
		t.Errorf("flagged with token = %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/api/admin/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout = %d (%s)", w.Code, w.Body.String())
	}
	if w := serve(r, http.MethodGet, "/api/resources/flagged", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("flagged after logout = %d", w.Code)
	}
}
