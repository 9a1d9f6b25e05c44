package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/foodmap/configs"
	"github.com/foodmap/internal/models"
	"github.com/foodmap/internal/repositories"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/geocode"
)

type fakeGeocoder struct {
	results map[string]geocode.Candidate
	err     error
}

func (f *fakeGeocoder) Configured() bool { return true }

func (f *fakeGeocoder) Postcode(ctx context.Context, zip string) (*geocode.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.results[zip]
	if !ok {
		return nil, geocode.ErrNoResults
	}
	return &c, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	router *gin.Engine
	store  repositories.ResourceStore
}

func newTestServer(t *testing.T, geocoder ZipGeocoder) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := repositories.NewMemoryResourceStore()

	rh := NewResourceHandler(services.NewResourceService(store), geocoder)
	vh := NewVerificationHandler(services.NewVerificationService(store), 60)
	sh := NewSubmissionHandler(services.NewSubmissionService(store, nil))
	gh := NewGeocodeHandler(geocoder)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/resources", rh.ListResources)
	api.POST("/resources", rh.CreateResource)
	api.GET("/resources/flagged", vh.ListFlagged)
	api.GET("/resources/needs-verification", vh.NeedsVerification)
	api.GET("/resources/:id", rh.GetResource)
	api.POST("/resources/:id/report", vh.ReportResource)
	api.GET("/resources/:id/reports", vh.ListReports)
	api.POST("/resources/:id/verify", vh.VerifyResource)
	api.DELETE("/resources/:id", vh.DeleteResource)
	api.POST("/submissions", sh.CreateSubmission)
	api.GET("/submissions", sh.ListSubmissions)
	api.GET("/geocode/zip/:zip", gh.LookupZip)
	return &testServer{router: r, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.10:5555"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *testServer) seed(t *testing.T, id, typ, lat, lng string) {
	t.Helper()
	now := time.Now()
	err := s.store.CreateResource(context.Background(), &models.FoodResource{
		ID: id, Name: id, Type: typ, Address: "addr", Latitude: lat, Longitude: lng,
		LastVerifiedDate: &now, VerificationSource: models.VerificationSourceInitial,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func decodeResources(t *testing.T, raw json.RawMessage) []models.FoodResource {
	t.Helper()
	var out []models.FoodResource
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode resources: %v (%s)", err, raw)
	}
	return out
}

func TestListResources(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]geocode.Candidate{
		"75201": {Lat: 32.7767, Lon: -96.7970},
	}}
	s := newTestServer(t, geocoder)
	s.seed(t, "far-pantry", models.CategoryFoodPantry, "32.9000", "-96.7970")
	s.seed(t, "near-fridge", models.CategoryCommunityFridge, "32.7800", "-96.7970")
	s.seed(t, "near-pantry", models.CategoryFoodPantry, "32.7900", "-96.7970")

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"storage order without origin", "/api/resources", []string{"far-pantry", "near-fridge", "near-pantry"}},
		{"sorted by distance", "/api/resources?lat=32.7767&lng=-96.7970", []string{"near-fridge", "near-pantry", "far-pantry"}},
		{"zip origin", "/api/resources?zip=75201", []string{"near-fridge", "near-pantry", "far-pantry"}},
		{"category filter", "/api/resources?lat=32.7767&lng=-96.7970&type=food%20pantry", []string{"near-pantry", "far-pantry"}},
		{"radius filter", "/api/resources?lat=32.7767&lng=-96.7970&maxDistance=2", []string{"near-fridge", "near-pantry"}},
		{"radius ignored without origin", "/api/resources?maxDistance=2&type=all", []string{"far-pantry", "near-fridge", "near-pantry"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, http.MethodGet, tt.path, nil)
			if w.Code != http.StatusOK || env.Status != "success" {
				t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
			}
			got := decodeResources(t, env.Data)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d resources, want %v", len(got), tt.want)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestListResourcesErrors(t *testing.T) {
	s := newTestServer(t, &fakeGeocoder{})
	tests := []struct {
		name string
		path string
		code int
	}{
		{"bad latitude", "/api/resources?lat=abc&lng=-96.8", http.StatusBadRequest},
		{"lat without lng", "/api/resources?lat=32.7", http.StatusBadRequest},
		{"bad maxDistance", "/api/resources?maxDistance=far", http.StatusBadRequest},
		{"invalid zip", "/api/resources?zip=752", http.StatusBadRequest},
		{"unknown zip", "/api/resources?zip=99999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := s.do(t, http.MethodGet, tt.path, nil)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.code, w.Body.String())
			}
		})
	}
}

func TestZipLookup(t *testing.T) {
	s := newTestServer(t, &fakeGeocoder{results: map[string]geocode.Candidate{
		"75201": {Lat: 32.7767, Lon: -96.7970, Formatted: "Dallas, TX 75201"},
	}})
	w, env := s.do(t, http.MethodGet, "/api/geocode/zip/75201", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var loc ZipLocation
	if err := json.Unmarshal(env.Data, &loc); err != nil {
		t.Fatal(err)
	}
	if loc.Latitude != 32.7767 || loc.Longitude != -96.7970 {
		t.Errorf("unexpected location: %+v", loc)
	}

	w, env = s.do(t, http.MethodGet, "/api/geocode/zip/99999", nil)
	if w.Code != http.StatusNotFound || env.Error != zipNotFoundMessage {
		t.Errorf("unknown zip: %d %q", w.Code, env.Error)
	}

	upstream := newTestServer(t, &fakeGeocoder{err: &geocode.UpstreamError{StatusCode: 502}})
	if w, _ := upstream.do(t, http.MethodGet, "/api/geocode/zip/75201", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("upstream failure status = %d, want 503", w.Code)
	}
	missing := newTestServer(t, nil)
	if w, _ := missing.do(t, http.MethodGet, "/api/geocode/zip/75201", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured status = %d, want 503", w.Code)
	}
}

func TestCreateAndGetResource(t *testing.T) {
	s := newTestServer(t, nil)
	payload := map[string]interface{}{
		"name": "Dallas Food Bank", "type": "Food Bank", "address": "3015 Forest Ln, Dallas, TX",
		"latitude": "32.7767", "longitude": "-96.7970", "appointmentRequired": true,
	}
	w, env := s.do(t, http.MethodPost, "/api/resources", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d (%s)", w.Code, w.Body.String())
	}
	var created map[string]interface{}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created["reportedClosedCount"] != "0" || created["verificationSource"] != "initial" {
		t.Errorf("unexpected defaults: %v", created)
	}
	id, _ := created["id"].(string)

	w, env = s.do(t, http.MethodGet, "/api/resources/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got models.FoodResource
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "Dallas Food Bank" || !got.AppointmentRequired {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if w, env := s.do(t, http.MethodGet, "/api/resources/missing", nil); w.Code != http.StatusNotFound || env.Error != "Resource not found" {
		t.Errorf("missing: %d %q", w.Code, env.Error)
	}

	delete(payload, "name")
	if w, _ := s.do(t, http.MethodPost, "/api/resources", payload); w.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d", w.Code)
	}
	payload["name"] = "x"
	payload["latitude"] = "95"
	if w, _ := s.do(t, http.MethodPost, "/api/resources", payload); w.Code != http.StatusBadRequest {
		t.Errorf("bad latitude status = %d", w.Code)
	}
}

func TestReportVerifyDeleteFlow(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t, "r1", models.CategoryFoodPantry, "32.7767", "-96.7970")

	if w, _ := s.do(t, http.MethodPost, "/api/resources/r1/report", map[string]string{"reportType": "moved"}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid type status = %d", w.Code)
	}
	if w, _ := s.do(t, http.MethodPost, "/api/resources/nope/report", map[string]string{"reportType": "closed"}); w.Code != http.StatusNotFound {
		t.Errorf("missing resource status = %d", w.Code)
	}

	w, env := s.do(t, http.MethodPost, "/api/resources/r1/report", map[string]string{"reportType": "closed", "details": "Sign says closed"})
	if w.Code != http.StatusCreated {
		t.Fatalf("report status = %d (%s)", w.Code, w.Body.String())
	}
	var report models.UserReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatal(err)
	}
	if report.UserIP == nil || *report.UserIP != "192.0.2.10" {
		t.Errorf("source ip should default to client ip, got %v", report.UserIP)
	}
	if report.ReportDetails == nil || *report.ReportDetails != "Sign says closed" {
		t.Errorf("details = %v", report.ReportDetails)
	}

	_, env = s.do(t, http.MethodGet, "/api/resources/flagged", nil)
	flagged := decodeResources(t, env.Data)
	if len(flagged) != 1 || flagged[0].ReportedClosedCount != 1 {
		t.Fatalf("flagged = %+v", flagged)
	}

	w, env = s.do(t, http.MethodGet, "/api/resources/needs-verification", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("needs-verification status = %d", w.Code)
	}
	var vr models.VerificationReport
	if err := json.Unmarshal(env.Data, &vr); err != nil {
		t.Fatal(err)
	}
	if vr.DaysThreshold != 60 || vr.NeedsVerification != 1 || vr.ReportedClosed != 1 {
		t.Errorf("report = %+v", vr)
	}
	if w, _ := s.do(t, http.MethodGet, "/api/resources/needs-verification?days=abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad days status = %d", w.Code)
	}

	if w, _ := s.do(t, http.MethodPost, "/api/resources/r1/verify", nil); w.Code != http.StatusOK {
		t.Fatalf("verify status = %d (%s)", w.Code, w.Body.String())
	}
	_, env = s.do(t, http.MethodGet, "/api/resources/flagged", nil)
	if got := decodeResources(t, env.Data); len(got) != 0 {
		t.Errorf("flagged after verify = %d", len(got))
	}

	if w, _ := s.do(t, http.MethodDelete, "/api/resources/r1", nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w, _ := s.do(t, http.MethodGet, "/api/resources/r1", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", w.Code)
	}
	if w, _ := s.do(t, http.MethodDelete, "/api/resources/r1", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d", w.Code)
	}
	if w, _ := s.do(t, http.MethodPost, "/api/resources/r1/verify", nil); w.Code != http.StatusNotFound {
		t.Errorf("verify after delete = %d", w.Code)
	}

	_, env = s.do(t, http.MethodGet, "/api/resources/r1/reports", nil)
	var reports []models.UserReport
	if err := json.Unmarshal(env.Data, &reports); err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Errorf("reports should survive delete, got %d", len(reports))
	}
}

func TestSubmissions(t *testing.T) {
	s := newTestServer(t, nil)
	payload := map[string]interface{}{
		"name": "Swiss Ave Fridge", "type": "Community Fridge", "address": "2922 Swiss Ave",
		"latitude": "32.7905", "longitude": "-96.7850",
	}
	if w, _ := s.do(t, http.MethodPost, "/api/submissions", payload); w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d (%s)", w.Code, w.Body.String())
	}
	payload["photoUrl"] = "not a url"
	if w, _ := s.do(t, http.MethodPost, "/api/submissions", payload); w.Code != http.StatusBadRequest {
		t.Errorf("bad photo url status = %d", w.Code)
	}

	_, env := s.do(t, http.MethodGet, "/api/submissions", nil)
	var subs []models.Submission
	if err := json.Unmarshal(env.Data, &subs); err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].Name != "Swiss Ave Fridge" {
		t.Errorf("submissions = %+v", subs)
	}
}

func TestAdminLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg := configs.Configuration{JWTSecret: "jwt", AdminUsername: "admin", AdminPasswordHash: string(hash)}

	tests := []struct {
		name string
		cfg  configs.Configuration
		body map[string]string
		code int
	}{
		{"disabled", configs.Configuration{}, map[string]string{"username": "admin", "password": "s3cret"}, http.StatusServiceUnavailable},
		{"missing password", cfg, map[string]string{"username": "admin"}, http.StatusBadRequest},
		{"wrong password", cfg, map[string]string{"username": "admin", "password": "nope"}, http.StatusUnauthorized},
		{"wrong user", cfg, map[string]string{"username": "root", "password": "s3cret"}, http.StatusUnauthorized},
		{"ok", cfg, map[string]string{"username": "admin", "password": "s3cret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/login", NewAuthHandler(tt.cfg).Login)
			raw, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.code, w.Body.String())
			}
			if tt.code == http.StatusOK {
				var env envelope
				_ = json.Unmarshal(w.Body.Bytes(), &env)
				var resp LoginResponse
				if err := json.Unmarshal(env.Data, &resp); err != nil || resp.Token == "" {
					t.Errorf("missing token: %v %s", err, env.Data)
				}
			}
		})
	}
}
