package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func recordJSON(t *testing.T, write func(c *gin.Context)) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	write(c)
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return w.Code, body
}

func TestRespondSuccess(t *testing.T) {
	code, body := recordJSON(t, func(c *gin.Context) { RespondSuccess(c, http.StatusCreated, gin.H{"id": "x"}, "") })
	if code != http.StatusCreated || body["status"] != "success" {
		t.Errorf("code=%d body=%v", code, body)
	}
	if _, ok := body["message"]; ok {
		t.Errorf("empty message should be omitted: %v", body)
	}

	_, body = recordJSON(t, func(c *gin.Context) { RespondSuccess(c, http.StatusOK, nil, "") })
	if body["message"] != "Operation successful" {
		t.Errorf("default message missing: %v", body)
	}
}

func TestRespondAPIErrorDetails(t *testing.T) {
	tests := []struct {
		name        string
		write       func(c *gin.Context)
		wantCode    int
		wantDetails bool
	}{
		{"service unavailable without details", func(c *gin.Context) { RespondServiceUnavailableError(c, "Storage unavailable") }, http.StatusServiceUnavailable, false},
		{"conflict with detail", func(c *gin.Context) { RespondConflictError(c, "exists", "name") }, http.StatusConflict, true},
		{"validation map", func(c *gin.Context) { RespondValidationError(c, map[string]string{"name": "is required"}) }, http.StatusBadRequest, true},
		{"not found", func(c *gin.Context) { RespondNotFoundError(c, "Resource") }, http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := recordJSON(t, tt.write)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if body["error"] == "" || body["error"] == nil {
				t.Errorf("error message missing: %v", body)
			}
			if _, ok := body["details"]; ok != tt.wantDetails {
				t.Errorf("details present = %v, want %v (%v)", ok, tt.wantDetails, body)
			}
		})
	}
}
