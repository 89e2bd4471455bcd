package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HeadersMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected nosniff, got %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("Expected DENY, got %q", got)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"*"}))
	r.GET("/", func(c *gin.Context) { c.Status(200) })

	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Errorf("Expected origin echoed, got %q", got)
	}
	// wildcard origins must not allow credentials
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Expected no credentials header with wildcard, got %q", got)
	}
}

func TestValidateEndpointURL(t *testing.T) {
	cases := []struct {
		url     string
		wantErr bool
	}{
		// public IP literal avoids DNS in tests
		{"https://93.184.216.34/v1/score", false},
		{"http://127.0.0.1/hook", true},
		{"https://localhost/hook", true},
		{"https://10.0.0.5/hook", true},
		{"https://169.254.169.254/latest", true},
		{"ftp://risk.example.com", true},
		{"not a url at %%", true},
		{"https://", true},
	}

	for _, tc := range cases {
		err := ValidateEndpointURL(tc.url)
		if tc.wantErr && err == nil {
			t.Errorf("ValidateEndpointURL(%q): expected error", tc.url)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("ValidateEndpointURL(%q): unexpected error %v", tc.url, err)
		}
	}
}
