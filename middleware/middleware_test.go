package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LovationAdmin/foodgram-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "is_admin": IsAdmin(c)})
}

func TestAuthMiddleware(t *testing.T) {
	utils.InitJWT("middleware-test-secret", 0)

	userToken, err := utils.GenerateAccessToken("u-1", "cook@example.com", false)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	r := gin.New()
	r.GET("/me", AuthMiddleware(), whoAmI)

	tests := []struct {
		name       string
		target     string
		header     string
		wantStatus int
	}{
		{"no credentials", "/me", "", http.StatusUnauthorized},
		{"bearer header", "/me", "Bearer " + userToken, http.StatusOK},
		{"token header", "/me", "Token " + userToken, http.StatusOK},
		{"query token", "/me?token=" + userToken, "", http.StatusOK},
		{"garbage token", "/me", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var body map[string]interface{}
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body["user_id"] != "u-1" {
					t.Errorf("user_id = %v, want u-1", body["user_id"])
				}
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	utils.InitJWT("middleware-test-secret", 0)

	r := gin.New()
	r.GET("/recipes", OptionalAuth(), whoAmI)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous status = %d, want 200", w.Code)
	}
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["user_id"] != "" {
		t.Errorf("anonymous user_id = %v, want empty", body["user_id"])
	}

	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid token status = %d, want 401", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	utils.InitJWT("middleware-test-secret", 0)

	admin, _ := utils.GenerateAccessToken("a-1", "admin@example.com", true)
	cook, _ := utils.GenerateAccessToken("u-1", "cook@example.com", false)

	r := gin.New()
	r.POST("/tags", AuthMiddleware(), RequireAdmin(), whoAmI)

	for token, want := range map[string]int{admin: http.StatusOK, cook: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodPost, "/tags", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("status = %d, want %d", w.Code, want)
		}
	}
}

func TestEnsureSessionID(t *testing.T) {
	r := gin.New()
	r.GET("/session", func(c *gin.Context) {
		first := EnsureSessionID(c)
		second := EnsureSessionID(c)
		c.JSON(http.StatusOK, gin.H{"first": first, "second": second})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session", nil))

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := uuid.Parse(body["first"]); err != nil {
		t.Fatalf("session id %q is not a uuid", body["first"])
	}
	if body["first"] != body["second"] {
		t.Errorf("EnsureSessionID issued two ids in one request: %v", body)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName || cookies[0].Value != body["first"] {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}

	// A returning client keeps its id and gets no new cookie.
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["first"] != cookies[0].Value {
		t.Errorf("session id changed: got %s, want %s", body["first"], cookies[0].Value)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("existing session must not be re-issued")
	}
}

func TestGetSessionID_RejectsMalformedCookie(t *testing.T) {
	r := gin.New()
	r.GET("/session", func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "../../etc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "" {
		t.Errorf("GetSessionID = %q, want empty", w.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := hit("10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	w := hit("10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if _, ok := body["retry_after"]; !ok {
		t.Errorf("body lacks retry_after: %v", body)
	}

	if w := hit("10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", w.Code)
	}

	// One token refills every 30s.
	now = now.Add(31 * time.Second)
	if w := hit("10.0.0.1"); w.Code != http.StatusOK {
		t.Errorf("after refill status = %d, want 200", w.Code)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(5, time.Second)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(5 * time.Second)
	rl.allow("10.0.0.2")
	now = now.Add(6 * time.Second)

	rl.Cleanup()
	if _, ok := rl.clients["10.0.0.1"]; ok {
		t.Error("idle client should be dropped")
	}
	if _, ok := rl.clients["10.0.0.2"]; !ok {
		t.Error("recent client should be kept")
	}
}
