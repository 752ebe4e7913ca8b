package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	config "github.com/dollet000/dollet-stats/configs"
)

func setupRouter(auth config.BasicAuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger())
	r.Use(Authorization(auth))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestAuthorization_Disabled(t *testing.T) {
	r := setupRouter(config.BasicAuthConfig{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestAuthorization_Credentials(t *testing.T) {
	r := setupRouter(config.BasicAuthConfig{Username: "stats", Password: "s3cret"})

	testCases := []struct {
		name     string
		user     string
		pass     string
		setAuth  bool
		expected int
	}{
		{name: "missing header", expected: http.StatusUnauthorized},
		{name: "wrong password", user: "stats", pass: "nope", setAuth: true, expected: http.StatusUnauthorized},
		{name: "wrong user", user: "admin", pass: "s3cret", setAuth: true, expected: http.StatusUnauthorized},
		{name: "valid", user: "stats", pass: "s3cret", setAuth: true, expected: http.StatusOK},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
			if tt.expected == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), ErrUnauthorized.Error())
			}
		})
	}
}
