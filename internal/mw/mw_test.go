package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_PerClientKey(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(0.001), 2, "X-Forwarded-For"))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	do := func(client string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", client+", 10.0.0.1")
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("203.0.113.7"))
	assert.Equal(t, http.StatusOK, do("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.7"))

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, do("198.51.100.2"))
}

func TestClientKey_FallsBackToClientIP(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.10:5555"

	assert.Equal(t, "192.0.2.10", ClientKey(c, ""))
	assert.Equal(t, "192.0.2.10", ClientKey(c, "X-Real-IP"))

	c.Request.Header.Set("X-Real-IP", "192.0.2.99")
	assert.Equal(t, "192.0.2.99", ClientKey(c, "X-Real-IP"))
}

func TestClientRateLimiter_SameLimiterPerKey(t *testing.T) {
	l := NewClientRateLimiter(rate.Limit(1), 1)
	assert.Same(t, l.GetLimiter("a"), l.GetLimiter("a"))
	assert.NotSame(t, l.GetLimiter("a"), l.GetLimiter("b"))
}

func TestResponseCache(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	calls := 0
	status := http.StatusOK

	r := gin.New()
	r.Use(rc.Middleware())
	r.GET("/items/:id", func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"calls": calls})
	})
	r.POST("/items/:id", func(c *gin.Context) {
		calls++
		c.Status(http.StatusNoContent)
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		return w
	}

	first := get("/items/1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"calls":1}`, first.Body.String())

	second := get("/items/1")
	assert.JSONEq(t, `{"calls":1}`, second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))

	get("/items/1?verbose=1")
	assert.Equal(t, 2, rc.Len())

	rc.Invalidate("/items/1")
	assert.Zero(t, rc.Len())
	assert.JSONEq(t, `{"calls":3}`, get("/items/1").Body.String())

	// Errors are never cached.
	status = http.StatusNotFound
	assert.Equal(t, http.StatusNotFound, get("/items/2").Code)
	assert.Equal(t, http.StatusNotFound, get("/items/2").Code)
	assert.Equal(t, 5, calls)

	// Non-GET requests pass through.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/items/1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 6, calls)
}

func TestResponseCache_KeysOnPathAndQuery(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	r := gin.New()
	r.Use(rc.Middleware())
	r.GET("/lookup/:pincode", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pincode": c.Param("pincode"), "q": c.Query("q")})
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		return w
	}

	assert.JSONEq(t, `{"pincode":"560034","q":""}`, get("/lookup/560034").Body.String())
	second := get("/lookup/110001")
	assert.Empty(t, second.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"pincode":"110001","q":""}`, second.Body.String())
	assert.JSONEq(t, `{"pincode":"110001","q":"x"}`, get("/lookup/110001?q=x").Body.String())
	assert.Equal(t, 3, rc.Len())

	hit := get("/lookup/560034")
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"pincode":"560034","q":""}`, hit.Body.String())

	rc.Invalidate("/lookup/110001")
	assert.Equal(t, 1, rc.Len())
}

func TestResponseCache_NoStore(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	calls := 0
	r := gin.New()
	r.Use(rc.Middleware())
	r.GET("/transient", func(c *gin.Context) {
		calls++
		NoStore(c)
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	for i := 1; i <= 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/transient", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
	assert.Zero(t, rc.Len())
}
