package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func resolveIP(t *testing.T, remoteAddr string, headers map[string]string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.RemoteAddr = remoteAddr
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}

	AuditMiddleware()(c)
	return c.GetString("client_ip")
}

func TestClientIP(t *testing.T) {
	t.Run("forwarded-for wins and keeps the first hop", func(t *testing.T) {
		ip := resolveIP(t, "10.0.0.1:4000", map[string]string{
			"X-Forwarded-For": "203.0.113.7, 10.0.0.2",
			"X-Real-Ip":       "198.51.100.4",
		})
		assert.Equal(t, "203.0.113.7", ip)
	})

	t.Run("garbage forwarded-for falls through to real-ip", func(t *testing.T) {
		ip := resolveIP(t, "10.0.0.1:4000", map[string]string{
			"X-Forwarded-For": "not-an-address",
			"X-Real-Ip":       "198.51.100.4",
		})
		assert.Equal(t, "198.51.100.4", ip)
	})

	t.Run("remote addr without headers", func(t *testing.T) {
		ip := resolveIP(t, "192.0.2.9:51234", nil)
		assert.Equal(t, "192.0.2.9", ip)
	})

	t.Run("remote addr without a port is kept verbatim", func(t *testing.T) {
		ip := resolveIP(t, "192.0.2.9", nil)
		assert.Equal(t, "192.0.2.9", ip)
	})
}
