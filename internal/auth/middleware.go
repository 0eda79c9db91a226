package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/phrasebook/internal/config"
)

// Context keys for device data
const (
	ContextKeyDeviceID = "auth_device_id"
	ContextKeyAuthType = "auth_type" // "none" or "bearer"
)

// HeaderDeviceID carries the calling device's identifier.
const HeaderDeviceID = "X-Device-ID"

// AuthType indicates how the device was identified
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
)

// Middleware identifies the device for each HTTP request.
type Middleware struct {
	service     *Service
	limiter     *RateLimiter
	config      config.Auth
	publicPaths map[string]bool
}

func NewMiddleware(service *Service, cfg config.Auth) *Middleware {
	m := &Middleware{
		service: service,
		config:  cfg,
		publicPaths: map[string]bool{
			"/health": true,
			"/ping":   true,
		},
	}
	if cfg.Mode == config.AuthModeToken {
		m.limiter = NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxFailedAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		})
	}
	return m
}

// Stop releases the rate limiter's background cleanup.
func (m *Middleware) Stop() {
	if m.limiter != nil {
		m.limiter.Stop()
	}
}

// Handler returns a Gin middleware handler that identifies the device.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode != config.AuthModeToken {
		return m.noAuthHandler()
	}
	return m.tokenHandler()
}

// noAuthHandler trusts the X-Device-ID header as-is.
func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if deviceID := strings.TrimSpace(c.GetHeader(HeaderDeviceID)); deviceID != "" {
			c.Set(ContextKeyDeviceID, deviceID)
		}
		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

func (m *Middleware) tokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}

		deviceID := strings.TrimSpace(c.GetHeader(HeaderDeviceID))
		token := bearerToken(c.GetHeader("Authorization"))
		ip := c.ClientIP()

		if allowed, retryAfter := m.limiter.Allow(ip, deviceID); !allowed {
			c.Header("Retry-After", retryAfter.String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many failed attempts",
				"retry_after": retryAfter.String(),
			})
			return
		}

		device, err := m.service.Authenticate(deviceID, token)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) {
				m.limiter.RecordFailure(ip, deviceID)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		m.limiter.RecordSuccess(ip, deviceID)
		c.Set(ContextKeyDeviceID, device.DeviceID)
		c.Set(ContextKeyAuthType, AuthTypeBearer)
		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// DeviceID returns the device identified for this request, or "".
func DeviceID(c *gin.Context) string {
	return c.GetString(ContextKeyDeviceID)
}

// Authenticated reports whether the device id was verified by token.
func Authenticated(c *gin.Context) bool {
	v, _ := c.Get(ContextKeyAuthType)
	t, _ := v.(AuthType)
	return t == AuthTypeBearer
}
