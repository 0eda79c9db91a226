// Package auth identifies the device behind each request.
//
// It supports two modes:
//   - "none": no token check (default); the device id comes from the
//     X-Device-ID header
//   - "token": devices are registered up front and present a bearer token
//     alongside X-Device-ID; the token is compared against a bcrypt hash
//
// # Configuration
//
//	AUTH_MODE=none|token
//	AUTH_BCRYPT_COST=12             # bcrypt cost for token hashes
//	AUTH_MAX_FAILED_ATTEMPTS=5      # failed tokens before lockout
//	AUTH_RATE_LIMIT_WINDOW=15m
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	authService := auth.NewService(devicesRepo, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Handlers read the authenticated device with auth.DeviceID(c).
//
// Tokens are issued by the register-device command and shown once.
package auth
