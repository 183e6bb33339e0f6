package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/auth"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/logger"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	GuestIDKey    = "guest_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	// GuestIDHeader carries the anonymous session identifier
	GuestIDHeader = "X-Guest-ID"
	// MaxGuestIDLength matches the guest_id column width
	MaxGuestIDLength = 64
)

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Verifier TokenVerifier
	// Revocations is optional
	Revocations auth.RevocationList
	// Optional reports whether requests without a token pass through
	Optional bool
	Logger   *zap.Logger
}

// JWTAuth requires a valid bearer token
func JWTAuth(verifier TokenVerifier, revocations auth.RevocationList, log *zap.Logger) gin.HandlerFunc {
	return JWTAuthWithConfig(JWTMiddlewareConfig{Verifier: verifier, Revocations: revocations, Logger: log})
}

// OptionalJWTAuth authenticates when a token is present. A present but
// invalid token is still rejected.
func OptionalJWTAuth(verifier TokenVerifier, revocations auth.RevocationList, log *zap.Logger) gin.HandlerFunc {
	return JWTAuthWithConfig(JWTMiddlewareConfig{Verifier: verifier, Revocations: revocations, Optional: true, Logger: log})
}

// JWTAuthWithConfig creates JWT authentication middleware
func JWTAuthWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			if cfg.Optional {
				c.Next()
				return
			}
			abortUnauthorized(c, cfg, auth.ErrMissingToken, "Missing authorization header")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, BearerPrefix)
		if !ok || tokenString == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := cfg.Verifier.Verify(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg, err, "Token validation failed")
			return
		}

		if cfg.Revocations != nil {
			if revoked := isRevoked(c, cfg, claims); revoked {
				abortUnauthorized(c, cfg, auth.ErrTokenRevoked, "Token has been revoked")
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// isRevoked consults the revocation list. Lookup failures fail open.
func isRevoked(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) bool {
	ctx := c.Request.Context()
	if claims.ID != "" {
		revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			cfg.Logger.Error("Failed to check token revocation", zap.String("jti", claims.ID), zap.Error(err))
		} else if revoked {
			return true
		}
	}
	invalidated, err := cfg.Revocations.IsUserInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		cfg.Logger.Error("Failed to check user invalidation", zap.String("user_id", claims.UserID), zap.Error(err))
		return false
	}
	return invalidated
}

func abortUnauthorized(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	cfg.Logger.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid), errors.Is(err, auth.ErrMissingUserID):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}

// GuestSession reads the X-Guest-ID header. Malformed identifiers are
// rejected; a missing header is not an error.
func GuestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := strings.TrimSpace(c.GetHeader(GuestIDHeader))
		if guestID == "" {
			c.Next()
			return
		}
		if !validGuestID(guestID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeValidationFormat, "Invalid guest session identifier", GetRequestID(c)))
			return
		}
		c.Set(GuestIDKey, guestID)
		c.Request = c.Request.WithContext(logger.WithGuestID(c.Request.Context(), guestID))
		c.Next()
	}
}

func validGuestID(id string) bool {
	if len(id) > MaxGuestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return false
		}
	}
	return true
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetUserID returns the authenticated user, if any
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.UserUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetGuestID returns the guest session set by GuestSession
func GetGuestID(c *gin.Context) string {
	return c.GetString(GuestIDKey)
}

// RequestOwner resolves the cart owner: the authenticated user when present,
// otherwise the guest session
func RequestOwner(c *gin.Context) (shared.Owner, bool) {
	if id, ok := GetUserID(c); ok {
		return shared.UserOwner(id), true
	}
	if guest := GetGuestID(c); guest != "" {
		return shared.GuestOwner(guest), true
	}
	return shared.Owner{}, false
}
