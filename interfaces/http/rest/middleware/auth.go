package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"neurovault/infrastructure/config"
	"neurovault/pkg/auth"
	"neurovault/pkg/common"
)

// Authenticate validates bearer tokens and attaches the caller's identity
// to the request context. Inside Lambda the API Gateway JWT authorizer has
// already validated the token, so only the forwarded identity headers are
// trusted there. userLimiter may be a shared store-backed limiter; when nil
// an in-memory one is used.
func Authenticate(cfg *config.Config, userLimiter auth.RateLimiter) func(next http.Handler) http.Handler {
	if userLimiter == nil {
		userLimiter = auth.NewUserRateLimiter(200)
	}
	if cfg.IsLambda {
		return authenticateFromGateway(userLimiter)
	}

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
	if err != nil {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respondUnauthorized(w, "Authentication is not configured")
			})
		}
	}

	ipLimiter := auth.NewIPRateLimiter(100)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowed, _ := ipLimiter.Allow(r.Context(), clientIP(r)); !allowed {
				respondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				respondUnauthorized(w, "Missing or malformed authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				switch err {
				case auth.ErrExpiredToken:
					respondUnauthorized(w, "Token has expired")
				case auth.ErrInvalidSignature:
					respondUnauthorized(w, "Invalid token signature")
				default:
					respondUnauthorized(w, "Invalid token")
				}
				return
			}

			if allowed, _ := userLimiter.Allow(r.Context(), claims.UserID); !allowed {
				respondError(w, http.StatusTooManyRequests, "User rate limit exceeded")
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			})
			ctx = common.WithUserID(ctx, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticateFromGateway trusts the identity headers forwarded by the
// API Gateway authorizer.
func authenticateFromGateway(userLimiter auth.RateLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				respondUnauthorized(w, "Missing user context")
				return
			}

			if allowed, _ := userLimiter.Allow(r.Context(), userID); !allowed {
				respondError(w, http.StatusTooManyRequests, "User rate limit exceeded")
				return
			}

			roles := []string{"authenticated"}
			if header := r.Header.Get("X-User-Roles"); header != "" {
				roles = strings.Split(header, ",")
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: userID,
				Email:  r.Header.Get("X-User-Email"),
				Roles:  roles,
			})
			ctx = common.WithUserID(ctx, userID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		header = r.Header.Get("authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondError(w, http.StatusUnauthorized, message)
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"status":  status,
			"message": message,
		},
	})
}
