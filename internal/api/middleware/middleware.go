// Package middleware contains middleware functions for the API.
package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v3"
	"github.com/golang-jwt/jwt/v5"
	apiError "github.com/matt-dz/tidyplan/internal/api/error"
	"github.com/matt-dz/tidyplan/internal/api/requestid"
	"github.com/matt-dz/tidyplan/internal/api/token"
	"github.com/matt-dz/tidyplan/internal/env"
	tpJwt "github.com/matt-dz/tidyplan/internal/jwt"
	"github.com/matt-dz/tidyplan/internal/log"
	"github.com/matt-dz/tidyplan/internal/metrics"
	"github.com/matt-dz/tidyplan/internal/role"
	"github.com/oklog/ulid/v2"
)

// InjectEnv injects an environment struct into the request context.
func InjectEnv(environment *env.Env) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(env.WithCtx(r.Context(), environment)))
		})
	}
}

// LogRequest logs each request with httplog, carrying the request id
// as an extra attribute.
func LogRequest(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		LogExtraAttrs: func(r *http.Request, reqBody string, respStatus int) []slog.Attr {
			if id := requestid.ExtractRequestID(r.Context()); id != 0 {
				return []slog.Attr{slog.Uint64("log_id", id)}
			}
			return []slog.Attr{slog.String("log_id", "N/A")}
		},
	})
}

// AddRequestID adds a request ID to the request context.
func AddRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := ulid.Now()
		r = r.WithContext(log.AppendCtx(r.Context(), slog.Uint64("log_id", requestID)))
		r = r.WithContext(requestid.InjectRequestID(r.Context(), requestID))
		next.ServeHTTP(w, r)
	})
}

// AddCors adds the necessary CORS headers to the response. In dev the
// incoming origin is echoed; production only allows the configured
// base URL.
func AddCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := env.EnvFromCtx(r.Context())
		origin := r.Header.Get("Origin")

		allowedOrigin := e.Config.BaseURL
		if !e.Config.IsProd() && origin != "" {
			allowedOrigin = origin
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CollectMetrics records request counts and latency per route
// pattern.
func CollectMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.HTTPRequestsTotal.
			WithLabelValues(r.Method, pattern, strconv.Itoa(ww.status)).Inc()
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// AuthorizeRequest creates a middleware that validates the access
// token cookie and checks the user's role against the requirement.
func AuthorizeRequest(requiredRole role.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			e := env.EnvFromCtx(r.Context())
			requestID := fmt.Sprintf("%d", requestid.ExtractRequestID(r.Context()))

			accessToken, err := r.Cookie(token.AccessTokenName(e))
			if err != nil {
				e.Logger.ErrorContext(r.Context(), "unable to get access token", slog.Any("error", err))
				_ = apiError.EncodeError(w, apiError.InvalidAccessToken, "invalid access token", requestID)
				return
			}

			if e.Config.AppSecret == "" {
				e.Logger.ErrorContext(r.Context(), "app secret not configured")
				_ = apiError.EncodeInternalError(w, requestID)
				return
			}

			accessJwt, err := tpJwt.Validate(accessToken.Value, e.Config.AppSecretVersion, []byte(e.Config.AppSecret))
			if errors.Is(err, jwt.ErrTokenExpired) {
				e.Logger.ErrorContext(r.Context(), "access token expired", slog.Any("error", err))
				_ = apiError.EncodeError(w, apiError.ExpiredAccessToken, "access token expired", requestID)
				return
			} else if err != nil {
				e.Logger.ErrorContext(r.Context(), "invalid access token", slog.Any("error", err))
				_ = apiError.EncodeError(w, apiError.InvalidAccessToken, "invalid access token", requestID)
				return
			}

			sub, err := accessJwt.Claims.GetSubject()
			if err != nil || sub == "" {
				e.Logger.ErrorContext(r.Context(), "failed to extract subject from jwt", slog.Any("error", err))
				_ = apiError.EncodeInternalError(w, requestID)
				return
			}

			claims, ok := accessJwt.Claims.(jwt.MapClaims)
			if !ok {
				e.Logger.ErrorContext(r.Context(), "unexpected claims type")
				_ = apiError.EncodeInternalError(w, requestID)
				return
			}
			roleClaim, _ := claims["role"].(string)
			if role.ToRole(roleClaim) < requiredRole {
				_ = apiError.EncodeError(w, apiError.InsufficientPermissions, "insufficient permissions", requestID)
				return
			}

			r = r.WithContext(log.AppendCtx(r.Context(), slog.String("user_id", sub)))
			r = r.WithContext(token.UserIDWithCtx(r.Context(), sub))
			next.ServeHTTP(w, r)
		})
	}
}
