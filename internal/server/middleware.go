// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"
)

// ============================================================================
// Request Recording Middleware
// ============================================================================

// record keeps every request and serves registered overrides.
func (p *Portal) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize))
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		p.mu.Lock()
		p.requests = append(p.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			Token:     bearerToken(r),
			RequestID: r.Header.Get("X-Request-ID"),
			Body:      body,
		})
		override := p.overrides[r.Method+" "+r.URL.Path]
		p.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// Request Logging Middleware
// ============================================================================

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader captures the status code before writing it.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// logRequests logs method, path, status and duration of every request.
func (p *Portal) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)
		p.log.Info().
			Str("event", "http_request").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// ============================================================================
// Panic Recovery Middleware
// ============================================================================

// recoverPanics turns a handler panic into a 500 answer.
func (p *Portal) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				p.log.Error().
					Str("event", "panic_recovered").
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Msg("handler panic")
				writeJSON(w, http.StatusInternalServerError, fail("An unexpected error occurred"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// Auth Middleware
// ============================================================================

type sessionKey struct{}

// requireAuth rejects requests without a live session.
func (p *Portal) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		s, ok := p.lookup(bearerToken(r))
		var snapshot session
		if ok {
			snapshot = *s
		}
		p.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, fail("Session expired. Please login again."))
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, snapshot)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole rejects sessions whose role is not listed.
func requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := sessionFrom(r)
			for _, role := range roles {
				if s.role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSON(w, http.StatusForbidden, fail("Unauthorized"))
		})
	}
}

func sessionFrom(r *http.Request) session {
	s, _ := r.Context().Value(sessionKey{}).(session)
	return s
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// ============================================================================
// JSON HELPERS
// ============================================================================

type object map[string]any

func fail(message string) object {
	return object{"success": false, "message": message}
}

func ok(message string) object {
	return object{"success": true, "message": message}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v. An empty body leaves v unchanged.
func decode(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
