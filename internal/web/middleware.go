// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"bias-scan/internal/resilience"

	"github.com/getsentry/sentry-go"
	"golang.org/x/time/rate"
)

// visitorTTL is how long an idle client's bucket is kept
const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP
type ipRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ipRateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(perSecond),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > visitorTTL {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// clientIP uses only the socket peer address
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimit applies the per-IP limiter to /api/ routes
func (ws *WebServer) rateLimit(next http.Handler) http.Handler {
	if ws.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") && !ws.limiter.allow(clientIP(r)) {
			ws.metrics.RateLimitedTotal.Inc()
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error: "rate limit exceeded",
				Type:  "rate_limited",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanics turns a handler panic into a JSON 500 and reports it to
// Sentry when configured.
func (ws *WebServer) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			ws.observer.LogError("web", "panic", r.URL.Path, fmt.Errorf("%v", rec))
			if ws.sentryEnabled {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(r)
				hub.Recover(rec)
			}
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Error: "internal server error",
				Type:  string(resilience.ErrorTypeInternal),
			})
		}()
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sendError writes the error JSON with a status derived from its type
func (ws *WebServer) sendError(w http.ResponseWriter, r *http.Request, err error) {
	classified := resilience.ClassifyError(err)
	status := resilience.HTTPStatus(classified)
	if status >= http.StatusInternalServerError {
		ws.observer.LogError("web", r.Method+" "+r.URL.Path, "", err)
	}
	writeJSON(w, status, errorResponse{Error: classified.Error(), Type: string(classified.Type)})
}

// decodeJSON reads a bounded JSON body. Oversized bodies are too_large,
// anything malformed is invalid_input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return resilience.NewTooLargeError("request body", r.ContentLength, tooLarge.Limit)
		}
		if errors.Is(err, io.EOF) {
			return resilience.NewInvalidInputError("decode request", "request body is empty")
		}
		return &resilience.ClassifiedError{
			Original:  err,
			Type:      resilience.ErrorTypeInvalidInput,
			Operation: "decode request",
			Message:   "invalid JSON",
		}
	}
	return nil
}
