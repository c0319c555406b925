package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type deviceContextKey struct{}

// DeviceKey addresses the device identity in the request context.
var DeviceKey = deviceContextKey{}

// DeviceHeader carries the anonymous install identity. The app generates a
// UUID on first launch and sends it with every request; there are no accounts.
const DeviceHeader = "X-Device-ID"

// Device extracts and validates the device id. Requests without a valid id
// are rejected, except for the allow-listed paths (health, docs).
func Device(allowlist ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowlist))
	for _, path := range allowlist {
		allowed[path] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			deviceID := strings.TrimSpace(r.Header.Get(DeviceHeader))
			if _, err := uuid.Parse(deviceID); err != nil {
				http.Error(w, `{"error":"missing or invalid X-Device-ID"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), DeviceKey, deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DeviceID returns the device identity stored by the Device middleware.
func DeviceID(ctx context.Context) string {
	if v, ok := ctx.Value(DeviceKey).(string); ok {
		return v
	}
	return ""
}
