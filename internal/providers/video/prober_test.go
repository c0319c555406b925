package video

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbeAllClassifiesStatuses(t *testing.T) {
	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "good-key" {
			t.Errorf("probe missing auth header, got %q", r.Header.Get("x-api-key"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer okSrv.Close()

	deniedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer deniedSrv.Close()

	brokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer brokenSrv.Close()

	entries := []Entry{
		{Name: "ok", BaseURL: okSrv.URL, ProbePath: "/ping", AuthHeader: "x-api-key", APIKey: "good-key"},
		{Name: "denied", BaseURL: deniedSrv.URL, ProbePath: "/ping", AuthHeader: "Authorization", AuthPrefix: "Bearer ", APIKey: "bad-key"},
		{Name: "broken", BaseURL: brokenSrv.URL, ProbePath: "/ping", AuthHeader: "Authorization", APIKey: "any"},
		{Name: "keyless", BaseURL: okSrv.URL, ProbePath: "/ping", AuthHeader: "Authorization"},
	}

	prober := NewProber(nil, 2*time.Second)
	results := prober.ProbeAll(context.Background(), entries)

	if len(results) != len(entries) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(entries))
	}
	want := map[string]ProbeStatus{
		"ok":      ProbeAvailable,
		"denied":  ProbeUnauthorized,
		"broken":  ProbeUnreachable,
		"keyless": ProbeNoCredentials,
	}
	for i, res := range results {
		if res.Provider != entries[i].Name {
			t.Fatalf("results out of entry order: got %q at %d", res.Provider, i)
		}
		if res.Status != want[res.Provider] {
			t.Errorf("%s status = %q, want %q", res.Provider, res.Status, want[res.Provider])
		}
	}
}

func TestProbeUnreachableHost(t *testing.T) {
	prober := NewProber(&http.Client{Timeout: 500 * time.Millisecond}, 500*time.Millisecond)
	results := prober.ProbeAll(context.Background(), []Entry{
		{Name: "ghost", BaseURL: "http://127.0.0.1:1", ProbePath: "/ping", AuthHeader: "Authorization", APIKey: "key"},
	})
	if results[0].Status != ProbeUnreachable {
		t.Fatalf("status = %q, want %q", results[0].Status, ProbeUnreachable)
	}
	if results[0].Detail == "" {
		t.Fatal("expected detail for unreachable host")
	}
}
