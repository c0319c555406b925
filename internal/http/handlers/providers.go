package handlers

import (
	"net/http"
	"strconv"
	"time"
)

type providerStatus struct {
	Name           string `json:"name"`
	Priority       int    `json:"priority"`
	HasCredentials bool   `json:"has_credentials"`
	Status         string `json:"status"`
	LatencyMS      int64  `json:"latency_ms"`
	Detail         string `json:"detail,omitempty"`
}

// ProvidersList reports every registered video provider and, when ?probe=true,
// the live availability of each one.
func (a *App) ProvidersList(w http.ResponseWriter, r *http.Request) {
	entries := a.Registry.Entries()

	probe, _ := strconv.ParseBool(r.URL.Query().Get("probe"))
	statuses := make(map[string]providerStatus, len(entries))
	for _, e := range entries {
		statuses[e.Name] = providerStatus{
			Name:           e.Name,
			Priority:       e.Priority,
			HasCredentials: e.HasCredentials(),
			Status:         "unknown",
		}
	}
	if probe && a.Prober != nil {
		for _, result := range a.Prober.ProbeAll(r.Context(), entries) {
			s := statuses[result.Provider]
			s.Status = string(result.Status)
			s.LatencyMS = result.LatencyMS
			s.Detail = result.Detail
			statuses[result.Provider] = s
		}
	}

	items := make([]providerStatus, 0, len(entries))
	for _, e := range entries {
		items = append(items, statuses[e.Name])
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":      items,
		"checked_at": time.Now().UTC().Format(time.RFC3339),
	})
}
