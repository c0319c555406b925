package handlers

import "net/http"

// Dashboard24h reports generation counters accumulated over the last day.
func (a *App) Dashboard24h(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Usage.Summary24h(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load usage counters")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"counters": summary})
}
