package aplapi

import (
	"net/http"
)

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

type readiness struct {
	Ready      bool     `json:"ready"`
	Configured bool     `json:"configured"`
	Backend    string   `json:"backend"`
	Errors     []string `json:"errors,omitempty"`
}

// readyz reports 503 until the backend is both configured and reachable.
func (a *App) readyz(w http.ResponseWriter, r *http.Request) {
	out := readiness{Backend: a.backend}
	cfg := a.apl.IsConfigured()
	out.Configured = cfg.Configured
	if cfg.Err != nil {
		out.Errors = append(out.Errors, cfg.Err.Error())
	}
	rdy := a.apl.IsReady(r.Context())
	out.Ready = rdy.Ready
	if rdy.Err != nil {
		out.Errors = append(out.Errors, rdy.Err.Error())
	}
	status := http.StatusOK
	if !out.Ready || !out.Configured {
		a.log.Warnw("not ready", "backend", a.backend, "errors", out.Errors)
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, out, status)
}
