package aplapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"smtpapl/pkg/problems"
	"smtpapl/pkg/repository"
	"smtpapl/pkg/settings"
)

func (a *App) settingsError(w http.ResponseWriter, r *http.Request, op string, err error) {
	a.log.Errorw(op, "err", err)
	if errors.Is(err, repository.ErrNotConfigured) {
		problems.Write(w, r, http.StatusServiceUnavailable, problems.Unavailable, "settings store is not configured")
		return
	}
	problems.Write(w, r, http.StatusBadGateway, problems.Unavailable, op+" failed")
}

// getSettings falls back to the defaults when the tenant has none stored.
func (a *App) getSettings(w http.ResponseWriter, r *http.Request) {
	u, ok := tenantParam(w, r)
	if !ok {
		return
	}
	s, err := a.settings.Get(r.Context(), u)
	if err != nil {
		a.settingsError(w, r, "get settings", err)
		return
	}
	if s == nil {
		d := settings.Default()
		s = &d
	}
	writeJSON(w, s, http.StatusOK)
}

func (a *App) putSettings(w http.ResponseWriter, r *http.Request) {
	u, ok := tenantParam(w, r)
	if !ok {
		return
	}
	var s settings.AccountsAppSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		problems.Write(w, r, http.StatusBadRequest, problems.BadRequest, "bad json")
		return
	}
	switch s.AutoConfirmAllAccounts {
	case "true", "false":
	default:
		problems.Write(w, r, http.StatusBadRequest, problems.BadRequest, `autoConfirmAllAccounts must be "true" or "false"`)
		return
	}
	if err := a.settings.Set(r.Context(), u, s); err != nil {
		a.settingsError(w, r, "set settings", err)
		return
	}
	writeJSON(w, s, http.StatusOK)
}
