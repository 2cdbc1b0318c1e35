package aplapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"smtpapl/pkg/apl"
	"smtpapl/pkg/problems"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// toDocument converts v into generic JSON values,
// which is what jmespath walks; it does not read struct tags.
func toDocument(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// tenantParam reads the required saleorApiUrl query parameter.
func tenantParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	u := strings.TrimSpace(r.URL.Query().Get("saleorApiUrl"))
	if u == "" {
		problems.Write(w, r, http.StatusBadRequest, problems.BadRequest, "missing saleorApiUrl")
		return "", false
	}
	return u, true
}

// masked hides all but the last four characters of the token.
func masked(d apl.AuthData) apl.AuthData {
	t := d.Token
	if len(t) <= 4 {
		d.Token = strings.Repeat("*", len(t))
		return d
	}
	d.Token = strings.Repeat("*", len(t)-4) + t[len(t)-4:]
	return d
}
