package aplapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	jmes "github.com/jmespath/go-jmespath"

	"smtpapl/pkg/apl"
	"smtpapl/pkg/problems"
)

// listAuth returns every tenant record with tokens masked. An optional
// JMESPath ?query= is applied to the list, e.g. [?domain=='shop.example.com'].
func (a *App) listAuth(w http.ResponseWriter, r *http.Request) {
	all, err := a.apl.GetAll(r.Context())
	if errors.Is(err, apl.ErrNotSupported) {
		problems.Write(w, r, http.StatusNotImplemented, problems.NotSupported, err.Error())
		return
	}
	if err != nil {
		a.log.Errorw("list auth", "backend", a.backend, "err", err)
		problems.Write(w, r, http.StatusBadGateway, problems.Unavailable, "listing failed")
		return
	}
	out := make([]apl.AuthData, 0, len(all))
	for _, d := range all {
		out = append(out, masked(d))
	}
	q := strings.TrimSpace(r.URL.Query().Get("query"))
	if q == "" {
		writeJSON(w, out, http.StatusOK)
		return
	}
	doc, err := toDocument(out)
	if err != nil {
		a.log.Errorw("list auth: encode for query", "err", err)
		problems.Write(w, r, http.StatusInternalServerError, problems.Internal, "could not evaluate query")
		return
	}
	res, err := jmes.Search(q, doc)
	if err != nil {
		problems.Write(w, r, http.StatusBadRequest, problems.BadRequest, "invalid query: "+err.Error())
		return
	}
	writeJSON(w, res, http.StatusOK)
}

func (a *App) lookupAuth(w http.ResponseWriter, r *http.Request) {
	u, ok := tenantParam(w, r)
	if !ok {
		return
	}
	d, err := a.apl.Get(r.Context(), u)
	if err != nil {
		a.log.Errorw("get auth", "backend", a.backend, "saleorApiUrl", u, "err", err)
		problems.Write(w, r, http.StatusBadGateway, problems.Unavailable, "lookup failed")
		return
	}
	if d == nil {
		problems.Write(w, r, http.StatusNotFound, problems.NotFound, "no auth data for "+u)
		return
	}
	writeJSON(w, masked(*d), http.StatusOK)
}

func (a *App) putAuth(w http.ResponseWriter, r *http.Request) {
	var d apl.AuthData
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		problems.Write(w, r, http.StatusBadRequest, problems.BadRequest, "bad json")
		return
	}
	if strings.TrimSpace(d.SaleorAPIURL) == "" || strings.TrimSpace(d.Token) == "" {
		problems.Write(w, r, http.StatusBadRequest, problems.BadRequest, "saleorApiUrl and token are required")
		return
	}
	if err := a.apl.Set(r.Context(), d); err != nil {
		a.log.Errorw("set auth", "backend", a.backend, "saleorApiUrl", d.SaleorAPIURL, "err", err)
		problems.Write(w, r, http.StatusBadGateway, problems.Unavailable, "write failed")
		return
	}
	a.log.Infow("auth data stored", "backend", a.backend, "saleorApiUrl", d.SaleorAPIURL, "appId", d.AppID)
	writeJSON(w, masked(d), http.StatusOK)
}

func (a *App) deleteAuth(w http.ResponseWriter, r *http.Request) {
	u, ok := tenantParam(w, r)
	if !ok {
		return
	}
	if err := a.apl.Delete(r.Context(), u); err != nil {
		a.log.Errorw("delete auth", "backend", a.backend, "saleorApiUrl", u, "err", err)
		problems.Write(w, r, http.StatusBadGateway, problems.Unavailable, "delete failed")
		return
	}
	a.log.Infow("auth data deleted", "backend", a.backend, "saleorApiUrl", u)
	w.WriteHeader(http.StatusNoContent)
}
