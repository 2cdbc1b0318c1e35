package apl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type SaleorCloudConfig struct {
	ResourceURL string
	Token       string
}

// SaleorCloudAPL talks to the Saleor Cloud REST APL service.
type SaleorCloudAPL struct {
	cfg  SaleorCloudConfig
	http *http.Client
}

var _ APL = (*SaleorCloudAPL)(nil)

// NewSaleorCloudAPL requires both the endpoint and the token.
func NewSaleorCloudAPL(cfg SaleorCloudConfig, client *http.Client) (*SaleorCloudAPL, error) {
	if strings.TrimSpace(cfg.ResourceURL) == "" || strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("%w: rest APL is not configured, missing REST_APL_ENDPOINT or REST_APL_TOKEN", ErrConfiguration)
	}
	if _, err := url.Parse(cfg.ResourceURL); err != nil {
		return nil, fmt.Errorf("%w: REST_APL_ENDPOINT: %v", ErrConfiguration, err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	cfg.ResourceURL = strings.TrimRight(cfg.ResourceURL, "/")
	return &SaleorCloudAPL{cfg: cfg, http: client}, nil
}

// cloudRecord is the snake_case wire shape of AuthData.
type cloudRecord struct {
	SaleorAppID  string `json:"saleor_app_id"`
	SaleorAPIURL string `json:"saleor_api_url"`
	Token        string `json:"token"`
	JWKS         string `json:"jwks,omitempty"`
	Domain       string `json:"domain,omitempty"`
}

func (r cloudRecord) authData() AuthData {
	return AuthData{SaleorAPIURL: r.SaleorAPIURL, Token: r.Token, AppID: r.SaleorAppID, JWKS: r.JWKS, Domain: r.Domain}
}

func toCloudRecord(d AuthData) cloudRecord {
	return cloudRecord{SaleorAppID: d.AppID, SaleorAPIURL: d.SaleorAPIURL, Token: d.Token, JWKS: d.JWKS, Domain: d.Domain}
}

type cloudPage struct {
	Count   int           `json:"count"`
	Next    *string       `json:"next"`
	Results []cloudRecord `json:"results"`
}

func (s *SaleorCloudAPL) recordURL(saleorAPIURL string) string {
	return s.cfg.ResourceURL + "/" + url.PathEscape(base64.StdEncoding.EncodeToString([]byte(saleorAPIURL)))
}

func (s *SaleorCloudAPL) do(ctx context.Context, method, target string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: saleor cloud %s: %v", ErrConnectivity, method, err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func (s *SaleorCloudAPL) Get(ctx context.Context, saleorAPIURL string) (*AuthData, error) {
	resp, err := s.do(ctx, http.MethodGet, s.recordURL(saleorAPIURL), nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("saleor cloud get: status %d", resp.StatusCode)
	}
	var rec cloudRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, nil
	}
	d := rec.authData()
	return &d, nil
}

func (s *SaleorCloudAPL) Set(ctx context.Context, data AuthData) error {
	resp, err := s.do(ctx, http.MethodPost, s.cfg.ResourceURL, toCloudRecord(data))
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("saleor cloud set: status %d", resp.StatusCode)
	}
	return nil
}

func (s *SaleorCloudAPL) Delete(ctx context.Context, saleorAPIURL string) error {
	resp, err := s.do(ctx, http.MethodDelete, s.recordURL(saleorAPIURL), nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("saleor cloud delete: status %d", resp.StatusCode)
}

// maxPages bounds a listing whose `next` links never end.
const maxPages = 1000

// GetAll follows the `next` links until the listing is exhausted. A link to
// another origin or to a page already fetched fails the listing; the bearer
// token is only ever sent to the configured resource host.
func (s *SaleorCloudAPL) GetAll(ctx context.Context) ([]AuthData, error) {
	base, err := url.Parse(s.cfg.ResourceURL)
	if err != nil {
		return nil, fmt.Errorf("saleor cloud list: %w", err)
	}
	out := []AuthData{}
	visited := map[string]struct{}{}
	next := base
	for next != nil {
		target := next.String()
		if _, seen := visited[target]; seen {
			return nil, fmt.Errorf("saleor cloud list: pagination loop at %s", target)
		}
		if len(visited) >= maxPages {
			return nil, fmt.Errorf("saleor cloud list: more than %d pages", maxPages)
		}
		visited[target] = struct{}{}

		page, err := s.page(ctx, target)
		if err != nil {
			return nil, err
		}
		for _, r := range page.Results {
			out = append(out, r.authData())
		}
		cur := next
		next = nil
		if page.Next != nil && *page.Next != "" {
			ref, err := url.Parse(*page.Next)
			if err != nil {
				return nil, fmt.Errorf("saleor cloud list: bad next link: %w", err)
			}
			ref = cur.ResolveReference(ref)
			if ref.Scheme != base.Scheme || ref.Host != base.Host {
				return nil, fmt.Errorf("saleor cloud list: next link %s leaves %s", ref.Redacted(), base.Host)
			}
			next = ref
		}
	}
	return out, nil
}

func (s *SaleorCloudAPL) page(ctx context.Context, target string) (cloudPage, error) {
	var page cloudPage
	resp, err := s.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return page, err
	}
	defer drain(resp)
	if resp.StatusCode >= 300 {
		return page, fmt.Errorf("saleor cloud list: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return page, fmt.Errorf("saleor cloud list: %w", err)
	}
	return page, nil
}

func (s *SaleorCloudAPL) IsReady(ctx context.Context) ReadyResult {
	resp, err := s.do(ctx, http.MethodGet, s.cfg.ResourceURL, nil)
	if err != nil {
		return notReady(err)
	}
	defer drain(resp)
	if resp.StatusCode >= 300 {
		return notReady(fmt.Errorf("%w: saleor cloud APL responded %d", ErrConnectivity, resp.StatusCode))
	}
	return ready()
}

func (s *SaleorCloudAPL) IsConfigured() ConfiguredResult {
	if s.cfg.ResourceURL == "" || s.cfg.Token == "" {
		return notConfigured(fmt.Errorf("%w: rest APL is not configured", ErrConfiguration))
	}
	return configured()
}
