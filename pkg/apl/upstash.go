package apl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type UpstashConfig struct {
	URL   string
	Token string
}

// UpstashAPL stores records through the Upstash Redis REST API. Each record
// is a plain key named after the Saleor API URL.
type UpstashAPL struct {
	cfg  UpstashConfig
	http *http.Client
}

var _ APL = (*UpstashAPL)(nil)

// NewUpstashAPL does not validate settings; IsConfigured reports them.
func NewUpstashAPL(cfg UpstashConfig, client *http.Client) *UpstashAPL {
	if client == nil {
		client = http.DefaultClient
	}
	return &UpstashAPL{cfg: cfg, http: client}
}

type upstashResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// command posts one Redis command as a JSON array and returns the raw result.
func (u *UpstashAPL) command(ctx context.Context, args ...string) (json.RawMessage, error) {
	if res := u.IsConfigured(); !res.Configured {
		return nil, res.Err
	}
	body, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+u.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: upstash %s: %v", ErrConnectivity, args[0], err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: upstash %s: %v", ErrConnectivity, args[0], err)
	}
	var out upstashResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("upstash %s: status %d: %w", args[0], resp.StatusCode, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("upstash %s: %s", args[0], out.Error)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstash %s: status %d", args[0], resp.StatusCode)
	}
	return out.Result, nil
}

func (u *UpstashAPL) Get(ctx context.Context, saleorAPIURL string) (*AuthData, error) {
	res, err := u.command(ctx, "GET", saleorAPIURL)
	if err != nil {
		return nil, err
	}
	var s *string
	if err := json.Unmarshal(res, &s); err != nil || s == nil {
		return nil, nil
	}
	var d AuthData
	if err := json.Unmarshal([]byte(*s), &d); err != nil {
		return nil, nil
	}
	return &d, nil
}

func (u *UpstashAPL) Set(ctx context.Context, data AuthData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = u.command(ctx, "SET", data.SaleorAPIURL, string(b))
	return err
}

func (u *UpstashAPL) Delete(ctx context.Context, saleorAPIURL string) error {
	_, err := u.command(ctx, "DEL", saleorAPIURL)
	return err
}

// GetAll is unavailable: keys are not namespaced, so they cannot be listed safely.
func (u *UpstashAPL) GetAll(context.Context) ([]AuthData, error) {
	return nil, fmt.Errorf("%w: upstash getAll", ErrNotSupported)
}

func (u *UpstashAPL) IsReady(ctx context.Context) ReadyResult {
	res, err := u.command(ctx, "PING")
	if err != nil {
		return notReady(err)
	}
	var reply string
	if err := json.Unmarshal(res, &reply); err != nil || reply != "PONG" {
		return notReady(fmt.Errorf("%w: upstash ping replied %s", ErrConnectivity, string(res)))
	}
	return ready()
}

func (u *UpstashAPL) IsConfigured() ConfiguredResult {
	var missing []string
	if strings.TrimSpace(u.cfg.URL) == "" {
		missing = append(missing, "UPSTASH_URL")
	}
	if strings.TrimSpace(u.cfg.Token) == "" {
		missing = append(missing, "UPSTASH_TOKEN")
	}
	if len(missing) > 0 {
		return notConfigured(fmt.Errorf("%w: upstash APL is missing %s", ErrConfiguration, strings.Join(missing, ", ")))
	}
	return configured()
}
