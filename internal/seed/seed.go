// Package seed loads auth records from a YAML or JSON file into an APL at boot.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"smtpapl/pkg/apl"
)

type file struct {
	Records []apl.AuthData `yaml:"records"`
}

// Parse accepts YAML or JSON (JSON is a YAML subset). Records without a
// Saleor API URL or token are rejected.
func Parse(data []byte) ([]apl.AuthData, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: parse: %w", err)
	}
	for i, r := range f.Records {
		if strings.TrimSpace(r.SaleorAPIURL) == "" || strings.TrimSpace(r.Token) == "" {
			return nil, fmt.Errorf("seed: record %d needs saleorApiUrl and token", i)
		}
	}
	return f.Records, nil
}

// Load writes every record of path into a. Existing records are replaced.
// An empty path is a no-op.
func Load(ctx context.Context, a apl.APL, path string, log *zap.SugaredLogger) (int, error) {
	if path == "" {
		return 0, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	records, err := Parse(data)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		if err := a.Set(ctx, r); err != nil {
			return 0, fmt.Errorf("seed: set %s: %w", r.SaleorAPIURL, err)
		}
	}
	log.Infow("seeded auth records", "path", path, "count", len(records))
	return len(records), nil
}
