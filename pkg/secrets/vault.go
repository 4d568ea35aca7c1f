package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ManagedKeys are the environment variables a Vault secret may populate.
// Anything else stored at the path is ignored.
var ManagedKeys = []string{
	"IMAGE_HOST_CLIENT_ID",
	"REDIS_PASSWORD",
	"LANDMARK_API_URL",
	"ADMIN_JWT_SECRET",
}

// VaultConfig describes where the service secrets live.
type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	Overwrite bool
}

// Result summarises an Apply call.
type Result struct {
	Enabled bool
	Path    string
	Loaded  []string
	Skipped []string
}

// VaultConfigFromEnv reads VAULT_* variables.
func VaultConfigFromEnv() VaultConfig {
	cfg := VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     "secret",
		Path:      "walking",
		KVVersion: 2,
		Timeout:   5 * time.Second,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
	}
	if v := os.Getenv("VAULT_MOUNT"); v != "" {
		cfg.Mount = v
	}
	if v := os.Getenv("VAULT_PATH"); v != "" {
		cfg.Path = v
	}
	if v, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil {
		cfg.KVVersion = v
	}
	if v, err := time.ParseDuration(os.Getenv("VAULT_TIMEOUT")); err == nil && v > 0 {
		cfg.Timeout = v
	}
	return cfg
}

// Loader copies managed secrets from a Vault KV engine into the process
// environment so config.Load picks them up.
type Loader struct {
	cfg        VaultConfig
	httpClient *http.Client
}

// NewLoader creates a loader. A nil httpClient uses cfg.Timeout.
func NewLoader(cfg VaultConfig, httpClient *http.Client) *Loader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Loader{cfg: cfg, httpClient: httpClient}
}

// Apply fetches the secret and sets each managed key. Keys already present
// in the environment are kept unless Overwrite is set.
func (l *Loader) Apply(ctx context.Context) (Result, error) {
	result := Result{Enabled: l.cfg.Enabled, Path: l.cfg.Path}
	if !l.cfg.Enabled {
		return result, nil
	}

	data, err := l.Fetch(ctx)
	if err != nil {
		return result, err
	}

	for _, key := range ManagedKeys {
		value, ok := data[key]
		if !ok {
			continue
		}
		if !l.cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return result, err
		}
		result.Loaded = append(result.Loaded, key)
	}

	log.Info().
		Str("path", l.cfg.Path).
		Strs("loaded", result.Loaded).
		Strs("skipped", result.Skipped).
		Msg("vault secrets applied")
	return result, nil
}

// Fetch reads the secret at the configured path.
func (l *Loader) Fetch(ctx context.Context) (map[string]string, error) {
	if l.cfg.Addr == "" || l.cfg.Token == "" {
		return nil, errors.New("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN)")
	}

	endpoint, err := secretURL(l.cfg.Addr, l.cfg.Mount, l.cfg.Path, l.cfg.KVVersion)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Vault-Token", l.cfg.Token)
	if l.cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", l.cfg.Namespace)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vault request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vault fetch failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode vault response: %w", err)
	}

	fields := payload.Data
	if l.cfg.KVVersion != 1 {
		inner, ok := payload.Data["data"]
		if !ok {
			return nil, errors.New("vault response missing data for KV v2")
		}
		fields = nil
		if err := json.Unmarshal(inner, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode vault data: %w", err)
		}
	}
	if fields == nil {
		return nil, errors.New("vault response missing data")
	}

	values := make(map[string]string, len(fields))
	for key, raw := range fields {
		values[key] = stringify(raw)
	}
	return values, nil
}

func secretURL(addr, mount, path string, kvVersion int) (string, error) {
	addr = strings.TrimRight(addr, "/")
	mount = strings.Trim(mount, "/")
	path = strings.TrimLeft(path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount, and path must be set")
	}
	if kvVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

// stringify turns a JSON value into its environment form. Strings are
// unquoted; everything else keeps its literal JSON text.
func stringify(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}
