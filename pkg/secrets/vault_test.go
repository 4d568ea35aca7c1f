package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultServer(t *testing.T, path, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s.token", r.Header.Get("X-Vault-Token"))
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLoader_ApplyKV2(t *testing.T) {
	server := vaultServer(t, "/v1/secret/data/walking",
		`{"data":{"data":{"IMAGE_HOST_CLIENT_ID":"abc123","REDIS_PASSWORD":"hunter2","UNRELATED":"x"}}}`)

	t.Setenv("IMAGE_HOST_CLIENT_ID", "")
	t.Setenv("REDIS_PASSWORD", "already-set")
	t.Setenv("UNRELATED", "")

	loader := NewLoader(VaultConfig{
		Enabled:   true,
		Addr:      server.URL,
		Token:     "s.token",
		Mount:     "secret",
		Path:      "walking",
		KVVersion: 2,
	}, server.Client())

	result, err := loader.Apply(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"IMAGE_HOST_CLIENT_ID"}, result.Loaded)
	assert.Equal(t, []string{"REDIS_PASSWORD"}, result.Skipped)
	assert.Equal(t, "abc123", os.Getenv("IMAGE_HOST_CLIENT_ID"))
	assert.Equal(t, "already-set", os.Getenv("REDIS_PASSWORD"))
	assert.Empty(t, os.Getenv("UNRELATED"))
}

func TestLoader_FetchKV1(t *testing.T) {
	server := vaultServer(t, "/v1/kv/walking", `{"data":{"LANDMARK_API_URL":"http://landmarks:5000","PORT":8080,"EMPTY":null}}`)

	loader := NewLoader(VaultConfig{
		Enabled:   true,
		Addr:      server.URL + "/",
		Token:     "s.token",
		Mount:     "/kv/",
		Path:      "/walking",
		KVVersion: 1,
	}, server.Client())

	values, err := loader.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://landmarks:5000", values["LANDMARK_API_URL"])
	assert.Equal(t, "8080", values["PORT"])
	assert.Equal(t, "", values["EMPTY"])
}

func TestLoader_Errors(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		result, err := NewLoader(VaultConfig{}, nil).Apply(context.Background())
		require.NoError(t, err)
		assert.False(t, result.Enabled)
	})

	t.Run("incomplete configuration", func(t *testing.T) {
		_, err := NewLoader(VaultConfig{Enabled: true, Path: "walking", Mount: "secret"}, nil).Apply(context.Background())
		assert.Error(t, err)
	})

	t.Run("missing secret", func(t *testing.T) {
		server := vaultServer(t, "/v1/secret/data/other", `{}`)
		loader := NewLoader(VaultConfig{
			Enabled: true, Addr: server.URL, Token: "s.token", Mount: "secret", Path: "walking", KVVersion: 2,
		}, server.Client())

		_, err := loader.Apply(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("kv2 response without nested data", func(t *testing.T) {
		server := vaultServer(t, "/v1/secret/data/walking", `{"data":{"IMAGE_HOST_CLIENT_ID":"abc"}}`)
		loader := NewLoader(VaultConfig{
			Enabled: true, Addr: server.URL, Token: "s.token", Mount: "secret", Path: "walking", KVVersion: 2,
		}, server.Client())

		_, err := loader.Fetch(context.Background())
		assert.Error(t, err)
	})
}

func TestVaultConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "TRUE")
	t.Setenv("VAULT_MOUNT", "")
	t.Setenv("VAULT_PATH", "")
	t.Setenv("VAULT_KV_VERSION", "1")
	t.Setenv("VAULT_TIMEOUT", "2s")

	cfg := VaultConfigFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "secret", cfg.Mount)
	assert.Equal(t, "walking", cfg.Path)
	assert.Equal(t, 1, cfg.KVVersion)
	assert.Equal(t, "2s", cfg.Timeout.String())
}
