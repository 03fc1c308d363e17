package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
    port: 5432
    database: catalog
    user: catalog
  elasticsearch:
    addresses: ["http://localhost:9200"]
attribute_lookup:
  base_url: http://localhost:9000
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "catalog-search", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "products", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.URL)
	assert.Equal(t, 300000, cfg.Catalog.CacheTTL)
	assert.Equal(t, 200, cfg.Catalog.CacheMaxEntries)
	assert.Equal(t, 300000, cfg.Catalog.SharedCacheTTL)
	assert.Equal(t, 12, cfg.Catalog.DefaultLimit)
	assert.Equal(t, "active-ingredients", cfg.Catalog.IngredientPrefix)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5*time.Minute, GetDuration(cfg.Catalog.CacheTTL))
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("CATALOG_PG_PASSWORD", "s3cret")

	body := `
database:
  postgres:
    host: localhost
    database: catalog
    user: catalog
    password: ${CATALOG_PG_PASSWORD}
  elasticsearch:
    url: http://es:9200
attribute_lookup:
  base_url: http://lookup
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, []string{"http://es:9200"}, cfg.Database.Elasticsearch.Addresses)
}

func TestLoadFromFile_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "missing postgres host",
			body: `
database:
  postgres:
    database: catalog
    user: catalog
  elasticsearch:
    url: http://es:9200
attribute_lookup:
  base_url: http://lookup
`,
			wantErr: "database.postgres.host is required",
		},
		{
			name: "missing elasticsearch",
			body: `
database:
  postgres:
    host: localhost
    database: catalog
    user: catalog
attribute_lookup:
  base_url: http://lookup
`,
			wantErr: "database.elasticsearch.addresses or url is required",
		},
		{
			name: "redis enabled without address",
			body: `
database:
  postgres:
    host: localhost
    database: catalog
    user: catalog
  elasticsearch:
    url: http://es:9200
  redis:
    enabled: true
attribute_lookup:
  base_url: http://lookup
`,
			wantErr: "database.redis.address is required",
		},
		{
			name: "default limit above max",
			body: minimalConfig + `catalog:
  default_limit: 500
  max_limit: 100
`,
			wantErr: "exceeds catalog.max_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
