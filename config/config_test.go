package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SOURCE_PATH", "./testdata/products.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "standard", cfg.Source.Variant)
	assert.Equal(t, 20, cfg.Categorize.BatchSize)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.TextGen.APIKey)
}

func TestLoadBrandLists(t *testing.T) {
	t.Setenv("OUR_BRANDS", " Acme , Zenith,,")
	t.Setenv("COMPETITOR_BRANDS", "Globex")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme", "Zenith"}, cfg.OurBrands)
	assert.Equal(t, []string{"Globex"}, cfg.CompetitorBrands)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown source kind",
			mutate:  func(c *Config) { c.Source.Kind = "parquet" },
			wantErr: "SOURCE_KIND",
		},
		{
			name: "postgres without table",
			mutate: func(c *Config) {
				c.Source.Kind = "postgres"
				c.Source.Table = ""
			},
			wantErr: "SOURCE_TABLE",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Categorize.BatchSize = 0 },
			wantErr: "CATEGORIZE_BATCH_SIZE",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.Categorize.RateLimitMs = -1 },
			wantErr: "RATE_LIMIT_MS",
		},
		{
			name: "api key without url",
			mutate: func(c *Config) {
				c.TextGen.APIKey = "secret"
				c.TextGen.URL = ""
			},
			wantErr: "TEXTGEN_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
