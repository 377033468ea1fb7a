package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"go.appointy.com/queryschema/capability"
	"go.appointy.com/queryschema/schemabuilder"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemagen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	if diff := pretty.Compare(cfg, &Config{
		Mode:     DefaultMode,
		Listen:   DefaultListen,
		LogLevel: DefaultLogLevel,
	}); diff != "" {
		t.Errorf("unexpected config:\n%s", diff)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
datamodel: models.yaml
mode: legacy
listen: ":9000"
capabilities: [relation_filters]
plural_overrides:
  Person: People
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "models.yaml", cfg.DataModel)
		assert.Equal(t, "legacy", cfg.Mode)
		assert.Equal(t, ":9000", cfg.Listen)
		assert.Equal(t, []string{"relation_filters"}, cfg.Capabilities)
		assert.Equal(t, map[string]string{"Person": "People"}, cfg.PluralOverrides)
		assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("SCHEMAGEN_MODE", "modern")
		t.Setenv("SCHEMAGEN_DATAMODEL_KEY", "blog.yaml")
		t.Setenv("SCHEMAGEN_CAPABILITIES", "json_filters, scalar_list_filters")

		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "modern", cfg.Mode)
		assert.Equal(t, "blog.yaml", cfg.DataModelKey)
		assert.Equal(t, []string{"json_filters", "scalar_list_filters"}, cfg.Capabilities)
		assert.Equal(t, ":9000", cfg.Listen)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("SCHEMAGEN_LISTEN", ":7000")
		t.Setenv("SCHEMAGEN_MODE", "modern")

		cfg, err := Load(path, newFlags(t, "--listen", ":6000", "--log-level", "debug"))
		require.NoError(t, err)
		assert.Equal(t, ":6000", cfg.Listen)
		assert.Equal(t, "debug", cfg.LogLevel)
		// Flags left at their defaults do not override.
		assert.Equal(t, "modern", cfg.Mode)
	})

	t.Run("slice flag", func(t *testing.T) {
		cfg, err := Load(path, newFlags(t, "--capabilities", "all"))
		require.NoError(t, err)
		assert.Equal(t, []string{"all"}, cfg.Capabilities)
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "error reading config file")
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "mode: [unclosed"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{DataModel: "models.yaml", Mode: "modern", LogLevel: "info"}
	}

	tests := []struct {
		name      string
		modify    func(c *Config)
		errSubstr string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "bucket with key", modify: func(c *Config) { c.DataModel = "mem://"; c.DataModelKey = "m.yaml" }},
		{name: "no data model", modify: func(c *Config) { c.DataModel = "" }, errSubstr: "no data model configured"},
		{name: "bucket without key", modify: func(c *Config) { c.DataModel = "s3://models" }, errSubstr: "datamodel_key is required"},
		{name: "bad mode", modify: func(c *Config) { c.Mode = "ancient" }, errSubstr: "unknown build mode"},
		{name: "bad capability", modify: func(c *Config) { c.Capabilities = []string{"teleport"} }, errSubstr: "unknown capability"},
		{name: "bad level", modify: func(c *Config) { c.LogLevel = "loud" }, errSubstr: "log_level"},
		{name: "empty plural", modify: func(c *Config) { c.PluralOverrides = map[string]string{"Person": ""} }, errSubstr: "plural_overrides"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			err := c.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errSubstr)
		})
	}
}

func TestConversions(t *testing.T) {
	c := &Config{Mode: "legacy", Capabilities: []string{"relation_filters", "json_filters"}, LogLevel: "warn"}

	mode, err := c.BuildMode()
	require.NoError(t, err)
	assert.Equal(t, schemabuilder.Legacy, mode)

	caps, err := c.CapabilitySet()
	require.NoError(t, err)
	assert.Equal(t, capability.NewSet(capability.RelationFilters, capability.JSONFilters), caps)

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)

	assert.False(t, c.FromBucket())
	c.DataModel = "file:///srv/models"
	assert.True(t, c.FromBucket())
}
