// Package config holds the schemagen configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"

	"go.appointy.com/queryschema/capability"
	"go.appointy.com/queryschema/schemabuilder"
)

const (
	// DefaultConfigFile is read when no config file is given and it exists.
	DefaultConfigFile = "schemagen.yaml"
	DefaultListen     = ":8080"
	DefaultLogLevel   = "info"
	DefaultMode       = "modern"
)

// ErrNoDataModel is returned by Validate when no data model source is set.
var ErrNoDataModel = errors.New("no data model configured")

// Config is the schemagen configuration.
type Config struct {
	// DataModel is a YAML file path or a bucket URL such as
	// file:///srv/models or s3://bucket.
	DataModel string `koanf:"datamodel"`
	// DataModelKey is the object key inside the bucket. Only used with a
	// bucket URL.
	DataModelKey    string            `koanf:"datamodel_key"`
	Mode            string            `koanf:"mode"`
	Capabilities    []string          `koanf:"capabilities"`
	PluralOverrides map[string]string `koanf:"plural_overrides"`
	Listen          string            `koanf:"listen"`
	LogLevel        string            `koanf:"log_level"`
}

// FromBucket reports whether DataModel names a bucket URL rather than a
// file.
func (c *Config) FromBucket() bool {
	return strings.Contains(c.DataModel, "://")
}

func (c *Config) BuildMode() (schemabuilder.BuildMode, error) {
	return schemabuilder.ParseBuildMode(c.Mode)
}

func (c *Config) CapabilitySet() (capability.Set, error) {
	return capability.Parse(c.Capabilities)
}

func (c *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

// Validate checks that every value can be used.
func (c *Config) Validate() error {
	if c.DataModel == "" {
		return ErrNoDataModel
	}
	if c.FromBucket() && c.DataModelKey == "" {
		return fmt.Errorf("datamodel_key is required with bucket %s", c.DataModel)
	}
	if _, err := c.BuildMode(); err != nil {
		return err
	}
	if _, err := c.CapabilitySet(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	for singular, plural := range c.PluralOverrides {
		if singular == "" || plural == "" {
			return fmt.Errorf("plural_overrides: empty name in %q: %q", singular, plural)
		}
	}
	return nil
}
