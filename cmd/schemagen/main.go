// Command schemagen builds the query schema of a data model and prints it as
// SDL or introspection JSON, dumps it for debugging, or serves it over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.appointy.com/queryschema/datamodel"
	"go.appointy.com/queryschema/internal/config"
	"go.appointy.com/queryschema/schema"
	"go.appointy.com/queryschema/schemabuilder"
)

// app is the state shared by the commands once the configuration is loaded.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "schemagen",
		Short: "Build GraphQL query schemas from data models",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			level, _ := cfg.Level()
			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), level)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./"+config.DefaultConfigFile+")")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newSDLCommand(a),
		newIntrospectCommand(a),
		newDumpCommand(a),
		newServeCommand(a),
	)
	return rootCmd
}

// newLogger logs in zap's development format to w.
func newLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}

func (a *app) loadDataModel(ctx context.Context) (*datamodel.InternalDataModel, error) {
	if a.cfg.FromBucket() {
		a.logger.Debug("fetching data model", zap.String("bucket", a.cfg.DataModel), zap.String("key", a.cfg.DataModelKey))
		return datamodel.Fetch(ctx, a.cfg.DataModel, a.cfg.DataModelKey)
	}
	a.logger.Debug("loading data model", zap.String("path", a.cfg.DataModel))
	return datamodel.Load(a.cfg.DataModel)
}

func (a *app) buildQuerySchema(dm *datamodel.InternalDataModel) (*schema.QuerySchema, error) {
	mode, err := a.cfg.BuildMode()
	if err != nil {
		return nil, err
	}
	caps, err := a.cfg.CapabilitySet()
	if err != nil {
		return nil, err
	}
	return schemabuilder.BuildQuerySchema(dm, caps,
		schemabuilder.WithBuildMode(mode),
		schemabuilder.WithLogger(a.logger),
		schemabuilder.WithPluralOverrides(a.cfg.PluralOverrides),
	), nil
}

func (a *app) querySchema(ctx context.Context) (*schema.QuerySchema, error) {
	dm, err := a.loadDataModel(ctx)
	if err != nil {
		return nil, err
	}
	return a.buildQuerySchema(dm)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
