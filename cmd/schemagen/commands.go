package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.appointy.com/queryschema"
	"go.appointy.com/queryschema/introspection"
	"go.appointy.com/queryschema/schema"
	"go.appointy.com/queryschema/sdl"
)

const shutdownTimeout = 5 * time.Second

func newSDLCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sdl",
		Short: "Print the query schema as GraphQL SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			qs, err := a.querySchema(cmd.Context())
			if err != nil {
				return err
			}
			sdl.Print(cmd.OutOrStdout(), qs)
			return nil
		},
	}
}

func newIntrospectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "introspect",
		Short: "Print the introspection result of the query schema as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			qs, err := a.querySchema(cmd.Context())
			if err != nil {
				return err
			}
			out, err := introspection.ComputeSchemaJSON(qs)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(out, '\n'))
			return err
		},
	}
}

func newDumpCommand(a *app) *cobra.Command {
	var withSchema bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the loaded data model for debugging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dm, err := a.loadDataModel(cmd.Context())
			if err != nil {
				return err
			}
			cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
			cfg.Fdump(cmd.OutOrStdout(), dm.Models(), dm.Enums())
			if !withSchema {
				return nil
			}
			qs, err := a.buildQuerySchema(dm)
			if err != nil {
				return err
			}
			cfg.Fdump(cmd.OutOrStdout(), typeNames(qs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&withSchema, "schema", false, "also dump the names of the built types")
	return cmd
}

// typeNames lists the built types by kind.
func typeNames(qs *schema.QuerySchema) map[string][]string {
	names := map[string][]string{}
	for _, o := range qs.OutputTypes() {
		names["objects"] = append(names["objects"], o.Name())
	}
	for _, in := range qs.InputTypes() {
		names["inputs"] = append(names["inputs"], in.Name())
	}
	for _, e := range qs.Enums() {
		names["enums"] = append(names["enums"], e.Name)
	}
	for _, s := range qs.Scalars() {
		names["scalars"] = append(names["scalars"], s.Name)
	}
	return names
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the query schema over HTTP",
		Long: `Serve the query schema over HTTP.

GET /graphql returns the SDL, POST /graphql executes (introspection) queries and
/ serves a GraphiQL playground.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			qs, err := a.querySchema(ctx)
			if err != nil {
				return err
			}
			mux, err := newMux(qs, a.logger)
			if err != nil {
				return err
			}
			return serve(ctx, &http.Server{Addr: a.cfg.Listen, Handler: mux}, a.logger)
		},
	}
}

func newMux(qs *schema.QuerySchema, logger *zap.Logger) (*http.ServeMux, error) {
	h, err := queryschema.HTTPHandler(qs, queryschema.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/graphql", h)
	mux.Handle("/", queryschema.PlaygroundHandler("Query Schema", "/graphql"))
	return mux, nil
}

// serve runs srv until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("serving", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
