// Command example builds the query schema of a small blog from Go structs.
// It prints the schema as SDL, or serves it with -serve.
package main

import (
	"flag"
	"net/http"
	"os"

	"go.uber.org/zap"

	"go.appointy.com/queryschema"
	"go.appointy.com/queryschema/capability"
	"go.appointy.com/queryschema/datamodel"
	"go.appointy.com/queryschema/schema"
	"go.appointy.com/queryschema/schemabuilder"
	"go.appointy.com/queryschema/sdl"
)

var (
	serveFlag  = flag.Bool("serve", false, "serve the schema instead of printing it")
	addrFlag   = flag.String("addr", ":8080", "address to serve on")
	legacyFlag = flag.Bool("legacy", false, "build the legacy schema shape")
)

// buildSchema reflects the blog types and builds their query schema with
// every capability enabled.
func buildSchema(logger *zap.Logger, mode schemabuilder.BuildMode) (*schema.QuerySchema, error) {
	dm, err := datamodel.Reflect(User{}, Post{}, Address{})
	if err != nil {
		return nil, err
	}
	return schemabuilder.BuildQuerySchema(dm, capability.All(),
		schemabuilder.WithBuildMode(mode),
		schemabuilder.WithLogger(logger),
	), nil
}

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	mode := schemabuilder.Modern
	if *legacyFlag {
		mode = schemabuilder.Legacy
	}
	qs, err := buildSchema(logger, mode)
	if err != nil {
		logger.Fatal("Failed to build schema", zap.Error(err))
	}

	if !*serveFlag {
		sdl.Print(os.Stdout, qs)
		return
	}

	h, err := queryschema.HTTPHandler(qs, queryschema.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to create handler", zap.Error(err))
	}
	http.Handle("/graphql", h)
	http.Handle("/", queryschema.PlaygroundHandler("Blog", "/graphql"))

	logger.Info("Server running", zap.String("addr", *addrFlag))
	if err := http.ListenAndServe(*addrFlag, nil); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
