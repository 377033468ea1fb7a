// Package queryschema serves query schemas over HTTP.
package queryschema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"go.uber.org/zap"

	"go.appointy.com/queryschema/graphqlgo"
	"go.appointy.com/queryschema/schema"
	"go.appointy.com/queryschema/sdl"
)

// HandlerFunc executes a request against the exported schema.
type HandlerFunc func(ctx context.Context, params graphql.Params) *graphql.Result

// MiddlewareFunc wraps execution, e.g. to log or to reject operations.
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	Middlewares []MiddlewareFunc
	Logger      *zap.Logger
}

// WithMiddlewares appends middlewares. The first one is the outermost.
func WithMiddlewares(m ...MiddlewareFunc) HandlerOption {
	return func(o *handlerOptions) {
		o.Middlewares = append(o.Middlewares, m...)
	}
}

// WithLogger sets the logger used for request errors.
func WithLogger(l *zap.Logger) HandlerOption {
	return func(o *handlerOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// HTTPHandler serves qs. GET returns the schema as SDL. POST executes a
// GraphQL request against the schema; only introspection yields data since
// model fields resolve to null. Any other method is answered with an error.
func HTTPHandler(qs *schema.QuerySchema, opts ...HandlerOption) (http.Handler, error) {
	exported, err := graphqlgo.Export(qs)
	if err != nil {
		return nil, err
	}

	o := handlerOptions{Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	h := &httpHandler{
		schema: exported,
		sdl:    sdl.String(qs),
		logger: o.Logger,
	}

	prev := h.execute
	for i := range o.Middlewares {
		prev = o.Middlewares[len(o.Middlewares)-1-i](prev)
	}
	h.exec = prev

	return h, nil
}

type httpHandler struct {
	schema *graphql.Schema
	sdl    string
	logger *zap.Logger

	exec HandlerFunc
}

type httpPostBody struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

type httpResponse struct {
	Data   interface{}                `json:"data"`
	Errors []gqlerrors.FormattedError `json:"errors,omitempty"`
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeResponse := func(response httpResponse) {
		responseJSON, err := json.Marshal(response)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		_, _ = w.Write(responseJSON)
	}
	writeError := func(err error) {
		h.logger.Debug("rejected request", zap.String("method", r.Method), zap.Error(err))
		writeResponse(httpResponse{Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)}})
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprint(w, h.sdl)
		return
	case http.MethodPost:
	default:
		writeError(fmt.Errorf("method %s not allowed, use GET or POST", r.Method))
		return
	}

	if r.Body == nil {
		writeError(errors.New("request must include a query"))
		return
	}

	var params httpPostBody
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(err)
		return
	}
	if params.Query == "" {
		writeError(errors.New("request must include a query"))
		return
	}

	ctx := addVariables(r.Context(), params.Variables)
	result := h.exec(ctx, graphql.Params{
		Schema:         *h.schema,
		RequestString:  params.Query,
		VariableValues: params.Variables,
		OperationName:  params.OperationName,
		Context:        ctx,
	})
	if result.HasErrors() {
		h.logger.Debug("request failed", zap.Int("errors", len(result.Errors)))
	}
	writeResponse(httpResponse{Data: result.Data, Errors: result.Errors})
}

func (h *httpHandler) execute(_ context.Context, params graphql.Params) *graphql.Result {
	return graphql.Do(params)
}

type graphqlVariableKeyType int

const graphqlVariableKey graphqlVariableKeyType = 0

// ExtractVariables returns the variables of the current request. It is meant
// to be called from middlewares.
func ExtractVariables(ctx context.Context) map[string]interface{} {
	if v := ctx.Value(graphqlVariableKey); v != nil {
		return v.(map[string]interface{})
	}

	return nil
}

func addVariables(ctx context.Context, v map[string]interface{}) context.Context {
	return context.WithValue(ctx, graphqlVariableKey, v)
}
