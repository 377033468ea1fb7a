// Package schemabuilder turns a data model into a query schema.
//
// A QuerySchemaBuilder wires four builders together: the filter builder
// (where conditions, unique selectors, ordering and enums), the input builder
// (create and update payloads), the object builder (one output type per
// model) and the argument builder (argument lists of the root fields). Each
// builder owns the types it creates; the others reach it through non-owning
// references. Build drives the query and mutation passes and then drains
// every builder into a schema.QuerySchema.
//
//	qs := schemabuilder.NewQuerySchemaBuilder(dm, capability.All()).Build()
package schemabuilder

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go.appointy.com/queryschema/capability"
	"go.appointy.com/queryschema/datamodel"
	"go.appointy.com/queryschema/internal/naming"
	"go.appointy.com/queryschema/internal/shared"
	"go.appointy.com/queryschema/schema"
)

// BuildMode selects the shape of filters, ordering and pagination.
type BuildMode int

const (
	// Modern nests per-type filter inputs, orders by SortOrder fields and
	// paginates with cursor, take and skip.
	Modern BuildMode = iota
	// Legacy uses suffixed filter fields (name_contains), an order-by enum
	// and first, last, after and before pagination.
	Legacy
)

func (m BuildMode) String() string {
	switch m {
	case Modern:
		return "modern"
	case Legacy:
		return "legacy"
	}
	return fmt.Sprintf("BuildMode(%d)", int(m))
}

// ParseBuildMode parses "modern" or "legacy".
func ParseBuildMode(s string) (BuildMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "modern":
		return Modern, nil
	case "legacy":
		return Legacy, nil
	}
	return 0, fmt.Errorf("unknown build mode %q", s)
}

// Option configures a QuerySchemaBuilder.
type Option func(*QuerySchemaBuilder)

// WithBuildMode sets the build mode. The default is Modern.
func WithBuildMode(mode BuildMode) Option {
	return func(b *QuerySchemaBuilder) {
		b.mode = mode
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(b *QuerySchemaBuilder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithPluralOverrides sets irregular plurals (singular model name to plural)
// used for the list and many-records field names.
func WithPluralOverrides(overrides map[string]string) Option {
	return func(b *QuerySchemaBuilder) {
		b.namer = naming.New(overrides)
	}
}

// QuerySchemaBuilder builds a schema.QuerySchema from a data model. It can
// build only once.
type QuerySchemaBuilder struct {
	dm     *datamodel.InternalDataModel
	caps   capability.Set
	mode   BuildMode
	logger *zap.Logger
	namer  *naming.Namer

	filters   *shared.Owner[filterTypeBuilder]
	inputs    *shared.Owner[inputTypeBuilder]
	objects   *shared.Owner[objectTypeBuilder]
	arguments *argumentBuilder

	built bool
}

// NewQuerySchemaBuilder wires the builders for dm. The filter builder comes
// first since it depends on nothing else; the input and object builders
// refer to it, and the argument builder refers to both of them.
func NewQuerySchemaBuilder(dm *datamodel.InternalDataModel, caps capability.Set, opts ...Option) *QuerySchemaBuilder {
	b := &QuerySchemaBuilder{
		dm:     dm,
		caps:   caps,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.filters = shared.New(newFilterTypeBuilder(caps, b.mode))
	b.inputs = shared.New(newInputTypeBuilder(dm, b.filters.Downgrade()))
	b.objects = shared.New(newObjectTypeBuilder(dm, caps, b.mode, b.filters.Downgrade()))
	b.arguments = newArgumentBuilder(b.inputs.Downgrade(), b.objects.Downgrade())
	return b
}

// BuildQuerySchema is shorthand for NewQuerySchemaBuilder(...).Build().
func BuildQuerySchema(dm *datamodel.InternalDataModel, caps capability.Set, opts ...Option) *schema.QuerySchema {
	return NewQuerySchemaBuilder(dm, caps, opts...).Build()
}

// Build creates the root query and mutation types and collects every type
// the builders produced into the schema. It panics when called twice, and
// when a builder is still referenced at collection time.
func (b *QuerySchemaBuilder) Build() *schema.QuerySchema {
	if b.built {
		panic("query schema already built")
	}
	b.built = true

	query := b.buildQueryType()
	mutation := b.buildMutationType()
	inputs, outputs := b.collectTypes()
	outputs = append(outputs, query, mutation)

	qs := schema.NewQuerySchema(query, mutation, inputs, outputs)
	b.logger.Info("built query schema",
		zap.Stringer("mode", b.mode),
		zap.Stringer("capabilities", b.caps),
		zap.Int("queryFields", len(query.Fields())),
		zap.Int("mutationFields", len(mutation.Fields())),
		zap.Int("inputTypes", len(inputs)),
		zap.Int("outputTypes", len(outputs)),
	)
	return qs
}

// collectTypes consumes the builders. Only the QuerySchemaBuilder owns them,
// so taking them fails only if a reference leaked out of a builder call.
func (b *QuerySchemaBuilder) collectTypes() ([]*schema.InputObjectType, []*schema.ObjectType) {
	b.arguments = nil

	objects := take(b.objects)
	inputs := take(b.inputs)
	filters := take(b.filters)

	outputTypes := objects.intoTypes()
	inputTypes := append(inputs.intoTypes(), filters.intoTypes()...)
	return inputTypes, outputTypes
}

func take[T any](owner *shared.Owner[T]) *T {
	v, err := owner.TryTake()
	if err != nil {
		panic(fmt.Sprintf("collecting types: %v", err))
	}
	return v
}

func (b *QuerySchemaBuilder) nonEmbeddedModels() []*datamodel.Model {
	var out []*datamodel.Model
	for _, m := range b.dm.Models() {
		if !m.IsEmbedded {
			out = append(out, m)
		}
	}
	return out
}

func (b *QuerySchemaBuilder) objectType(m *datamodel.Model) schema.ObjectRef {
	return b.objects.Get().MapModelObjectType(m)
}

func (b *QuerySchemaBuilder) buildQueryType() *schema.ObjectType {
	var fields []*schema.Field
	for _, m := range b.nonEmbeddedModels() {
		n := len(fields)
		fields = append(fields, b.allItemsField(m))
		if f, ok := b.singleItemField(m); ok {
			fields = append(fields, f)
		}
		b.logger.Debug("query fields", zap.String("model", m.Name), zap.Int("fields", len(fields)-n))
	}

	query := schema.NewObjectType("Query")
	query.SetFields(fields)
	return query
}

func (b *QuerySchemaBuilder) buildMutationType() *schema.ObjectType {
	var fields []*schema.Field
	for _, m := range b.nonEmbeddedModels() {
		n := len(fields)
		fields = append(fields, b.createItemField(m))
		for _, optional := range []func(*datamodel.Model) (*schema.Field, bool){
			b.deleteItemField,
			b.updateItemField,
			b.upsertItemField,
		} {
			if f, ok := optional(m); ok {
				fields = append(fields, f)
			}
		}
		fields = append(fields, b.updateManyField(m), b.deleteManyField(m))
		b.logger.Debug("mutation fields", zap.String("model", m.Name), zap.Int("fields", len(fields)-n))
	}

	mutation := schema.NewObjectType("Mutation")
	mutation.SetFields(fields)
	return mutation
}

// allItemsField builds e.g. users: [User]!.
func (b *QuerySchemaBuilder) allItemsField(m *datamodel.Model) *schema.Field {
	return &schema.Field{
		Name:      naming.LowerCamel(b.namer.Plural(m.Name)),
		Arguments: b.arguments.ManyRecordsArguments(m),
		Type:      schema.ListOf(schema.Opt(b.objectType(m))),
	}
}

// singleItemField builds e.g. user(where: UserWhereUniqueInput!): User.
func (b *QuerySchemaBuilder) singleItemField(m *datamodel.Model) (*schema.Field, bool) {
	where, ok := b.arguments.WhereUniqueArgument(m)
	if !ok {
		return nil, false
	}
	return &schema.Field{
		Name:      naming.LowerCamel(m.Name),
		Arguments: []*schema.Argument{where},
		Type:      schema.Opt(b.objectType(m)),
	}, true
}

func (b *QuerySchemaBuilder) createItemField(m *datamodel.Model) *schema.Field {
	args, _ := b.arguments.CreateArguments(m)
	return &schema.Field{
		Name:      "create" + m.Name,
		Arguments: args,
		Type:      b.objectType(m),
	}
}

func (b *QuerySchemaBuilder) deleteItemField(m *datamodel.Model) (*schema.Field, bool) {
	args, ok := b.arguments.DeleteArguments(m)
	if !ok {
		return nil, false
	}
	return &schema.Field{
		Name:      "delete" + m.Name,
		Arguments: args,
		Type:      schema.Opt(b.objectType(m)),
	}, true
}

func (b *QuerySchemaBuilder) updateItemField(m *datamodel.Model) (*schema.Field, bool) {
	args, ok := b.arguments.UpdateArguments(m)
	if !ok {
		return nil, false
	}
	return &schema.Field{
		Name:      "update" + m.Name,
		Arguments: args,
		Type:      schema.Opt(b.objectType(m)),
	}, true
}

func (b *QuerySchemaBuilder) upsertItemField(m *datamodel.Model) (*schema.Field, bool) {
	args, ok := b.arguments.UpsertArguments(m)
	if !ok {
		return nil, false
	}
	return &schema.Field{
		Name:      "upsert" + m.Name,
		Arguments: args,
		Type:      b.objectType(m),
	}, true
}

func (b *QuerySchemaBuilder) updateManyField(m *datamodel.Model) *schema.Field {
	return &schema.Field{
		Name:      "updateMany" + b.namer.Plural(m.Name),
		Arguments: b.arguments.UpdateManyArguments(m),
		Type:      b.objects.Get().BatchPayloadObjectType(),
	}
}

func (b *QuerySchemaBuilder) deleteManyField(m *datamodel.Model) *schema.Field {
	return &schema.Field{
		Name:      "deleteMany" + b.namer.Plural(m.Name),
		Arguments: b.arguments.DeleteManyArguments(m),
		Type:      b.objects.Get().BatchPayloadObjectType(),
	}
}
