package schemabuilder

import (
	"go.appointy.com/queryschema/datamodel"
	"go.appointy.com/queryschema/internal/shared"
	"go.appointy.com/queryschema/schema"
)

// argumentBuilder builds the argument lists of the root fields. The
// operations addressing a single record return ok=false when the model has
// no unique selector; the caller then omits the field.
type argumentBuilder struct {
	inputs  shared.Ref[inputTypeBuilder]
	objects shared.Ref[objectTypeBuilder]
}

func newArgumentBuilder(inputs shared.Ref[inputTypeBuilder], objects shared.Ref[objectTypeBuilder]) *argumentBuilder {
	return &argumentBuilder{inputs: inputs, objects: objects}
}

// WhereUniqueArgument returns `where: <M>WhereUniqueInput!`.
func (b *argumentBuilder) WhereUniqueArgument(m *datamodel.Model) (*schema.Argument, bool) {
	inputs, release := b.inputs.MustUpgrade()
	defer release()

	unique, ok := inputs.WhereUniqueInput(m)
	if !ok {
		return nil, false
	}
	return &schema.Argument{Name: "where", Type: unique}, true
}

// CreateArguments returns `data: <M>CreateInput!`, or nothing when m has no
// settable fields.
func (b *argumentBuilder) CreateArguments(m *datamodel.Model) ([]*schema.Argument, bool) {
	inputs, release := b.inputs.MustUpgrade()
	defer release()

	create, ok := inputs.CreateInput(m)
	if !ok {
		return nil, false
	}
	return []*schema.Argument{{Name: "data", Type: create}}, true
}

// DeleteArguments returns the unique selector of the record to delete.
func (b *argumentBuilder) DeleteArguments(m *datamodel.Model) ([]*schema.Argument, bool) {
	where, ok := b.WhereUniqueArgument(m)
	if !ok {
		return nil, false
	}
	return []*schema.Argument{where}, true
}

// UpdateArguments returns `data: <M>UpdateInput!` and the unique selector.
func (b *argumentBuilder) UpdateArguments(m *datamodel.Model) ([]*schema.Argument, bool) {
	where, ok := b.WhereUniqueArgument(m)
	if !ok {
		return nil, false
	}

	inputs, release := b.inputs.MustUpgrade()
	defer release()
	return []*schema.Argument{
		{Name: "data", Type: inputs.UpdateInput(m)},
		where,
	}, true
}

// UpsertArguments returns the unique selector and the create and update
// payloads. The create payload is left out when m has no settable fields.
func (b *argumentBuilder) UpsertArguments(m *datamodel.Model) ([]*schema.Argument, bool) {
	where, ok := b.WhereUniqueArgument(m)
	if !ok {
		return nil, false
	}

	inputs, release := b.inputs.MustUpgrade()
	defer release()

	args := []*schema.Argument{where}
	if create, ok := inputs.CreateInput(m); ok {
		args = append(args, &schema.Argument{Name: "create", Type: create})
	}
	return append(args, &schema.Argument{Name: "update", Type: inputs.UpdateInput(m)}), true
}

// UpdateManyArguments returns `data: <M>UpdateManyMutationInput!` and an
// optional filter.
func (b *argumentBuilder) UpdateManyArguments(m *datamodel.Model) []*schema.Argument {
	inputs, release := b.inputs.MustUpgrade()
	defer release()

	return []*schema.Argument{
		{Name: "data", Type: inputs.UpdateManyInput(m)},
		{Name: "where", Type: schema.Opt(inputs.WhereInput(m))},
	}
}

// DeleteManyArguments returns an optional filter.
func (b *argumentBuilder) DeleteManyArguments(m *datamodel.Model) []*schema.Argument {
	inputs, release := b.inputs.MustUpgrade()
	defer release()

	return []*schema.Argument{
		{Name: "where", Type: schema.Opt(inputs.WhereInput(m))},
	}
}

// ManyRecordsArguments delegates to the object builder.
func (b *argumentBuilder) ManyRecordsArguments(m *datamodel.Model) []*schema.Argument {
	objects, release := b.objects.MustUpgrade()
	defer release()
	return objects.ManyRecordsArguments(m)
}
