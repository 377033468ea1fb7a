package schemabuilder

import (
	"go.appointy.com/queryschema/capability"
	"go.appointy.com/queryschema/datamodel"
	"go.appointy.com/queryschema/internal/shared"
	"go.appointy.com/queryschema/schema"
)

// objectTypeBuilder builds the output object type of every model and the
// shared batch payload.
type objectTypeBuilder struct {
	dm      *datamodel.InternalDataModel
	caps    capability.Set
	mode    BuildMode
	filters shared.Ref[filterTypeBuilder]

	cache *typeCache[schema.ObjectType]
}

func newObjectTypeBuilder(dm *datamodel.InternalDataModel, caps capability.Set, mode BuildMode, filters shared.Ref[filterTypeBuilder]) *objectTypeBuilder {
	return &objectTypeBuilder{
		dm:      dm,
		caps:    caps,
		mode:    mode,
		filters: filters,
		cache:   newTypeCache[schema.ObjectType](),
	}
}

// MapModelObjectType returns the object type of m. The type is cached before
// its fields are built, so relations back to m resolve to the same type.
func (b *objectTypeBuilder) MapModelObjectType(m *datamodel.Model) schema.ObjectRef {
	if t, ok := b.cache.get(m.Name); ok {
		return schema.NewObjectRef(t)
	}
	t := schema.NewObjectType(m.Name)
	b.cache.insert(m.Name, t)

	var fields []*schema.Field
	for _, f := range m.VisibleFields() {
		fields = append(fields, b.mapField(f))
	}
	t.SetFields(fields)
	return schema.NewObjectRef(t)
}

func (b *objectTypeBuilder) mapField(f *datamodel.Field) *schema.Field {
	if f.IsRelation() {
		related := f.RelatedModel()
		ref := b.MapModelObjectType(related)
		if f.IsList {
			field := &schema.Field{Name: f.Name, Type: schema.ListOf(ref)}
			if b.caps.Has(capability.PaginatedRelations) {
				field.Arguments = b.ManyRecordsArguments(related)
			}
			return field
		}
		if f.IsRequired {
			return &schema.Field{Name: f.Name, Type: ref}
		}
		return &schema.Field{Name: f.Name, Type: schema.Opt(ref)}
	}

	filters, release := b.filters.MustUpgrade()
	defer release()
	typ := filters.fieldType(f)
	switch {
	case f.IsList:
		typ = schema.ListOf(typ)
	case !f.IsRequired:
		typ = schema.Opt(typ)
	}
	return &schema.Field{Name: f.Name, Type: typ}
}

// BatchPayloadObjectType returns BatchPayload, the result of the many-records
// mutations.
func (b *objectTypeBuilder) BatchPayloadObjectType() schema.ObjectRef {
	const name = "BatchPayload"
	if t, ok := b.cache.get(name); ok {
		return schema.NewObjectRef(t)
	}
	t := schema.NewObjectType(name)
	b.cache.insert(name, t)
	t.SetFields([]*schema.Field{{Name: "count", Type: schema.Int}})
	return schema.NewObjectRef(t)
}

// ManyRecordsArguments returns the filter, ordering and pagination arguments
// of a field returning many records of m.
func (b *objectTypeBuilder) ManyRecordsArguments(m *datamodel.Model) []*schema.Argument {
	filters, release := b.filters.MustUpgrade()
	defer release()

	args := []*schema.Argument{
		{Name: "where", Type: schema.Opt(filters.WhereInput(m))},
	}
	if orderBy, ok := filters.OrderByInput(m); ok {
		args = append(args, &schema.Argument{Name: "orderBy", Type: schema.Opt(orderBy)})
	}

	if b.mode == Legacy {
		return append(args,
			&schema.Argument{Name: "skip", Type: schema.Opt(schema.Int)},
			&schema.Argument{Name: "after", Type: schema.Opt(schema.String)},
			&schema.Argument{Name: "before", Type: schema.Opt(schema.String)},
			&schema.Argument{Name: "first", Type: schema.Opt(schema.Int)},
			&schema.Argument{Name: "last", Type: schema.Opt(schema.Int)},
		)
	}

	if cursor, ok := filters.WhereUniqueInput(m); ok {
		args = append(args, &schema.Argument{Name: "cursor", Type: schema.Opt(cursor)})
	}
	return append(args,
		&schema.Argument{Name: "take", Type: schema.Opt(schema.Int)},
		&schema.Argument{Name: "skip", Type: schema.Opt(schema.Int)},
	)
}

// intoTypes drains the object types built so far.
func (b *objectTypeBuilder) intoTypes() []*schema.ObjectType {
	return b.cache.drain()
}
