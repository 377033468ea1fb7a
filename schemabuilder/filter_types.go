package schemabuilder

import (
	"strings"

	"go.appointy.com/queryschema/capability"
	"go.appointy.com/queryschema/datamodel"
	"go.appointy.com/queryschema/internal/naming"
	"go.appointy.com/queryschema/schema"
)

// filterTypeBuilder builds the filter conditions ("where" inputs), the
// unique selectors, the order-by types and every enum of the schema. It
// depends on nothing but the capabilities and the build mode.
type filterTypeBuilder struct {
	caps capability.Set
	mode BuildMode

	inputs *typeCache[schema.InputObjectType]
	enums  *typeCache[schema.EnumType]
}

func newFilterTypeBuilder(caps capability.Set, mode BuildMode) *filterTypeBuilder {
	return &filterTypeBuilder{
		caps:   caps,
		mode:   mode,
		inputs: newTypeCache[schema.InputObjectType](),
		enums:  newTypeCache[schema.EnumType](),
	}
}

// inputObject returns the cached input type called name, or creates it and
// fills it with fields. fields runs after the type is cached, so it may
// refer to the type itself.
func (b *filterTypeBuilder) inputObject(name string, fields func(self schema.InputObjectRef) []*schema.InputField) schema.InputObjectRef {
	if t, ok := b.inputs.get(name); ok {
		return schema.NewInputObjectRef(t)
	}
	t := schema.NewInputObjectType(name)
	b.inputs.insert(name, t)
	ref := schema.NewInputObjectRef(t)
	t.SetFields(fields(ref))
	return ref
}

func (b *filterTypeBuilder) enum(name string, values []string) *schema.EnumType {
	if e, ok := b.enums.get(name); ok {
		return e
	}
	e := &schema.EnumType{Name: name, Values: values}
	b.enums.insert(name, e)
	return e
}

// fieldType maps the value type of a scalar or enum field, ignoring list
// and optionality.
func (b *filterTypeBuilder) fieldType(f *datamodel.Field) schema.Type {
	switch f.Type {
	case datamodel.String:
		return schema.String
	case datamodel.Int:
		return schema.Int
	case datamodel.Float:
		return schema.Float
	case datamodel.Boolean:
		return schema.Boolean
	case datamodel.DateTime:
		return schema.DateTime
	case datamodel.UUID:
		return schema.UUID
	case datamodel.JSON:
		return schema.JSON
	case datamodel.ID:
		return schema.ID
	case datamodel.Enum:
		e := f.EnumType()
		return b.enum(e.Name, e.Values)
	}
	panic("no scalar type for relation field " + f.Name)
}

func (b *filterTypeBuilder) sortOrder() *schema.EnumType {
	return b.enum("SortOrder", []string{"asc", "desc"})
}

func (b *filterTypeBuilder) queryMode() *schema.EnumType {
	return b.enum("QueryMode", []string{"default", "insensitive"})
}

// WhereInput returns <M>WhereInput, the filter condition over records of m.
func (b *filterTypeBuilder) WhereInput(m *datamodel.Model) schema.InputObjectRef {
	return b.inputObject(m.Name+"WhereInput", func(self schema.InputObjectRef) []*schema.InputField {
		nested := schema.Opt(schema.ListOf(self))
		fields := []*schema.InputField{
			{Name: "AND", Type: nested},
			{Name: "OR", Type: nested},
			{Name: "NOT", Type: nested},
		}
		for _, f := range m.VisibleFields() {
			switch {
			case f.IsRelation():
				fields = append(fields, b.relationFilterFields(f)...)
			case f.IsList:
				fields = append(fields, b.scalarListFilterFields(f)...)
			case b.mode == Legacy:
				fields = append(fields, b.legacyScalarFilterFields(f)...)
			default:
				fields = append(fields, b.scalarFilterFields(f)...)
			}
		}
		return fields
	})
}

type operators struct {
	inclusion, comparison, text bool
}

func (b *filterTypeBuilder) operatorsFor(f *datamodel.Field) operators {
	switch f.Type {
	case datamodel.String, datamodel.ID:
		return operators{inclusion: true, comparison: true, text: true}
	case datamodel.Int, datamodel.Float, datamodel.DateTime, datamodel.UUID:
		return operators{inclusion: true, comparison: true}
	case datamodel.Enum:
		return operators{inclusion: true}
	}
	return operators{}
}

// legacyScalarFilterFields returns the suffix style conditions: name, name_not,
// name_in, name_lt, name_contains and so on.
func (b *filterTypeBuilder) legacyScalarFilterFields(f *datamodel.Field) []*schema.InputField {
	if f.Type == datamodel.JSON && !b.caps.Has(capability.JSONFilters) {
		return nil
	}
	typ := b.fieldType(f)
	single := schema.Opt(typ)
	many := schema.Opt(schema.ListOf(typ))

	fields := []*schema.InputField{
		{Name: f.Name, Type: single},
		{Name: f.Name + "_not", Type: single},
	}
	ops := b.operatorsFor(f)
	if ops.inclusion {
		fields = append(fields,
			&schema.InputField{Name: f.Name + "_in", Type: many},
			&schema.InputField{Name: f.Name + "_not_in", Type: many},
		)
	}
	if ops.comparison {
		for _, op := range []string{"lt", "lte", "gt", "gte"} {
			fields = append(fields, &schema.InputField{Name: f.Name + "_" + op, Type: single})
		}
	}
	if ops.text {
		for _, op := range []string{"contains", "not_contains", "starts_with", "not_starts_with", "ends_with", "not_ends_with"} {
			fields = append(fields, &schema.InputField{Name: f.Name + "_" + op, Type: single})
		}
	}
	return fields
}

// scalarFilterFields returns a single field typed with the shared filter
// input of the field's type, e.g. email: StringFilter.
func (b *filterTypeBuilder) scalarFilterFields(f *datamodel.Field) []*schema.InputField {
	if f.Type == datamodel.JSON {
		if !b.caps.Has(capability.JSONFilters) {
			return nil
		}
		filter := b.inputObject("JSONFilter", func(schema.InputObjectRef) []*schema.InputField {
			return []*schema.InputField{
				{Name: "equals", Type: schema.Opt(schema.JSON)},
				{Name: "not", Type: schema.Opt(schema.JSON)},
			}
		})
		return []*schema.InputField{{Name: f.Name, Type: schema.Opt(filter)}}
	}

	typ := b.fieldType(f)
	filter := b.inputObject(typ.String()+"Filter", func(schema.InputObjectRef) []*schema.InputField {
		single := schema.Opt(typ)
		many := schema.Opt(schema.ListOf(typ))
		fields := []*schema.InputField{
			{Name: "equals", Type: single},
			{Name: "not", Type: single},
		}
		ops := b.operatorsFor(f)
		if ops.inclusion {
			fields = append(fields,
				&schema.InputField{Name: "in", Type: many},
				&schema.InputField{Name: "notIn", Type: many},
			)
		}
		if ops.comparison {
			for _, op := range []string{"lt", "lte", "gt", "gte"} {
				fields = append(fields, &schema.InputField{Name: op, Type: single})
			}
		}
		if ops.text {
			for _, op := range []string{"contains", "startsWith", "endsWith"} {
				fields = append(fields, &schema.InputField{Name: op, Type: single})
			}
		}
		if f.Type == datamodel.String && b.caps.Has(capability.InsensitiveFilters) {
			fields = append(fields, &schema.InputField{Name: "mode", Type: schema.Opt(b.queryMode())})
		}
		return fields
	})
	return []*schema.InputField{{Name: f.Name, Type: schema.Opt(filter)}}
}

// scalarListFilterFields returns the conditions over a scalar list field.
// Scalar lists are not filterable in the legacy mode.
func (b *filterTypeBuilder) scalarListFilterFields(f *datamodel.Field) []*schema.InputField {
	if b.mode == Legacy || !b.caps.Has(capability.ScalarListFilters) {
		return nil
	}
	typ := b.fieldType(f)
	filter := b.inputObject(typ.String()+"ListFilter", func(schema.InputObjectRef) []*schema.InputField {
		return []*schema.InputField{
			{Name: "equals", Type: schema.Opt(schema.ListOf(typ))},
			{Name: "has", Type: schema.Opt(typ)},
			{Name: "hasEvery", Type: schema.Opt(schema.ListOf(typ))},
			{Name: "hasSome", Type: schema.Opt(schema.ListOf(typ))},
			{Name: "isEmpty", Type: schema.Opt(schema.Boolean)},
		}
	})
	return []*schema.InputField{{Name: f.Name, Type: schema.Opt(filter)}}
}

func (b *filterTypeBuilder) relationFilterFields(f *datamodel.Field) []*schema.InputField {
	if !b.caps.Has(capability.RelationFilters) {
		return nil
	}
	related := f.RelatedModel()
	where := schema.Opt(b.WhereInput(related))
	if !f.IsList {
		return []*schema.InputField{{Name: f.Name, Type: where}}
	}
	if b.mode == Legacy {
		return []*schema.InputField{
			{Name: f.Name + "_every", Type: where},
			{Name: f.Name + "_some", Type: where},
			{Name: f.Name + "_none", Type: where},
		}
	}
	filter := b.inputObject(related.Name+"ListRelationFilter", func(schema.InputObjectRef) []*schema.InputField {
		return []*schema.InputField{
			{Name: "every", Type: where},
			{Name: "some", Type: where},
			{Name: "none", Type: where},
		}
	})
	return []*schema.InputField{{Name: f.Name, Type: schema.Opt(filter)}}
}

// WhereUniqueInput returns <M>WhereUniqueInput, the selector of a single
// record of m. ok is false when m has no unique field and no unique index.
func (b *filterTypeBuilder) WhereUniqueInput(m *datamodel.Model) (schema.InputObjectRef, bool) {
	if !m.HasUniqueCriteria() {
		return schema.InputObjectRef{}, false
	}
	return b.inputObject(m.Name+"WhereUniqueInput", func(schema.InputObjectRef) []*schema.InputField {
		var fields []*schema.InputField
		for _, f := range m.UniqueFields() {
			fields = append(fields, &schema.InputField{Name: f.Name, Type: schema.Opt(b.fieldType(f))})
		}
		for _, idx := range m.CompoundIndexes() {
			fields = append(fields, &schema.InputField{Name: idx.SelectorName(), Type: schema.Opt(b.compoundUniqueInput(m, idx))})
		}
		return fields
	}), true
}

// compoundUniqueInput returns <M><A><B>CompoundUniqueInput with one required
// field per member of idx.
func (b *filterTypeBuilder) compoundUniqueInput(m *datamodel.Model, idx *datamodel.Index) schema.InputObjectRef {
	var name strings.Builder
	name.WriteString(m.Name)
	for _, f := range idx.Fields {
		name.WriteString(naming.Camel(f))
	}
	name.WriteString("CompoundUniqueInput")

	return b.inputObject(name.String(), func(schema.InputObjectRef) []*schema.InputField {
		var fields []*schema.InputField
		for _, fieldName := range idx.Fields {
			fields = append(fields, &schema.InputField{Name: fieldName, Type: b.fieldType(m.Field(fieldName))})
		}
		return fields
	})
}

func orderableFields(m *datamodel.Model) []*datamodel.Field {
	var out []*datamodel.Field
	for _, f := range m.ScalarFields() {
		if !f.IsList && f.Type != datamodel.JSON {
			out = append(out, f)
		}
	}
	return out
}

// OrderByInput returns the type of the orderBy argument of m: an enum of
// field_ASC and field_DESC values in the legacy mode, an input object of
// SortOrder fields otherwise. ok is false when m has no orderable field.
func (b *filterTypeBuilder) OrderByInput(m *datamodel.Model) (schema.Type, bool) {
	fields := orderableFields(m)
	if len(fields) == 0 {
		return nil, false
	}
	name := m.Name + "OrderByInput"

	if b.mode == Legacy {
		var values []string
		for _, f := range fields {
			values = append(values, f.Name+"_ASC", f.Name+"_DESC")
		}
		return b.enum(name, values), true
	}

	return b.inputObject(name, func(schema.InputObjectRef) []*schema.InputField {
		order := schema.Opt(b.sortOrder())
		var out []*schema.InputField
		for _, f := range fields {
			out = append(out, &schema.InputField{Name: f.Name, Type: order})
		}
		return out
	}), true
}

// intoTypes drains the input types built so far.
func (b *filterTypeBuilder) intoTypes() []*schema.InputObjectType {
	return b.inputs.drain()
}
