package schemabuilder

import (
	"go.appointy.com/queryschema/datamodel"
	"go.appointy.com/queryschema/internal/naming"
	"go.appointy.com/queryschema/internal/shared"
	"go.appointy.com/queryschema/schema"
)

// inputTypeBuilder builds the create and update payloads of every model.
// Nested filter conditions are requested from the filter builder through a
// non-owning reference.
type inputTypeBuilder struct {
	dm      *datamodel.InternalDataModel
	filters shared.Ref[filterTypeBuilder]

	cache *typeCache[schema.InputObjectType]

	// settable holds, per model name, whether a create payload has at least
	// one field.
	settable map[string]bool
}

func newInputTypeBuilder(dm *datamodel.InternalDataModel, filters shared.Ref[filterTypeBuilder]) *inputTypeBuilder {
	return &inputTypeBuilder{
		dm:       dm,
		filters:  filters,
		cache:    newTypeCache[schema.InputObjectType](),
		settable: settableModels(dm),
	}
}

// connectable reports whether records of m can be attached by a unique
// selector.
func connectable(m *datamodel.Model) bool {
	return !m.IsEmbedded && m.HasUniqueCriteria()
}

// settableModels computes which models accept a non-empty create payload.
// A model is settable if it has a writable scalar or a relation to a model
// that is connectable or itself settable. Relations can be cyclic, so the
// result is found by iterating to a fixed point.
func settableModels(dm *datamodel.InternalDataModel) map[string]bool {
	settable := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, m := range dm.Models() {
			if settable[m.Name] {
				continue
			}
			ok := len(m.WritableScalarFields()) > 0
			for _, f := range m.RelationFields() {
				if ok {
					break
				}
				if !f.IsWritable() {
					continue
				}
				related := f.RelatedModel()
				ok = connectable(related) || settable[related.Name]
			}
			if ok {
				settable[m.Name] = true
				changed = true
			}
		}
	}
	return settable
}

func (b *inputTypeBuilder) inputObject(name string, fields func() []*schema.InputField) schema.InputObjectRef {
	if t, ok := b.cache.get(name); ok {
		return schema.NewInputObjectRef(t)
	}
	t := schema.NewInputObjectType(name)
	b.cache.insert(name, t)
	t.SetFields(fields())
	return schema.NewInputObjectRef(t)
}

// WhereInput passes through to the filter builder.
func (b *inputTypeBuilder) WhereInput(m *datamodel.Model) schema.InputObjectRef {
	filters, release := b.filters.MustUpgrade()
	defer release()
	return filters.WhereInput(m)
}

// WhereUniqueInput passes through to the filter builder.
func (b *inputTypeBuilder) WhereUniqueInput(m *datamodel.Model) (schema.InputObjectRef, bool) {
	filters, release := b.filters.MustUpgrade()
	defer release()
	return filters.WhereUniqueInput(m)
}

func (b *inputTypeBuilder) fieldType(f *datamodel.Field) schema.Type {
	filters, release := b.filters.MustUpgrade()
	defer release()
	return filters.fieldType(f)
}

// CreateInput returns <M>CreateInput. ok is false when m has no settable
// fields.
func (b *inputTypeBuilder) CreateInput(m *datamodel.Model) (schema.InputObjectRef, bool) {
	if !b.settable[m.Name] {
		return schema.InputObjectRef{}, false
	}
	return b.inputObject(m.Name+"CreateInput", func() []*schema.InputField {
		var fields []*schema.InputField
		for _, f := range m.Fields {
			if !f.IsWritable() {
				continue
			}
			switch {
			case f.IsRelation():
				if field, ok := b.nestedCreateField(m, f); ok {
					fields = append(fields, field)
				}
			case f.IsList:
				fields = append(fields, &schema.InputField{Name: f.Name, Type: schema.Opt(b.scalarListInput(m, f, "Create"))})
			default:
				typ := b.fieldType(f)
				if !f.IsRequired || f.Default != "" {
					typ = schema.Opt(typ)
				}
				fields = append(fields, &schema.InputField{Name: f.Name, Type: typ})
			}
		}
		return fields
	}), true
}

// scalarListInput returns <M><Op><F>Input, which replaces the values of a
// scalar list field.
func (b *inputTypeBuilder) scalarListInput(m *datamodel.Model, f *datamodel.Field, op string) schema.InputObjectRef {
	return b.inputObject(m.Name+op+naming.Camel(f.Name)+"Input", func() []*schema.InputField {
		return []*schema.InputField{
			{Name: "set", Type: schema.Opt(schema.ListOf(b.fieldType(f)))},
		}
	})
}

// nestedCreateField returns the field creating or connecting related records
// while creating a record of m. ok is false when neither is possible.
func (b *inputTypeBuilder) nestedCreateField(m *datamodel.Model, f *datamodel.Field) (*schema.InputField, bool) {
	related := f.RelatedModel()
	wrap := func(t schema.Type) schema.Type {
		if f.IsList {
			t = schema.ListOf(t)
		}
		return schema.Opt(t)
	}

	var nested []*schema.InputField
	if create, ok := b.CreateInput(related); ok {
		nested = append(nested, &schema.InputField{Name: "create", Type: wrap(create)})
	}
	if connectable(related) {
		unique, _ := b.WhereUniqueInput(related)
		nested = append(nested, &schema.InputField{Name: "connect", Type: wrap(unique)})
	}
	if len(nested) == 0 {
		return nil, false
	}

	input := b.inputObject(m.Name+"Create"+naming.Camel(f.Name)+"Input", func() []*schema.InputField {
		return nested
	})
	var typ schema.Type = input
	if f.IsList || !f.IsRequired {
		typ = schema.Opt(typ)
	}
	return &schema.InputField{Name: f.Name, Type: typ}, true
}

// UpdateInput returns <M>UpdateInput. It always exists, but may have no
// fields.
func (b *inputTypeBuilder) UpdateInput(m *datamodel.Model) schema.InputObjectRef {
	return b.inputObject(m.Name+"UpdateInput", func() []*schema.InputField {
		var fields []*schema.InputField
		for _, f := range m.Fields {
			if !f.IsWritable() || f.IsID {
				continue
			}
			switch {
			case f.IsRelation() && f.IsList:
				fields = append(fields, &schema.InputField{Name: f.Name, Type: schema.Opt(b.nestedUpdateManyInput(m, f))})
			case f.IsRelation():
				fields = append(fields, &schema.InputField{Name: f.Name, Type: schema.Opt(b.nestedUpdateOneInput(m, f))})
			case f.IsList:
				fields = append(fields, &schema.InputField{Name: f.Name, Type: schema.Opt(b.scalarListInput(m, f, "Update"))})
			default:
				fields = append(fields, &schema.InputField{Name: f.Name, Type: schema.Opt(b.fieldType(f))})
			}
		}
		return fields
	})
}

// nestedUpdateOneInput returns the operations on a to-one relation while
// updating a record of m.
func (b *inputTypeBuilder) nestedUpdateOneInput(m *datamodel.Model, f *datamodel.Field) schema.InputObjectRef {
	related := f.RelatedModel()
	return b.inputObject(m.Name+"Update"+naming.Camel(f.Name)+"Input", func() []*schema.InputField {
		var fields []*schema.InputField
		if create, ok := b.CreateInput(related); ok {
			fields = append(fields, &schema.InputField{Name: "create", Type: schema.Opt(create)})
		}
		if connectable(related) {
			unique, _ := b.WhereUniqueInput(related)
			fields = append(fields, &schema.InputField{Name: "connect", Type: schema.Opt(unique)})
		}
		fields = append(fields, &schema.InputField{Name: "update", Type: schema.Opt(b.UpdateInput(related))})
		if !f.IsRequired {
			fields = append(fields,
				&schema.InputField{Name: "disconnect", Type: schema.Opt(schema.Boolean)},
				&schema.InputField{Name: "delete", Type: schema.Opt(schema.Boolean)},
			)
		}
		return fields
	})
}

// nestedUpdateManyInput returns the operations on a to-many relation while
// updating a record of m.
func (b *inputTypeBuilder) nestedUpdateManyInput(m *datamodel.Model, f *datamodel.Field) schema.InputObjectRef {
	related := f.RelatedModel()
	return b.inputObject(m.Name+"Update"+naming.Camel(f.Name)+"Input", func() []*schema.InputField {
		var fields []*schema.InputField
		if create, ok := b.CreateInput(related); ok {
			fields = append(fields, &schema.InputField{Name: "create", Type: schema.Opt(schema.ListOf(create))})
		}
		if unique, ok := b.WhereUniqueInput(related); ok {
			many := schema.Opt(schema.ListOf(unique))
			if connectable(related) {
				fields = append(fields,
					&schema.InputField{Name: "connect", Type: many},
					&schema.InputField{Name: "set", Type: many},
					&schema.InputField{Name: "disconnect", Type: many},
				)
			}
			fields = append(fields, &schema.InputField{Name: "delete", Type: many})
		}
		fields = append(fields, &schema.InputField{Name: "deleteMany", Type: schema.Opt(schema.ListOf(b.WhereInput(related)))})
		return fields
	})
}

// UpdateManyInput returns <M>UpdateManyMutationInput, the payload applied to
// every record matched by updateMany. Only scalars can be set; it may have
// no fields.
func (b *inputTypeBuilder) UpdateManyInput(m *datamodel.Model) schema.InputObjectRef {
	return b.inputObject(m.Name+"UpdateManyMutationInput", func() []*schema.InputField {
		var fields []*schema.InputField
		for _, f := range m.WritableScalarFields() {
			if f.IsID {
				continue
			}
			if f.IsList {
				fields = append(fields, &schema.InputField{Name: f.Name, Type: schema.Opt(b.scalarListInput(m, f, "Update"))})
				continue
			}
			fields = append(fields, &schema.InputField{Name: f.Name, Type: schema.Opt(b.fieldType(f))})
		}
		return fields
	})
}

// intoTypes drains the input types built so far.
func (b *inputTypeBuilder) intoTypes() []*schema.InputObjectType {
	return b.cache.drain()
}
