// Package datamodel defines the record models a query schema is built from.
//
// An InternalDataModel is an ordered set of Models and Enums. It is created
// through New (or one of the loaders), which validates names and resolves
// relation and enum references; afterwards it is treated as read-only.
package datamodel

import "strings"

// TypeIdentifier names the kind of value a Field holds.
type TypeIdentifier string

const (
	String   TypeIdentifier = "String"
	Int      TypeIdentifier = "Int"
	Float    TypeIdentifier = "Float"
	Boolean  TypeIdentifier = "Boolean"
	DateTime TypeIdentifier = "DateTime"
	UUID     TypeIdentifier = "UUID"
	JSON     TypeIdentifier = "JSON"
	ID       TypeIdentifier = "ID"
	Enum     TypeIdentifier = "Enum"
	Relation TypeIdentifier = "Relation"
)

func (t TypeIdentifier) valid() bool {
	switch t {
	case String, Int, Float, Boolean, DateTime, UUID, JSON, ID, Enum, Relation:
		return true
	}
	return false
}

// RelationInfo describes the target of a relation field.
type RelationInfo struct {
	Model string `yaml:"model"`
	Name  string `yaml:"name,omitempty"`
}

// Field is a single slot of a Model.
type Field struct {
	Name string         `yaml:"name"`
	Type TypeIdentifier `yaml:"type"`

	IsList          bool `yaml:"list,omitempty"`
	IsRequired      bool `yaml:"required,omitempty"`
	IsUnique        bool `yaml:"unique,omitempty"`
	IsID            bool `yaml:"id,omitempty"`
	IsAutoGenerated bool `yaml:"auto,omitempty"`
	IsHidden        bool `yaml:"hidden,omitempty"`

	// Enum is the enum name when Type is Enum.
	Enum string `yaml:"enum,omitempty"`
	// Relation is set when Type is Relation.
	Relation *RelationInfo `yaml:"relation,omitempty"`
	// Default is the textual default value, if any.
	Default string `yaml:"default,omitempty"`

	model   *Model
	related *Model
	enum    *EnumDef
}

// IsScalar reports whether the field holds a scalar or enum value.
func (f *Field) IsScalar() bool {
	return f.Type != Relation
}

// IsRelation reports whether the field points at another model.
func (f *Field) IsRelation() bool {
	return f.Type == Relation
}

// Model returns the model the field belongs to.
func (f *Field) Model() *Model {
	return f.model
}

// RelatedModel returns the target model of a relation field, or nil.
func (f *Field) RelatedModel() *Model {
	return f.related
}

// EnumType returns the enum of an enum field, or nil.
func (f *Field) EnumType() *EnumDef {
	return f.enum
}

// IsWritable reports whether clients may set the field on create or update.
func (f *Field) IsWritable() bool {
	return !f.IsHidden && !f.IsAutoGenerated
}

// IsUniqueKey reports whether the field alone identifies a record.
func (f *Field) IsUniqueKey() bool {
	return f.IsScalar() && !f.IsList && !f.IsHidden && (f.IsID || f.IsUnique)
}

// Index is a compound uniqueness constraint.
type Index struct {
	Name   string   `yaml:"name,omitempty"`
	Fields []string `yaml:"fields"`
}

// SelectorName is the name of the unique-selector field for idx: its Name,
// or its field names joined with "_".
func (idx *Index) SelectorName() string {
	if idx.Name != "" {
		return idx.Name
	}
	return strings.Join(idx.Fields, "_")
}

// Model is a named record shape.
type Model struct {
	Name string `yaml:"name"`
	// IsEmbedded excludes the model from the root query and mutation types.
	IsEmbedded    bool     `yaml:"embedded,omitempty"`
	Fields        []*Field `yaml:"fields"`
	UniqueIndexes []*Index `yaml:"uniqueIndexes,omitempty"`

	fields map[string]*Field
}

// Field returns the field called name, or nil.
func (m *Model) Field(name string) *Field {
	if m.fields != nil {
		return m.fields[name]
	}
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// VisibleFields returns the non-hidden fields in declaration order.
func (m *Model) VisibleFields() []*Field {
	return m.filter(func(f *Field) bool { return !f.IsHidden })
}

// ScalarFields returns the non-hidden scalar and enum fields.
func (m *Model) ScalarFields() []*Field {
	return m.filter(func(f *Field) bool { return !f.IsHidden && f.IsScalar() })
}

// RelationFields returns the non-hidden relation fields.
func (m *Model) RelationFields() []*Field {
	return m.filter(func(f *Field) bool { return !f.IsHidden && f.IsRelation() })
}

// UniqueFields returns the fields that individually identify a record.
func (m *Model) UniqueFields() []*Field {
	return m.filter((*Field).IsUniqueKey)
}

// WritableScalarFields returns the scalar fields a client may set.
func (m *Model) WritableScalarFields() []*Field {
	return m.filter(func(f *Field) bool { return f.IsScalar() && f.IsWritable() })
}

// HasUniqueCriteria reports whether a single record of the model can be
// addressed, either through a unique field or a unique index.
func (m *Model) HasUniqueCriteria() bool {
	return len(m.UniqueFields()) > 0 || len(m.UniqueIndexes) > 0
}

// CompoundIndexes returns the unique indexes that add a selector beyond
// UniqueFields. An unnamed index over a single unique field is redundant.
func (m *Model) CompoundIndexes() []*Index {
	var out []*Index
	for _, idx := range m.UniqueIndexes {
		if idx.Name == "" && len(idx.Fields) == 1 {
			if f := m.Field(idx.Fields[0]); f != nil && f.IsUniqueKey() {
				continue
			}
		}
		out = append(out, idx)
	}
	return out
}

// IDField returns the ID field, or nil.
func (m *Model) IDField() *Field {
	for _, f := range m.Fields {
		if f.IsID {
			return f
		}
	}
	return nil
}

func (m *Model) filter(keep func(*Field) bool) []*Field {
	var out []*Field
	for _, f := range m.Fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// EnumDef is a named set of values.
type EnumDef struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

// InternalDataModel is a validated, ordered collection of models and enums.
type InternalDataModel struct {
	models []*Model
	enums  []*EnumDef

	modelsByName map[string]*Model
	enumsByName  map[string]*EnumDef
}

// Models returns the models in declaration order.
func (dm *InternalDataModel) Models() []*Model {
	return dm.models
}

// Enums returns the enums in declaration order.
func (dm *InternalDataModel) Enums() []*EnumDef {
	return dm.enums
}

// FindModel returns the model called name.
func (dm *InternalDataModel) FindModel(name string) (*Model, bool) {
	m, ok := dm.modelsByName[name]
	return m, ok
}

// FindEnum returns the enum called name.
func (dm *InternalDataModel) FindEnum(name string) (*EnumDef, bool) {
	e, ok := dm.enumsByName[name]
	return e, ok
}
