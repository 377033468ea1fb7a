// Package introspection describes a query schema the way a GraphQL server
// answers the introspection query, so tools that consume __schema JSON can
// read a schema without running a server.
package introspection

import (
	"encoding/json"
	"sort"

	"go.appointy.com/queryschema/schema"
)

// DirectiveLocation is a __DirectiveLocation value.
type DirectiveLocation string

const (
	QUERY               DirectiveLocation = "QUERY"
	MUTATION            DirectiveLocation = "MUTATION"
	FIELD               DirectiveLocation = "FIELD"
	FRAGMENT_DEFINITION DirectiveLocation = "FRAGMENT_DEFINITION"
	FRAGMENT_SPREAD     DirectiveLocation = "FRAGMENT_SPREAD"
	INLINE_FRAGMENT     DirectiveLocation = "INLINE_FRAGMENT"
	FIELD_DEFINITION    DirectiveLocation = "FIELD_DEFINITION"
	ENUM_VALUE          DirectiveLocation = "ENUM_VALUE"
)

// TypeKind is a __TypeKind value.
type TypeKind string

const (
	SCALAR       TypeKind = "SCALAR"
	OBJECT       TypeKind = "OBJECT"
	ENUM         TypeKind = "ENUM"
	INPUT_OBJECT TypeKind = "INPUT_OBJECT"
	LIST         TypeKind = "LIST"
	NON_NULL     TypeKind = "NON_NULL"
)

// TypeRef is a reference to a named type, possibly wrapped in LIST and
// NON_NULL.
type TypeRef struct {
	Kind   TypeKind `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// InputValue is an __InputValue: an argument or an input object field.
type InputValue struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

// Field is a __Field of an object type.
type Field struct {
	Name              string       `json:"name"`
	Description       *string      `json:"description"`
	Args              []InputValue `json:"args"`
	Type              TypeRef      `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason *string      `json:"deprecationReason"`
}

// EnumValue is an __EnumValue.
type EnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

// Type is a full __Type. Lists that do not apply to the kind are null.
type Type struct {
	Kind          TypeKind     `json:"kind"`
	Name          string       `json:"name"`
	Description   *string      `json:"description"`
	Fields        []Field      `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	EnumValues    []EnumValue  `json:"enumValues"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
}

// Directive is a __Directive.
type Directive struct {
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Locations   []DirectiveLocation `json:"locations"`
	Args        []InputValue        `json:"args"`
}

// NamedType names a root operation type.
type NamedType struct {
	Name string `json:"name"`
}

// Schema is the __schema result of the introspection query.
type Schema struct {
	QueryType        NamedType   `json:"queryType"`
	MutationType     *NamedType  `json:"mutationType"`
	SubscriptionType *NamedType  `json:"subscriptionType"`
	Types            []Type      `json:"types"`
	Directives       []Directive `json:"directives"`
}

func str(s string) *string {
	return &s
}

var booleanRef = TypeRef{Kind: NON_NULL, OfType: &TypeRef{Kind: SCALAR, Name: str("Boolean")}}

var includeDirective = Directive{
	Description: str("Directs the executor to include this field or fragment only when the `if` argument is true."),
	Locations:   []DirectiveLocation{FIELD, FRAGMENT_SPREAD, INLINE_FRAGMENT},
	Name:        "include",
	Args: []InputValue{{
		Name:        "if",
		Type:        booleanRef,
		Description: str("Included when true."),
	}},
}

var skipDirective = Directive{
	Description: str("Directs the executor to skip this field or fragment only when the `if` argument is true."),
	Locations:   []DirectiveLocation{FIELD, FRAGMENT_SPREAD, INLINE_FRAGMENT},
	Name:        "skip",
	Args: []InputValue{{
		Name:        "if",
		Type:        booleanRef,
		Description: str("Skipped when true."),
	}},
}

var deprecatedDirective = Directive{
	Description: str("Marks an element of a GraphQL schema as no longer supported."),
	Locations:   []DirectiveLocation{FIELD_DEFINITION, ENUM_VALUE},
	Name:        "deprecated",
	Args: []InputValue{{
		Name:         "reason",
		Type:         TypeRef{Kind: SCALAR, Name: str("String")},
		Description:  str("Explains why this element was deprecated, usually also including a suggestion for how to access supported similar data."),
		DefaultValue: str(`"No longer supported"`),
	}},
}

// typeRef converts t. Types outside an Optional are NON_NULL.
func typeRef(t schema.Type) TypeRef {
	if o, ok := t.(*schema.Optional); ok {
		return nullableRef(o.Of)
	}
	inner := nullableRef(t)
	return TypeRef{Kind: NON_NULL, OfType: &inner}
}

func nullableRef(t schema.Type) TypeRef {
	switch t := t.(type) {
	case *schema.Optional:
		return nullableRef(t.Of)
	case *schema.List:
		elem := typeRef(t.Of)
		return TypeRef{Kind: LIST, OfType: &elem}
	case *schema.Scalar:
		return TypeRef{Kind: SCALAR, Name: str(t.Name)}
	case *schema.EnumType:
		return TypeRef{Kind: ENUM, Name: str(t.Name)}
	case schema.ObjectRef:
		return TypeRef{Kind: OBJECT, Name: str(t.Name())}
	case schema.InputObjectRef:
		return TypeRef{Kind: INPUT_OBJECT, Name: str(t.Name())}
	}
	panic("unknown type " + t.String())
}

func objectType(o *schema.ObjectType) Type {
	typ := Type{Kind: OBJECT, Name: o.Name(), Fields: []Field{}, Interfaces: []TypeRef{}}
	for _, f := range o.Fields() {
		field := Field{Name: f.Name, Type: typeRef(f.Type), Args: []InputValue{}}
		for _, a := range f.Arguments {
			field.Args = append(field.Args, InputValue{Name: a.Name, Type: typeRef(a.Type)})
		}
		typ.Fields = append(typ.Fields, field)
	}
	return typ
}

func inputObjectType(o *schema.InputObjectType) Type {
	typ := Type{Kind: INPUT_OBJECT, Name: o.Name(), InputFields: []InputValue{}}
	for _, f := range o.Fields() {
		typ.InputFields = append(typ.InputFields, InputValue{Name: f.Name, Type: typeRef(f.Type)})
	}
	return typ
}

func enumType(e *schema.EnumType) Type {
	typ := Type{Kind: ENUM, Name: e.Name, EnumValues: []EnumValue{}}
	for _, v := range e.Values {
		typ.EnumValues = append(typ.EnumValues, EnumValue{Name: v})
	}
	return typ
}

// Describe returns the __schema description of qs. Types are sorted by name.
func Describe(qs *schema.QuerySchema) *Schema {
	var types []Type
	for _, s := range qs.Scalars() {
		types = append(types, Type{Kind: SCALAR, Name: s.Name})
	}
	for _, e := range qs.Enums() {
		types = append(types, enumType(e))
	}
	for _, o := range qs.OutputTypes() {
		types = append(types, objectType(o))
	}
	for _, in := range qs.InputTypes() {
		types = append(types, inputObjectType(in))
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })

	return &Schema{
		QueryType:    NamedType{Name: qs.Query().Name()},
		MutationType: &NamedType{Name: qs.Mutation().Name()},
		Types:        types,
		Directives:   []Directive{includeDirective, skipDirective, deprecatedDirective},
	}
}

// ComputeSchemaJSON returns the result of an introspection query over qs,
// i.e. {"__schema": ...}, as indented JSON.
func ComputeSchemaJSON(qs *schema.QuerySchema) ([]byte, error) {
	return json.MarshalIndent(map[string]interface{}{"__schema": Describe(qs)}, "", "  ")
}
