// Package graphqlgo exports a query schema as a github.com/graphql-go/graphql
// schema, so it can be served and introspected by that execution engine.
//
// graphql-go rejects types without fields. Empty input types, which a query
// schema may contain, are therefore left out together with everything that
// depends on them: input fields of their type, optional arguments of their
// type, and fields that require an argument of their type.
package graphqlgo

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"go.appointy.com/queryschema/schema"
)

// ErrEmptyRoot is returned when the query or mutation type has no field
// left to export.
var ErrEmptyRoot = errors.New("root type has no fields")

// Export converts qs into a graphql-go schema. Fields resolve to null.
func Export(qs *schema.QuerySchema) (*graphql.Schema, error) {
	e := &exporter{
		qs:            qs,
		prunedInputs:  make(map[string]bool),
		prunedObjects: make(map[string]bool),
		objects:       make(map[string]*graphql.Object),
		inputs:        make(map[string]*graphql.InputObject),
		enums:         make(map[string]*graphql.Enum),
	}
	e.prune()

	for _, root := range []*schema.ObjectType{qs.Query(), qs.Mutation()} {
		if e.prunedObjects[root.Name()] {
			return nil, fmt.Errorf("%w: %s", ErrEmptyRoot, root.Name())
		}
	}

	s, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    e.object(qs.Query()),
		Mutation: e.object(qs.Mutation()),
	})
	if err != nil {
		return nil, fmt.Errorf("export schema: %w", err)
	}
	return &s, nil
}

type exporter struct {
	qs *schema.QuerySchema

	prunedInputs  map[string]bool
	prunedObjects map[string]bool

	objects map[string]*graphql.Object
	inputs  map[string]*graphql.InputObject
	enums   map[string]*graphql.Enum
}

// prune marks the types that end up without fields. Dropping a type can
// empty the types that refer to it, so it repeats until nothing changes.
func (e *exporter) prune() {
	for changed := true; changed; {
		changed = false
		for _, in := range e.qs.InputTypes() {
			if !e.prunedInputs[in.Name()] && len(e.inputFields(in)) == 0 {
				e.prunedInputs[in.Name()] = true
				changed = true
			}
		}
		for _, o := range e.qs.OutputTypes() {
			if !e.prunedObjects[o.Name()] && len(e.objectFields(o)) == 0 {
				e.prunedObjects[o.Name()] = true
				changed = true
			}
		}
	}
}

func (e *exporter) available(t schema.Type) bool {
	switch named := schema.Named(t).(type) {
	case schema.ObjectRef:
		return !e.prunedObjects[named.Name()]
	case schema.InputObjectRef:
		return !e.prunedInputs[named.Name()]
	}
	return true
}

func (e *exporter) inputFields(in *schema.InputObjectType) []*schema.InputField {
	var out []*schema.InputField
	for _, f := range in.Fields() {
		if e.available(f.Type) {
			out = append(out, f)
		}
	}
	return out
}

func (e *exporter) objectFields(o *schema.ObjectType) []*schema.Field {
	var out []*schema.Field
fields:
	for _, f := range o.Fields() {
		if !e.available(f.Type) {
			continue
		}
		field := &schema.Field{Name: f.Name, Type: f.Type}
		for _, a := range f.Arguments {
			if e.available(a.Type) {
				field.Arguments = append(field.Arguments, a)
				continue
			}
			if _, optional := a.Type.(*schema.Optional); !optional {
				continue fields
			}
		}
		out = append(out, field)
	}
	return out
}

func (e *exporter) object(o *schema.ObjectType) *graphql.Object {
	if obj, ok := e.objects[o.Name()]; ok {
		return obj
	}
	obj := graphql.NewObject(graphql.ObjectConfig{
		Name: o.Name(),
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{}
			for _, f := range e.objectFields(o) {
				args := graphql.FieldConfigArgument{}
				for _, a := range f.Arguments {
					args[a.Name] = &graphql.ArgumentConfig{Type: e.typeOf(a.Type)}
				}
				fields[f.Name] = &graphql.Field{Name: f.Name, Type: e.typeOf(f.Type), Args: args}
			}
			return fields
		}),
	})
	e.objects[o.Name()] = obj
	return obj
}

func (e *exporter) inputObject(in *schema.InputObjectType) *graphql.InputObject {
	if obj, ok := e.inputs[in.Name()]; ok {
		return obj
	}
	obj := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: in.Name(),
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			fields := graphql.InputObjectConfigFieldMap{}
			for _, f := range e.inputFields(in) {
				fields[f.Name] = &graphql.InputObjectFieldConfig{Type: e.typeOf(f.Type)}
			}
			return fields
		}),
	})
	e.inputs[in.Name()] = obj
	return obj
}

func (e *exporter) enum(en *schema.EnumType) *graphql.Enum {
	if out, ok := e.enums[en.Name]; ok {
		return out
	}
	values := graphql.EnumValueConfigMap{}
	for _, v := range en.Values {
		values[v] = &graphql.EnumValueConfig{Value: v}
	}
	out := graphql.NewEnum(graphql.EnumConfig{Name: en.Name, Values: values})
	e.enums[en.Name] = out
	return out
}

// typeOf converts t. Types outside an Optional become NonNull.
func (e *exporter) typeOf(t schema.Type) graphql.Type {
	if o, ok := t.(*schema.Optional); ok {
		return e.nullable(o.Of)
	}
	return graphql.NewNonNull(e.nullable(t))
}

func (e *exporter) nullable(t schema.Type) graphql.Type {
	switch t := t.(type) {
	case *schema.Optional:
		return e.nullable(t.Of)
	case *schema.List:
		return graphql.NewList(e.typeOf(t.Of))
	case *schema.Scalar:
		return scalar(t)
	case *schema.EnumType:
		return e.enum(t)
	case schema.ObjectRef:
		return e.object(mustResolve(t.Resolve(), t.Name()))
	case schema.InputObjectRef:
		return e.inputObject(mustResolve(t.Resolve(), t.Name()))
	}
	panic(fmt.Sprintf("unknown type %s", t))
}

func mustResolve[T any](v *T, name string) *T {
	if v == nil {
		panic(fmt.Sprintf("dangling reference to %s", name))
	}
	return v
}

var uuidScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "UUID",
	Description: "A UUID in its canonical textual form.",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case uuid.UUID:
			return v.String()
		case *uuid.UUID:
			if v == nil {
				return nil
			}
			return v.String()
		case string:
			return v
		}
		return nil
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil
		}
		return id
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		s, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		id, err := uuid.Parse(s.Value)
		if err != nil {
			return nil
		}
		return id
	},
})

var jsonScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "An arbitrary JSON value.",
	Serialize: func(value interface{}) interface{} {
		return value
	},
	ParseValue: func(value interface{}) interface{} {
		return value
	},
	ParseLiteral: literalValue,
})

// literalValue converts a GraphQL literal into the Go value encoding/json
// would produce for it.
func literalValue(valueAST ast.Value) interface{} {
	switch v := valueAST.(type) {
	case *ast.StringValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.IntValue:
		n, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil
		}
		return n
	case *ast.FloatValue:
		n, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil
		}
		return n
	case *ast.ListValue:
		out := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			out = append(out, literalValue(item))
		}
		return out
	case *ast.ObjectValue:
		out := make(map[string]interface{}, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name.Value] = literalValue(f.Value)
		}
		return out
	}
	return nil
}

func scalar(s *schema.Scalar) graphql.Type {
	switch s {
	case schema.String:
		return graphql.String
	case schema.Int:
		return graphql.Int
	case schema.Float:
		return graphql.Float
	case schema.Boolean:
		return graphql.Boolean
	case schema.ID:
		return graphql.ID
	case schema.DateTime:
		return graphql.DateTime
	case schema.UUID:
		return uuidScalar
	case schema.JSON:
		return jsonScalar
	}
	panic(fmt.Sprintf("unknown scalar %s", s.Name))
}
