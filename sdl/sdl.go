// Package sdl prints a query schema in the GraphQL schema definition
// language.
package sdl

import (
	"bytes"
	"io"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"go.appointy.com/queryschema/schema"
)

// Document converts qs into a gqlparser schema document: the schema
// definition, the custom scalars, the enums, the object types and the input
// object types, in that order.
func Document(qs *schema.QuerySchema) *ast.SchemaDocument {
	doc := &ast.SchemaDocument{
		Schema: ast.SchemaDefinitionList{{
			OperationTypes: ast.OperationTypeDefinitionList{
				{Operation: ast.Query, Type: qs.Query().Name()},
				{Operation: ast.Mutation, Type: qs.Mutation().Name()},
			},
		}},
	}

	for _, s := range qs.Scalars() {
		if s.IsBuiltin() {
			continue
		}
		doc.Definitions = append(doc.Definitions, &ast.Definition{Kind: ast.Scalar, Name: s.Name})
	}

	for _, e := range qs.Enums() {
		def := &ast.Definition{Kind: ast.Enum, Name: e.Name}
		for _, v := range e.Values {
			def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{Name: v})
		}
		doc.Definitions = append(doc.Definitions, def)
	}

	for _, o := range qs.OutputTypes() {
		def := &ast.Definition{Kind: ast.Object, Name: o.Name()}
		for _, f := range o.Fields() {
			field := &ast.FieldDefinition{Name: f.Name, Type: astType(f.Type)}
			for _, a := range f.Arguments {
				field.Arguments = append(field.Arguments, &ast.ArgumentDefinition{Name: a.Name, Type: astType(a.Type)})
			}
			def.Fields = append(def.Fields, field)
		}
		doc.Definitions = append(doc.Definitions, def)
	}

	for _, in := range qs.InputTypes() {
		def := &ast.Definition{Kind: ast.InputObject, Name: in.Name()}
		for _, f := range in.Fields() {
			def.Fields = append(def.Fields, &ast.FieldDefinition{Name: f.Name, Type: astType(f.Type)})
		}
		doc.Definitions = append(doc.Definitions, def)
	}
	return doc
}

// astType converts t into a type reference. Types outside an Optional are
// non-null.
func astType(t schema.Type) *ast.Type {
	nonNull := true
	if o, ok := t.(*schema.Optional); ok {
		nonNull = false
		t = o.Of
	}
	if l, ok := t.(*schema.List); ok {
		return &ast.Type{Elem: astType(l.Of), NonNull: nonNull}
	}
	return &ast.Type{NamedType: schema.Named(t).String(), NonNull: nonNull}
}

// Print writes qs to w as SDL.
func Print(w io.Writer, qs *schema.QuerySchema) {
	formatter.NewFormatter(w).FormatSchemaDocument(Document(qs))
}

// String returns qs as SDL.
func String(qs *schema.QuerySchema) string {
	var buf bytes.Buffer
	Print(&buf, qs)
	return buf.String()
}
