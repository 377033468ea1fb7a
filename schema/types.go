// Package schema holds the type graph of a query schema: scalars, enums,
// object types, input object types and the wrappers that compose them.
//
// Object and input object types are referenced through ObjectRef and
// InputObjectRef. These are weak handles: they never keep their target
// alive, so a type graph with cycles is owned only by whoever holds the
// type collections (a builder cache while building, the QuerySchema after).
package schema

import (
	"fmt"
	"weak"
)

// Type represents a type usable as a field, argument or input field type.
// It is one of *Scalar, *EnumType, ObjectRef, InputObjectRef, *List or
// *Optional.
type Type interface {
	String() string

	// isType() is a no-op used to tag the known values of Type, to prevent
	// arbitrary interface{} from implementing Type
	isType()
}

// Scalar is a leaf value.
type Scalar struct {
	Name string
}

func (s *Scalar) isType() {}

func (s *Scalar) String() string {
	return s.Name
}

// Built-in scalars.
var (
	String   = &Scalar{Name: "String"}
	Int      = &Scalar{Name: "Int"}
	Float    = &Scalar{Name: "Float"}
	Boolean  = &Scalar{Name: "Boolean"}
	DateTime = &Scalar{Name: "DateTime"}
	UUID     = &Scalar{Name: "UUID"}
	JSON     = &Scalar{Name: "JSON"}
	ID       = &Scalar{Name: "ID"}
)

// IsBuiltin reports whether s is one of the scalars every GraphQL server
// predeclares.
func (s *Scalar) IsBuiltin() bool {
	switch s.Name {
	case "String", "Int", "Float", "Boolean", "ID":
		return true
	}
	return false
}

// EnumType is a leaf value restricted to a fixed set of names.
type EnumType struct {
	Name   string
	Values []string
}

func (e *EnumType) isType() {}

func (e *EnumType) String() string {
	return e.Name
}

// ObjectRef is a non-owning handle to an ObjectType.
type ObjectRef struct {
	name string
	ptr  weak.Pointer[ObjectType]
}

// NewObjectRef returns a handle to o. The handle does not keep o alive.
func NewObjectRef(o *ObjectType) ObjectRef {
	return ObjectRef{name: o.name, ptr: weak.Make(o)}
}

func (ObjectRef) isType() {}

func (r ObjectRef) String() string {
	return r.name
}

// Name returns the name of the referenced type. It is available even when
// the target is gone.
func (r ObjectRef) Name() string {
	return r.name
}

// Resolve returns the referenced type, or nil when no owner keeps it alive.
func (r ObjectRef) Resolve() *ObjectType {
	return r.ptr.Value()
}

// InputObjectRef is a non-owning handle to an InputObjectType.
type InputObjectRef struct {
	name string
	ptr  weak.Pointer[InputObjectType]
}

// NewInputObjectRef returns a handle to o. The handle does not keep o alive.
func NewInputObjectRef(o *InputObjectType) InputObjectRef {
	return InputObjectRef{name: o.name, ptr: weak.Make(o)}
}

func (InputObjectRef) isType() {}

func (r InputObjectRef) String() string {
	return r.name
}

// Name returns the name of the referenced type.
func (r InputObjectRef) Name() string {
	return r.name
}

// Resolve returns the referenced type, or nil when no owner keeps it alive.
func (r InputObjectRef) Resolve() *InputObjectType {
	return r.ptr.Value()
}

// List is a collection of other values.
type List struct {
	Of Type
}

func (l *List) isType() {}

func (l *List) String() string {
	return fmt.Sprintf("[%s]", l.Of)
}

// Optional marks a value that may be absent. Types not wrapped in Optional
// are required.
type Optional struct {
	Of Type
}

func (o *Optional) isType() {}

func (o *Optional) String() string {
	return fmt.Sprintf("%s?", o.Of)
}

// ListOf wraps t in a List.
func ListOf(t Type) Type {
	return &List{Of: t}
}

// Opt wraps t in an Optional unless it already is one.
func Opt(t Type) Type {
	if _, ok := t.(*Optional); ok {
		return t
	}
	return &Optional{Of: t}
}

// Named strips every List and Optional wrapper from t.
func Named(t Type) Type {
	for {
		switch w := t.(type) {
		case *List:
			t = w.Of
		case *Optional:
			t = w.Of
		default:
			return t
		}
	}
}

// Notation renders t in GraphQL type reference notation, where required
// types carry a trailing "!": Opt(ListOf(String)) is "[String!]".
func Notation(t Type) string {
	if o, ok := t.(*Optional); ok {
		return nullable(o.Of)
	}
	return nullable(t) + "!"
}

func nullable(t Type) string {
	switch t := t.(type) {
	case *List:
		return "[" + Notation(t.Of) + "]"
	case *Optional:
		return nullable(t.Of)
	default:
		return t.String()
	}
}

// Verify every variant implements Type.
var (
	_ Type = &Scalar{}
	_ Type = &EnumType{}
	_ Type = ObjectRef{}
	_ Type = InputObjectRef{}
	_ Type = &List{}
	_ Type = &Optional{}
)
