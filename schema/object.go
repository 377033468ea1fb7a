package schema

import "fmt"

// Argument is a named input slot on a Field.
type Argument struct {
	Name string
	Type Type
}

// Field is a named output slot of an ObjectType.
type Field struct {
	Name      string
	Arguments []*Argument
	Type      Type
}

// Argument returns the argument called name.
func (f *Field) Argument(name string) (*Argument, bool) {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// InputField is a named slot of an InputObjectType.
type InputField struct {
	Name string
	Type Type
}

// ObjectType is a value with several fields. Its fields are set exactly once,
// which lets a builder register the type before populating it so that
// self-referencing types terminate.
type ObjectType struct {
	name   string
	fields []*Field
	set    bool
}

// NewObjectType returns an object type without fields.
func NewObjectType(name string) *ObjectType {
	return &ObjectType{name: name}
}

// Name returns the type name.
func (o *ObjectType) Name() string {
	return o.name
}

// SetFields initializes the fields of o. It panics when called twice.
func (o *ObjectType) SetFields(fields []*Field) {
	if o.set {
		panic(fmt.Sprintf("fields of object type %s already set", o.name))
	}
	o.fields = fields
	o.set = true
}

// Initialized reports whether SetFields was called.
func (o *ObjectType) Initialized() bool {
	return o.set
}

// Fields returns the fields in declaration order.
func (o *ObjectType) Fields() []*Field {
	return o.fields
}

// Field returns the field called name.
func (o *ObjectType) Field(name string) (*Field, bool) {
	for _, f := range o.fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func (o *ObjectType) String() string {
	return o.name
}

// InputObjectType is the type of a structured argument value.
type InputObjectType struct {
	name   string
	fields []*InputField
	set    bool
}

// NewInputObjectType returns an input object type without fields.
func NewInputObjectType(name string) *InputObjectType {
	return &InputObjectType{name: name}
}

// Name returns the type name.
func (o *InputObjectType) Name() string {
	return o.name
}

// SetFields initializes the fields of o. It panics when called twice.
func (o *InputObjectType) SetFields(fields []*InputField) {
	if o.set {
		panic(fmt.Sprintf("fields of input object type %s already set", o.name))
	}
	o.fields = fields
	o.set = true
}

// Initialized reports whether SetFields was called.
func (o *InputObjectType) Initialized() bool {
	return o.set
}

// Fields returns the fields in declaration order.
func (o *InputObjectType) Fields() []*InputField {
	return o.fields
}

// Field returns the field called name.
func (o *InputObjectType) Field(name string) (*InputField, bool) {
	for _, f := range o.fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// IsEmpty reports whether o accepts no fields.
func (o *InputObjectType) IsEmpty() bool {
	return len(o.fields) == 0
}

func (o *InputObjectType) String() string {
	return o.name
}
