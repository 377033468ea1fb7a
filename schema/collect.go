package schema

import "fmt"

// Reachable lists the named types reachable from a set of roots, each once,
// in discovery order.
type Reachable struct {
	Objects []*ObjectType
	Inputs  []*InputObjectType
	Enums   []*EnumType
	Scalars []*Scalar
}

// Collect walks the type graph from roots through field types, argument types
// and input field types. It panics on a reference whose target is no longer
// owned by anyone.
func Collect(roots ...*ObjectType) *Reachable {
	c := &collector{seen: make(map[string]bool)}
	for _, root := range roots {
		if root != nil {
			c.object(root)
		}
	}
	return &c.out
}

type collector struct {
	seen map[string]bool
	out  Reachable
}

func (c *collector) object(o *ObjectType) {
	if c.seen[o.name] {
		return
	}
	c.seen[o.name] = true
	c.out.Objects = append(c.out.Objects, o)

	for _, field := range o.fields {
		c.collectType(field.Type)
		for _, arg := range field.Arguments {
			c.collectType(arg.Type)
		}
	}
}

func (c *collector) input(o *InputObjectType) {
	if c.seen[o.name] {
		return
	}
	c.seen[o.name] = true
	c.out.Inputs = append(c.out.Inputs, o)

	for _, field := range o.fields {
		c.collectType(field.Type)
	}
}

func (c *collector) collectType(typ Type) {
	switch typ := typ.(type) {
	case ObjectRef:
		o := typ.Resolve()
		if o == nil {
			panic(fmt.Sprintf("dangling reference to object type %s", typ.name))
		}
		c.object(o)

	case InputObjectRef:
		o := typ.Resolve()
		if o == nil {
			panic(fmt.Sprintf("dangling reference to input object type %s", typ.name))
		}
		c.input(o)

	case *EnumType:
		if c.seen[typ.Name] {
			return
		}
		c.seen[typ.Name] = true
		c.out.Enums = append(c.out.Enums, typ)

	case *Scalar:
		if c.seen[typ.Name] {
			return
		}
		c.seen[typ.Name] = true
		c.out.Scalars = append(c.out.Scalars, typ)

	case *List:
		c.collectType(typ.Of)

	case *Optional:
		c.collectType(typ.Of)
	}
}
