package schema

import "sort"

// QuerySchema is the finalized schema: a root query type, a root mutation
// type and the flat collections of every input and output type. It owns
// every type in the graph and is not modified after NewQuerySchema, so it
// is safe to share between goroutines.
type QuerySchema struct {
	query    *ObjectType
	mutation *ObjectType

	inputs  []*InputObjectType
	outputs []*ObjectType

	inputsByName  map[string]*InputObjectType
	outputsByName map[string]*ObjectType
	enums         []*EnumType
	scalars       []*Scalar
}

// NewQuerySchema assembles a QuerySchema. The lists are retained; callers
// must not modify them afterwards.
func NewQuerySchema(query, mutation *ObjectType, inputs []*InputObjectType, outputs []*ObjectType) *QuerySchema {
	s := &QuerySchema{
		query:         query,
		mutation:      mutation,
		inputs:        inputs,
		outputs:       outputs,
		inputsByName:  make(map[string]*InputObjectType, len(inputs)),
		outputsByName: make(map[string]*ObjectType, len(outputs)),
	}
	for _, t := range inputs {
		s.inputsByName[t.name] = t
	}
	for _, t := range outputs {
		s.outputsByName[t.name] = t
	}

	// Types in the flat lists may not be reachable from the roots, so leaf
	// types are gathered from everything the schema owns.
	c := &collector{seen: make(map[string]bool)}
	c.object(query)
	c.object(mutation)
	for _, t := range outputs {
		c.object(t)
	}
	for _, t := range inputs {
		c.input(t)
	}
	s.enums = c.out.Enums
	sort.Slice(s.enums, func(i, j int) bool { return s.enums[i].Name < s.enums[j].Name })
	s.scalars = c.out.Scalars
	sort.Slice(s.scalars, func(i, j int) bool { return s.scalars[i].Name < s.scalars[j].Name })
	return s
}

// Query returns the root query type.
func (s *QuerySchema) Query() *ObjectType {
	return s.query
}

// Mutation returns the root mutation type.
func (s *QuerySchema) Mutation() *ObjectType {
	return s.mutation
}

// InputTypes returns every input object type.
func (s *QuerySchema) InputTypes() []*InputObjectType {
	return append([]*InputObjectType(nil), s.inputs...)
}

// OutputTypes returns every object type, the root types last.
func (s *QuerySchema) OutputTypes() []*ObjectType {
	return append([]*ObjectType(nil), s.outputs...)
}

// FindInputType returns the input object type called name.
func (s *QuerySchema) FindInputType(name string) (*InputObjectType, bool) {
	t, ok := s.inputsByName[name]
	return t, ok
}

// FindOutputType returns the object type called name.
func (s *QuerySchema) FindOutputType(name string) (*ObjectType, bool) {
	t, ok := s.outputsByName[name]
	return t, ok
}

// Enums returns the enum types used by the schema, sorted by name.
func (s *QuerySchema) Enums() []*EnumType {
	return append([]*EnumType(nil), s.enums...)
}

// Scalars returns the scalars used by the schema, sorted by name.
func (s *QuerySchema) Scalars() []*Scalar {
	return append([]*Scalar(nil), s.scalars...)
}
