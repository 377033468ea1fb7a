package schemabuilder

import "fmt"

// typeCache memoizes types by name and remembers the order in which they
// were created. Builders insert a type before populating its fields so that
// a self-referencing type finds itself in the cache.
type typeCache[T any] struct {
	byName map[string]*T
	order  []*T
}

func newTypeCache[T any]() *typeCache[T] {
	return &typeCache[T]{byName: make(map[string]*T)}
}

func (c *typeCache[T]) get(name string) (*T, bool) {
	t, ok := c.byName[name]
	return t, ok
}

func (c *typeCache[T]) insert(name string, t *T) {
	if _, ok := c.byName[name]; ok {
		panic(fmt.Sprintf("duplicate type %s", name))
	}
	c.byName[name] = t
	c.order = append(c.order, t)
}

func (c *typeCache[T]) len() int {
	return len(c.order)
}

// drain hands out every cached type in creation order and empties the cache.
func (c *typeCache[T]) drain() []*T {
	out := c.order
	c.order = nil
	c.byName = make(map[string]*T)
	return out
}
