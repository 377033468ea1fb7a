// Package naming derives schema names from data model names.
package naming

import (
	"github.com/go-openapi/inflect"
	"github.com/iancoleman/strcase"
)

// Namer pluralizes and case-converts model and field names. The zero value
// is ready to use.
type Namer struct {
	plurals map[string]string
}

// New returns a Namer that uses overrides (singular -> plural) before falling
// back to the English inflection rules.
func New(overrides map[string]string) *Namer {
	n := &Namer{plurals: make(map[string]string, len(overrides))}
	for singular, plural := range overrides {
		n.plurals[singular] = plural
	}
	return n
}

// Plural returns the plural form of name, e.g. "User" -> "Users".
func (n *Namer) Plural(name string) string {
	if n != nil {
		if p, ok := n.plurals[name]; ok {
			return p
		}
	}
	return inflect.Pluralize(name)
}

// LowerCamel converts "BlogPost" into "blogPost".
func LowerCamel(s string) string {
	return strcase.ToLowerCamel(s)
}

// Camel converts "created_at" or "createdAt" into "CreatedAt".
func Camel(s string) string {
	return strcase.ToCamel(s)
}
