package datamodel

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Validation errors returned (wrapped) by New.
var (
	ErrInvalidName      = errors.New("invalid name")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrUnknownType      = errors.New("unknown field type")
	ErrUnknownModel     = errors.New("unknown related model")
	ErrUnknownEnum      = errors.New("unknown enum")
	ErrInvalidIndex     = errors.New("invalid unique index")
	ErrMultipleIDs      = errors.New("more than one id field")
	ErrInvalidDefault   = errors.New("invalid default value")
	ErrEmptyEnum        = errors.New("enum has no values")
	ErrInvalidRelation  = errors.New("invalid relation")
	ErrInvalidFieldKind = errors.New("invalid field attributes")
	ErrReservedName     = errors.New("reserved name")
)

var nameRE = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// reservedNames are the names of types every query schema defines: the
// roots, the batch payload, the built-in scalars with their filters and the
// built-in enums.
var reservedNames = func() map[string]bool {
	names := map[string]bool{
		"Query":        true,
		"Mutation":     true,
		"Subscription": true,
		"BatchPayload": true,
		"SortOrder":    true,
		"QueryMode":    true,
	}
	for _, t := range []TypeIdentifier{String, Int, Float, Boolean, DateTime, UUID, JSON, ID} {
		names[string(t)] = true
		names[string(t)+"Filter"] = true
		names[string(t)+"ListFilter"] = true
	}
	return names
}()

// Suffixes of the types generated per model and per enum.
var (
	modelTypeSuffixes = []string{
		"WhereInput", "WhereUniqueInput", "OrderByInput", "ListRelationFilter",
		"CreateInput", "UpdateInput", "UpdateManyMutationInput",
	}
	enumTypeSuffixes = []string{"Filter", "ListFilter"}
)

// New validates models and enums and links relation and enum fields to
// their targets. The slices are retained; callers must not modify them
// afterwards.
func New(models []*Model, enums []*EnumDef) (*InternalDataModel, error) {
	dm := &InternalDataModel{
		models:       models,
		enums:        enums,
		modelsByName: make(map[string]*Model, len(models)),
		enumsByName:  make(map[string]*EnumDef, len(enums)),
	}

	for _, e := range enums {
		if !nameRE.MatchString(e.Name) {
			return nil, fmt.Errorf("enum %q: %w", e.Name, ErrInvalidName)
		}
		if reservedNames[e.Name] {
			return nil, fmt.Errorf("enum %s: %w", e.Name, ErrReservedName)
		}
		if _, ok := dm.enumsByName[e.Name]; ok {
			return nil, fmt.Errorf("enum %s: %w", e.Name, ErrDuplicateName)
		}
		if len(e.Values) == 0 {
			return nil, fmt.Errorf("enum %s: %w", e.Name, ErrEmptyEnum)
		}
		seen := make(map[string]bool, len(e.Values))
		for _, v := range e.Values {
			if !nameRE.MatchString(v) {
				return nil, fmt.Errorf("enum %s value %q: %w", e.Name, v, ErrInvalidName)
			}
			if seen[v] {
				return nil, fmt.Errorf("enum %s value %s: %w", e.Name, v, ErrDuplicateName)
			}
			seen[v] = true
		}
		dm.enumsByName[e.Name] = e
	}

	for _, m := range models {
		if !nameRE.MatchString(m.Name) {
			return nil, fmt.Errorf("model %q: %w", m.Name, ErrInvalidName)
		}
		if reservedNames[m.Name] {
			return nil, fmt.Errorf("model %s: %w", m.Name, ErrReservedName)
		}
		if _, ok := dm.modelsByName[m.Name]; ok {
			return nil, fmt.Errorf("model %s: %w", m.Name, ErrDuplicateName)
		}
		if _, ok := dm.enumsByName[m.Name]; ok {
			return nil, fmt.Errorf("model %s clashes with an enum: %w", m.Name, ErrDuplicateName)
		}
		dm.modelsByName[m.Name] = m
	}

	if err := dm.checkGeneratedNames(); err != nil {
		return nil, err
	}

	for _, m := range models {
		if err := dm.link(m); err != nil {
			return nil, fmt.Errorf("model %s: %w", m.Name, err)
		}
	}
	return dm, nil
}

// MustNew is like New but panics on error. Intended for tests and static
// data models.
func MustNew(models []*Model, enums []*EnumDef) *InternalDataModel {
	dm, err := New(models, enums)
	if err != nil {
		panic(err)
	}
	return dm
}

func (dm *InternalDataModel) link(m *Model) error {
	m.fields = make(map[string]*Field, len(m.Fields))
	ids := 0
	for _, f := range m.Fields {
		if !nameRE.MatchString(f.Name) {
			return fmt.Errorf("field %q: %w", f.Name, ErrInvalidName)
		}
		if _, ok := m.fields[f.Name]; ok {
			return fmt.Errorf("field %s: %w", f.Name, ErrDuplicateName)
		}
		if !f.Type.valid() {
			return fmt.Errorf("field %s: %w %q", f.Name, ErrUnknownType, f.Type)
		}
		m.fields[f.Name] = f
		f.model = m
		f.related = nil
		f.enum = nil

		if f.IsID {
			ids++
			if f.IsList || f.IsRelation() {
				return fmt.Errorf("field %s: id must be a single scalar: %w", f.Name, ErrInvalidFieldKind)
			}
		}

		switch f.Type {
		case Relation:
			if f.Relation == nil || f.Relation.Model == "" {
				return fmt.Errorf("field %s: %w: missing target model", f.Name, ErrInvalidRelation)
			}
			target, ok := dm.modelsByName[f.Relation.Model]
			if !ok {
				return fmt.Errorf("field %s: %w %q", f.Name, ErrUnknownModel, f.Relation.Model)
			}
			if f.IsUnique || f.Default != "" {
				return fmt.Errorf("field %s: relations cannot be unique or defaulted: %w", f.Name, ErrInvalidFieldKind)
			}
			f.related = target
		case Enum:
			e, ok := dm.enumsByName[f.Enum]
			if !ok {
				return fmt.Errorf("field %s: %w %q", f.Name, ErrUnknownEnum, f.Enum)
			}
			f.enum = e
		}

		if f.Default != "" {
			if err := checkDefault(f); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
	}
	if ids > 1 {
		return ErrMultipleIDs
	}

	return m.checkIndexes()
}

// checkIndexes validates the unique indexes of a linked model. Every index
// that adds a selector must have a name distinct from the unique fields and
// from the other indexes, and must cover a distinct set of fields.
func (m *Model) checkIndexes() error {
	selectors := make(map[string]bool)
	for _, f := range m.UniqueFields() {
		selectors[f.Name] = true
	}
	covered := make(map[string]bool)

	for _, idx := range m.UniqueIndexes {
		if len(idx.Fields) == 0 {
			return fmt.Errorf("index %q: %w: no fields", idx.Name, ErrInvalidIndex)
		}
		if idx.Name != "" && !nameRE.MatchString(idx.Name) {
			return fmt.Errorf("index %q: %w", idx.Name, ErrInvalidName)
		}
		if idx.Name != "" && m.fields[idx.Name] != nil {
			return fmt.Errorf("index %q: %w: name clashes with a field", idx.Name, ErrInvalidIndex)
		}
		seen := make(map[string]bool, len(idx.Fields))
		for _, name := range idx.Fields {
			f, ok := m.fields[name]
			if !ok || !f.IsScalar() || f.IsList || f.IsHidden || seen[name] {
				return fmt.Errorf("index %q field %q: %w", idx.Name, name, ErrInvalidIndex)
			}
			seen[name] = true
		}

		key := strings.Join(sortedCopy(idx.Fields), ",")
		if covered[key] {
			return fmt.Errorf("index %q: %w: fields %v already indexed", idx.Name, ErrInvalidIndex, idx.Fields)
		}
		covered[key] = true
	}

	for _, idx := range m.CompoundIndexes() {
		name := idx.SelectorName()
		if selectors[name] {
			return fmt.Errorf("index %q: %w: selector %s is already defined", idx.Name, ErrInvalidIndex, name)
		}
		selectors[name] = true
	}
	return nil
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

// checkGeneratedNames rejects model and enum names that equal a type name
// generated for another model or enum, e.g. a model UserWhereInput next to
// a model User.
func (dm *InternalDataModel) checkGeneratedNames() error {
	generated := make(map[string]string)
	for _, m := range dm.models {
		for _, suffix := range modelTypeSuffixes {
			generated[m.Name+suffix] = m.Name
		}
	}
	for _, e := range dm.enums {
		for _, suffix := range enumTypeSuffixes {
			generated[e.Name+suffix] = e.Name
		}
	}
	for _, m := range dm.models {
		if owner, ok := generated[m.Name]; ok {
			return fmt.Errorf("model %s clashes with a type generated for %s: %w", m.Name, owner, ErrReservedName)
		}
	}
	for _, e := range dm.enums {
		if owner, ok := generated[e.Name]; ok {
			return fmt.Errorf("enum %s clashes with a type generated for %s: %w", e.Name, owner, ErrReservedName)
		}
	}
	return nil
}

func checkDefault(f *Field) error {
	if f.IsList {
		return fmt.Errorf("%w: list fields cannot have a default", ErrInvalidDefault)
	}
	var err error
	switch f.Type {
	case Int:
		_, err = strconv.ParseInt(f.Default, 10, 64)
	case Float:
		_, err = strconv.ParseFloat(f.Default, 64)
	case Boolean:
		_, err = strconv.ParseBool(f.Default)
	case UUID:
		_, err = uuid.Parse(f.Default)
	case Enum:
		err = fmt.Errorf("%q is not a value of %s", f.Default, f.enum.Name)
		for _, v := range f.enum.Values {
			if v == f.Default {
				err = nil
				break
			}
		}
	}
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidDefault, f.Default, err)
	}
	return nil
}
