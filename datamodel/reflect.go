package datamodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned by Reflect for Go types that have no field
// type equivalent.
var ErrUnsupportedType = errors.New("unsupported Go type")

// Embedded is a marker that can be embedded anonymously into a struct to
// denote that the model is embedded:
//
//	type Address struct {
//	    datamodel.Embedded
//	    Street string
//	}
type Embedded struct{}

// Enumerator is implemented by named Go types that should become enums.
// The enum takes the name of the Go type.
type Enumerator interface {
	EnumValues() []string
}

// Indexer is implemented by structs that declare compound unique indexes.
type Indexer interface {
	UniqueIndexes() []*Index
}

var (
	embeddedType   = reflect.TypeOf(Embedded{})
	enumeratorType = reflect.TypeOf((*Enumerator)(nil)).Elem()
	timeType       = reflect.TypeOf(time.Time{})
	uuidType       = reflect.TypeOf(uuid.UUID{})
	rawJSONType    = reflect.TypeOf(json.RawMessage{})
)

// fieldInfo contains the information parsed from a struct field tag.
type fieldInfo struct {
	// Skipped indicates that this field should not be part of the model.
	Skipped bool

	// Name is the field name in the model.
	Name string

	ID, Unique, Auto, Hidden bool

	// Required and Optional override the nullability derived from the Go type.
	Required, Optional bool

	Default  string
	Relation string
}

// parseFieldInfo parses the `model` tag of a struct field, e.g.
//
//	Email string `model:"email,unique"`
//	ID    string `model:",id,auto"`
//	Role  Role   `model:"role,default=MEMBER"`
func parseFieldInfo(field reflect.StructField) (*fieldInfo, error) {
	if field.PkgPath != "" {
		return &fieldInfo{Skipped: true}, nil
	}

	tags := strings.Split(field.Tag.Get("model"), ",")
	name := strings.TrimSpace(tags[0])
	if name == "-" {
		return &fieldInfo{Skipped: true}, nil
	}
	if name == "" {
		name = makeFieldName(field.Name)
	}

	info := &fieldInfo{Name: name}
	for _, opt := range tags[1:] {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "id":
			info.ID = true
		case opt == "unique":
			info.Unique = true
		case opt == "auto":
			info.Auto = true
		case opt == "hidden":
			info.Hidden = true
		case opt == "required":
			info.Required = true
		case opt == "optional":
			info.Optional = true
		case strings.HasPrefix(opt, "default="):
			info.Default = strings.TrimPrefix(opt, "default=")
		case strings.HasPrefix(opt, "relation="):
			info.Relation = strings.TrimPrefix(opt, "relation=")
		case opt == "":
		default:
			return nil, fmt.Errorf("unknown tag option %q", opt)
		}
	}
	if info.Required && info.Optional {
		return nil, errors.New("field cannot be both required and optional")
	}
	return info, nil
}

// makeFieldName converts a Go field name "MyField" into "myField".
func makeFieldName(s string) string {
	var b strings.Builder
	for i, c := range s {
		if i == 0 {
			b.WriteRune(unicode.ToLower(c))
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Reflect builds a data model from struct values (or pointers to them). Each
// struct becomes a model named after its Go type. Struct-typed fields that
// refer to another passed struct become relations; slices become lists;
// pointer fields are optional unless tagged required.
func Reflect(values ...any) (*InternalDataModel, error) {
	r := &reflector{
		models: make(map[reflect.Type]*Model),
		enums:  make(map[reflect.Type]*EnumDef),
	}

	var types []reflect.Type
	for _, v := range values {
		typ := reflect.TypeOf(v)
		for typ != nil && typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
		if typ == nil || typ.Kind() != reflect.Struct || typ.Name() == "" {
			return nil, fmt.Errorf("%w: %v is not a named struct", ErrUnsupportedType, typ)
		}
		if _, ok := r.models[typ]; ok {
			return nil, fmt.Errorf("model %s: %w", typ.Name(), ErrDuplicateName)
		}
		r.models[typ] = &Model{Name: typ.Name()}
		types = append(types, typ)
	}

	var models []*Model
	for _, typ := range types {
		m, err := r.reflectModel(typ)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", typ.Name(), err)
		}
		models = append(models, m)
	}
	return New(models, r.enumList)
}

type reflector struct {
	models   map[reflect.Type]*Model
	enums    map[reflect.Type]*EnumDef
	enumList []*EnumDef
}

func (r *reflector) reflectModel(typ reflect.Type) (*Model, error) {
	m := r.models[typ]

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.Anonymous {
			if sf.Type == embeddedType {
				m.IsEmbedded = true
				continue
			}
			return nil, fmt.Errorf("field %s: anonymous fields not supported", sf.Name)
		}

		info, err := parseFieldInfo(sf)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		if info.Skipped {
			continue
		}

		f, err := r.reflectField(sf.Type, info)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		m.Fields = append(m.Fields, f)
	}

	if idx, ok := reflect.New(typ).Interface().(Indexer); ok {
		m.UniqueIndexes = idx.UniqueIndexes()
	}
	return m, nil
}

func (r *reflector) reflectField(typ reflect.Type, info *fieldInfo) (*Field, error) {
	f := &Field{
		Name:            info.Name,
		IsID:            info.ID,
		IsUnique:        info.Unique,
		IsAutoGenerated: info.Auto,
		IsHidden:        info.Hidden,
		Default:         info.Default,
	}

	required := true
	if typ.Kind() == reflect.Ptr {
		required = false
		typ = typ.Elem()
	}
	if typ.Kind() == reflect.Slice && typ != rawJSONType {
		f.IsList = true
		required = false
		typ = typ.Elem()
		if typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
	}
	switch {
	case info.Required:
		required = true
	case info.Optional:
		required = false
	}
	f.IsRequired = required

	if target, ok := r.models[typ]; ok {
		f.Type = Relation
		f.Relation = &RelationInfo{Model: target.Name, Name: info.Relation}
		return f, nil
	}

	if typ.Implements(enumeratorType) && typ.Name() != "" {
		f.Type = Enum
		f.Enum = r.enum(typ).Name
		return f, nil
	}

	switch typ {
	case timeType:
		f.Type = DateTime
		return f, nil
	case uuidType:
		f.Type = UUID
		return f, nil
	case rawJSONType:
		f.Type = JSON
		return f, nil
	}

	switch typ.Kind() {
	case reflect.String:
		f.Type = String
		if info.ID {
			f.Type = ID
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		f.Type = Int
	case reflect.Float32, reflect.Float64:
		f.Type = Float
	case reflect.Bool:
		f.Type = Boolean
	case reflect.Map:
		if typ.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, typ)
		}
		f.Type = JSON
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, typ)
	}
	return f, nil
}

func (r *reflector) enum(typ reflect.Type) *EnumDef {
	if e, ok := r.enums[typ]; ok {
		return e
	}
	values := reflect.Zero(typ).Interface().(Enumerator).EnumValues()
	e := &EnumDef{Name: typ.Name(), Values: values}
	r.enums[typ] = e
	r.enumList = append(r.enumList, e)
	return e
}
