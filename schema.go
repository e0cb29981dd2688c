package hbrecord

import (
	"sort"
	"sync"

	"go.uber.org/atomic"

	"github.com/challenai/hbrecord/codec"
	"github.com/challenai/hbrecord/logger"
	"github.com/challenai/hbrecord/utils"
)

// FieldType selects how a cell value is deserialized.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeUint
	TypeJSON
)

func (t FieldType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeUint:
		return "uint"
	case TypeJSON:
		return "json"
	}
	return "string"
}

// DecodeFunc converts raw cell bytes into an attribute value.
type DecodeFunc func(raw []byte) (interface{}, error)

// Field maps one column to one attribute.
type Field struct {
	// Name is the attribute name.
	Name string
	// UniqueName is the "family:qualifier" column the value is read from.
	UniqueName string
	Type       FieldType
	// Decode, when set, is used instead of the codec for Type.
	Decode DecodeFunc
}

// Deserialize decodes a raw cell value.
func (f *Field) Deserialize(cdc codec.Codec, raw []byte) (interface{}, error) {
	if f.Decode != nil {
		return f.Decode(raw)
	}
	switch f.Type {
	case TypeInteger:
		return cdc.DecodeInt(raw)
	case TypeFloat:
		return cdc.DecodeFloat(raw)
	case TypeBoolean:
		return cdc.DecodeBool(raw)
	case TypeUint:
		return cdc.DecodeUint(raw)
	case TypeJSON:
		return cdc.DecodeJSON(raw)
	}
	return cdc.DecodeString(raw)
}

// ColumnFamily groups the fields stored in one HBase column family.
type ColumnFamily struct {
	Name string
	// Autoload families learn their fields from the first row read.
	Autoload bool
	Fields   map[string]*Field
}

// NewColumnFamily declares a family with a static field set.
func NewColumnFamily(name string) *ColumnFamily {
	return &ColumnFamily{Name: name, Fields: map[string]*Field{}}
}

// NewAutoloadFamily declares a family whose fields are discovered from data.
func NewAutoloadFamily(name string) *ColumnFamily {
	cf := NewColumnFamily(name)
	cf.Autoload = true
	return cf
}

// Field adds a field stored under qualifier and returns the family.
func (cf *ColumnFamily) Field(qualifier string, typ FieldType) *ColumnFamily {
	cf.Fields[qualifier] = &Field{
		Name:       qualifier,
		UniqueName: utils.JoinColumn(cf.Name, qualifier),
		Type:       typ,
	}
	return cf
}

// PopulateFieldsFromColumns adds a string field for every qualifier of this
// family present in columns and not declared yet.
func (cf *ColumnFamily) PopulateFieldsFromColumns(columns map[string]*Cell) map[string]*Field {
	for column := range columns {
		family, qualifier := utils.SplitColumn(column)
		if family != cf.Name || qualifier == "" {
			continue
		}
		if _, ok := cf.Fields[qualifier]; ok {
			continue
		}
		cf.Fields[qualifier] = &Field{Name: qualifier, UniqueName: column, Type: TypeString}
	}
	return cf.Fields
}

// Schema describes how rows of one model become attributes.
//
// Families flagged Autoload are discovered once, from the first row handed to
// Transpose. Rows seen later never change the schema.
type Schema struct {
	name     string
	families []*ColumnFamily
	codec    codec.Codec
	log      logger.Logger

	mu         sync.RWMutex
	attributes map[string]*Field

	once       sync.Once
	pending    []string
	discovered atomic.Bool
}

// SchemaOption customizes a Schema.
type SchemaOption func(*Schema)

// WithCodec replaces the default cell codec.
func WithCodec(c codec.Codec) SchemaOption {
	return func(s *Schema) { s.codec = c }
}

// WithSchemaLogger sets the logger used for discovery messages.
func WithSchemaLogger(l logger.Logger) SchemaOption {
	return func(s *Schema) { s.log = l }
}

// NewSchema builds the schema of model name from its column families.
func NewSchema(name string, families []*ColumnFamily, opts ...SchemaOption) *Schema {
	s := &Schema{
		name:       name,
		families:   families,
		codec:      &codec.DefaultCodec{},
		log:        logger.NewNopLogger(),
		attributes: map[string]*Field{},
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, cf := range families {
		s.merge(cf.Fields)
		if cf.Autoload {
			s.pending = append(s.pending, cf.Name)
		}
	}
	if len(s.pending) == 0 {
		s.once.Do(func() { s.discovered.Store(true) })
	}
	return s
}

// Name returns the model name.
func (s *Schema) Name() string { return s.name }

// FamilyNames returns the column families in declaration order.
func (s *Schema) FamilyNames() []string {
	names := make([]string, 0, len(s.families))
	for _, cf := range s.families {
		names = append(names, cf.Name)
	}
	return names
}

// Discovered reports whether autoload discovery has run.
func (s *Schema) Discovered() bool { return s.discovered.Load() }

// Field returns the field for an attribute name.
func (s *Schema) Field(name string) (*Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.attributes[name]
	return f, ok
}

// AttributeNames returns the known attribute names, sorted.
func (s *Schema) AttributeNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.attributes))
	for name := range s.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// merge adds fields unknown so far. Existing entries always win.
func (s *Schema) merge(fields map[string]*Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fields {
		if _, ok := s.attributes[f.Name]; ok {
			continue
		}
		s.attributes[f.Name] = f
	}
}

func (s *Schema) family(name string) *ColumnFamily {
	for _, cf := range s.families {
		if cf.Name == name {
			return cf
		}
	}
	return nil
}

// discover runs autoload discovery against row, at most once per schema.
func (s *Schema) discover(row *Row) {
	s.once.Do(func() {
		for _, name := range s.pending {
			cf := s.family(name)
			if cf == nil {
				continue
			}
			s.merge(cf.PopulateFieldsFromColumns(row.Columns))
		}
		s.log.Debugf("%s: discovered attributes %v from row %q", s.name, s.AttributeNames(), row.ID)
		s.pending = nil
		s.discovered.Store(true)
	})
}

// Transpose turns a row into the attribute mapping of a record. Attributes
// whose column is missing from the row are nil.
func (s *Schema) Transpose(row *Row) (Attributes, error) {
	s.discover(row)

	s.mu.RLock()
	defer s.mu.RUnlock()
	attrs := make(Attributes, len(s.attributes)+1)
	attrs[AttrID] = row.ID
	for name, f := range s.attributes {
		cell, ok := row.Columns[f.UniqueName]
		if !ok || cell == nil {
			attrs[name] = nil
			continue
		}
		v, err := f.Deserialize(s.codec, cell.Value)
		if err != nil {
			return nil, DecodeError.New("%s: column %s of row %q: %v", s.name, f.UniqueName, row.ID, err)
		}
		attrs[name] = v
	}
	return attrs, nil
}

// Registry holds one schema per model name.
type Registry struct {
	mu      sync.Mutex
	schemas map[string]*Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: map[string]*Schema{}}
}

// Register stores s under its name. Registering a name twice is an error,
// the first schema may already carry discovered fields.
func (r *Registry) Register(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[s.name]; ok {
		return ArgumentError.New("schema %q already registered", s.name)
	}
	r.schemas[s.name] = s
	return nil
}

// Lookup returns the schema registered for name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schemas[name]
	return s, ok
}
