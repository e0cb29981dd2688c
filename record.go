package hbrecord

// Record is a generic model instance backed by an attribute mapping.
type Record struct {
	attrs     Attributes
	persisted bool
}

// NewRecord builds a record that has not been stored yet. The id is
// required, every attribute of schema missing from attrs is set to nil.
func NewRecord(schema *Schema, attrs Attributes) (*Record, error) {
	if attrs.ID() == "" {
		return nil, ArgumentError.New("%s: new record needs a non-empty id", schema.Name())
	}
	r := &Record{attrs: make(Attributes, len(attrs))}
	for _, name := range schema.AttributeNames() {
		r.attrs[name] = nil
	}
	for k, v := range attrs {
		if k != AttrID {
			if _, ok := schema.Field(k); !ok {
				return nil, ArgumentError.New("%s: unknown attribute %q", schema.Name(), k)
			}
		}
		r.attrs[k] = v
	}
	return r, nil
}

// HydrateRecord builds a record from attributes read from storage. No
// validation or defaulting happens, attrs is used as is.
func HydrateRecord(attrs Attributes) *Record {
	return &Record{attrs: attrs, persisted: true}
}

// ID returns the row key.
func (r *Record) ID() string { return r.attrs.ID() }

// Get returns one attribute.
func (r *Record) Get(name string) (interface{}, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// Attributes returns a copy of all attributes.
func (r *Record) Attributes() Attributes {
	out := make(Attributes, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = v
	}
	return out
}

// Persisted reports whether the record was read from storage.
func (r *Record) Persisted() bool { return r.persisted }
