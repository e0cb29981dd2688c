// Package relations describes associations between models.
package relations

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// Metadata describes one association, for instance
//
//	relations.New("employee", relations.ForeignKey("person_id"), relations.ClassName("Person"))
//
// Derived values are computed when the Metadata is built. A Metadata is
// immutable, so they can never go stale.
type Metadata struct {
	name              string
	foreignKey        string
	className         string
	storeForeignKeyIn string
}

// Option overrides a derived value.
type Option func(*Metadata)

// ForeignKey sets the foreign key instead of deriving it from the class name.
func ForeignKey(fk string) Option {
	return func(m *Metadata) { m.foreignKey = fk }
}

// ClassName sets the target class instead of deriving it from the name.
func ClassName(name string) Option {
	return func(m *Metadata) { m.className = name }
}

// StoreForeignKeyIn names the column family the foreign key is persisted in.
func StoreForeignKeyIn(family string) Option {
	return func(m *Metadata) { m.storeForeignKeyIn = family }
}

// New builds the metadata of the relation called name.
func New(name string, opts ...Option) *Metadata {
	m := &Metadata{name: name}
	for _, opt := range opts {
		opt(m)
	}
	if m.className == "" {
		m.className = classify(name)
	}
	if m.foreignKey == "" {
		m.foreignKey = strings.ToLower(m.className) + "_id"
	}
	return m
}

func (m *Metadata) Name() string              { return m.name }
func (m *Metadata) ForeignKey() string        { return m.foreignKey }
func (m *Metadata) ClassName() string         { return m.className }
func (m *Metadata) StoreForeignKeyIn() string { return m.storeForeignKeyIn }

// PersistingForeignKey reports whether the foreign key is stored on the
// owning record.
func (m *Metadata) PersistingForeignKey() bool {
	return m.storeForeignKeyIn != ""
}

// Key identifies the relation. Two metadata with the same name share a key.
func (m *Metadata) Key() string { return m.name }

// Equal reports whether both describe the same relation. Only names are
// compared.
func (m *Metadata) Equal(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.name == other.name
}

// classify turns a relation name into a class name, "employee_records" ->
// "EmployeeRecord".
func classify(name string) string {
	parts := strings.Split(name, "_")
	if n := len(parts) - 1; n >= 0 {
		parts[n] = inflection.Singular(parts[n])
	}
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
