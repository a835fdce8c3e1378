package reportengine

import (
	"fmt"
	"sort"
)

// SemanticType drives operator validity and value coercion for a column.
type SemanticType string

const (
	TypeString  SemanticType = "string"
	TypeNumber  SemanticType = "number"
	TypeDate    SemanticType = "date"
	TypeBoolean SemanticType = "boolean"
	TypeUUID    SemanticType = "uuid"
)

func (t SemanticType) valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeDate, TypeBoolean, TypeUUID:
		return true
	}
	return false
}

// ColumnMeta maps a report field onto a physical column.
type ColumnMeta struct {
	Ref   string       `json:"-"`
	Type  SemanticType `json:"type"`
	Label string       `json:"label"`
}

// DataSource is one reportable table. It is immutable once registered.
type DataSource struct {
	Name             string
	Table            string
	TenantColumn     string
	SoftDeleteColumn string
	PrimaryKey       string
	Columns          map[string]ColumnMeta
}

// Column returns the metadata of a field.
func (d *DataSource) Column(field string) (ColumnMeta, bool) {
	meta, ok := d.Columns[field]
	return meta, ok
}

// Fields returns the field names in lexical order.
func (d *DataSource) Fields() []string {
	fields := make([]string, 0, len(d.Columns))
	for f := range d.Columns {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Registry is the process-wide, read-only set of data sources.
type Registry struct {
	sources map[string]*DataSource
}

// NewRegistry builds a registry. It panics on malformed definitions since those are
// programming errors caught at startup.
func NewRegistry(sources ...*DataSource) *Registry {
	r := &Registry{sources: make(map[string]*DataSource, len(sources))}
	for _, ds := range sources {
		if ds == nil || ds.Name == "" || ds.Table == "" || ds.TenantColumn == "" {
			panic("reportengine: data source requires a name, table and tenant column")
		}
		if _, dup := r.sources[ds.Name]; dup {
			panic(fmt.Sprintf("reportengine: duplicate data source %q", ds.Name))
		}
		for field, meta := range ds.Columns {
			if meta.Ref == "" || !meta.Type.valid() {
				panic(fmt.Sprintf("reportengine: data source %q has an invalid column %q", ds.Name, field))
			}
		}
		if ds.PrimaryKey != "" {
			if _, ok := ds.Columns[ds.PrimaryKey]; !ok {
				panic(fmt.Sprintf("reportengine: data source %q primary key %q is not a column", ds.Name, ds.PrimaryKey))
			}
		}
		r.sources[ds.Name] = ds
	}
	return r
}

// Resolve looks up a data source by name.
func (r *Registry) Resolve(name string) (*DataSource, bool) {
	ds, ok := r.sources[name]
	return ds, ok
}

// Names returns the registered data source names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for n := range r.sources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
