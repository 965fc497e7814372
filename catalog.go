package dyntable

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Catalog declares the record types a deployment exposes as tables.
// Catalogs are data files (JSON or YAML) listing objects with typed,
// labeled columns; they are the source the field resolver derives
// schemas from.
type Catalog struct {
	Version string      `json:"version" yaml:"version"`
	Title   string      `json:"title,omitempty" yaml:"title,omitempty"`
	Objects []ObjectDef `json:"objects" yaml:"objects"`
}

type ObjectDef struct {
	Name    string      `json:"name" yaml:"name"`
	Columns []ColumnDef `json:"columns" yaml:"columns"`
}

type ColumnDef struct {
	Name       string            `json:"name" yaml:"name"`
	Type       string            `json:"type" yaml:"type"`
	Labels     map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	PrimaryKey bool              `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	ParentLink bool              `json:"parent_link,omitempty" yaml:"parent_link,omitempty"`
	RelatedTo  string            `json:"related_to,omitempty" yaml:"related_to,omitempty"`
}

// LoadCatalog reads a catalog file, decoding YAML for .yaml/.yml paths
// and JSON otherwise.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseCatalogYAML(data)
	default:
		return ParseCatalog(data)
	}
}

// ParseCatalog decodes a JSON catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cat.Objects) == 0 {
		return nil, fmt.Errorf("no objects found in catalog")
	}
	return &cat, nil
}

// ParseCatalogYAML decodes a YAML catalog.
func ParseCatalogYAML(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cat.Objects) == 0 {
		return nil, fmt.Errorf("no objects found in catalog")
	}
	return &cat, nil
}

// Schemas builds one schema per catalog object, with field labels in
// the requested language falling back to "en" and then to the column
// name.
func (c *Catalog) Schemas(lang string) *SchemaSet {
	set := NewSchemaSet()
	for _, obj := range c.Objects {
		fields := make([]Field, 0, len(obj.Columns))
		for _, col := range obj.Columns {
			label := col.Name
			if l, ok := col.Labels[lang]; ok {
				label = l
			} else if l, ok := col.Labels["en"]; ok {
				label = l
			}

			kind, auto := kindFromType(col.Type, col.PrimaryKey)
			if col.RelatedTo != "" {
				kind = KindRelation
			}
			fields = append(fields, Field{
				Name:       col.Name,
				Label:      label,
				Kind:       kind,
				Auto:       auto,
				ParentLink: col.ParentLink,
				RelatedTo:  col.RelatedTo,
			})
		}
		set.Add(NewSchema(obj.Name, fields...))
	}
	return set
}

// ValidateCatalog checks a catalog document against a JSON schema
// file. The returned error lists every violation.
func ValidateCatalog(schemaPath, catalogPath string) error {
	absSchema, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("invalid schema path: %w", err)
	}
	absCatalog, err := filepath.Abs(catalogPath)
	if err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + absSchema)
	documentLoader := gojsonschema.NewReferenceLoader("file://" + absCatalog)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate %s: %w", filepath.Base(catalogPath), err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%s is invalid: %s", filepath.Base(catalogPath), strings.Join(msgs, "; "))
}

// kindFromType maps a catalog column type to a field kind. serial
// types and integer primary keys count as auto-generated.
func kindFromType(typ string, primaryKey bool) (Kind, bool) {
	switch strings.ToLower(typ) {
	case "serial", "bigserial", "smallserial", "identity":
		return KindAuto, true
	case "varchar", "char", "character", "string":
		return KindChar, false
	case "text", "clob":
		return KindText, false
	case "email":
		return KindEmail, false
	case "file":
		return KindFile, false
	case "filepath", "path":
		return KindFilePath, false
	case "slug":
		return KindSlug, false
	case "url":
		return KindURL, false
	case "uuid":
		return KindUUID, false
	case "inet", "ip", "cidr":
		return KindIPAddress, false
	case "int", "integer", "smallint", "bigint", "number":
		if primaryKey {
			return KindAuto, true
		}
		return KindInteger, false
	case "float", "real", "double", "double precision":
		return KindFloat, false
	case "numeric", "decimal", "money":
		return KindDecimal, false
	case "bool", "boolean", "int_bool":
		return KindBool, false
	case "date":
		return KindDate, false
	case "timestamp", "timestamptz", "datetime", "time":
		return KindDateTime, false
	default:
		return KindText, false
	}
}
