package catalog

import (
	"embed"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/canonmap/pkg/errors"
)

//go:embed embedded/fields.yaml
var embeddedFS embed.FS

// file is the on-disk / embedded YAML shape of a catalog.
type file struct {
	Fields []Field `yaml:"fields"`
}

// Default loads the embedded canonical field catalog shipped with canonmap.
func Default() (*Catalog, error) {
	data, err := embeddedFS.ReadFile("embedded/fields.yaml")
	if err != nil {
		return nil, errors.WrapParse("yaml", "embedded catalog", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", "catalog", err)
	}
	return New(f.Fields...)
}

// LoadFile builds a catalog from a YAML file on disk, for organizations that
// maintain their own canonical field definitions.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return c, nil
}
