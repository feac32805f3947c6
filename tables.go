package wabinary

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// maxPackedMax keeps the packed length, a 7-bit byte count, in range
const maxPackedMax = 254

// tablesFile is the YAML layout read by LoadTables
type tablesFile struct {
	Tags   Tags             `yaml:"tags"`
	Tokens map[string]Token `yaml:"tokens"`
}

// LoadTablesFile reads encoding tables from the YAML file at path
func LoadTablesFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTables(f)
}

// LoadTables reads encoding tables in YAML form from r
func LoadTables(r io.Reader) (*Tables, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tables: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes encoding tables in YAML form. Tag keys missing from
// the document keep their DefaultTags values.
func ParseTables(data []byte) (*Tables, error) {
	f := tablesFile{Tags: DefaultTags()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTables, err)
	}
	t := &Tables{Tags: f.Tags, Tokens: f.Tokens}
	if t.Tokens == nil {
		t.Tokens = map[string]Token{}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that the tables can drive an encode
func (t *Tables) Validate() error {
	if t.Tags.PackedMax < 0 || t.Tags.PackedMax > maxPackedMax {
		return fmt.Errorf("%w: PACKED_MAX %d out of range, max is %d", ErrInvalidTables, t.Tags.PackedMax, maxPackedMax)
	}
	for s := range t.Tokens {
		if s == "" {
			return fmt.Errorf("%w: empty token string", ErrInvalidTables)
		}
	}
	return nil
}
