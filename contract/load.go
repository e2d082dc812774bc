package contract

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// file is the on-disk contracts document:
//
//	contracts:
//	  debitcardtxn:
//	    input: debitcard_input_{date}.csv
//	    output: debitcard_processed_{date}.csv
//	    format: csv
//	    rules:
//	      tabular:
//	        mask_column: card_number
type file struct {
	Contracts map[string]Contract `yaml:"contracts"`
}

// UnmarshalYAML parses a format name, accepting the aliases of ParseFormat.
func (f *Format) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Load reads a YAML contracts file and builds a registry from it.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("contracts file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read contracts file %q: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse builds a registry from a YAML contracts document.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid contracts YAML: %w", err)
	}
	if len(f.Contracts) == 0 {
		return nil, fmt.Errorf("no contracts defined")
	}

	names := make([]string, 0, len(f.Contracts))
	for name := range f.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)

	contracts := make([]Contract, 0, len(names))
	for _, name := range names {
		c := f.Contracts[name]
		c.Endpoint = name
		contracts = append(contracts, c)
	}
	return NewRegistry(contracts...)
}
