package result

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Encoding is the on-disk encoding of an artifact.
type Encoding string

// Supported encodings.
const (
	EncodingCSV     Encoding = "csv"
	EncodingJSON    Encoding = "json"
	EncodingYAML    Encoding = "yaml"
	EncodingMsgpack Encoding = "msgpack"
)

// EncodingFor chooses the encoding of an artifact from the result kind and
// the artifact filename. Tables are always CSV. Structured values are JSON
// unless the filename asks for YAML or MessagePack.
func EncodingFor(k Kind, filename string) Encoding {
	if k == KindTabular {
		return EncodingCSV
	}
	return StructuredEncodingFor(filename)
}

// StructuredEncodingFor maps a filename extension to a structured encoding.
func StructuredEncodingFor(filename string) Encoding {
	switch strings.ToLower(path.Ext(filename)) {
	case ".yaml", ".yml":
		return EncodingYAML
	case ".msgpack", ".mpk":
		return EncodingMsgpack
	default:
		return EncodingJSON
	}
}

// Encode serializes the structured value. JSON output is indented with two
// spaces; map keys are emitted in sorted order so output is stable.
func (s *Structured) Encode(w io.Writer, enc Encoding) error {
	switch enc {
	case EncodingJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(s.Value)
	case EncodingYAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(s.Value); err != nil {
			return err
		}
		return e.Close()
	case EncodingMsgpack:
		e := msgpack.NewEncoder(w)
		e.SetSortMapKeys(true)
		e.SetCustomStructTag("json")
		return e.Encode(s.Value)
	default:
		return fmt.Errorf("unsupported structured encoding %q", enc)
	}
}

// Encode writes any result with the given encoding.
func Encode(w io.Writer, r Result, enc Encoding) error {
	switch v := r.(type) {
	case *Table:
		if enc != EncodingCSV {
			return fmt.Errorf("tables encode as csv, not %s", enc)
		}
		return v.WriteCSV(w)
	case *Structured:
		return v.Encode(w, enc)
	default:
		return fmt.Errorf("unsupported result type %T", r)
	}
}
