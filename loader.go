package confdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Outcome classifies the result of loading a single variable.
type Outcome int

const (
	// OutcomeLoaded means the document value replaced the variable.
	OutcomeLoaded Outcome = iota

	// OutcomeDefaultedMissing means the document lacks the key and the
	// variable kept its pre-load value.
	OutcomeDefaultedMissing

	// OutcomeTypeMismatch means the document value's kind disagrees
	// with the default's and was rejected.
	OutcomeTypeMismatch

	// OutcomeDeserializeFailed means a Serializable's Deserialize
	// raised, or the default exposes no capability for the value.
	OutcomeDeserializeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeDefaultedMissing:
		return "defaulted (missing)"
	case OutcomeTypeMismatch:
		return "type mismatch"
	case OutcomeDeserializeFailed:
		return "deserialization failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// FieldResult is the per-variable diagnostic of a load.
type FieldResult struct {
	Path    string
	Outcome Outcome
	Err     error // set for mismatch and deserialization outcomes
}

// LoadReport collects per-field diagnostics of a load, in declaration
// order. Loading is best-effort: an operator-edited document commonly
// has partial errors that should not block the valid remainder.
type LoadReport struct {
	Fields []FieldResult

	// UnknownKeys lists top-level document keys with no registered
	// variable. Unknown keys are forward-compatible, never an error.
	UnknownKeys []string
}

// OK reports whether no field produced a diagnostic error.
func (r *LoadReport) OK() bool {
	for _, f := range r.Fields {
		if f.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the field results that carry an error.
func (r *LoadReport) Failed() []FieldResult {
	var out []FieldResult
	for _, f := range r.Fields {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Load parses the document at path and merges it onto the namespace.
// Every variable present in the document is deserialized against its
// registered default and overwritten wholesale; variables absent from
// the document keep their current value. Parse and I/O failures abort
// before any field is touched; per-field failures are recorded in the
// report and do not stop the load of other fields.
func (n *Namespace) Load(path string, opts LoadOptions) (*LoadReport, error) {
	tree, err := readDocument(path, opts.Format)
	if err != nil {
		return nil, err
	}

	report := &LoadReport{Fields: make([]FieldResult, 0, len(n.names))}

	for _, name := range n.names {
		v := n.vars[name]
		node, present := tree[name]
		if !present {
			report.Fields = append(report.Fields, FieldResult{Path: name, Outcome: OutcomeDefaultedMissing})
			continue
		}

		value, derr := deserializeValue(node, v.def, []string{name}, opts.Deserializer, opts.Coercion)
		if derr == nil {
			v.value = value
			report.Fields = append(report.Fields, FieldResult{Path: name, Outcome: OutcomeLoaded})
			continue
		}
		if _, mismatch := asTypeMismatch(derr); mismatch {
			report.Fields = append(report.Fields, FieldResult{Path: name, Outcome: OutcomeTypeMismatch, Err: derr})
		} else {
			report.Fields = append(report.Fields, FieldResult{Path: name, Outcome: OutcomeDeserializeFailed, Err: derr})
		}
	}

	for key := range tree {
		if _, registered := n.vars[key]; !registered {
			report.UnknownKeys = append(report.UnknownKeys, key)
		}
	}
	sort.Strings(report.UnknownKeys)

	return report, nil
}

// readDocument reads and parses a persisted document into a tree of
// primitive nodes. An empty format means detection: extension first,
// then content.
func readDocument(path, format string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("failed to read document '%s': %w", path, err)
	}

	if format == "" || format == "auto" {
		format = detectFileFormat(path)
		if format == "" {
			format = detectFormatFromContent(data)
		}
		if format == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
		}
	}

	raw := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, &DocumentParseError{File: path, Format: format, Err: err}
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // preserve number precision
		if err := decoder.Decode(&raw); err != nil {
			return nil, &DocumentParseError{File: path, Format: format, Err: err}
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &DocumentParseError{File: path, Format: format, Err: err}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrUnknownFormat, format)
	}

	return normalizeTable(raw), nil
}

// detectFileFormat determines the document format from the file
// extension.
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts detection by parsing. JSON is
// checked first because it is the strictest; TOML before YAML because
// YAML accepts nearly any plain-text document.
func detectFormatFromContent(data []byte) string {
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}
	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}
	return ""
}
