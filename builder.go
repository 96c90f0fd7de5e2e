package confdoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Generate serializes every registered variable at its current value
// and writes the resulting TOML document to path. Generation is
// all-or-nothing: any scan or serialization failure leaves the
// destination untouched.
//
// Preceding comments are written as standalone '#' lines immediately
// above their entry. The inline comment lands on the entry's first
// rendered line: the key line for scalars, the table header for
// composite values.
//
// An existing file is never replaced silently; set opts.Overwrite or
// Generate fails with ErrDocumentExists. The write itself is atomic
// (temp file and rename).
func (n *Namespace) Generate(path string, opts GenerateOptions) error {
	data, err := n.Render(opts)
	if err != nil {
		return err
	}

	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrDocumentExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to check document '%s': %w", path, err)
		}
	}

	return atomicWriteFile(path, data)
}

// Render produces the document text without touching disk.
func (n *Namespace) Render(opts GenerateOptions) ([]byte, error) {
	order := n.names
	var docs map[string]DocAnnotation

	if opts.Source != "" {
		vars, err := DiscoverVariables(opts.Source)
		if err != nil {
			return nil, err
		}
		docs = make(map[string]DocAnnotation, len(vars))
		scanned := make([]string, 0, len(n.names))
		seen := make(map[string]bool, len(vars))
		for _, v := range vars {
			// scanner false positives, and names the caller never
			// registered, are dropped here
			if _, registered := n.vars[v.Name]; !registered {
				continue
			}
			docs[v.Name] = v.Doc
			scanned = append(scanned, v.Name)
			seen[v.Name] = true
		}
		// registered variables missing from the source keep
		// registration order after the scanned ones
		for _, name := range n.names {
			if !seen[name] {
				scanned = append(scanned, name)
			}
		}
		order = scanned
	}

	var buf bytes.Buffer
	for _, name := range order {
		v := n.vars[name]
		node, err := serializeValue(v.value, []string{name}, opts.Serializer)
		if err != nil {
			return nil, err
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}

		doc := docs[name]
		if opts.RetainComments {
			for _, c := range doc.Preceding {
				buf.WriteString("# ")
				buf.WriteString(c)
				buf.WriteByte('\n')
			}
		}

		entry, err := encodeEntry(name, node)
		if err != nil {
			return nil, fmt.Errorf("failed to encode variable %q: %w", name, err)
		}
		if opts.RetainComments && doc.Inline != "" {
			entry = attachInline(entry, doc.Inline)
		}
		buf.Write(entry)
	}

	return buf.Bytes(), nil
}

// encodeEntry renders a single top-level key as TOML.
func encodeEntry(name string, node any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(map[string]any{name: node}); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}

// attachInline appends an inline comment to the entry's first rendered
// line.
func attachInline(entry []byte, comment string) []byte {
	idx := bytes.IndexByte(entry, '\n')
	if idx < 0 {
		idx = len(entry)
	}
	out := make([]byte, 0, len(entry)+len(comment)+3)
	out = append(out, entry[:idx]...)
	out = append(out, " # "...)
	out = append(out, comment...)
	out = append(out, entry[idx:]...)
	return out
}

// atomicWriteFile writes data to path via a temp file and rename,
// creating missing directories.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // no-op after a successful rename

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file to '%s': %w", path, err)
	}
	return nil
}
