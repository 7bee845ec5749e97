// Package credentials loads per-server credential files.
//
// Each server section in the template owns exactly one credential source,
// a JSON object at <dir>/<server-name>.json. Files are read once per run
// and never mutated. Failure modes are distinct error kinds so the
// resolver can decide how each one affects the run.
package credentials

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrMissing indicates the credential file does not exist.
	ErrMissing = errors.New("credential file missing")
	// ErrMalformed indicates the file is not valid JSON or not an object.
	ErrMalformed = errors.New("credential file malformed")
	// ErrPermission indicates the file exists but cannot be read.
	ErrPermission = errors.New("credential file permission denied")
)

// Dir is a credentials directory. It implements the loader contract the
// resolver consumes.
type Dir string

// Load reads the credential file for the named server and returns its
// key/value entries. Nested objects are descended into and their scalar
// entries surfaced by key, with outer keys winning on collision; arrays
// are taken as opaque values. Numbers are kept as json.Number so their
// text survives substitution unchanged.
func (d Dir) Load(server string) (map[string]any, error) {
	path := filepath.Join(string(d), server+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %s: %v", ErrPermission, path, err)
		default:
			return nil, fmt.Errorf("read credential file %s: %w", path, err)
		}
	}

	object, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	values := make(map[string]any, len(object))
	condense(object, values)
	return values, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}

	object, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("top-level value is not an object")
	}
	return object, nil
}

// condense flattens nested objects into a single key space. Entries at
// an outer level shadow same-named entries discovered deeper.
func condense(object map[string]any, into map[string]any) {
	var children []map[string]any
	for key, value := range object {
		if child, ok := value.(map[string]any); ok {
			children = append(children, child)
			continue
		}
		if _, exists := into[key]; !exists {
			into[key] = value
		}
	}
	for _, child := range children {
		condense(child, into)
	}
}
