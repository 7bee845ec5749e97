// Package template loads, validates, and re-encodes the MCP configuration
// template.
//
// The template is a UTF-8 JSON document whose top level must be an object
// with a required "servers" object. Document order of the top-level keys
// and of the server entries is preserved; it drives the processing order
// of the resolver and keeps generated output stable across runs.
package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

var (
	// ErrNotFound indicates the template file does not exist.
	ErrNotFound = errors.New("template not found")
	// ErrMalformed indicates invalid JSON or a missing/invalid servers object.
	ErrMalformed = errors.New("template malformed")
)

// Section is one named server entry, in document order.
type Section struct {
	Name  string
	Value any
}

// Document is a parsed template. Top-level keys other than "servers" are
// carried through to the output untouched.
type Document struct {
	topKeys []string
	extras  map[string]json.RawMessage
	Servers []Section
}

// Load reads and parses the template file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse builds a Document from raw template bytes.
func Parse(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	serversRaw, ok := top["servers"]
	if !ok {
		return nil, fmt.Errorf("%w: missing required \"servers\" object", ErrMalformed)
	}
	var servers map[string]json.RawMessage
	if err := json.Unmarshal(serversRaw, &servers); err != nil {
		return nil, fmt.Errorf("%w: \"servers\" must be an object: %v", ErrMalformed, err)
	}

	topKeys, err := objectKeys(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	serverNames, err := objectKeys(serversRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := &Document{
		topKeys: topKeys,
		extras:  make(map[string]json.RawMessage, len(top)),
		Servers: make([]Section, 0, len(serverNames)),
	}
	for key, raw := range top {
		if key != "servers" {
			doc.extras[key] = raw
		}
	}
	for _, name := range serverNames {
		if !validSegment(name) {
			return nil, fmt.Errorf("%w: server name %q is not a valid path segment", ErrMalformed, name)
		}
		value, err := decodeValue(servers[name])
		if err != nil {
			return nil, fmt.Errorf("%w: server %q: %v", ErrMalformed, name, err)
		}
		doc.Servers = append(doc.Servers, Section{Name: name, Value: value})
	}
	return doc, nil
}

// WithServers returns a copy of the document with its sections replaced.
// The replacement must cover the same server names; layout metadata is
// shared with the receiver.
func (d *Document) WithServers(sections []Section) *Document {
	return &Document{topKeys: d.topKeys, extras: d.extras, Servers: sections}
}

// MarshalIndent renders the document with two-space indentation and a
// trailing newline. Top-level keys and server entries keep document
// order; keys of nested objects are emitted sorted, so output for a
// given input is byte-stable.
func (d *Document) MarshalIndent() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, key := range d.topKeys {
		if i > 0 {
			compact.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", key, err)
		}
		compact.Write(keyJSON)
		compact.WriteByte(':')
		if key == "servers" {
			if err := d.encodeServers(&compact); err != nil {
				return nil, err
			}
			continue
		}
		compact.Write(d.extras[key])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indent output: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func (d *Document) encodeServers(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, section := range d.Servers {
		if i > 0 {
			buf.WriteByte(',')
		}
		nameJSON, err := json.Marshal(section.Name)
		if err != nil {
			return fmt.Errorf("encode server name %q: %w", section.Name, err)
		}
		buf.Write(nameJSON)
		buf.WriteByte(':')
		valueJSON, err := json.Marshal(section.Value)
		if err != nil {
			return fmt.Errorf("encode server %q: %w", section.Name, err)
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return nil
}

// objectKeys returns the keys of a JSON object in document order, with
// duplicates collapsed onto their first occurrence.
func objectKeys(data []byte) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))

	tok, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("value is not a JSON object")
	}

	var keys []string
	seen := make(map[string]struct{})
	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key token %v", keyTok)
		}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		var skip json.RawMessage
		if err := decoder.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// validSegment reports whether name is safe to use as a single path
// segment when locating the credential file for a section.
func validSegment(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return !strings.ContainsRune(name, 0)
}
