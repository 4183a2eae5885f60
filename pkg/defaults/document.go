// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defaults

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Document is a parsed defaults file.
type Document struct {
	Path   string
	Values map[string]Value
}

// ParseError reports a defaults file that could not be read or that is not
// a mapping at the top level.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse defaults file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads and parses the defaults file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return Parse(path, data)
}

// Parse decodes data as TOML when name ends in .toml and as YAML otherwise.
// An empty document yields an empty Document.
func Parse(name string, data []byte) (*Document, error) {
	var (
		raw any
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		raw, err = decodeTOML(data)
	} else {
		raw, err = decodeYAML(data)
	}
	if err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}
	doc := &Document{Path: name, Values: make(map[string]Value)}
	if raw == nil {
		return doc, nil
	}
	v := ValueOf(raw)
	m, ok := v.Map()
	if !ok {
		return nil, &ParseError{Path: name, Err: fmt.Errorf("top level is a %s, want a mapping", v.Kind())}
	}
	doc.Values = m
	return doc, nil
}

func decodeYAML(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func decodeTOML(data []byte) (any, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// IsEmpty reports whether the document has no entries.
func (d *Document) IsEmpty() bool {
	return d == nil || len(d.Values) == 0
}
