// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defaults

import (
	"slices"

	"github.com/yeetrun/argdefaults/pkg/cli"
)

// Resolver splits a Document into global entries and per-command override
// blocks, using the host's command names to tell them apart.
type Resolver struct {
	root    *scope
	skipped []string
}

type scope struct {
	values   map[string]Value
	commands map[string]*scope
}

func NewResolver(doc *Document, commands cli.CommandTree) *Resolver {
	r := &Resolver{}
	var values map[string]Value
	if doc != nil {
		values = doc.Values
	}
	r.root = r.split(values, commands, "")
	slices.Sort(r.skipped)
	return r
}

func (r *Resolver) split(values map[string]Value, commands cli.CommandTree, prefix string) *scope {
	s := &scope{
		values:   make(map[string]Value),
		commands: make(map[string]*scope),
	}
	for k, v := range values {
		sub, isCommand := commands[k]
		if !isCommand {
			s.values[k] = v
			continue
		}
		if v.IsNull() {
			continue
		}
		m, ok := v.Map()
		if !ok {
			r.skipped = append(r.skipped, prefix+k)
			continue
		}
		s.commands[k] = r.split(m, sub, prefix+k+".")
	}
	return s
}

// Skipped returns the dotted names of command entries that were dropped
// because they are not mappings.
func (r *Resolver) Skipped() []string {
	return slices.Clone(r.skipped)
}

// Effective returns the defaults for the command at path, an empty path
// being the root invocation. Entries of more specific commands replace those
// of their parents. The result is a new map on every call.
func (r *Resolver) Effective(path []string) map[string]Value {
	out := make(map[string]Value)
	s := r.root
	for {
		for k, v := range s.values {
			out[k] = v
		}
		if len(path) == 0 {
			return out
		}
		next, ok := s.commands[path[0]]
		if !ok {
			return out
		}
		s, path = next, path[1:]
	}
}
