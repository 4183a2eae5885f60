// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
)

// Decorator contributes to a parser before it parses the command line.
type Decorator interface {
	Decorate(p ArgParser) error
}

// EnvDeclarer is implemented by decorators that read environment variables.
type EnvDeclarer interface {
	EnvVars() []EnvVar
}

// Host runs every decorator, in order, against each parser it builds.
type Host struct {
	Decorators []Decorator
	Env        EnvRegistry
}

// NewHost fails when two decorators declare the same environment variable
// differently.
func NewHost(decorators ...Decorator) (*Host, error) {
	h := &Host{Decorators: decorators}
	for _, d := range decorators {
		if ed, ok := d.(EnvDeclarer); ok {
			if err := h.Env.Register(ed.EnvVars()...); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

// Decorate stops at the first decorator error. A nil Host does nothing.
func (h *Host) Decorate(p ArgParser) error {
	if h == nil {
		return nil
	}
	for _, d := range h.Decorators {
		if err := d.Decorate(p); err != nil {
			return err
		}
	}
	return nil
}

type EnvVar struct {
	Name        string
	Description string
}

// EnvRegistry documents the environment variables the host reads. It has no
// effect on how they are read.
type EnvRegistry struct {
	vars map[string]EnvVar
}

// Register adds vars. Registering a name again with the same description is
// a no-op; a different description is an error and nothing is added.
func (r *EnvRegistry) Register(vars ...EnvVar) error {
	for _, v := range vars {
		if prev, ok := r.vars[v.Name]; ok && prev != v {
			return fmt.Errorf("environment variable %s registered twice with different descriptions", v.Name)
		}
	}
	if r.vars == nil {
		r.vars = make(map[string]EnvVar)
	}
	for _, v := range vars {
		r.vars[v.Name] = v
	}
	return nil
}

func (r *EnvRegistry) Vars() []EnvVar {
	out := make([]EnvVar, 0, len(r.vars))
	for _, v := range r.vars {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b EnvVar) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Help renders the registered variables for --help output.
func (r *EnvRegistry) Help() string {
	vars := r.Vars()
	if len(vars) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Environment variables:\n")
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, v := range vars {
		fmt.Fprintf(w, "  %s\t%s\n", v.Name, v.Description)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
