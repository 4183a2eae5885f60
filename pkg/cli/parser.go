// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/shayne/yargs"
)

// ArgParser is the view of a command parser that decorators get to see before
// the command line is parsed.
type ArgParser interface {
	// Path is the command path the parser belongs to, empty for the root.
	Path() []string
	// HasDestination reports whether name is a long flag of the parser.
	HasDestination(name string) bool
	// SetDefault overrides the default of the flag name. Unknown names are
	// ignored. The last value set wins.
	SetDefault(name, value string) error
}

// FlagParser parses the flags described by T with yargs, falling back to the
// defaults set through SetDefault for flags missing from the command line.
type FlagParser[T any] struct {
	path     []string
	specs    map[string]FlagSpec
	long     map[string]string
	defaults map[string]string
}

type Parsed[T any] struct {
	Flags T
	Args  []string
}

var _ ArgParser = (*FlagParser[struct{}])(nil)

func NewFlagParser[T any](path ...string) *FlagParser[T] {
	var zero T
	p := &FlagParser[T]{
		path:     path,
		specs:    make(map[string]FlagSpec),
		long:     make(map[string]string),
		defaults: make(map[string]string),
	}
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return p
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Tag.Get("flag")
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		p.long[name] = name
		if short := field.Tag.Get("short"); short != "" {
			p.long[short] = name
		}
	}
	for flag, spec := range flagSpecsFromStruct(zero) {
		p.specs[strings.TrimLeft(flag, "-")] = spec
	}
	return p
}

func (p *FlagParser[T]) Path() []string {
	return slices.Clone(p.path)
}

// Destinations returns the sorted long flag names of the parser.
func (p *FlagParser[T]) Destinations() []string {
	var names []string
	for alias, name := range p.long {
		if alias == name {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func (p *FlagParser[T]) HasDestination(name string) bool {
	long, ok := p.long[name]
	return ok && long == name
}

func (p *FlagParser[T]) SetDefault(name, value string) error {
	if !p.HasDestination(name) {
		return nil
	}
	// Let yargs apply its own conversion so bad values fail here rather than
	// when the user runs the command.
	if _, err := yargs.ParseFlags[T]([]string{"--" + name + "=" + value}); err != nil {
		return fmt.Errorf("invalid default for --%s: %w", name, err)
	}
	p.defaults[name] = value
	return nil
}

// Defaults returns a copy of the defaults set on the parser.
func (p *FlagParser[T]) Defaults() map[string]string {
	out := make(map[string]string, len(p.defaults))
	for k, v := range p.defaults {
		out[k] = v
	}
	return out
}

// Parse parses args, which must only contain flags of T and positional
// arguments. Everything after "--" is appended to the positional arguments.
func (p *FlagParser[T]) Parse(args []string) (Parsed[T], error) {
	parseArgs, extraArgs := splitArgsAtDoubleDash(args)
	result, err := yargs.ParseFlags[T](p.withDefaults(parseArgs))
	if err != nil {
		return Parsed[T]{}, err
	}
	argsOut := append([]string{}, result.Args...)
	if len(result.RemainingArgs) > 0 {
		argsOut = append(argsOut, result.RemainingArgs...)
	}
	argsOut = append(argsOut, extraArgs...)
	return Parsed[T]{Flags: result.Flags, Args: argsOut}, nil
}

// ParseKnown parses the flags of T and returns every other argument
// untouched.
func (p *FlagParser[T]) ParseKnown(args []string) (T, []string, error) {
	result, err := yargs.ParseKnownFlags[T](p.withDefaults(args), yargs.KnownFlagsOptions{})
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return result.Flags, result.RemainingArgs, nil
}

// withDefaults prepends the defaults of flags not given in args.
func (p *FlagParser[T]) withDefaults(args []string) []string {
	if len(p.defaults) == 0 {
		return args
	}
	given := p.givenFlags(args)
	names := make([]string, 0, len(p.defaults))
	for name := range p.defaults {
		if !given[name] {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	out := make([]string, 0, len(names)+len(args))
	for _, name := range names {
		out = append(out, "--"+name+"="+p.defaults[name])
	}
	return append(out, args...)
}

// givenFlags returns the long names of the flags present in args before "--".
func (p *FlagParser[T]) givenFlags(args []string) map[string]bool {
	given := make(map[string]bool)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" || isNumber(arg) {
			continue
		}
		name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		long, ok := p.long[name]
		if !ok {
			continue
		}
		given[long] = true
		if hasValue || !p.specs[name].ConsumesValue || i+1 >= len(args) {
			continue
		}
		if next := args[i+1]; !strings.HasPrefix(next, "-") || isNumber(next) {
			i++
		}
	}
	return given
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
