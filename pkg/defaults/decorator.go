// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defaults

import (
	"errors"
	"log"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/shayne/yargs"
	"github.com/yeetrun/argdefaults/pkg/cli"
)

// Flags are the command line flags owned by this package. They are accepted
// anywhere on the command line.
type Flags struct {
	DefaultsFile string `flag:"defaults-file" help:"YAML file with default argument values (ARGDEFAULTS_FILE)"`
}

// ErrEmptyDefaultsFile is returned by ParseFlags when --defaults-file is
// given without a path.
var ErrEmptyDefaultsFile = errors.New("--defaults-file requires a path")

// ParseFlags removes the package's flags from args.
func ParseFlags(args []string) (Flags, []string, error) {
	result, err := yargs.ParseKnownFlags[Flags](args, yargs.KnownFlagsOptions{})
	if err != nil {
		return Flags{}, nil, err
	}
	if result.Flags.DefaultsFile == "" && hasFlag(args, "defaults-file") {
		return Flags{}, nil, ErrEmptyDefaultsFile
	}
	return result.Flags, result.RemainingArgs, nil
}

// hasFlag reports whether --name or -name appears in args before "--".
func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		flag, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if flag == name {
			return true
		}
	}
	return false
}

// EnvVars documents the environment variables read by Locator.
func EnvVars() []cli.EnvVar {
	return []cli.EnvVar{
		{Name: FileEnvVar, Description: "Path to the YAML file with default argument values (default: ./" + FileName + ", then $" + HomeEnvVar + "/" + FileName + ")"},
		{Name: HomeEnvVar, Description: "Directory searched for " + FileName + " (default: $HOME/" + homeDirName + ")"},
	}
}

// Decorator sets parser defaults from the defaults file. The file is located
// and parsed once, on first use, and shared by every parser it decorates.
type Decorator struct {
	Locator  Locator
	Commands cli.CommandTree
	// Logger defaults to log.Default().
	Logger *log.Logger
	// Verbose enables debug lines.
	Verbose bool

	once     sync.Once
	err      error
	path     string
	resolver *Resolver
}

var _ cli.Decorator = (*Decorator)(nil)

func NewDecorator(flags Flags, commands cli.CommandTree) *Decorator {
	return &Decorator{
		Locator:  Locator{Explicit: flags.DefaultsFile},
		Commands: commands,
	}
}

// Load locates and parses the defaults file if that has not happened yet. It
// only fails when an explicitly requested file cannot be used; a file that
// does not parse is reported and ignored.
func (d *Decorator) Load() error {
	d.once.Do(d.load)
	return d.err
}

func (d *Decorator) load() {
	loc := d.Locator
	if loc.Logf == nil {
		loc.Logf = d.debugf
	}
	path, err := loc.Locate()
	if err != nil {
		d.err = err
		return
	}
	if path == "" {
		d.debugf("no defaults file found")
		return
	}
	doc, err := Load(path)
	if err != nil {
		d.logger().Printf("warning: ignoring defaults: %v", err)
		return
	}
	if doc.IsEmpty() {
		d.debugf("defaults file %s is empty", path)
	}
	d.debugf("using defaults from %s", path)
	d.path = path
	d.resolver = NewResolver(doc, d.Commands)
	for _, name := range d.resolver.Skipped() {
		d.logger().Printf("warning: defaults entry %q should be a mapping, ignoring it", name)
	}
}

// Path returns the defaults file in use, or "" when there is none.
func (d *Decorator) Path() (string, error) {
	if err := d.Load(); err != nil {
		return "", err
	}
	return d.path, nil
}

// Effective returns the defaults for the command at path.
func (d *Decorator) Effective(path []string) (map[string]Value, error) {
	if err := d.Load(); err != nil {
		return nil, err
	}
	if d.resolver == nil {
		return map[string]Value{}, nil
	}
	return d.resolver.Effective(path), nil
}

// Decorate applies the effective defaults of the parser's command. Entries
// the parser does not know, null entries and values it rejects are skipped.
func (d *Decorator) Decorate(p cli.ArgParser) error {
	if err := d.Load(); err != nil {
		return err
	}
	if d.resolver == nil {
		return nil
	}
	path := p.Path()
	cmd := commandName(path)
	eff := d.resolver.Effective(path)
	for _, name := range slices.Sorted(maps.Keys(eff)) {
		v := eff[name]
		if v.IsNull() {
			continue
		}
		if !p.HasDestination(name) {
			d.debugf("%s: no flag --%s, ignoring default", cmd, name)
			continue
		}
		s, err := v.FlagString()
		if err != nil {
			d.logger().Printf("warning: %s: skipping default for --%s: %v", cmd, name, err)
			continue
		}
		if err := p.SetDefault(name, s); err != nil {
			d.logger().Printf("warning: %s: skipping default for --%s: %v", cmd, name, err)
			continue
		}
		d.debugf("%s: default --%s=%s", cmd, name, s)
	}
	return nil
}

func (d *Decorator) EnvVars() []cli.EnvVar {
	return EnvVars()
}

func (d *Decorator) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

func (d *Decorator) debugf(format string, args ...any) {
	if d.Verbose {
		d.logger().Printf("debug: "+format, args...)
	}
}

func commandName(path []string) string {
	if len(path) == 0 {
		return cli.CommandName
	}
	return cli.CommandName + " " + strings.Join(path, " ")
}
