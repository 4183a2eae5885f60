// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"reflect"
	"slices"
	"strings"

	"github.com/shayne/yargs"
)

const (
	CommandName = "bld"

	CommandBuild    = "build"
	CommandTest     = "test"
	CommandList     = "list"
	GroupDefaults   = "defaults"
	CommandShow     = "show"
	CommandLocation = "path"
)

type FlagSpec struct {
	ConsumesValue bool
}

type CommandInfo struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Hidden      bool
	Aliases     []string
	// ArgsSchema optionally defines positional args via `pos` tags.
	ArgsSchema any
}

type GroupInfo struct {
	Name        string
	Description string
	Commands    map[string]CommandInfo
	Hidden      bool
}

// CommandTree holds the known command names of the host. Leaf commands map to
// a nil tree; groups map to the tree of their commands.
type CommandTree map[string]CommandTree

type GlobalFlags struct {
	LogLevel string
	Verbose  bool
}

type BuildFlags struct {
	SymlinkInstall  bool
	CMakeArgs       []string
	ParallelWorkers int
	BuildBase       string
	PackagesSelect  []string
}

type TestFlags struct {
	RetestUntilFail int
	CTestArgs       []string
	ParallelWorkers int
	PackagesSelect  []string
}

type ListFlags struct {
	NamesOnly      bool
	PackagesSelect []string
}

type globalFlagsParsed struct {
	LogLevel string `flag:"log-level" default:"warning" help:"Log level (debug|info|warning|error)"`
	Verbose  bool   `flag:"verbose" short:"v" help:"Print debug output"`
}

type buildFlagsParsed struct {
	SymlinkInstall  bool     `flag:"symlink-install" help:"Symlink files instead of copying them"`
	CMakeArgs       []string `flag:"cmake-args" help:"Extra arguments passed to CMake"`
	ParallelWorkers int      `flag:"parallel-workers" short:"j" default:"4" help:"Maximum number of packages processed in parallel"`
	BuildBase       string   `flag:"build-base" default:"build" help:"Base path for build directories"`
	PackagesSelect  []string `flag:"packages-select" help:"Only process the listed packages"`
}

type testFlagsParsed struct {
	RetestUntilFail int      `flag:"retest-until-fail" help:"Rerun failing tests up to N times"`
	CTestArgs       []string `flag:"ctest-args" help:"Extra arguments passed to CTest"`
	ParallelWorkers int      `flag:"parallel-workers" short:"j" default:"4" help:"Maximum number of packages processed in parallel"`
	PackagesSelect  []string `flag:"packages-select" help:"Only process the listed packages"`
}

type listFlagsParsed struct {
	NamesOnly      bool     `flag:"names-only" short:"n" help:"Only print package names"`
	PackagesSelect []string `flag:"packages-select" help:"Only process the listed packages"`
}

var commandInfos = map[string]CommandInfo{
	CommandBuild: {Name: CommandBuild, Description: "Build a set of packages", Usage: "[--symlink-install] [--cmake-args=...] [-j N]", Examples: []string{
		"bld build --symlink-install",
		"bld build --cmake-args=-DCMAKE_BUILD_TYPE=Release -j 8",
		"bld --defaults-file ./ci-defaults.yaml build",
	}},
	CommandTest: {Name: CommandTest, Description: "Test a set of packages", Usage: "[--retest-until-fail=N] [--ctest-args=...]", Examples: []string{
		"bld test --retest-until-fail=2",
	}},
	CommandList: {Name: CommandList, Description: "List packages", Aliases: []string{"ls"}},
}

var groupInfos = map[string]GroupInfo{
	GroupDefaults: {
		Name:        GroupDefaults,
		Description: "Inspect the argument defaults file",
		Commands: map[string]CommandInfo{
			CommandShow:     {Name: CommandShow, Description: "Print the defaults applied to a command", Usage: "defaults show [COMMAND...]", Examples: []string{"bld defaults show build"}},
			CommandLocation: {Name: CommandLocation, Description: "Print the path of the defaults file in use", Usage: "defaults path"},
		},
	},
}

func CommandNames() []string {
	names := make([]string, 0, len(commandInfos))
	for name := range commandInfos {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func CommandInfos() map[string]CommandInfo {
	return commandInfos
}

func GroupInfos() map[string]GroupInfo {
	return groupInfos
}

// Commands returns the tree of every command and group name the host knows.
func Commands() CommandTree {
	tree := make(CommandTree, len(commandInfos)+len(groupInfos))
	for name := range commandInfos {
		tree[name] = nil
	}
	for name, info := range groupInfos {
		sub := make(CommandTree, len(info.Commands))
		for cmd := range info.Commands {
			sub[cmd] = nil
		}
		tree[name] = sub
	}
	return tree
}

// HelpConfig builds the help metadata for the host. envHelp is appended to the
// root command description when non-empty.
func HelpConfig(envHelp string) yargs.HelpConfig {
	subcommands := make(map[string]yargs.SubCommandInfo, len(commandInfos))
	for name, info := range commandInfos {
		subcommands[name] = toSubCommandInfo(name, info)
	}
	groups := make(map[string]yargs.GroupInfo, len(groupInfos))
	for name, info := range groupInfos {
		cmds := make(map[string]yargs.SubCommandInfo, len(info.Commands))
		for cmdName, cmd := range info.Commands {
			cmds[cmdName] = toSubCommandInfo(cmdName, cmd)
		}
		groups[name] = yargs.GroupInfo{
			Name:        info.Name,
			Description: info.Description,
			Commands:    cmds,
			Hidden:      info.Hidden,
		}
	}
	desc := "Build orchestration with argument defaults"
	if envHelp != "" {
		desc += "\n\n" + envHelp
	}
	return yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        CommandName,
			Description: desc,
		},
		SubCommands: subcommands,
		Groups:      groups,
	}
}

func toSubCommandInfo(name string, info CommandInfo) yargs.SubCommandInfo {
	return yargs.SubCommandInfo{
		Name:            name,
		Description:     info.Description,
		Usage:           info.Usage,
		Examples:        info.Examples,
		Hidden:          info.Hidden,
		Aliases:         info.Aliases,
		LLMInstructions: "",
	}
}

// ParseGlobal parses the root-level flags, leaving everything it does not
// know in the returned args. The parser is decorated for the command named
// in args, so a command can override a global flag's default.
func ParseGlobal(h *Host, args []string) (GlobalFlags, []string, error) {
	p := NewFlagParser[globalFlagsParsed](SelectedCommand(args)...)
	if err := h.Decorate(p); err != nil {
		return GlobalFlags{}, nil, err
	}
	parsed, remaining, err := p.ParseKnown(args)
	if err != nil {
		return GlobalFlags{}, nil, err
	}
	return GlobalFlags{LogLevel: parsed.LogLevel, Verbose: parsed.Verbose}, remaining, nil
}

func ParseBuild(h *Host, args []string) (BuildFlags, []string, error) {
	p := NewFlagParser[buildFlagsParsed](CommandBuild)
	if err := h.Decorate(p); err != nil {
		return BuildFlags{}, nil, err
	}
	parsed, err := p.Parse(trimCommand(args, CommandBuild))
	if err != nil {
		return BuildFlags{}, nil, err
	}
	flags := BuildFlags{
		SymlinkInstall:  parsed.Flags.SymlinkInstall,
		CMakeArgs:       parsed.Flags.CMakeArgs,
		ParallelWorkers: parsed.Flags.ParallelWorkers,
		BuildBase:       parsed.Flags.BuildBase,
		PackagesSelect:  parsed.Flags.PackagesSelect,
	}
	return flags, parsed.Args, nil
}

func ParseTest(h *Host, args []string) (TestFlags, []string, error) {
	p := NewFlagParser[testFlagsParsed](CommandTest)
	if err := h.Decorate(p); err != nil {
		return TestFlags{}, nil, err
	}
	parsed, err := p.Parse(trimCommand(args, CommandTest))
	if err != nil {
		return TestFlags{}, nil, err
	}
	flags := TestFlags{
		RetestUntilFail: parsed.Flags.RetestUntilFail,
		CTestArgs:       parsed.Flags.CTestArgs,
		ParallelWorkers: parsed.Flags.ParallelWorkers,
		PackagesSelect:  parsed.Flags.PackagesSelect,
	}
	return flags, parsed.Args, nil
}

func ParseList(h *Host, args []string) (ListFlags, []string, error) {
	p := NewFlagParser[listFlagsParsed](CommandList)
	if err := h.Decorate(p); err != nil {
		return ListFlags{}, nil, err
	}
	parsed, err := p.Parse(trimCommand(args, CommandList, "ls"))
	if err != nil {
		return ListFlags{}, nil, err
	}
	flags := ListFlags{
		NamesOnly:      parsed.Flags.NamesOnly,
		PackagesSelect: parsed.Flags.PackagesSelect,
	}
	return flags, parsed.Args, nil
}

// SelectedCommand returns the path of the known command args select, e.g.
// ["build"] or ["defaults", "show"]. Values of global flags are skipped. It
// returns nil when args name no known command.
func SelectedCommand(args []string) []string {
	globals := flagSpecsFromStruct(globalFlagsParsed{})
	tree := Commands()
	var path []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if strings.HasPrefix(arg, "-") {
			if strings.Contains(arg, "=") {
				continue
			}
			if globals[arg].ConsumesValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		if len(path) == 0 {
			arg = resolveAlias(arg)
		}
		sub, ok := tree[arg]
		if !ok {
			break
		}
		path = append(path, arg)
		if sub == nil {
			break
		}
		tree = sub
	}
	if len(path) == 0 {
		return nil
	}
	return path
}

func resolveAlias(name string) string {
	for cmd, info := range commandInfos {
		if slices.Contains(info.Aliases, name) {
			return cmd
		}
	}
	return name
}

// trimCommand drops the command token the router leaves in front of the args.
func trimCommand(args []string, names ...string) []string {
	for i, arg := range args {
		if arg == "--" {
			return args
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if slices.Contains(names, arg) {
			out := make([]string, 0, len(args)-1)
			out = append(out, args[:i]...)
			return append(out, args[i+1:]...)
		}
		return args
	}
	return args
}

func splitArgsAtDoubleDash(args []string) ([]string, []string) {
	for i, arg := range args {
		if arg == "--" {
			if i+1 < len(args) {
				return args[:i], args[i+1:]
			}
			return args[:i], nil
		}
	}
	return args, nil
}

func flagSpecsFromStruct(v any) map[string]FlagSpec {
	specs := make(map[string]FlagSpec)
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return specs
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
		spec := FlagSpec{ConsumesValue: consumesValue(field.Type)}
		specs["--"+name] = spec
		if short := field.Tag.Get("short"); short != "" {
			specs["-"+short] = spec
		}
	}
	return specs
}

func consumesValue(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return false
	default:
		return true
	}
}
