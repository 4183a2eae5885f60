// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bld is a small build orchestration front end whose flags can be
// given defaults in a defaults.yaml file.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/shayne/yargs"
	"github.com/yeetrun/argdefaults/pkg/cli"
	"github.com/yeetrun/argdefaults/pkg/defaults"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var isTerminalFn = term.IsTerminal

var logLevels = []string{"debug", "info", "warning", "error"}

// helpFlags lists the flags accepted in front of any command. It is only used
// to render help.
type helpFlags struct {
	DefaultsFile string `flag:"defaults-file" help:"YAML file with default argument values (ARGDEFAULTS_FILE)"`
	LogLevel     string `flag:"log-level" help:"Log level (debug|info|warning|error)"`
	Verbose      bool   `flag:"verbose" short:"v" help:"Print debug output"`
}

type app struct {
	host   *cli.Host
	dec    *defaults.Decorator
	global cli.GlobalFlags
	stdout io.Writer
	stderr io.Writer
}

func main() {
	color.NoColor = !isTerminalFn(int(os.Stderr.Fd()))
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	dflags, args, err := defaults.ParseFlags(args)
	if err != nil {
		printCLIError(stderr, err)
		return 1
	}
	dec := defaults.NewDecorator(dflags, cli.Commands())
	dec.Logger = log.New(stderr, color.New(color.FgYellow).Sprint(cli.CommandName+": "), 0)
	dec.Verbose = verboseRequested(args)

	host, err := cli.NewHost(dec)
	if err != nil {
		printCLIError(stderr, err)
		return 1
	}
	a := &app{
		host:   host,
		dec:    dec,
		stdout: stdout,
		stderr: stderr,
	}
	global, args, err := cli.ParseGlobal(a.host, args)
	if err != nil {
		printCLIError(stderr, err)
		return 1
	}
	if !slices.Contains(logLevels, global.LogLevel) {
		printCLIError(stderr, fmt.Errorf("invalid --log-level %q (want one of %s)", global.LogLevel, strings.Join(logLevels, ", ")))
		return 1
	}
	a.global = global
	dec.Verbose = dec.Verbose || global.Verbose || global.LogLevel == "debug"

	handlers := map[string]yargs.SubcommandHandler{
		cli.CommandBuild: a.handleBuild,
		cli.CommandTest:  a.handleTest,
		cli.CommandList:  a.handleList,
	}
	groups := map[string]yargs.Group{
		cli.GroupDefaults: {
			Description: cli.GroupInfos()[cli.GroupDefaults].Description,
			Commands: map[string]yargs.SubcommandHandler{
				cli.CommandShow:     a.handleDefaultsShow,
				cli.CommandLocation: a.handleDefaultsPath,
			},
		},
	}
	helpConfig := cli.HelpConfig(a.host.Env.Help())
	if err := yargs.RunSubcommandsWithGroups(ctx, args, helpConfig, helpFlags{}, handlers, groups); err != nil {
		printCLIError(stderr, err)
		return 1
	}
	return 0
}

func verboseRequested(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "--verbose", "-v", "--log-level=debug":
			return true
		}
	}
	return false
}

func printCLIError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprint(w, color.RedString("Error: "))
	fmt.Fprintln(w, err)
}

func (a *app) handleBuild(_ context.Context, args []string) error {
	flags, pkgs, err := cli.ParseBuild(a.host, args)
	if err != nil {
		return err
	}
	return a.printPlan(cli.CommandBuild, pkgs, [][2]string{
		{"symlink-install", fmt.Sprint(flags.SymlinkInstall)},
		{"cmake-args", strings.Join(flags.CMakeArgs, ",")},
		{"parallel-workers", fmt.Sprint(flags.ParallelWorkers)},
		{"build-base", flags.BuildBase},
		{"packages-select", strings.Join(flags.PackagesSelect, ",")},
	})
}

func (a *app) handleTest(_ context.Context, args []string) error {
	flags, pkgs, err := cli.ParseTest(a.host, args)
	if err != nil {
		return err
	}
	return a.printPlan(cli.CommandTest, pkgs, [][2]string{
		{"retest-until-fail", fmt.Sprint(flags.RetestUntilFail)},
		{"ctest-args", strings.Join(flags.CTestArgs, ",")},
		{"parallel-workers", fmt.Sprint(flags.ParallelWorkers)},
		{"packages-select", strings.Join(flags.PackagesSelect, ",")},
	})
}

func (a *app) handleList(_ context.Context, args []string) error {
	flags, pkgs, err := cli.ParseList(a.host, args)
	if err != nil {
		return err
	}
	return a.printPlan(cli.CommandList, pkgs, [][2]string{
		{"names-only", fmt.Sprint(flags.NamesOnly)},
		{"packages-select", strings.Join(flags.PackagesSelect, ",")},
	})
}

// printPlan prints what the command would run with, one key=value per line.
func (a *app) printPlan(cmd string, pkgs []string, settings [][2]string) error {
	fmt.Fprintf(a.stdout, "command=%s\n", cmd)
	fmt.Fprintf(a.stdout, "log-level=%s\n", a.global.LogLevel)
	for _, kv := range settings {
		fmt.Fprintf(a.stdout, "%s=%s\n", kv[0], kv[1])
	}
	fmt.Fprintf(a.stdout, "packages=%s\n", strings.Join(pkgs, ","))
	return nil
}

func (a *app) handleDefaultsShow(_ context.Context, args []string) error {
	if len(args) > 0 && args[0] == cli.CommandShow {
		args = args[1:]
	}
	path, err := commandPath(args)
	if err != nil {
		return err
	}
	eff, err := a.dec.Effective(path)
	if err != nil {
		return err
	}
	out := make(map[string]any, len(eff))
	for k, v := range eff {
		out[k] = v.Interface()
	}
	b, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to render defaults: %w", err)
	}
	_, err = a.stdout.Write(b)
	return err
}

func (a *app) handleDefaultsPath(_ context.Context, _ []string) error {
	path, err := a.dec.Path()
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(a.stderr, "No defaults file found")
		return nil
	}
	fmt.Fprintln(a.stdout, path)
	return nil
}

// commandPath checks that args name a known command, e.g. "build" or
// "defaults show". No args is the root.
func commandPath(args []string) ([]string, error) {
	tree := cli.Commands()
	for i, name := range args {
		sub, ok := tree[name]
		if !ok {
			return nil, fmt.Errorf("unknown command %q", strings.Join(args[:i+1], " "))
		}
		tree = sub
	}
	return args, nil
}
