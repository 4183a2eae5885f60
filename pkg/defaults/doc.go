// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package defaults supplies default values for command line flags from a
// YAML file, so that flags do not have to be repeated on every invocation.
//
// # File lookup
//
// The first of these that names a readable file is used:
//   - the --defaults-file flag (an error if the file is missing)
//   - $ARGDEFAULTS_FILE
//   - defaults.yaml in the working directory
//   - defaults.yaml in $ARGDEFAULTS_HOME, or $HOME/.argdefaults
//
// A file ending in .toml is read as TOML instead.
//
// # File format
//
// The top level must be a mapping. Keys naming a command of the host hold
// that command's defaults; every other key is a default for all commands:
//
//	build:
//	  symlink-install: true
//	  cmake-args: [-DCMAKE_BUILD_TYPE=Release]
//	log-level: info
//
// Command blocks may nest for grouped commands ("defaults: {show: {...}}").
// When both levels set the same key the command's value wins; a null value
// drops the inherited one. Keys that match no flag of the parser are
// ignored.
//
// # Wiring
//
//	flags, args, err := defaults.ParseFlags(os.Args[1:])
//	dec := defaults.NewDecorator(flags, cli.Commands())
//	host, err := cli.NewHost(dec)
//	build, rest, err := cli.ParseBuild(host, args)
package defaults
