// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defaults

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FileEnvVar names the environment variable holding the defaults file path.
	FileEnvVar = "ARGDEFAULTS_FILE"
	// HomeEnvVar overrides the config home searched after the working directory.
	HomeEnvVar = "ARGDEFAULTS_HOME"
	// FileName is the conventional name of the defaults file.
	FileName = "defaults.yaml"

	homeDirName = ".argdefaults"
)

// ErrExplicitNotFound is matched by the error returned when the file passed
// with --defaults-file cannot be used.
var ErrExplicitNotFound = errors.New("defaults file not found")

type LocateError struct {
	Path string
	Err  error
}

func (e *LocateError) Error() string {
	return fmt.Sprintf("defaults file %s: %v", e.Path, e.Err)
}

func (e *LocateError) Unwrap() []error {
	return []error{ErrExplicitNotFound, e.Err}
}

// Locator finds the defaults file for one invocation. The first match wins:
// Explicit, $ARGDEFAULTS_FILE, FileName in Dir, FileName in the config home.
type Locator struct {
	// Explicit is the value of --defaults-file.
	Explicit string
	// Dir defaults to the working directory.
	Dir string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Logf receives a line for every candidate that was skipped.
	Logf func(format string, args ...any)
}

// Locate returns the path to read, or "" when there is none. Only a bad
// Explicit path is an error.
func (l Locator) Locate() (string, error) {
	if l.Explicit != "" {
		if err := usableFile(l.Explicit); err != nil {
			return "", &LocateError{Path: l.Explicit, Err: err}
		}
		return l.Explicit, nil
	}
	for _, c := range l.candidates() {
		if err := usableFile(c.path); err != nil {
			l.logf("defaults file %s (%s) skipped: %v", c.path, c.source, err)
			continue
		}
		return c.path, nil
	}
	return "", nil
}

type candidate struct {
	path   string
	source string
}

func (l Locator) candidates() []candidate {
	var out []candidate
	if p := l.getenv(FileEnvVar); p != "" {
		out = append(out, candidate{path: p, source: "$" + FileEnvVar})
	}
	dir := l.Dir
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		} else {
			l.logf("failed to get working directory: %v", err)
		}
	}
	if dir != "" {
		out = append(out, candidate{path: filepath.Join(dir, FileName), source: "working directory"})
	}
	if home := l.configHome(); home != "" {
		out = append(out, candidate{path: filepath.Join(home, FileName), source: "config home"})
	}
	return out
}

func (l Locator) configHome() string {
	if h := l.getenv(HomeEnvVar); h != "" {
		return h
	}
	if h := l.getenv("HOME"); h != "" {
		return filepath.Join(h, homeDirName)
	}
	return ""
}

func (l Locator) getenv(key string) string {
	if l.Getenv != nil {
		return l.Getenv(key)
	}
	return os.Getenv(key)
}

func (l Locator) logf(format string, args ...any) {
	if l.Logf != nil {
		l.Logf(format, args...)
	}
}

func usableFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return errors.New("not a regular file")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
