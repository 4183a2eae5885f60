// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defaults

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return path
}

func envFunc(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestLocatePrecedence(t *testing.T) {
	tmp := t.TempDir()
	explicit := writeFile(t, filepath.Join(tmp, "explicit.yaml"), "a: 1\n")
	fromEnv := writeFile(t, filepath.Join(tmp, "env.yaml"), "a: 2\n")
	workDir := filepath.Join(tmp, "work")
	inDir := writeFile(t, filepath.Join(workDir, FileName), "a: 3\n")
	home := filepath.Join(tmp, "home")
	inHome := writeFile(t, filepath.Join(home, FileName), "a: 4\n")
	userHome := filepath.Join(tmp, "user")
	inUserHome := writeFile(t, filepath.Join(userHome, homeDirName, FileName), "a: 5\n")

	tests := []struct {
		name string
		loc  Locator
		want string
	}{
		{
			name: "explicit wins",
			loc:  Locator{Explicit: explicit, Dir: workDir, Getenv: envFunc(map[string]string{FileEnvVar: fromEnv})},
			want: explicit,
		},
		{
			name: "environment before working directory",
			loc:  Locator{Dir: workDir, Getenv: envFunc(map[string]string{FileEnvVar: fromEnv, HomeEnvVar: home})},
			want: fromEnv,
		},
		{
			name: "working directory before home",
			loc:  Locator{Dir: workDir, Getenv: envFunc(map[string]string{HomeEnvVar: home})},
			want: inDir,
		},
		{
			name: "missing env file falls through",
			loc:  Locator{Dir: workDir, Getenv: envFunc(map[string]string{FileEnvVar: filepath.Join(tmp, "nope.yaml")})},
			want: inDir,
		},
		{
			name: "config home",
			loc:  Locator{Dir: tmp, Getenv: envFunc(map[string]string{HomeEnvVar: home, "HOME": userHome})},
			want: inHome,
		},
		{
			name: "user home",
			loc:  Locator{Dir: tmp, Getenv: envFunc(map[string]string{"HOME": userHome})},
			want: inUserHome,
		},
		{
			name: "nothing found",
			loc:  Locator{Dir: tmp, Getenv: envFunc(map[string]string{FileEnvVar: filepath.Join(tmp, "nope.yaml")})},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.loc.Locate()
			if err != nil {
				t.Fatalf("Locate error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Locate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocateExplicitMissing(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, FileName), "a: 1\n")

	for _, explicit := range []string{filepath.Join(tmp, "nonexistent.yaml"), tmp} {
		loc := Locator{Explicit: explicit, Dir: tmp, Getenv: envFunc(nil)}
		_, err := loc.Locate()
		if !errors.Is(err, ErrExplicitNotFound) {
			t.Fatalf("Locate(%q) error = %v, want ErrExplicitNotFound", explicit, err)
		}
		var lerr *LocateError
		if !errors.As(err, &lerr) || lerr.Path != explicit {
			t.Fatalf("Locate(%q) error = %#v, want *LocateError for the path", explicit, err)
		}
	}
}

func TestLocateLogsSkippedCandidates(t *testing.T) {
	tmp := t.TempDir()
	var lines []string
	loc := Locator{
		Dir:    tmp,
		Getenv: envFunc(map[string]string{FileEnvVar: filepath.Join(tmp, "nope.yaml")}),
		Logf: func(format string, args ...any) {
			lines = append(lines, format)
		},
	}
	got, err := loc.Locate()
	if err != nil || got != "" {
		t.Fatalf("Locate = %q, %v; want no file", got, err)
	}
	if len(lines) != 2 {
		t.Fatalf("logged %d lines, want 2 (env, working directory)", len(lines))
	}
}
