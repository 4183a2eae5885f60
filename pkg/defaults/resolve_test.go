// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defaults

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/argdefaults/pkg/cli"
)

var testCommands = cli.CommandTree{
	"build": nil,
	"test":  nil,
	"docker": {
		"push": nil,
		"pull": nil,
	},
}

func mustParse(t *testing.T, content string) *Document {
	t.Helper()
	doc, err := Parse("defaults.yaml", []byte(content))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return doc
}

func plain(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

func TestEffective(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    []string
		want    map[string]any
	}{
		{
			name:    "global only at root",
			content: "a: 1\n",
			want:    map[string]any{"a": int64(1)},
		},
		{
			name:    "command without block falls back to global",
			content: "a: 1\n",
			path:    []string{"build"},
			want:    map[string]any{"a": int64(1)},
		},
		{
			name:    "command block overrides global",
			content: "a: 1\nbuild:\n  a: 2\n",
			path:    []string{"build"},
			want:    map[string]any{"a": int64(2)},
		},
		{
			name:    "command block ignored at root",
			content: "a: 1\nbuild:\n  a: 2\n",
			want:    map[string]any{"a": int64(1)},
		},
		{
			name:    "other command block ignored",
			content: "a: 1\ntest:\n  a: 3\n  b: x\n",
			path:    []string{"build"},
			want:    map[string]any{"a": int64(1)},
		},
		{
			name:    "unknown keys pass through",
			content: "no-such-flag: x\nbuild:\n  also-unknown: [1, 2]\n",
			path:    []string{"build"},
			want: map[string]any{
				"no-such-flag": "x",
				"also-unknown": []any{int64(1), int64(2)},
			},
		},
		{
			name:    "grouped command overlays every level",
			content: "a: 1\nb: 1\nc: 1\ndocker:\n  b: 2\n  c: 2\n  push:\n    c: 3\n",
			path:    []string{"docker", "push"},
			want:    map[string]any{"a": int64(1), "b": int64(2), "c": int64(3)},
		},
		{
			name:    "group level without subcommand block",
			content: "a: 1\ndocker:\n  a: 2\n",
			path:    []string{"docker", "pull"},
			want:    map[string]any{"a": int64(2)},
		},
		{
			name:    "null override is kept",
			content: "a: 1\nbuild:\n  a: null\n",
			path:    []string{"build"},
			want:    map[string]any{"a": nil},
		},
		{
			name:    "build block with globals",
			content: "build:\n  symlink-install: true\n  cmake-args: [-DCMAKE_BUILD_TYPE=Release]\nlog-level: info\n",
			path:    []string{"build"},
			want: map[string]any{
				"symlink-install": true,
				"cmake-args":      []any{"-DCMAKE_BUILD_TYPE=Release"},
				"log-level":       "info",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(mustParse(t, tt.content), testCommands)
			got := plain(r.Effective(tt.path))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Effective(%v) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestEffectiveIsPure(t *testing.T) {
	doc := mustParse(t, "a: 1\nbuild:\n  a: 2\n  b: [x, y]\n")
	r := NewResolver(doc, testCommands)

	first := r.Effective([]string{"build"})
	first["a"] = ValueOf("mutated")
	delete(first, "b")

	second := plain(r.Effective([]string{"build"}))
	third := plain(r.Effective([]string{"build"}))
	if diff := cmp.Diff(second, third); diff != "" {
		t.Fatalf("repeated Effective differs (-second +third):\n%s", diff)
	}
	want := map[string]any{"a": int64(2), "b": []any{"x", "y"}}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Fatalf("Effective mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Values["a"].Interface(); got != int64(1) {
		t.Fatalf("document a = %v, want 1", got)
	}
}

func TestResolverSkipsNonMappingCommandBlocks(t *testing.T) {
	doc := mustParse(t, "a: 1\nbuild: oops\ntest: ~\ndocker:\n  push: [1]\n")
	r := NewResolver(doc, testCommands)

	want := []string{"build", "docker.push"}
	if diff := cmp.Diff(want, r.Skipped()); diff != "" {
		t.Fatalf("Skipped mismatch (-want +got):\n%s", diff)
	}
	for _, path := range [][]string{nil, {"build"}, {"test"}, {"docker", "push"}} {
		got := plain(r.Effective(path))
		if diff := cmp.Diff(map[string]any{"a": int64(1)}, got); diff != "" {
			t.Errorf("Effective(%v) mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func TestResolverNilDocument(t *testing.T) {
	r := NewResolver(nil, testCommands)
	if got := r.Effective([]string{"build"}); len(got) != 0 {
		t.Fatalf("Effective = %v, want empty", got)
	}
}
