package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runGrep(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Stdin(t *testing.T) {
	input := "apple\nbanana\ncherry\nbandana\n"

	tests := []struct {
		name string
		args []string
		code int
		out  string
	}{
		{"lines", []string{"an+a"}, 0, "banana\nbandana\n"},
		{"line numbers", []string{"-n", "an+a"}, 0, "2:banana\n4:bandana\n"},
		{"count", []string{"-c", "an+a"}, 0, "2\n"},
		{"only matching", []string{"-o", "an+a"}, 0, "ana\nana\n"},
		{"breadth first", []string{"-mode", "breadth", "ch|pp"}, 0, "apple\ncherry\n"},
		{"no match", []string{"kiwi"}, 1, ""},
		{"count no match", []string{"-c", "kiwi"}, 1, "0\n"},
		{"empty match", []string{"x*"}, 0, input},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runGrep(t, input, tt.args...)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.code, errOut)
			}
			if out != tt.out {
				t.Errorf("stdout = %q, want %q", out, tt.out)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"no pattern", nil, "usage"},
		{"bad pattern", []string{"a|"}, "vmgrep: regvm: parse"},
		{"strict paren", []string{"-strict", "a)"}, "invalid right parenthesis"},
		{"bad mode", []string{"-mode", "sideways", "a"}, "unknown mode"},
		{"missing file", []string{"a", filepath.Join(t.TempDir(), "nope.txt")}, "vmgrep:"},
		{"unknown flag", []string{"-z", "a"}, "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runGrep(t, "a\n", tt.args...)
			if code != 2 {
				t.Errorf("exit code = %d, want 2", code)
			}
			if !strings.Contains(errOut, tt.stderr) {
				t.Errorf("stderr = %q, want it to contain %q", errOut, tt.stderr)
			}
		})
	}
}

func TestRun_Files(t *testing.T) {
	dir := t.TempDir()
	one := filepath.Join(dir, "one.txt")
	two := filepath.Join(dir, "two.txt")
	if err := os.WriteFile(one, []byte("foo\nbar\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(two, []byte("baz\nfoobar\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	code, out, _ := runGrep(t, "", "foo", one, two)
	if code != 0 {
		t.Errorf("exit code = %d", code)
	}
	want := one + ":foo\n" + two + ":foobar\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}

	code, out, _ = runGrep(t, "", "bar", one)
	if code != 0 || out != "bar\n" {
		t.Errorf("single file = %d, %q", code, out)
	}
}

func TestRun_Config(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regvm.yaml")
	doc := "mode: breadth-first\nstrict_parens: true\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	code, _, errOut := runGrep(t, "a)\n", "-config", path, "a)")
	if code != 2 || !strings.Contains(errOut, "invalid right parenthesis") {
		t.Errorf("strict config = %d, %q", code, errOut)
	}

	code, out, _ := runGrep(t, "xab\n", "-config", path, "ab")
	if code != 0 || out != "xab\n" {
		t.Errorf("config search = %d, %q", code, out)
	}

	if err := os.WriteFile(path, []byte("bogus: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	code, _, errOut = runGrep(t, "a\n", "-config", path, "a")
	if code != 2 || !strings.Contains(errOut, "vmgrep:") {
		t.Errorf("bad config = %d, %q", code, errOut)
	}
}

func TestRun_Dump(t *testing.T) {
	code, out, _ := runGrep(t, "", "-dump", "a?")
	if code != 0 {
		t.Errorf("exit code = %d", code)
	}
	want := "0000: split 0001 0002\n0001: char a\n0002: match\n"
	if out != want {
		t.Errorf("dump = %q, want %q", out, want)
	}
}
