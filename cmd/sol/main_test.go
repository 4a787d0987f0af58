package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/sol25/compiler"
	"github.com/chazu/sol25/lib/runtime"
)

const helloSource = `"Greets"
class Main : Object {
  run [|
    x := 'Hello\n' print.
  ]
}`

const echoSource = `class Main : Object {
  run [|
    a := String read.
    b := ((a asInteger) plus: 1) asString.
    x := b print.
  ]
}`

// testEnv returns an env with empty stdin and captured output.
func testEnv(t *testing.T) (*env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	stdin, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { stdin.Close() })

	var stdout, stderr bytes.Buffer
	return &env{stdin: stdin, stdout: &stdout, stderr: &stderr}, &stdout, &stderr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunSource(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hello.sol", helloSource)
	e, stdout, stderr := testEnv(t)

	if code := e.run([]string{path}); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr.String())
	}
	if stdout.String() != "Hello\n" {
		t.Errorf("output = %q, want %q", stdout.String(), "Hello\n")
	}
}

func TestRunWithInputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "echo.sol", echoSource)
	input := writeFile(t, dir, "input.txt", "41\n")
	e, stdout, stderr := testEnv(t)

	if code := e.run([]string{"run", "-input", input, path}); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr.String())
	}
	if stdout.String() != "42" {
		t.Errorf("output = %q, want 42", stdout.String())
	}
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"undefined variable", []string{writeFile(t, dir, "undef.sol", `class Main : Object { run [| x := y. ] }`)}, compiler.CodeUndefined},
		{"syntax", []string{writeFile(t, dir, "syntax.sol", `class Main : Object { run [| x := 1 ] }`)}, compiler.CodeSyntax},
		{"does not understand", []string{writeFile(t, dir, "dnu.sol", `class Main : Object { run [| o := Object new. x := o foo. ] }`)}, 51},
		{"division by zero", []string{writeFile(t, dir, "div.sol", `class Main : Object { run [| n := 0. x := 1 divBy: n. ] }`)}, 53},
		{"malformed xml", []string{writeFile(t, dir, "bad.xml", `<program`)}, compiler.CodeXMLFormat},
		{"missing file", []string{filepath.Join(dir, "nope.sol")}, exitInput},
		{"unknown flag", []string{"run", "-bogus", "x.sol"}, exitUsage},
		{"two files", []string{"check", "a.sol", "b.sol"}, exitUsage},
		{"help", []string{"--help"}, exitOK},
		{"command help", []string{"run", "-h"}, exitOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, _, stderr := testEnv(t)
			if code := e.run(tc.args); code != tc.code {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tc.code, stderr.String())
			}
		})
	}
}

func TestOutputFlushedOnRuntimeError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "partial.sol", `class Main : Object {
  run [|
    x := 'partial' print.
    y := x frobnicate.
  ]
}`)
	e, stdout, _ := testEnv(t)
	if code := e.run([]string{path}); code != 51 {
		t.Errorf("exit code = %d, want 51", code)
	}
	if stdout.String() != "partial" {
		t.Errorf("output = %q, want partial", stdout.String())
	}
}

func TestParseThenRunXML(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "hello.sol", helloSource)
	e, stdout, stderr := testEnv(t)

	if code := e.run([]string{"parse", src}); code != 0 {
		t.Fatalf("parse exit code = %d, stderr = %q", code, stderr.String())
	}
	xmlText := stdout.String()
	if !strings.Contains(xmlText, `<program language="SOL25" description="Greets">`) {
		t.Fatalf("parse output = %q", xmlText)
	}

	xmlPath := writeFile(t, dir, "hello.xml", xmlText)
	e, stdout, stderr = testEnv(t)
	if code := e.run([]string{"check", xmlPath}); code != 0 {
		t.Fatalf("check exit code = %d, stderr = %q", code, stderr.String())
	}
	if code := e.run([]string{"run", xmlPath}); code != 0 {
		t.Fatalf("run exit code = %d, stderr = %q", code, stderr.String())
	}
	if stdout.String() != "Hello\n" {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestBuildThenRunImage(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "hello.sol", helloSource)
	out := filepath.Join(dir, "out", "hello.solimg")
	e, stdout, stderr := testEnv(t)

	if code := e.run([]string{"build", "-o", out, src}); code != 0 {
		t.Fatalf("build exit code = %d, stderr = %q", code, stderr.String())
	}
	if code := e.run([]string{out}); code != 0 {
		t.Fatalf("run exit code = %d, stderr = %q", code, stderr.String())
	}
	if stdout.String() != "Hello\n" {
		t.Errorf("output = %q", stdout.String())
	}

	if code := e.run([]string{"build", out}); code != exitUsage {
		t.Errorf("building an image exited %d, want %d", code, exitUsage)
	}
}

func TestRunFromManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "echo.sol", echoSource)
	writeFile(t, dir, "in.txt", "9\n")
	writeFile(t, dir, "sol.toml", `
[project]
name = "echo"
source = "echo.sol"
input = "in.txt"

[runtime]
max_depth = 100
`)
	e, stdout, stderr := testEnv(t)
	if code := e.run([]string{"-manifest", dir}); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr.String())
	}
	if stdout.String() != "10" {
		t.Errorf("output = %q, want 10", stdout.String())
	}

	e, _, _ = testEnv(t)
	if code := e.run([]string{"build", "-manifest", dir}); code != 0 {
		t.Fatalf("build exit code = %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "echo.solimg")); err != nil {
		t.Errorf("image not written: %v", err)
	}
}

func TestRunStaleImage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.sol", helloSource)
	writeFile(t, dir, "sol.toml", "[project]\nname = \"hello\"\n")
	img := filepath.Join(dir, "main.solimg")

	e, _, stderr := testEnv(t)
	if code := e.run([]string{"build", "-manifest", dir}); code != 0 {
		t.Fatalf("build exit code = %d, stderr = %q", code, stderr.String())
	}

	e, stdout, stderr := testEnv(t)
	if code := e.run([]string{"run", "-manifest", dir, img}); code != 0 {
		t.Fatalf("run exit code = %d, stderr = %q", code, stderr.String())
	}
	if stdout.String() != "Hello\n" {
		t.Errorf("output = %q, want %q", stdout.String(), "Hello\n")
	}

	writeFile(t, dir, "main.sol", strings.Replace(helloSource, "Hello", "Changed", 1))
	e, stdout, stderr = testEnv(t)
	if code := e.run([]string{"run", "-manifest", dir, img}); code != exitInput {
		t.Errorf("stale image exited %d, want %d", code, exitInput)
	}
	if stdout.Len() != 0 {
		t.Errorf("stale image produced output %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "source has changed") {
		t.Errorf("stderr = %q, want a stale image message", stderr.String())
	}

	// Without a manifest there is nothing to compare against.
	e, _, stderr = testEnv(t)
	if code := e.run([]string{img}); code != 0 {
		t.Errorf("run without manifest exited %d, stderr = %q", code, stderr.String())
	}
}

func TestOutputFlushedBeforeRead(t *testing.T) {
	var out bytes.Buffer
	w := bufio.NewWriter(&out)
	r := &flushingReader{LineReader: runtime.NewLineReader(strings.NewReader("Ada\n")), w: w}

	if _, err := w.WriteString("Name? "); err != nil {
		t.Fatal(err)
	}
	line, err := r.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine returned %v", err)
	}
	if line != "Ada" {
		t.Errorf("ReadLine returned %q, want %q", line, "Ada")
	}
	if out.String() != "Name? " {
		t.Errorf("output before read = %q, want %q", out.String(), "Name? ")
	}
}

func TestInvalidManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sol.toml", "[project]\nsource = \"main.txt\"\n")
	e, _, _ := testEnv(t)
	if code := e.run([]string{"-manifest", dir}); code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
}

func TestVersion(t *testing.T) {
	e, stdout, _ := testEnv(t)
	if code := e.run([]string{"version"}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "sol "+version) {
		t.Errorf("version output = %q", stdout.String())
	}
}

func TestExamples(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"hello", "Hello, World!\n"},
		{"sum", "10\n"},
	}

	for _, tc := range tests {
		t.Run(tc.dir, func(t *testing.T) {
			e, stdout, stderr := testEnv(t)
			dir := filepath.Join("..", "..", "examples", tc.dir)
			if code := e.run([]string{"check", "-manifest", dir}); code != 0 {
				t.Fatalf("check exit code = %d, stderr = %q", code, stderr.String())
			}
			if code := e.run([]string{"-manifest", dir}); code != 0 {
				t.Fatalf("run exit code = %d, stderr = %q", code, stderr.String())
			}
			if stdout.String() != tc.want {
				t.Errorf("output = %q, want %q", stdout.String(), tc.want)
			}
		})
	}
}
