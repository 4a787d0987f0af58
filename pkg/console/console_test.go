package console

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenFileReadsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("first\r\nsecond"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if IsTerminal(f) {
		t.Fatal("regular file reported as terminal")
	}

	r := Open(f, "> ")
	defer r.Close()
	if _, ok := r.(*Terminal); ok {
		t.Fatal("Open returned a terminal reader for a file")
	}

	for _, want := range []string{"first", "second"} {
		line, err := r.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine returned error %v", err)
		}
		if line != want {
			t.Errorf("ReadLine returned %q, want %q", line, want)
		}
	}
	if _, err := r.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadLine at end returned %v, want io.EOF", err)
	}
}

func TestOpenPipeIsPlain(t *testing.T) {
	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer pr.Close()

	go func() {
		pw.Write([]byte("piped\n"))
		pw.Close()
	}()

	r := Open(pr, "")
	if line, err := r.ReadLine(); err != nil || line != "piped" {
		t.Errorf("ReadLine returned %q, %v; want %q", line, err, "piped")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close returned %v", err)
	}
}
