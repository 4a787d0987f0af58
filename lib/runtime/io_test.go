package runtime

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestUnescape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`it\'s`, "it's"},
		{`back\\slash`, `back\slash`},
		{`\t\r`, "\t\r"},
		{`\x41\101`, "AA"},
		{`\q`, "q"},
		{`trailing\`, "trailing"},
	}
	for _, tc := range tests {
		if got := Unescape(tc.in); got != tc.want {
			t.Errorf("Unescape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLineReader(t *testing.T) {
	r := NewLineReader(strings.NewReader("one\r\ntwo\nlast"))
	for _, want := range []string{"one", "two", "last"} {
		got, err := r.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine returned %v", err)
		}
		if got != want {
			t.Errorf("ReadLine = %q, want %q", got, want)
		}
	}
	if _, err := r.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadLine at end returned %v, want io.EOF", err)
	}
}

func TestScopeStack(t *testing.T) {
	var s ScopeStack
	if err := s.Bind("x", TrueID); err == nil {
		t.Errorf("Bind without a frame succeeded")
	}
	s.Push()
	if err := s.Bind("x", TrueID); err != nil {
		t.Fatal(err)
	}
	s.Push()
	if _, ok := s.Lookup("x"); ok {
		t.Errorf("inner frame sees outer binding")
	}
	s.Pop()
	if id, ok := s.Lookup("x"); !ok || id != TrueID {
		t.Errorf("Lookup(x) = %d, %v", id, ok)
	}
	s.Pop()
	if s.Depth() != 0 {
		t.Errorf("Depth = %d, want 0", s.Depth())
	}
}

func TestContextStack(t *testing.T) {
	var c ContextStack
	if _, err := c.Current(); KindOf(err) != ErrOtherRuntime {
		t.Errorf("Current on empty stack returned %v", err)
	}
	c.Push(5)
	c.Push(6)
	if id, _ := c.Current(); id != 6 {
		t.Errorf("Current = %d, want 6", id)
	}
	c.Pop()
	if id, _ := c.Current(); id != 5 {
		t.Errorf("Current = %d, want 5", id)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Pop on empty stack did not panic")
		}
	}()
	c.Pop()
	c.Pop()
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		code int
	}{
		{ErrDoesNotUnderstand, 51},
		{ErrOtherRuntime, 52},
		{ErrWrongArgument, 53},
		{ErrInternal, 99},
	}
	for _, tc := range tests {
		if got := tc.kind.ExitCode(); got != tc.code {
			t.Errorf("%s exit code = %d, want %d", tc.kind, got, tc.code)
		}
	}
	if KindOf(errors.New("plain")) != ErrInternal {
		t.Errorf("plain errors should classify as internal")
	}
	if !IsKind(errorf(ErrWrongArgument, "x"), ErrWrongArgument) {
		t.Errorf("IsKind failed on a direct error")
	}
}
