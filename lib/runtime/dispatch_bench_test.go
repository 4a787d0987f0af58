package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/sol25/pkg/ast"
)

func newBenchRuntime(b *testing.B) *Runtime {
	b.Helper()
	return New(&Config{
		Input:  NewLineReader(strings.NewReader("")),
		Output: &bytes.Buffer{},
	})
}

// BenchmarkBuiltinDispatch measures a primitive send including resolution.
func BenchmarkBuiltinDispatch(b *testing.B) {
	r := newBenchRuntime(b)
	x, y := r.newInt(1), r.newInt(2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Send(x, "plus:", []ID{y}, LookupNormal); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkUserDispatch measures a user method walking two levels of
// inheritance.
func BenchmarkUserDispatch(b *testing.B) {
	r := newBenchRuntime(b)
	prog := program(
		class("Base", ClassObject, method("answer", block(nil, assign("r", lit(ast.LiteralInteger, "42"))))),
		class("Middle", "Base"),
		class("Leaf", "Middle"),
	)
	if err := r.Load(prog); err != nil {
		b.Fatal(err)
	}
	leaf := r.Objects.Allocate("Leaf", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Send(leaf, "answer", nil, LookupNormal); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAttributeAccess measures the implicit getter path.
func BenchmarkAttributeAccess(b *testing.B) {
	r := newBenchRuntime(b)
	obj := r.Objects.Allocate(ClassObject, nil)
	if _, err := r.Send(obj, "value:", []ID{r.newInt(7)}, LookupNormal); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Send(obj, "value", nil, LookupNormal); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkTimesRepeat measures block invocation through the loop
// primitive.
func BenchmarkTimesRepeat(b *testing.B) {
	r := newBenchRuntime(b)
	self := r.Objects.Allocate(ClassObject, nil)
	r.Context.Push(self)
	blk, err := r.Eval(&ast.Expr{Block: block([]string{"i"}, assign("r", ref("i")))})
	r.Context.Pop()
	if err != nil {
		b.Fatal(err)
	}
	n := r.newInt(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Send(n, "timesRepeat:", []ID{blk}, LookupNormal); err != nil {
			b.Fatal(err)
		}
	}
}
