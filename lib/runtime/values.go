// Package runtime is the SOL25 execution engine: the class registry, the
// object store, method resolution, the tree-walking evaluator, the
// dispatcher and the built-in primitives.
package runtime

import (
	"strconv"

	"github.com/chazu/sol25/pkg/ast"
)

// ID is an object identity. Identities are allocated in increasing order
// and never reused.
type ID uint32

// Fixed identities. NoID is the zero/undefined identity returned by empty
// sequences and loops that never ran.
const (
	NoID    ID = 0
	TrueID  ID = 1
	FalseID ID = 2
	NilID   ID = 3
)

// Bool returns the True or False singleton.
func Bool(b bool) ID {
	if b {
		return TrueID
	}
	return FalseID
}

// ---------------------------------------------------------------------------
// Payloads
// ---------------------------------------------------------------------------

// Payload is the raw primitive value carried by an instance. The set of
// implementations is closed: Int, Text, Boolean, Closure and Opaque.
type Payload interface {
	payload()
}

// Int is the payload of Integer instances.
type Int struct{ V int64 }

// Text is the payload of String instances.
type Text struct{ V string }

// Boolean is the payload of the True and False singletons.
type Boolean struct{ V bool }

// Closure is the payload of block instances.
type Closure struct {
	Arity  int
	Params []string
	Body   *ast.Block
	Self   ID // lexically enclosing self captured at creation
}

// Opaque marks instances without a primitive value.
type Opaque struct{}

func (Int) payload()     {}
func (Text) payload()    {}
func (Boolean) payload() {}
func (Closure) payload() {}
func (Opaque) payload()  {}

// Selector returns the value selector that runs the closure body.
func (c Closure) Selector() string {
	return ast.ValueSelector(c.Arity)
}

// describePayload renders a payload for log and error messages.
func describePayload(p Payload) string {
	switch v := p.(type) {
	case Int:
		return strconv.FormatInt(v.V, 10)
	case Text:
		return strconv.Quote(v.V)
	case Boolean:
		return strconv.FormatBool(v.V)
	case Closure:
		return "[" + v.Selector() + "]"
	case Opaque, nil:
		return "-"
	}
	return "?"
}

// samePayload reports whether two payloads hold equal primitive values.
// Integers and strings compare by their decimal text when mixed, two
// opaque payloads are equal, and closures are equal when they share a body
// and captured self.
func samePayload(a, b Payload) bool {
	if a == nil {
		a = Opaque{}
	}
	if b == nil {
		b = Opaque{}
	}
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return x.V == y.V
		case Text:
			return strconv.FormatInt(x.V, 10) == y.V
		}
	case Text:
		switch y := b.(type) {
		case Text:
			return x.V == y.V
		case Int:
			return x.V == strconv.FormatInt(y.V, 10)
		}
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x.V == y.V
	case Closure:
		y, ok := b.(Closure)
		return ok && x.Body == y.Body && x.Self == y.Self
	case Opaque:
		_, ok := b.(Opaque)
		return ok
	}
	return false
}
