package runtime

import (
	"strconv"
	"strings"
)

// primitive implements a built-in selector.
type primitive func(r *Runtime, receiver ID, args []ID) (ID, error)

// addPrimitive registers p for selector, checking the argument count
// before p runs.
func (r *Runtime) addPrimitive(selector string, p primitive) {
	arity := strings.Count(selector, ":")
	r.primitives[selector] = func(r *Runtime, receiver ID, args []ID) (ID, error) {
		if len(args) != arity {
			return NoID, errorf(ErrOtherRuntime, "%s expects %d arguments, got %d", selector, arity, len(args))
		}
		return p(r, receiver, args)
	}
}

// ---------------------------------------------------------------------------
// Operand helpers
// ---------------------------------------------------------------------------

// intOf returns the value of an Integer instance.
func (r *Runtime) intOf(id ID) (int64, bool) {
	if !r.Objects.InstanceOf(ClassInteger, id) {
		return 0, false
	}
	p, err := r.Objects.Payload(id)
	if err != nil {
		return 0, false
	}
	v, ok := p.(Int)
	return v.V, ok
}

// textOf returns the text payload of id, whatever its class.
func (r *Runtime) textOf(id ID) (string, bool) {
	p, err := r.Objects.Payload(id)
	if err != nil {
		return "", false
	}
	v, ok := p.(Text)
	return v.V, ok
}

// numericOf returns the integer held by id's payload, accepting decimal
// text as well as integer payloads.
func (r *Runtime) numericOf(id ID) (int64, bool) {
	p, err := r.Objects.Payload(id)
	if err != nil {
		return 0, false
	}
	switch v := p.(type) {
	case Int:
		return v.V, true
	case Text:
		n, err := strconv.ParseInt(strings.TrimSpace(v.V), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func (r *Runtime) newInt(v int64) ID {
	return r.Objects.Allocate(ClassInteger, Int{V: v})
}

func (r *Runtime) newString(s string) ID {
	return r.Objects.Allocate(ClassString, Text{V: s})
}

func (r *Runtime) className(id ID) string {
	name, err := r.Objects.ClassOf(id)
	if err != nil {
		return "?"
	}
	return name
}

