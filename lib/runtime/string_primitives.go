package runtime

import (
	"errors"
	"io"
)

// ---------------------------------------------------------------------------
// String Primitives
// ---------------------------------------------------------------------------

func (r *Runtime) registerStringPrimitives() {
	r.addPrimitive("print", func(r *Runtime, recv ID, args []ID) (ID, error) {
		s, ok := r.textOf(recv)
		if !ok {
			return NoID, errorf(ErrWrongArgument, "print sent to %s without text", r.className(recv))
		}
		if _, err := io.WriteString(r.out, Unescape(s)); err != nil {
			return NoID, errorf(ErrInternal, "write: %v", err)
		}
		return recv, nil
	})

	r.addPrimitive("read", func(r *Runtime, recv ID, args []ID) (ID, error) {
		line, err := r.in.ReadLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return NoID, errorf(ErrInternal, "read: %v", err)
		}
		if err := r.Objects.SetPayload(recv, Text{V: line}); err != nil {
			return NoID, err
		}
		return recv, nil
	})

	r.addPrimitive("concatenateWith:", func(r *Runtime, recv ID, args []ID) (ID, error) {
		a, ok := r.textOf(recv)
		if !ok {
			return NoID, errorf(ErrWrongArgument, "concatenateWith: sent to %s without text", r.className(recv))
		}
		if !r.Objects.InstanceOf(ClassString, args[0]) {
			return NilID, nil
		}
		b, ok := r.textOf(args[0])
		if !ok {
			return NilID, nil
		}
		return r.newString(a + b), nil
	})

	r.addPrimitive("startsWith:endsBefore:", primSubstring)
}

// primSubstring answers the characters from start up to but excluding
// end, both 1-based.
func primSubstring(r *Runtime, recv ID, args []ID) (ID, error) {
	start, ok1 := r.numericOf(args[0])
	end, ok2 := r.numericOf(args[1])
	if !ok1 || !ok2 {
		return NoID, errorf(ErrWrongArgument, "startsWith:endsBefore: requires Integer arguments")
	}
	if !r.Objects.InstanceOf(ClassInteger, args[0]) || !r.Objects.InstanceOf(ClassInteger, args[1]) || start < 1 || end < 1 {
		return NilID, nil
	}
	if end-start <= 0 {
		return r.newString(""), nil
	}

	s, ok := r.textOf(recv)
	if !ok {
		return NoID, errorf(ErrWrongArgument, "startsWith:endsBefore: sent to %s without text", r.className(recv))
	}
	runes := []rune(s)
	from, to := int(start-1), int(end-1)
	if from > len(runes) {
		from = len(runes)
	}
	if to > len(runes) {
		to = len(runes)
	}
	return r.newString(string(runes[from:to])), nil
}
