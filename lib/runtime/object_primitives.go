package runtime

import (
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Object Primitives (identity, equality, conversion, construction)
// ---------------------------------------------------------------------------

func (r *Runtime) registerObjectPrimitives() {
	r.addPrimitive("identicalTo:", func(r *Runtime, recv ID, args []ID) (ID, error) {
		return Bool(recv == args[0]), nil
	})

	r.addPrimitive("equalTo:", primEqualTo)

	r.addPrimitive("isNil", func(r *Runtime, recv ID, args []ID) (ID, error) {
		return Bool(r.Objects.InstanceOf(ClassNil, recv)), nil
	})
	r.addPrimitive("isNumber", func(r *Runtime, recv ID, args []ID) (ID, error) {
		return Bool(r.Objects.InstanceOf(ClassInteger, recv)), nil
	})
	r.addPrimitive("isString", func(r *Runtime, recv ID, args []ID) (ID, error) {
		return Bool(r.Objects.InstanceOf(ClassString, recv)), nil
	})
	r.addPrimitive("isBlock", func(r *Runtime, recv ID, args []ID) (ID, error) {
		return Bool(r.Objects.InstanceOf(ClassBlock, recv)), nil
	})

	r.addPrimitive("asString", primAsString)
	r.addPrimitive("asInteger", primAsInteger)

	// new resets Integer and String payloads and answers the receiver.
	r.addPrimitive("new", func(r *Runtime, recv ID, args []ID) (ID, error) {
		var err error
		switch {
		case r.Objects.InstanceOf(ClassInteger, recv):
			err = r.Objects.SetPayload(recv, Int{})
		case r.Objects.InstanceOf(ClassString, recv):
			err = r.Objects.SetPayload(recv, Text{})
		}
		if err != nil {
			return NoID, err
		}
		return recv, nil
	})

	r.addPrimitive("from:", primFrom)
}

// primEqualTo compares integers and strings by value. Other objects with
// no attributes compare by identity; objects with attributes compare the
// payloads of their attribute targets position by position.
func primEqualTo(r *Runtime, recv ID, args []ID) (ID, error) {
	arg := args[0]
	ints := r.Objects.InstanceOf(ClassInteger, recv) && r.Objects.InstanceOf(ClassInteger, arg)
	strs := r.Objects.InstanceOf(ClassString, recv) && r.Objects.InstanceOf(ClassString, arg)
	if ints || strs {
		a, err := r.Objects.Payload(recv)
		if err != nil {
			return NoID, err
		}
		b, err := r.Objects.Payload(arg)
		if err != nil {
			return NoID, err
		}
		return Bool(samePayload(a, b)), nil
	}

	recvAttrs, err := r.Objects.Attributes(recv)
	if err != nil {
		return NoID, err
	}
	argAttrs, err := r.Objects.Attributes(arg)
	if err != nil {
		return NoID, err
	}

	switch {
	case len(recvAttrs) == 0 && len(argAttrs) == 0:
		return Bool(recv == arg), nil
	case len(recvAttrs) != len(argAttrs):
		return FalseID, nil
	}

	for i := range recvAttrs {
		a, err := r.Objects.Payload(recvAttrs[i].Target)
		if err != nil {
			return NoID, err
		}
		b, err := r.Objects.Payload(argAttrs[i].Target)
		if err != nil {
			return NoID, err
		}
		if !samePayload(a, b) {
			return FalseID, nil
		}
	}
	return TrueID, nil
}

func primAsString(r *Runtime, recv ID, args []ID) (ID, error) {
	switch {
	case r.Objects.InstanceOf(ClassString, recv):
		return recv, nil
	case r.Objects.InstanceOf(ClassNil, recv):
		return r.newString("nil"), nil
	case r.Objects.InstanceOf(ClassInteger, recv):
		v, ok := r.intOf(recv)
		if !ok {
			return NoID, errorf(ErrOtherRuntime, "invalid integer value for asString")
		}
		return r.newString(strconv.FormatInt(v, 10)), nil
	}
	return r.newString(""), nil
}

func primAsInteger(r *Runtime, recv ID, args []ID) (ID, error) {
	switch {
	case r.Objects.InstanceOf(ClassInteger, recv):
		return recv, nil
	case r.Objects.InstanceOf(ClassString, recv):
		s, _ := r.textOf(recv)
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return NilID, nil
		}
		return r.newInt(v), nil
	}
	return NoID, errorf(ErrWrongArgument, "asInteger sent to %s", r.className(recv))
}

// primFrom copies the argument's attributes and payload onto the
// receiver. Either object must be an instance of the other's class.
func primFrom(r *Runtime, recv ID, args []ID) (ID, error) {
	arg := args[0]
	recvClass, err := r.Objects.ClassOf(recv)
	if err != nil {
		return NoID, err
	}
	argClass, err := r.Objects.ClassOf(arg)
	if err != nil {
		return NoID, err
	}
	if !r.Objects.InstanceOf(recvClass, arg) && !r.Objects.InstanceOf(argClass, recv) {
		return NoID, errorf(ErrWrongArgument, "%s from: expects a compatible instance, got %s", recvClass, argClass)
	}

	attrs, err := r.Objects.Attributes(arg)
	if err != nil {
		return NoID, err
	}
	for _, a := range attrs {
		if err := r.Objects.SetAttribute(recv, a.Name, a.Target); err != nil {
			return NoID, err
		}
	}

	p, err := r.Objects.Payload(arg)
	if err != nil {
		return NoID, err
	}
	if err := r.Objects.SetPayload(recv, p); err != nil {
		return NoID, err
	}
	return recv, nil
}
