package runtime

// ---------------------------------------------------------------------------
// Boolean Primitives (True, False)
// ---------------------------------------------------------------------------

func (r *Runtime) registerBooleanPrimitives() {
	r.addPrimitive("not", func(r *Runtime, recv ID, args []ID) (ID, error) {
		return Bool(recv != TrueID), nil
	})

	// and: - short-circuit and (evaluate block only if receiver is not false)
	r.addPrimitive("and:", func(r *Runtime, recv ID, args []ID) (ID, error) {
		if recv == FalseID {
			return FalseID, nil
		}
		return r.InvokeAsValue(args[0], "value", nil)
	})

	// or: - short-circuit or (evaluate block only if receiver is not true)
	r.addPrimitive("or:", func(r *Runtime, recv ID, args []ID) (ID, error) {
		if recv == TrueID {
			return TrueID, nil
		}
		return r.InvokeAsValue(args[0], "value", nil)
	})

	r.addPrimitive("ifTrue:ifFalse:", func(r *Runtime, recv ID, args []ID) (ID, error) {
		if r.Objects.InstanceOf(ClassTrue, recv) {
			return r.InvokeAsValue(args[0], "value", nil)
		}
		return r.InvokeAsValue(args[1], "value", nil)
	})

	r.addPrimitive("ifTrue:", func(r *Runtime, recv ID, args []ID) (ID, error) {
		if r.Objects.InstanceOf(ClassTrue, recv) {
			return r.InvokeAsValue(args[0], "value", nil)
		}
		return NilID, nil
	})

	r.addPrimitive("ifFalse:", func(r *Runtime, recv ID, args []ID) (ID, error) {
		if !r.Objects.InstanceOf(ClassTrue, recv) {
			return r.InvokeAsValue(args[0], "value", nil)
		}
		return NilID, nil
	})
}

// ---------------------------------------------------------------------------
// Block Primitives
// ---------------------------------------------------------------------------

func (r *Runtime) registerBlockPrimitives() {
	r.addPrimitive("whileTrue:", primWhileTrue)
}

// primWhileTrue evaluates the receiver block and, while it answers true,
// the argument block. It answers the receiver.
func primWhileTrue(r *Runtime, recv ID, args []ID) (ID, error) {
	inst, err := r.Objects.Get(recv)
	if err != nil {
		return NoID, err
	}
	if c, ok := inst.Closure(); !ok || c.Arity != 0 {
		return NoID, errorf(ErrWrongArgument, "whileTrue: receiver must be a block without parameters")
	}
	if !r.Objects.InstanceOf(ClassBlock, args[0]) {
		return NoID, errorf(ErrWrongArgument, "whileTrue: argument must be a block, got %s", r.className(args[0]))
	}

	for {
		cond, err := r.InvokeAsValue(recv, "value", nil)
		if err != nil {
			return NoID, err
		}
		if cond != TrueID {
			return recv, nil
		}
		if _, err := r.InvokeAsValue(args[0], "value", nil); err != nil {
			return NoID, err
		}
	}
}
