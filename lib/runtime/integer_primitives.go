package runtime

// ---------------------------------------------------------------------------
// Integer Primitives
// ---------------------------------------------------------------------------

func (r *Runtime) registerIntegerPrimitives() {
	r.addPrimitive("plus:", arithmetic("plus:", func(a, b int64) (int64, error) {
		return a + b, nil
	}))
	r.addPrimitive("minus:", arithmetic("minus:", func(a, b int64) (int64, error) {
		return a - b, nil
	}))
	r.addPrimitive("multiplyBy:", arithmetic("multiplyBy:", func(a, b int64) (int64, error) {
		return a * b, nil
	}))
	// Go division truncates toward zero.
	r.addPrimitive("divBy:", arithmetic("divBy:", func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errorf(ErrWrongArgument, "division by zero")
		}
		return a / b, nil
	}))

	r.addPrimitive("greaterThan:", func(r *Runtime, recv ID, args []ID) (ID, error) {
		a, b, err := r.intOperands("greaterThan:", recv, args[0])
		if err != nil {
			return NoID, err
		}
		return Bool(a > b), nil
	})

	r.addPrimitive("timesRepeat:", primTimesRepeat)
}

// intOperands returns the values of an Integer receiver and argument.
func (r *Runtime) intOperands(selector string, recv, arg ID) (int64, int64, error) {
	a, ok := r.intOf(recv)
	if !ok {
		return 0, 0, errorf(ErrWrongArgument, "%s sent to %s, expected Integer", selector, r.className(recv))
	}
	b, ok := r.intOf(arg)
	if !ok {
		return 0, 0, errorf(ErrWrongArgument, "%s argument is %s, expected Integer", selector, r.className(arg))
	}
	return a, b, nil
}

func arithmetic(selector string, op func(a, b int64) (int64, error)) primitive {
	return func(r *Runtime, recv ID, args []ID) (ID, error) {
		a, b, err := r.intOperands(selector, recv, args[0])
		if err != nil {
			return NoID, err
		}
		v, err := op(a, b)
		if err != nil {
			return NoID, err
		}
		return r.newInt(v), nil
	}
}

// primTimesRepeat sends value: to the argument once per count, passing a
// single Integer temporary that is updated in place and retired after the
// loop.
func primTimesRepeat(r *Runtime, recv ID, args []ID) (result ID, err error) {
	n, ok := r.intOf(recv)
	if !ok {
		return NoID, errorf(ErrWrongArgument, "timesRepeat: sent to %s, expected Integer", r.className(recv))
	}
	if n < 1 {
		return NoID, nil
	}

	counter := r.Objects.Allocate(ClassInteger, Int{V: 1})
	defer func() {
		if rerr := r.Objects.Retire(counter); rerr != nil && err == nil {
			err = rerr
		}
	}()

	for i := int64(1); i <= n; i++ {
		if err := r.Objects.SetPayload(counter, Int{V: i}); err != nil {
			return NoID, err
		}
		result, err = r.InvokeAsValue(args[0], "value:", []ID{counter})
		if err != nil {
			return NoID, err
		}
	}

	// The temporary is about to be retired; hand back a copy instead.
	if result == counter {
		result = r.newInt(n)
	}
	return result, nil
}
