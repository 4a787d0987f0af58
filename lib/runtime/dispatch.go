package runtime

import (
	"github.com/tliron/commonlog"
)

// Send resolves selector against receiver and dispatches it.
func (r *Runtime) Send(receiver ID, selector string, args []ID, mode LookupMode) (ID, error) {
	if receiver == NoID {
		return NoID, errorf(ErrOtherRuntime, "%s sent to an undefined value", selector)
	}
	res, err := r.Resolve(receiver, selector, mode)
	if err != nil {
		return NoID, err
	}
	if log.AllowLevel(commonlog.Debug) {
		var value string
		if inst, err := r.Objects.Get(receiver); err == nil {
			value = describePayload(inst.Payload)
		}
		log.Debugf("send #%d %s %s (%s, %s lookup, %d args)", receiver, value, selector, res.Kind, mode, len(args))
	}
	return r.Dispatch(res, args, receiver)
}

// Dispatch executes a resolved method with receiver as the current
// context. The context stack is restored on every path.
func (r *Runtime) Dispatch(res Resolution, args []ID, receiver ID) (ID, error) {
	if receiver == NoID {
		return NoID, errorf(ErrOtherRuntime, "%s sent to an undefined value", res.Selector)
	}
	if r.maxDepth > 0 && r.Context.Depth() >= r.maxDepth {
		return NoID, errorf(ErrOtherRuntime, "maximum call depth %d exceeded", r.maxDepth)
	}

	r.Context.Push(receiver)
	defer r.Context.Pop()

	switch res.Kind {
	case ResolveBuiltin:
		return r.dispatchBuiltin(res.Selector, receiver, args)

	case ResolveBlockBody:
		inst, err := r.Objects.Get(receiver)
		if err != nil {
			return NoID, err
		}
		c, ok := inst.Closure()
		if !ok {
			return NoID, errorf(ErrInternal, "#%d is not a block", receiver)
		}
		return r.activate(c.Body, c.Self, args)

	case ResolveAttrSet:
		if len(args) != 1 {
			return NoID, errorf(ErrWrongArgument, "attribute setter %s takes one argument, got %d", res.Selector, len(args))
		}
		if err := r.Objects.SetAttribute(receiver, res.Name, args[0]); err != nil {
			return NoID, err
		}
		return receiver, nil

	case ResolveAttrGet:
		target, ok, err := r.Objects.Attribute(receiver, res.Name)
		if err != nil {
			return NoID, err
		}
		if !ok {
			class, _ := r.Objects.ClassOf(receiver)
			return NoID, errorf(ErrDoesNotUnderstand, "%s does not understand %s", class, res.Selector)
		}
		return target, nil

	case ResolveUser:
		if res.Method == nil || res.Method.Body == nil {
			return NoID, errorf(ErrOtherRuntime, "method %s has no body", res.Selector)
		}
		return r.activate(res.Method.Body, receiver, args)
	}
	return NoID, errorf(ErrInternal, "unknown resolution kind %d", int(res.Kind))
}

// InvokeAsValue sends selector to target on behalf of a primitive. Block
// bodies run under their captured self; attribute accessors and user
// methods go through ordinary dispatch.
func (r *Runtime) InvokeAsValue(target ID, selector string, args []ID) (ID, error) {
	return r.Send(target, selector, args, LookupNormal)
}

// dispatchBuiltin runs the primitive registered for selector.
func (r *Runtime) dispatchBuiltin(selector string, receiver ID, args []ID) (ID, error) {
	p, ok := r.primitives[selector]
	if !ok {
		return NoID, errorf(ErrInternal, "no primitive for built-in %s", selector)
	}
	return p(r, receiver, args)
}
