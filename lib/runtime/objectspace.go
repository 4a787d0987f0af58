package runtime

import (
	"fmt"
)

// ObjectSpace is an arena of instance slots indexed by identity. Slot 0 is
// never used so that NoID is always invalid. Retired slots stay in the
// arena, poisoned, so that stale identities fail loudly instead of aliasing
// a new object.
type ObjectSpace struct {
	registry *Registry
	slots    []*Instance
}

// NewObjectSpace creates a store bound to reg and allocates the True,
// False and Nil singletons as identities 1, 2 and 3.
func NewObjectSpace(reg *Registry) *ObjectSpace {
	os := &ObjectSpace{
		registry: reg,
		slots:    make([]*Instance, 1, 64),
	}
	os.Allocate(ClassTrue, Boolean{V: true})
	os.Allocate(ClassFalse, Boolean{V: false})
	os.Allocate(ClassNil, Opaque{})
	return os
}

// Registry returns the class registry the store resolves ancestry with.
func (os *ObjectSpace) Registry() *Registry {
	return os.registry
}

// Allocate creates an ordinary instance of className.
func (os *ObjectSpace) Allocate(className string, payload Payload) ID {
	if payload == nil {
		payload = Opaque{}
	}
	id := ID(len(os.slots))
	os.slots = append(os.slots, &Instance{
		ID:      id,
		Kind:    KindOrdinary,
		Class:   className,
		Payload: payload,
	})
	return id
}

// AllocateClosure creates a block instance carrying c.
func (os *ObjectSpace) AllocateClosure(c Closure) ID {
	id := ID(len(os.slots))
	os.slots = append(os.slots, &Instance{
		ID:      id,
		Kind:    KindClosure,
		Class:   ClassBlock,
		Payload: c,
	})
	return id
}

// Get returns the live instance for id.
func (os *ObjectSpace) Get(id ID) (*Instance, error) {
	if id == NoID || int(id) >= len(os.slots) {
		return nil, fmt.Errorf("%w: %d", ErrNoObject, id)
	}
	inst := os.slots[id]
	if inst.retired {
		return nil, fmt.Errorf("%w: %d", ErrRetired, id)
	}
	return inst, nil
}

// Retire poisons the slot for id. Singletons cannot be retired.
func (os *ObjectSpace) Retire(id ID) error {
	if id <= NilID {
		return fmt.Errorf("%w: cannot retire singleton %d", ErrNoObject, id)
	}
	inst, err := os.Get(id)
	if err != nil {
		return err
	}
	inst.retired = true
	inst.Payload = nil
	inst.attrs = nil
	inst.index = nil
	return nil
}

// IsRetired reports whether id has been retired.
func (os *ObjectSpace) IsRetired(id ID) bool {
	return int(id) < len(os.slots) && id != NoID && os.slots[id].retired
}

// Len returns the number of allocated slots, live and retired, including
// the singletons.
func (os *ObjectSpace) Len() int {
	return len(os.slots) - 1
}

// ClassOf returns the class tag of id.
func (os *ObjectSpace) ClassOf(id ID) (string, error) {
	inst, err := os.Get(id)
	if err != nil {
		return "", err
	}
	return inst.Class, nil
}

// InstanceOf reports whether id is an instance of className or one of its
// subclasses. Unknown or retired identities are instances of nothing.
func (os *ObjectSpace) InstanceOf(className string, id ID) bool {
	inst, err := os.Get(id)
	if err != nil {
		return false
	}
	return os.registry.IsSubclassOf(inst.Class, className)
}

// Attribute returns the target bound to name on id.
func (os *ObjectSpace) Attribute(id ID, name string) (ID, bool, error) {
	inst, err := os.Get(id)
	if err != nil {
		return NoID, false, err
	}
	target, ok := inst.Attribute(name)
	return target, ok, nil
}

// SetAttribute binds name on id to target.
func (os *ObjectSpace) SetAttribute(id ID, name string, target ID) error {
	inst, err := os.Get(id)
	if err != nil {
		return err
	}
	inst.SetAttribute(name, target)
	return nil
}

// Attributes returns the bindings of id in insertion order.
func (os *ObjectSpace) Attributes(id ID) ([]Attribute, error) {
	inst, err := os.Get(id)
	if err != nil {
		return nil, err
	}
	return inst.Attributes(), nil
}

// Payload returns the payload of id.
func (os *ObjectSpace) Payload(id ID) (Payload, error) {
	inst, err := os.Get(id)
	if err != nil {
		return nil, err
	}
	return inst.Payload, nil
}

// SetPayload replaces the payload of id.
func (os *ObjectSpace) SetPayload(id ID, p Payload) error {
	inst, err := os.Get(id)
	if err != nil {
		return err
	}
	if p == nil {
		p = Opaque{}
	}
	inst.Payload = p
	return nil
}
