package runtime

// Kind tags how an instance takes part in method resolution.
type Kind uint8

const (
	// KindOrdinary instances resolve through their class tag.
	KindOrdinary Kind = iota
	// KindClosure instances answer their own value selector first and
	// then resolve through Block.
	KindClosure
)

// Attribute binds a name on an owner instance to a target instance.
type Attribute struct {
	Name   string
	Owner  ID
	Target ID
}

// Instance is a slot in the object store.
type Instance struct {
	ID      ID
	Kind    Kind
	Class   string
	Payload Payload

	attrs   []Attribute
	index   map[string]int
	retired bool
}

// Closure returns the closure payload of a block instance.
func (i *Instance) Closure() (Closure, bool) {
	if i.Kind != KindClosure {
		return Closure{}, false
	}
	c, ok := i.Payload.(Closure)
	return c, ok
}

// Attribute returns the target bound to name.
func (i *Instance) Attribute(name string) (ID, bool) {
	idx, ok := i.index[name]
	if !ok {
		return NoID, false
	}
	return i.attrs[idx].Target, true
}

// SetAttribute binds name to target. Rebinding keeps the attribute's
// original position.
func (i *Instance) SetAttribute(name string, target ID) {
	if idx, ok := i.index[name]; ok {
		i.attrs[idx].Target = target
		return
	}
	if i.index == nil {
		i.index = make(map[string]int)
	}
	i.index[name] = len(i.attrs)
	i.attrs = append(i.attrs, Attribute{Name: name, Owner: i.ID, Target: target})
}

// Attributes returns the bindings in insertion order.
func (i *Instance) Attributes() []Attribute {
	return append([]Attribute(nil), i.attrs...)
}
