package runtime

// ---------------------------------------------------------------------------
// Context stack: the chain of executing receivers
// ---------------------------------------------------------------------------

// ContextStack records the receiver ("self") of every active method or
// block body.
type ContextStack struct {
	selves []ID
}

// Push enters a body executing with self.
func (c *ContextStack) Push(self ID) {
	c.selves = append(c.selves, self)
}

// Pop leaves the innermost body.
func (c *ContextStack) Pop() {
	if len(c.selves) == 0 {
		panic("runtime: context stack underflow")
	}
	c.selves = c.selves[:len(c.selves)-1]
}

// Current returns the innermost self.
func (c *ContextStack) Current() (ID, error) {
	if len(c.selves) == 0 {
		return NoID, errorf(ErrOtherRuntime, "self referenced outside of any method")
	}
	return c.selves[len(c.selves)-1], nil
}

// Depth returns the number of active bodies.
func (c *ContextStack) Depth() int {
	return len(c.selves)
}

// ---------------------------------------------------------------------------
// Scope stack: variable bindings per block activation
// ---------------------------------------------------------------------------

// Discard is the assignment target whose value is dropped.
const Discard = "_"

// ScopeStack holds one frame of variable bindings per block activation.
// Lookups only see the innermost frame; blocks capture self, not
// variables.
type ScopeStack struct {
	frames []map[string]ID
}

// Push opens a new, empty frame.
func (s *ScopeStack) Push() {
	s.frames = append(s.frames, make(map[string]ID))
}

// Pop discards the innermost frame.
func (s *ScopeStack) Pop() {
	if len(s.frames) == 0 {
		panic("runtime: scope stack underflow")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Bind sets name in the innermost frame.
func (s *ScopeStack) Bind(name string, id ID) error {
	if len(s.frames) == 0 {
		return errorf(ErrOtherRuntime, "assignment to %s outside of any block", name)
	}
	s.frames[len(s.frames)-1][name] = id
	return nil
}

// Lookup finds name in the innermost frame.
func (s *ScopeStack) Lookup(name string) (ID, bool) {
	if len(s.frames) == 0 {
		return NoID, false
	}
	id, ok := s.frames[len(s.frames)-1][name]
	return id, ok
}

// Depth returns the number of open frames.
func (s *ScopeStack) Depth() int {
	return len(s.frames)
}
