package runtime

import (
	"strings"

	"github.com/chazu/sol25/pkg/ast"
)

// ResolutionKind tags the outcome of method resolution.
type ResolutionKind int

const (
	// ResolveUser: a user-defined method body.
	ResolveUser ResolutionKind = iota + 1
	// ResolveBuiltin: a primitive.
	ResolveBuiltin
	// ResolveBlockBody: the receiver is a closure sent a value selector.
	// The argument count is checked on activation.
	ResolveBlockBody
	// ResolveAttrGet: implicit attribute read.
	ResolveAttrGet
	// ResolveAttrSet: implicit attribute write.
	ResolveAttrSet
)

var resolutionNames = map[ResolutionKind]string{
	ResolveUser:      "user",
	ResolveBuiltin:   "builtin",
	ResolveBlockBody: "block",
	ResolveAttrGet:   "getter",
	ResolveAttrSet:   "setter",
}

func (k ResolutionKind) String() string {
	return resolutionNames[k]
}

// Resolution is the result of resolving a selector against a receiver.
// Method is set for user and built-in methods, Name for attribute
// accessors.
type Resolution struct {
	Kind     ResolutionKind
	Selector string
	Method   *Method
	Name     string
}

// Resolve finds what a send of selector to receiver executes.
func (r *Runtime) Resolve(receiver ID, selector string, mode LookupMode) (Resolution, error) {
	inst, err := r.Objects.Get(receiver)
	if err != nil {
		return Resolution{}, err
	}

	className := inst.Class
	if _, ok := inst.Closure(); ok {
		if mode == LookupNormal && ast.IsValueSelector(selector) {
			return Resolution{Kind: ResolveBlockBody, Selector: selector}, nil
		}
		className = ClassBlock
	}

	if m := r.Registry.Resolve(className, selector, mode); m != nil {
		kind := ResolveUser
		if m.Builtin {
			kind = ResolveBuiltin
		}
		return Resolution{Kind: kind, Selector: selector, Method: m}, nil
	}

	switch strings.Count(selector, ":") {
	case 0:
		return Resolution{Kind: ResolveAttrGet, Selector: selector, Name: selector}, nil
	case 1:
		if strings.HasSuffix(selector, ":") {
			return Resolution{Kind: ResolveAttrSet, Selector: selector, Name: strings.TrimSuffix(selector, ":")}, nil
		}
	}
	return Resolution{}, errorf(ErrDoesNotUnderstand, "%s does not understand %s", className, selector)
}
