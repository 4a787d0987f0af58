package runtime

import (
	"fmt"

	"github.com/chazu/sol25/pkg/ast"
)

// ---------------------------------------------------------------------------
// Classes and methods
// ---------------------------------------------------------------------------

// Method is an entry in a class's method table. Built-in methods have no
// body and are implemented by a primitive.
type Method struct {
	Selector string
	Body     *ast.Block
	Builtin  bool
}

// Arity returns the number of arguments the method takes.
func (m *Method) Arity() int {
	return ast.Arity(m.Selector)
}

// Class is a registered class.
type Class struct {
	Name        string
	Superclass  string
	SuperclassP *Class // resolved parent pointer, nil for the root
	Methods     []*Method
	Builtin     bool

	index map[string]*Method
}

// LookupLocal finds a method defined directly on c.
func (c *Class) LookupLocal(selector string) *Method {
	if c == nil {
		return nil
	}
	return c.index[selector]
}

// Superclasses returns the ancestors of c, root first.
func (c *Class) Superclasses() []*Class {
	var chain []*Class
	for cur := c.SuperclassP; cur != nil; cur = cur.SuperclassP {
		chain = append([]*Class{cur}, chain...)
	}
	return chain
}

// LookupMode selects where method resolution starts.
type LookupMode int

const (
	// LookupNormal starts at the receiver's own class.
	LookupNormal LookupMode = iota
	// LookupSuper starts at the parent of the receiver's class.
	LookupSuper
)

func (m LookupMode) String() string {
	if m == LookupSuper {
		return "super"
	}
	return "normal"
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

// Built-in class names.
const (
	ClassObject  = "Object"
	ClassNil     = "Nil"
	ClassInteger = "Integer"
	ClassString  = "String"
	ClassBlock   = "Block"
	ClassTrue    = "True"
	ClassFalse   = "False"
)

// builtinClasses lists the pre-seeded classes in registration order with
// their built-in selectors. Every selector here has a primitive.
var builtinClasses = []struct {
	name      string
	parent    string
	selectors []string
}{
	{ClassObject, "", []string{"identicalTo:", "equalTo:", "asString", "isNumber", "isString", "isBlock", "isNil", "new", "from:"}},
	{ClassNil, ClassObject, []string{"asString"}},
	{ClassInteger, ClassObject, []string{"equalTo:", "greaterThan:", "plus:", "minus:", "multiplyBy:", "divBy:", "asString", "asInteger", "timesRepeat:"}},
	{ClassString, ClassObject, []string{"read", "print", "equalTo:", "asString", "asInteger", "concatenateWith:", "startsWith:endsBefore:"}},
	{ClassBlock, ClassObject, []string{"whileTrue:"}},
	{ClassTrue, ClassObject, []string{"not", "and:", "or:", "ifTrue:ifFalse:", "ifTrue:", "ifFalse:"}},
	{ClassFalse, ClassObject, []string{"not", "and:", "or:", "ifTrue:ifFalse:", "ifTrue:", "ifFalse:"}},
}

// Registry holds class definitions keyed by name.
type Registry struct {
	classes map[string]*Class
	order   []*Class
}

// NewRegistry returns a registry seeded with the built-in classes.
func NewRegistry() *Registry {
	r := &Registry{classes: make(map[string]*Class)}
	for _, bc := range builtinClasses {
		methods := make([]*Method, len(bc.selectors))
		for i, sel := range bc.selectors {
			methods[i] = &Method{Selector: sel, Builtin: true}
		}
		cls, err := r.Register(bc.name, bc.parent, methods)
		if err != nil {
			panic(fmt.Sprintf("seeding %s: %v", bc.name, err))
		}
		cls.Builtin = true
	}
	return r
}

// Register adds a class. The parent must already be registered; only the
// root class may omit it.
func (r *Registry) Register(name, parent string, methods []*Method) (*Class, error) {
	if _, exists := r.classes[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrClassExists, name)
	}

	var parentP *Class
	if parent != "" {
		parentP = r.classes[parent]
		if parentP == nil {
			return nil, fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParent, parent, name)
		}
	}

	cls := &Class{
		Name:        name,
		Superclass:  parent,
		SuperclassP: parentP,
		index:       make(map[string]*Method, len(methods)),
	}
	for _, m := range methods {
		if m.Body == nil && !m.Builtin {
			return nil, fmt.Errorf("%w: %s>>%s", ErrMissingBody, name, m.Selector)
		}
		// Later definitions of the same selector shadow earlier ones.
		cls.index[m.Selector] = m
		cls.Methods = append(cls.Methods, m)
	}

	r.classes[name] = cls
	r.order = append(r.order, cls)
	return cls, nil
}

// Lookup returns the named class, or nil.
func (r *Registry) Lookup(name string) *Class {
	return r.classes[name]
}

// All returns every class in registration order.
func (r *Registry) All() []*Class {
	return append([]*Class(nil), r.order...)
}

// Resolve walks the inheritance chain for selector, starting at className
// or, in super mode, at its parent.
func (r *Registry) Resolve(className, selector string, mode LookupMode) *Method {
	cls := r.classes[className]
	if cls == nil {
		return nil
	}
	if mode == LookupSuper {
		cls = cls.SuperclassP
	}
	for ; cls != nil; cls = cls.SuperclassP {
		if m := cls.LookupLocal(selector); m != nil {
			return m
		}
	}
	return nil
}

// IsSubclassOf reports whether className is ancestor or inherits from it.
func (r *Registry) IsSubclassOf(className, ancestor string) bool {
	for cls := r.classes[className]; cls != nil; cls = cls.SuperclassP {
		if cls.Name == ancestor {
			return true
		}
	}
	return false
}

// AllInheritedSelectors concatenates the selectors of className and its
// ancestors, most specific first. Shadowed selectors appear once per
// defining class.
func (r *Registry) AllInheritedSelectors(className string) []string {
	var out []string
	for cls := r.classes[className]; cls != nil; cls = cls.SuperclassP {
		for _, m := range cls.Methods {
			out = append(out, m.Selector)
		}
	}
	return out
}

// LoadProgram registers the user classes of p. Classes may appear before
// their parents; registration is retried until no progress is made.
func (r *Registry) LoadProgram(p *ast.Program) error {
	pending := append([]*ast.Class(nil), p.Classes...)
	for len(pending) > 0 {
		var next []*ast.Class
		for _, c := range pending {
			if c.Parent != "" && r.classes[c.Parent] == nil {
				next = append(next, c)
				continue
			}
			methods := make([]*Method, len(c.Methods))
			for i, m := range c.Methods {
				methods[i] = &Method{Selector: m.Selector, Body: m.Body}
			}
			if _, err := r.Register(c.Name, c.Parent, methods); err != nil {
				return err
			}
		}
		if len(next) == len(pending) {
			return fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParent, next[0].Parent, next[0].Name)
		}
		pending = next
	}
	return nil
}
