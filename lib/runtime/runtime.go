package runtime

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/sol25/pkg/ast"
)

var log = commonlog.GetLogger("sol.runtime")

// Entry point of every program.
const (
	EntryClass    = "Main"
	EntrySelector = "run"
)

// DefaultMaxDepth bounds the context stack so runaway recursion fails as a
// runtime error instead of exhausting the Go stack.
const DefaultMaxDepth = 50000

// Runtime executes one SOL25 program. It is single-threaded; callers that
// share a Runtime between goroutines must serialize access.
type Runtime struct {
	Registry *Registry
	Objects  *ObjectSpace
	Context  ContextStack
	Scopes   ScopeStack

	in         LineReader
	out        io.Writer
	maxDepth   int
	primitives map[string]primitive
	runID      string
}

// Config holds runtime configuration.
type Config struct {
	Input    LineReader // source of `read`; defaults to stdin
	Output   io.Writer  // sink of `print`; defaults to stdout
	MaxDepth int        // context stack limit; 0 selects DefaultMaxDepth, <0 disables
}

// DefaultConfig returns a configuration reading stdin and writing stdout.
func DefaultConfig() *Config {
	return &Config{
		Input:    NewLineReader(os.Stdin),
		Output:   os.Stdout,
		MaxDepth: DefaultMaxDepth,
	}
}

// New creates a runtime with the built-in classes registered and the
// singletons allocated.
func New(cfg *Config) *Runtime {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	reg := NewRegistry()
	r := &Runtime{
		Registry: reg,
		Objects:  NewObjectSpace(reg),
		in:       cfg.Input,
		out:      cfg.Output,
		maxDepth: cfg.MaxDepth,
		runID:    uuid.NewString(),
	}
	if r.in == nil {
		r.in = NewLineReader(os.Stdin)
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.maxDepth == 0 {
		r.maxDepth = DefaultMaxDepth
	}

	r.primitives = make(map[string]primitive)
	r.registerObjectPrimitives()
	r.registerIntegerPrimitives()
	r.registerStringPrimitives()
	r.registerBooleanPrimitives()
	r.registerBlockPrimitives()

	return r
}

// Load registers the classes of p.
func (r *Runtime) Load(p *ast.Program) error {
	if err := r.Registry.LoadProgram(p); err != nil {
		return &Error{Kind: ErrOtherRuntime, Msg: err.Error()}
	}
	log.Infof("[%s] loaded %d classes", r.runID, len(p.Classes))
	return nil
}

// Run instantiates Main and sends it run.
func (r *Runtime) Run() (ID, error) {
	if r.Registry.Lookup(EntryClass) == nil {
		return NoID, errorf(ErrOtherRuntime, "class %s not found", EntryClass)
	}

	main := r.Objects.Allocate(EntryClass, Opaque{})
	res, err := r.Resolve(main, EntrySelector, LookupNormal)
	if err != nil {
		return NoID, err
	}
	if res.Kind != ResolveUser {
		return NoID, errorf(ErrOtherRuntime, "class %s has no method %s", EntryClass, EntrySelector)
	}

	log.Infof("[%s] running %s>>%s", r.runID, EntryClass, EntrySelector)
	result, err := r.Dispatch(res, nil, main)
	log.Infof("[%s] finished with %d objects allocated", r.runID, r.Objects.Len())
	return result, err
}

// Execute loads p into a fresh runtime and runs it.
func Execute(p *ast.Program, cfg *Config) error {
	r := New(cfg)
	if err := r.Load(p); err != nil {
		return err
	}
	_, err := r.Run()
	return err
}
