package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/sol25/compiler"
	"github.com/chazu/sol25/lib/runtime"
	"github.com/chazu/sol25/manifest"
	"github.com/chazu/sol25/pkg/ast"
	"github.com/chazu/sol25/pkg/console"
	"github.com/chazu/sol25/pkg/image"
	"github.com/chazu/sol25/server"
)

var errHelp = flag.ErrHelp

// common holds the flags every command accepts.
type common struct {
	verbosity   int
	logFile     string
	manifestDir string

	fs       *flag.FlagSet
	manifest *manifest.Manifest
}

func (e *env) newCommon(name string) *common {
	c := &common{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	c.fs.SetOutput(e.stderr)
	c.fs.IntVar(&c.verbosity, "v", 0, "log verbosity (1 info, 2 debug)")
	c.fs.StringVar(&c.logFile, "log", "", "write log to `file` instead of stderr")
	c.fs.StringVar(&c.manifestDir, "manifest", "", "load sol.toml from `dir` instead of searching")
	return c
}

// parse parses flags, loads the manifest and configures logging.
func (c *common) parse(args []string) error {
	if err := c.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return usageErr("%v", err)
	}

	var err error
	if c.manifestDir != "" {
		c.manifest, err = manifest.Load(c.manifestDir)
	} else if c.fs.NArg() == 0 {
		c.manifest, err = manifest.FindAndLoad(".")
	}
	if err != nil {
		return usageErr("%v", err)
	}
	if c.manifest != nil {
		if err := c.manifest.Validate(); err != nil {
			return usageErr("%v", err)
		}
	}

	c.configureLogging()
	return nil
}

func (c *common) configureLogging() {
	verbosity, path := c.verbosity, c.logFile
	if c.manifest != nil {
		if verbosity == 0 {
			verbosity = c.manifest.Log.Verbosity
		}
		if path == "" {
			path = c.manifest.LogPath()
		}
	}
	if verbosity <= 0 {
		// Program output must not be interleaved with log lines.
		verbosity = -4
	}
	if path == "" {
		commonlog.Configure(verbosity, nil)
	} else {
		commonlog.Configure(verbosity, &path)
	}
}

// programPath returns the single file argument or the manifest's source.
func (c *common) programPath() (string, error) {
	switch c.fs.NArg() {
	case 0:
		if c.manifest == nil {
			return "", usageErr("no program file given and no %s found", manifest.FileName)
		}
		return c.manifest.SourcePath(), nil
	case 1:
		return c.fs.Arg(0), nil
	}
	return "", usageErr("expected one program file, got %d", c.fs.NArg())
}

// loadProgram reads a source file, XML tree or image. Source text is
// returned alongside for images built from it.
func (c *common) loadProgram(path string) (*ast.Program, []byte, error) {
	switch manifest.Kind(path) {
	case manifest.ExtImage:
		img, err := image.Load(path)
		if err != nil {
			return nil, nil, inputErr(err)
		}
		if err := c.verifyImage(img); err != nil {
			return nil, nil, inputErr(fmt.Errorf("%s: %w", path, err))
		}
		log.Infof("loaded image %s (build %s)", path, img.Header.BuildID)
		return img.Program, nil, nil

	case manifest.ExtXML:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, inputErr(err)
		}
		defer f.Close()
		prog, err := compiler.ParseXML(f)
		return prog, nil, err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, inputErr(err)
	}
	prog, err := compiler.Compile(string(src))
	return prog, src, err
}

// verifyImage checks an image against the manifest's source file when
// there is one to compare with.
func (c *common) verifyImage(img *image.Image) error {
	if c.manifest == nil || manifest.Kind(c.manifest.Project.Source) != manifest.ExtSource {
		return nil
	}
	src, err := os.ReadFile(c.manifest.SourcePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return img.Verify(src)
}

// withOutput runs fn against a buffered stdout and flushes it on every path.
func (e *env) withOutput(fn func(w *bufio.Writer) error) error {
	w := bufio.NewWriter(e.stdout)
	err := fn(w)
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = outputErr(ferr)
	}
	return err
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (e *env) runCommand(args []string) error {
	c := e.newCommon("run")
	inputFile := c.fs.String("input", "", "read `String read` lines from file instead of stdin")
	maxDepth := c.fs.Int("max-depth", 0, "nested send limit (0 uses the manifest or built-in default)")
	if err := c.parse(args); err != nil {
		return err
	}

	path, err := c.programPath()
	if err != nil {
		return err
	}
	prog, _, err := c.loadProgram(path)
	if err != nil {
		return err
	}

	cfg := &runtime.Config{MaxDepth: *maxDepth}
	if cfg.MaxDepth == 0 && c.manifest != nil {
		cfg.MaxDepth = c.manifest.Runtime.MaxDepth
	}

	in := *inputFile
	if in == "" && c.manifest != nil {
		in = c.manifest.InputPath()
	}
	var f *os.File
	if in == "" {
		f = e.stdin
	} else {
		if f, err = os.Open(in); err != nil {
			return inputErr(err)
		}
		defer f.Close()
	}
	reader := console.Open(f, "")
	defer reader.Close()

	return e.withOutput(func(w *bufio.Writer) error {
		cfg.Output = w
		cfg.Input = &flushingReader{LineReader: reader, w: w}
		return runtime.Execute(prog, cfg)
	})
}

// flushingReader flushes pending output before each read so a prompt
// printed by the program is visible before input is requested.
type flushingReader struct {
	runtime.LineReader
	w *bufio.Writer
}

func (f *flushingReader) ReadLine() (string, error) {
	if err := f.w.Flush(); err != nil {
		return "", err
	}
	return f.LineReader.ReadLine()
}

func (e *env) parseCommand(args []string) error {
	c := e.newCommon("parse")
	if err := c.parse(args); err != nil {
		return err
	}
	path, err := c.programPath()
	if err != nil {
		return err
	}
	prog, _, err := c.loadProgram(path)
	if err != nil {
		return err
	}
	return e.withOutput(func(w *bufio.Writer) error {
		if err := compiler.WriteXML(w, prog); err != nil {
			return outputErr(err)
		}
		return nil
	})
}

func (e *env) checkCommand(args []string) error {
	c := e.newCommon("check")
	if err := c.parse(args); err != nil {
		return err
	}
	path, err := c.programPath()
	if err != nil {
		return err
	}
	if manifest.Kind(path) == manifest.ExtXML {
		prog, _, err := c.loadProgram(path)
		if err != nil {
			return err
		}
		return compiler.Analyze(prog)
	}
	_, _, err = c.loadProgram(path)
	return err
}

func (e *env) buildCommand(args []string) error {
	c := e.newCommon("build")
	out := c.fs.String("o", "", "image `path` (default from sol.toml or the source name)")
	if err := c.parse(args); err != nil {
		return err
	}
	path, err := c.programPath()
	if err != nil {
		return err
	}
	if manifest.Kind(path) == manifest.ExtImage {
		return usageErr("%s is already an image", path)
	}

	prog, src, err := c.loadProgram(path)
	if err != nil {
		return err
	}
	if src == nil {
		if err := compiler.Analyze(prog); err != nil {
			return err
		}
	}

	target := *out
	if target == "" && c.manifest != nil && c.fs.NArg() == 0 {
		target = c.manifest.ImagePath()
	}
	if target == "" {
		target = strings.TrimSuffix(path, filepath.Ext(path)) + manifest.ExtImage
	}

	img := image.New(prog, src)
	if err := image.Save(target, img); err != nil {
		return outputErr(err)
	}
	log.Infof("wrote %s (build %s)", target, img.Header.BuildID)
	return nil
}

func (e *env) lspCommand(args []string) error {
	c := e.newCommon("lsp")
	if err := c.parse(args); err != nil {
		return err
	}
	if c.fs.NArg() != 0 {
		return usageErr("lsp takes no arguments")
	}
	if err := server.NewLSP(version).Run(); err != nil {
		return fmt.Errorf("language server: %w", err)
	}
	return nil
}
