// Package manifest handles sol.toml project configuration.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the manifest file looked up in project directories.
const FileName = "sol.toml"

// Recognised program file extensions.
const (
	ExtSource = ".sol"
	ExtXML    = ".xml"
	ExtImage  = ".solimg"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid manifest")

// Manifest represents a sol.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project"`
	Log     LogConfig     `toml:"log"`
	Image   ImageConfig   `toml:"image"`
	Runtime RuntimeConfig `toml:"runtime"`

	// Dir is the directory containing the sol.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project names the program to run.
type Project struct {
	Name   string `toml:"name"`
	Source string `toml:"source"`
	Input  string `toml:"input"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// ImageConfig configures image output.
type ImageConfig struct {
	Output string `toml:"output"`
}

// RuntimeConfig tunes the interpreter.
type RuntimeConfig struct {
	MaxDepth int `toml:"max_depth"`
}

// Load parses a sol.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes manifest text and fills defaults. Unknown keys are an error.
func Parse(data string) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(data, &m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	// Defaults
	if m.Project.Source == "" {
		m.Project.Source = "main" + ExtSource
	}
	if m.Image.Output == "" {
		m.Image.Output = strings.TrimSuffix(filepath.Base(m.Project.Source), filepath.Ext(m.Project.Source)) + ExtImage
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a sol.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks field ranges and the source file kind.
func (m *Manifest) Validate() error {
	switch Kind(m.Project.Source) {
	case ExtSource, ExtXML, ExtImage:
	default:
		return fmt.Errorf("%w: project.source %q must end in %s, %s or %s",
			ErrInvalid, m.Project.Source, ExtSource, ExtXML, ExtImage)
	}
	if m.Log.Verbosity < 0 {
		return fmt.Errorf("%w: log.verbosity %d is negative", ErrInvalid, m.Log.Verbosity)
	}
	if Kind(m.Image.Output) != ExtImage {
		return fmt.Errorf("%w: image.output %q must end in %s", ErrInvalid, m.Image.Output, ExtImage)
	}
	return nil
}

// ResolvePath makes p relative to the manifest directory. Empty and
// absolute paths are returned unchanged.
func (m *Manifest) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// SourcePath returns the absolute path of the program file.
func (m *Manifest) SourcePath() string {
	return m.ResolvePath(m.Project.Source)
}

// InputPath returns the absolute path of the input file, or "" for stdin.
func (m *Manifest) InputPath() string {
	return m.ResolvePath(m.Project.Input)
}

// ImagePath returns the absolute path images are built to.
func (m *Manifest) ImagePath() string {
	return m.ResolvePath(m.Image.Output)
}

// LogPath returns the absolute log file path, or "" for stderr.
func (m *Manifest) LogPath() string {
	return m.ResolvePath(m.Log.File)
}

// Kind returns the lower-cased extension of a program path.
func Kind(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
