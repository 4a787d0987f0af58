// Package image stores analyzed SOL25 programs as CBOR images so they can
// be run again without the front end.
package image

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/chazu/sol25/pkg/ast"
)

const (
	// Magic identifies SOL25 image files.
	Magic = "SOL25IMG"
	// Version is the current image format version.
	Version = 1
)

var (
	ErrBadMagic   = errors.New("image: not a SOL25 image")
	ErrVersion    = errors.New("image: unsupported version")
	ErrNoProgram  = errors.New("image: no program")
	ErrStaleImage = errors.New("image: source has changed")
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Header describes how and from what an image was built.
type Header struct {
	Magic      string   `cbor:"magic"`
	Version    int      `cbor:"version"`
	BuildID    string   `cbor:"build_id"`
	SourceHash [32]byte `cbor:"source_hash"`
}

// Image is a header followed by the program tree.
type Image struct {
	Header  Header       `cbor:"header"`
	Program *ast.Program `cbor:"program"`
}

// New wraps an analyzed program. source is the text it was compiled from
// and may be nil for programs loaded from XML.
func New(p *ast.Program, source []byte) *Image {
	return &Image{
		Header: Header{
			Magic:      Magic,
			Version:    Version,
			BuildID:    uuid.NewString(),
			SourceHash: sha256.Sum256(source),
		},
		Program: p,
	}
}

// Marshal serializes an image to canonical CBOR.
func Marshal(img *Image) ([]byte, error) {
	if img.Program == nil {
		return nil, ErrNoProgram
	}
	return encMode.Marshal(img)
}

// Unmarshal decodes and checks an image.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if img.Header.Magic != Magic {
		return nil, ErrBadMagic
	}
	if img.Header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, img.Header.Version)
	}
	if img.Program == nil {
		return nil, ErrNoProgram
	}
	return &img, nil
}

// Verify reports ErrStaleImage when source no longer matches the image.
func (img *Image) Verify(source []byte) error {
	if sha256.Sum256(source) != img.Header.SourceHash {
		return ErrStaleImage
	}
	return nil
}

// Save writes an image to path, creating parent directories.
func Save(path string, img *Image) error {
	data, err := Marshal(img)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("image: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads an image from path.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
