// Package shaders loads the precompiled SPIR-V stages of the triangle pipeline.
//
// The GLSL sources live in the repository's shaders directory; regenerate the
// binaries next to them with go generate.
package shaders

//go:generate glslc ../../shaders/triangle.vert -o ../../shaders/vert.spv
//go:generate glslc ../../shaders/triangle.frag -o ../../shaders/frag.spv

import (
	"context"
	"encoding/binary"
	"io/fs"
	"os"
	"path"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/JoeGuida/renderer/internal/hal"
)

const spirvMagic = 0x07230203

// FileNames maps each stage to its binary inside the shader directory.
var FileNames = map[hal.ShaderStage]string{
	hal.StageVertex:   "vert.spv",
	hal.StageFragment: "frag.spv",
}

var ErrInvalidSPIRV = errors.New("invalid SPIR-V")

// Set holds the bytecode of every stage, read once up front.
type Set struct {
	code map[hal.ShaderStage][]byte
}

// Load reads every stage listed in FileNames from dir inside fsys. Stages are
// read concurrently; the first failure cancels the rest.
func Load(ctx context.Context, fsys fs.FS, dir string) (*Set, error) {
	stages := make([]hal.ShaderStage, 0, len(FileNames))
	for stage := range FileNames {
		stages = append(stages, stage)
	}
	code := make([][]byte, len(stages))

	g, ctx := errgroup.WithContext(ctx)
	for idx, stage := range stages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			name := path.Join(dir, FileNames[stage])
			b, err := fs.ReadFile(fsys, name)
			if err != nil {
				return errors.Wrapf(err, "read %s shader", stage)
			}
			if err := Validate(b); err != nil {
				return errors.Wrapf(err, "%s", name)
			}

			code[idx] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &Set{code: make(map[hal.ShaderStage][]byte, len(stages))}
	for idx, stage := range stages {
		set.code[stage] = code[idx]
	}
	return set, nil
}

// LoadDir is Load against a directory on disk.
func LoadDir(ctx context.Context, dir string) (*Set, error) {
	return Load(ctx, os.DirFS(dir), ".")
}

// Validate checks that b is a whole number of little-endian SPIR-V words
// starting with the SPIR-V magic number.
func Validate(b []byte) error {
	if len(b) < 4 || len(b)%4 != 0 {
		return errors.Wrapf(ErrInvalidSPIRV, "%d bytes is not a whole number of words", len(b))
	}
	if magic := binary.LittleEndian.Uint32(b); magic != spirvMagic {
		return errors.Wrapf(ErrInvalidSPIRV, "magic number %#08x", magic)
	}
	return nil
}

func (s *Set) Bytecode(stage hal.ShaderStage) ([]byte, error) {
	code, ok := s.code[stage]
	if !ok {
		return nil, errors.Newf("no bytecode loaded for %s stage", stage)
	}
	return code, nil
}
