//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/driver/software"
	"github.com/gogpu/g3d/gfx"
	"github.com/gogpu/g3d/internal/cache"
)

// ErrSPIRV is returned when the compiler output is not a whole number of
// SPIR-V words.
var ErrSPIRV = errors.New("wgpu: malformed SPIR-V")

// program is one compiled effect: its SPIR-V and the reflected parameter
// blob the copies handed to effects are made from.
type program struct {
	words []uint32
	data  *gfx.EffectData
}

// compiled holds programs by effect source. Reflection and module creation
// use the same entry, as do cloned effects.
var compiled = cache.New[*program](64)

// compile parses, validates and reflects WGSL effect code and translates it
// to SPIR-V.
func compile(code []byte) (*program, error) {
	return compiled.GetOrCreate(cache.KeyOf(code), func() (*program, error) {
		src := string(code)
		ast, err := naga.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("wgpu: compile effect: %w", err)
		}
		module, err := naga.LowerWithSource(ast, src)
		if err != nil {
			return nil, fmt.Errorf("wgpu: compile effect: %w", err)
		}
		verrs, err := naga.Validate(module)
		if err != nil {
			return nil, fmt.Errorf("wgpu: compile effect: %w", err)
		}
		if len(verrs) > 0 {
			return nil, fmt.Errorf("wgpu: compile effect: %w", &verrs[0])
		}
		// Reflect before code generation; the backend may rewrite the module.
		data := reflectModule(module)
		opts := naga.DefaultOptions()
		spv, err := naga.GenerateSPIRV(module, spirv.Options{Version: opts.SPIRVVersion})
		if err != nil {
			return nil, fmt.Errorf("wgpu: compile effect: %w", err)
		}
		words, err := spirvWords(spv)
		if err != nil {
			return nil, err
		}
		return &program{words: words, data: data}, nil
	})
}

// Reflect compiles WGSL effect code with naga and describes it as one
// technique "Default". Each fragment entry point is a pass, in source
// order; uniforms, textures and samplers are parameters in declaration
// order.
func Reflect(code []byte) (*gfx.EffectData, error) {
	if len(code) == 0 {
		return nil, software.ErrEmptyEffect
	}
	p, err := compile(code)
	if err != nil {
		return nil, err
	}
	return p.data.Clone(), nil
}

func reflectModule(m *ir.Module) *gfx.EffectData {
	data := &gfx.EffectData{}
	for _, gv := range m.GlobalVariables {
		var p *gfx.EffectParameter
		switch gv.Space {
		case ir.SpaceUniform:
			p = uniformParameter(m, gv.Name, gv.Type)
		case ir.SpaceHandle:
			p = resourceParameter(m, gv.Name, gv.Type)
		default:
			continue
		}
		data.Parameters = append(data.Parameters, p)
	}
	var passes []string
	for _, ep := range m.EntryPoints {
		if ep.Stage == ir.StageFragment {
			passes = append(passes, ep.Name)
		}
	}
	if len(passes) == 0 {
		passes = []string{"P0"}
	}
	data.Techniques = []gfx.EffectTechnique{{Name: "Default", Passes: passes}}
	return data
}

func typeOf(m *ir.Module, h ir.TypeHandle) ir.TypeInner {
	if int(h) >= len(m.Types) {
		return nil
	}
	return m.Types[h].Inner
}

func resourceParameter(m *ir.Module, name string, h ir.TypeHandle) *gfx.EffectParameter {
	p := &gfx.EffectParameter{Name: name, Class: gfx.ParameterObject}
	switch typeOf(m, h).(type) {
	case ir.ImageType:
		p.Type = gfx.ParameterTexture
	case ir.SamplerType:
		p.Type = gfx.ParameterSampler
	}
	return p
}

// uniformParameter maps a uniform's type to a parameter with zeroed
// storage. Types other than scalars, vectors, float matrices and
// fixed-size arrays of them become structs without storage.
func uniformParameter(m *ir.Module, name string, h ir.TypeHandle) *gfx.EffectParameter {
	p := &gfx.EffectParameter{Name: name}
	inner := typeOf(m, h)
	if arr, ok := inner.(ir.ArrayType); ok && arr.Size.Constant != nil {
		p.Elements = int32(*arr.Size.Constant) //nolint:gosec // WGSL array sizes are small
		inner = typeOf(m, arr.Base)
	}
	width, ok := shapeOf(p, inner)
	if !ok {
		p.Class, p.Type, p.Elements = gfx.ParameterStruct, gfx.ParameterVoid, 0
		return p
	}
	count := max(p.Elements, 1)
	p.Values = make([]byte, width*p.Rows*p.Columns*count)
	return p
}

// shapeOf fills in class, type and dimensions and returns the element
// width in bytes.
func shapeOf(p *gfx.EffectParameter, inner ir.TypeInner) (int32, bool) {
	switch t := inner.(type) {
	case ir.ScalarType:
		p.Class, p.Rows, p.Columns = gfx.ParameterScalar, 1, 1
		return scalarOf(p, t)
	case ir.VectorType:
		p.Class, p.Rows, p.Columns = gfx.ParameterVector, 1, int32(t.Size)
		return scalarOf(p, t.Scalar)
	case ir.MatrixType:
		if t.Scalar.Kind != ir.ScalarFloat {
			return 0, false
		}
		p.Class, p.Columns, p.Rows = gfx.ParameterMatrixColumns, int32(t.Columns), int32(t.Rows)
		return scalarOf(p, t.Scalar)
	}
	return 0, false
}

func scalarOf(p *gfx.EffectParameter, s ir.ScalarType) (int32, bool) {
	switch s.Kind {
	case ir.ScalarFloat:
		p.Type = gfx.ParameterFloat
	case ir.ScalarSint, ir.ScalarUint:
		p.Type = gfx.ParameterInt
	case ir.ScalarBool:
		p.Type = gfx.ParameterBool
	default:
		return 0, false
	}
	if s.Width == 0 {
		return 4, true
	}
	return int32(s.Width), true
}

// spirvWords reinterprets little-endian compiler output as SPIR-V words.
func spirvWords(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, ErrSPIRV
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}

func createShaderModule(device hal.Device, label string, code []byte) (hal.ShaderModule, error) {
	p, err := compile(code)
	if err != nil {
		return nil, err
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: p.words},
	})
}
