// Package material builds the shader programs of special purpose mesh
// materials on top of a host engine shader library.
//
// Shader sources reference the host chunks with #include directives which
// are resolved by the host preprocessor. The materials only patch the
// host programs and never interpret the chunks.
package material

import (
	"errors"
	"fmt"
	"sort"

	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/threext/glbuild"
)

// ErrUnknownShader is returned by a ShaderLib that has no program registered
// under the requested name.
var ErrUnknownShader = errors.New("unknown shader")

// Names of the host shader library programs used by the materials.
const (
	LibNormal          = "normal"
	LibDepth           = "depth"
	LibDisplacementMap = "displacementmap"
)

// Uniform is a shader uniform value. Supported value types are float32,
// bool, ms2.Vec, ms3.Vec (also used for colors) and glbuild.Mat4.
type Uniform struct {
	Value any
}

// Uniforms maps uniform names to their values.
type Uniforms map[string]*Uniform

// Clone returns a copy of u with every uniform copied.
func (u Uniforms) Clone() Uniforms {
	return MergeUniforms(u)
}

// Names returns the uniform names in sorted order.
func (u Uniforms) Names() []string {
	names := make([]string, 0, len(u))
	for name := range u {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MergeUniforms returns a copy of all uniforms. Later sets take
// precedence over earlier ones for equal names.
func MergeUniforms(sets ...Uniforms) Uniforms {
	merged := make(Uniforms)
	for _, set := range sets {
		for name, u := range set {
			cp := *u
			merged[name] = &cp
		}
	}
	return merged
}

// ShaderSource is a shader program: its default uniforms and the
// vertex and fragment sources.
type ShaderSource struct {
	Uniforms       Uniforms
	VertexShader   string
	FragmentShader string
}

// ShaderLib gives access to the shader programs of the host engine.
type ShaderLib interface {
	Source(name string) (ShaderSource, error)
}

// StaticLib is a ShaderLib backed by a map.
type StaticLib map[string]ShaderSource

func (lib StaticLib) Source(name string) (ShaderSource, error) {
	src, ok := lib[name]
	if !ok {
		return ShaderSource{}, fmt.Errorf("%w %q", ErrUnknownShader, name)
	}
	return src, nil
}

// Kind identifies the material variant.
type Kind uint8

const (
	kindUndefined Kind = iota
	NormalDepth
	RGBADepth
	ViewPosition
	WorldNormal
	WorldPosition
	Wireframe
)

func (k Kind) String() string {
	switch k {
	case NormalDepth:
		return "normal depth"
	case RGBADepth:
		return "RGBA depth"
	case ViewPosition:
		return "view position"
	case WorldNormal:
		return "world normal"
	case WorldPosition:
		return "world position"
	case Wireframe:
		return "wireframe"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsNormal reports whether materials of kind k render like a normal
// material and accept its parameters.
func (k Kind) IsNormal() bool { return k == NormalDepth || k == WorldNormal }

// IsDepth reports whether materials of kind k render like a depth material.
func (k Kind) IsDepth() bool { return k == RGBADepth || k == WorldPosition }

// Side selects which faces are rendered.
type Side uint8

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// DepthPacking selects how depth is stored in the output color.
type DepthPacking uint16

// Values match the host engine constants.
const (
	BasicDepthPacking DepthPacking = 3200
	RGBADepthPacking  DepthPacking = 3201
)

// NormalMapType selects the space normal maps are expressed in.
type NormalMapType uint16

const (
	TangentSpaceNormalMap NormalMapType = 0
	ObjectSpaceNormalMap  NormalMapType = 1
)

// Extensions lists the GLSL extensions a material requires.
type Extensions struct {
	Derivatives bool
}

// Maps holds texture parameters. Textures are host objects and stay
// nil unless set by the caller.
type Maps struct {
	BumpMap           any
	BumpScale         float32
	NormalMap         any
	NormalMapType     NormalMapType
	NormalScale       ms2.Vec
	DisplacementMap   any
	DisplacementScale float32
	DisplacementBias  float32
}

// BeforeRenderFunc is called before rendering a mesh with the camera
// world matrix and the mesh material.
type BeforeRenderFunc func(cameraWorld glbuild.Mat4, m *Material)

// Material is a shader material ready to be handed to the host engine.
type Material struct {
	Kind           Kind
	Uniforms       Uniforms
	Defines        map[string]string
	VertexShader   string
	FragmentShader string
	Extensions     Extensions
	Maps           Maps

	DepthPacking       DepthPacking
	Opacity            float32
	Transparent        bool
	Side               Side
	Wireframe          bool
	WireframeLinewidth float32
	Fog                bool
	Lights             bool
	Skinning           bool
	MorphTargets       bool
	MorphNormals       bool
}

// newMaterial returns a material of kind k with the host engine defaults.
func newMaterial(k Kind, uniforms Uniforms, vertex, fragment string) *Material {
	return &Material{
		Kind:           k,
		Uniforms:       uniforms,
		VertexShader:   vertex,
		FragmentShader: fragment,
		Maps: Maps{
			BumpScale:         1,
			NormalMapType:     TangentSpaceNormalMap,
			NormalScale:       ms2.Vec{X: 1, Y: 1},
			DisplacementScale: 1,
		},
		Opacity:            1,
		WireframeLinewidth: 1,
	}
}

// AppendConstUniforms appends a GLSL const declaration per uniform in
// sorted name order. It fails on uniform values of unsupported type.
func (m *Material) AppendConstUniforms(b []byte) ([]byte, error) {
	start := len(b)
	for _, name := range m.Uniforms.Names() {
		b = append(b, "const "...)
		switch v := m.Uniforms[name].Value.(type) {
		case float32:
			b = glbuild.AppendFloatDecl(b, name, v)
		case bool:
			b = glbuild.AppendBoolDecl(b, name, v)
		case ms2.Vec:
			b = glbuild.AppendVec2Decl(b, name, v)
		case ms3.Vec:
			b = glbuild.AppendVec3Decl(b, name, v)
		case glbuild.Mat4:
			b = glbuild.AppendMat4Decl(b, name, v)
		default:
			return b[:start], fmt.Errorf("uniform %q: unsupported value type %T", name, v)
		}
	}
	return b, nil
}
