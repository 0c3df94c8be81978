package material

import (
	"fmt"
	"strconv"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/threext/glbuild"
)

// NormalDepthParams configures NewNormalDepth.
type NormalDepthParams struct {
	// LinearizeDepth stores the eye space depth instead of the normalized
	// device depth in the alpha channel.
	LinearizeDepth bool
}

// DefaultNormalDepthParams returns the parameters with depth linearization on.
func DefaultNormalDepthParams() NormalDepthParams {
	return NormalDepthParams{LinearizeDepth: true}
}

const (
	normalFragOutput = "gl_FragColor = vec4( packNormalToRGB( normal ), opacity );"
	uvVertexInclude  = "#include <uv_vertex>"
)

// NewNormalDepth returns a material storing view space normals in the rgb
// channels and depth in the alpha channel. It patches the host normal
// program, which must contain the uv_vertex include and the packed normal
// output statement.
func NewNormalDepth(lib ShaderLib, params NormalDepthParams) (*Material, error) {
	normal, err := lib.Source(LibNormal)
	if err != nil {
		return nil, fmt.Errorf("normal depth material: %w", err)
	}
	vertex, err := glbuild.Replace(normal.VertexShader, uvVertexInclude,
		"vProjectionMatrix = projectionMatrix;\n"+uvVertexInclude)
	if err != nil {
		return nil, fmt.Errorf("normal depth material: vertex: %w", err)
	}
	// The near and far planes are recovered from the projection matrix.
	depthOutput := string(glbuild.AppendLines(nil,
		"float zN = 2.0*gl_FragCoord.z - 1.0;",
		"float p23 = vProjectionMatrix[3][2];",
		"float k = (vProjectionMatrix[2][2] - 1.0)/(vProjectionMatrix[2][2] + 1.0);",
		"float inK = vProjectionMatrix[2][2] / p23;",
		"float zFar =  p23/(1.0 + p23*inK);",
		"float zNear =  1.0/(inK - 1.0/p23);",
		"float linearizedDepth =  2.0 * zNear * zFar / (zFar  + zNear - zN * (zFar - zNear));",
		"float depth_e = linearize_depth ? linearizedDepth : zN;",
	)) + "gl_FragColor = vec4( packNormalToRGB( normal ), depth_e );"
	fragment, err := glbuild.Replace(normal.FragmentShader, normalFragOutput, depthOutput)
	if err != nil {
		return nil, fmt.Errorf("normal depth material: fragment: %w", err)
	}
	m := newMaterial(NormalDepth,
		MergeUniforms(normal.Uniforms, Uniforms{"linearize_depth": {Value: params.LinearizeDepth}}),
		"varying mat4 vProjectionMatrix;\n"+vertex,
		"varying mat4 vProjectionMatrix;\nuniform bool linearize_depth;\n"+fragment,
	)
	return m, nil
}

// NewRGBADepth returns the host depth material with depth packed in the
// four rgba channels.
func NewRGBADepth(lib ShaderLib) (*Material, error) {
	depth, err := lib.Source(LibDepth)
	if err != nil {
		return nil, fmt.Errorf("RGBA depth material: %w", err)
	}
	m := newMaterial(RGBADepth, depth.Uniforms.Clone(), depth.VertexShader, depth.FragmentShader)
	m.DepthPacking = RGBADepthPacking
	m.Defines = map[string]string{"DEPTH_PACKING": strconv.Itoa(int(RGBADepthPacking))}
	return m, nil
}

// Host chunks of a vertex shader computing the transformed vertex with
// displacement and morph targets.
var positionVertexPars = []string{
	"common",
	"displacementmap_pars_vertex",
	"fog_pars_vertex",
	"morphtarget_pars_vertex",
	"skinning_pars_vertex",
	"shadowmap_pars_vertex",
	"logdepthbuf_pars_vertex",
	"clipping_planes_pars_vertex",
}

var positionVertexMain = []string{
	"skinbase_vertex",
	"begin_vertex",
	"morphtarget_vertex",
	"skinning_vertex",
	"displacementmap_vertex",
	"project_vertex",
	"logdepthbuf_vertex",
	"clipping_planes_vertex",
}

// positionVertexShader returns a vertex shader writing the varying declared
// by varyingDecl with the assignment statement.
func positionVertexShader(varyingDecl, assignment string) string {
	b := glbuild.AppendIncludes(nil, positionVertexPars...)
	b = glbuild.AppendLines(b, varyingDecl, "void main() {")
	b = glbuild.AppendIncludes(b, positionVertexMain...)
	b = glbuild.AppendLines(b, assignment, "}")
	return string(b)
}

// NewViewPosition returns a material writing the view space position of
// each fragment to its rgb channels. Floating point render targets are
// required to keep values outside of [0, 1].
func NewViewPosition(lib ShaderLib) (*Material, error) {
	disp, err := lib.Source(LibDisplacementMap)
	if err != nil {
		return nil, fmt.Errorf("view position material: %w", err)
	}
	vertex := positionVertexShader("varying vec3 vViewPosition;",
		"vViewPosition = (viewMatrix * modelMatrix * vec4( transformed, 1.0)).xyz;")
	fragment := string(glbuild.AppendLines(nil,
		"varying vec3 vViewPosition;",
		"void main() {",
		"gl_FragColor = vec4(vViewPosition.xyz,1.0);",
		"}",
	))
	return newMaterial(ViewPosition, disp.Uniforms.Clone(), vertex, fragment), nil
}

// NewWorldPosition returns a material writing the world space position of
// each fragment to its rgba channels.
func NewWorldPosition(lib ShaderLib) (*Material, error) {
	depth, err := lib.Source(LibDepth)
	if err != nil {
		return nil, fmt.Errorf("world position material: %w", err)
	}
	vertex := positionVertexShader("varying vec4 vWorldPosition;",
		"vWorldPosition = modelMatrix * vec4( transformed, 1.0 );")
	fragment := string(glbuild.AppendLines(nil,
		"varying vec4 vWorldPosition;",
		"void main() {",
		"gl_FragColor = vWorldPosition;",
		"}",
	))
	return newMaterial(WorldPosition, depth.Uniforms.Clone(), vertex, fragment), nil
}

// NewWorldNormal returns a material storing world space normals the way the
// host normal material stores view space normals. The viewMatrixInverse
// uniform must hold the camera world matrix; see WorldNormalBeforeRender.
func NewWorldNormal(lib ShaderLib) (*Material, error) {
	normal, err := lib.Source(LibNormal)
	if err != nil {
		return nil, fmt.Errorf("world normal material: %w", err)
	}
	fragment, err := glbuild.Replace(normal.FragmentShader, "gl_FragColor = ",
		"normal = normalize(mat3(viewMatrixInverse) * normal);\ngl_FragColor = ")
	if err != nil {
		return nil, fmt.Errorf("world normal material: fragment: %w", err)
	}
	m := newMaterial(WorldNormal,
		MergeUniforms(normal.Uniforms, Uniforms{"viewMatrixInverse": {Value: glbuild.IdentityMat4()}}),
		normal.VertexShader,
		"uniform mat4 viewMatrixInverse;\n"+fragment,
	)
	return m, nil
}

// WorldNormalBeforeRender returns a before render hook that calls prev,
// if not nil, and then copies the camera world matrix into the
// viewMatrixInverse uniform of world normal materials.
func WorldNormalBeforeRender(prev BeforeRenderFunc) BeforeRenderFunc {
	return func(cameraWorld glbuild.Mat4, m *Material) {
		if prev != nil {
			prev(cameraWorld, m)
		}
		if m == nil || m.Kind != WorldNormal {
			return
		}
		u := m.Uniforms["viewMatrixInverse"]
		if u == nil {
			u = &Uniform{}
			m.Uniforms["viewMatrixInverse"] = u
		}
		u.Value = cameraWorld
	}
}

// WireframeParams configures NewWireframe. Colors are linear rgb triplets.
type WireframeParams struct {
	Opacity   float32
	LineWidth float32
	Color     ms3.Vec
	LineColor ms3.Vec
	Side      Side
}

// NewWireframe returns a material drawing triangle edges over a flat color
// fill. Geometries need a barycentric attribute, see
// bufgeom.ComputeVertexBarycentricCoordinates.
func NewWireframe(lib ShaderLib, params WireframeParams) (*Material, error) {
	normal, err := lib.Source(LibNormal)
	if err != nil {
		return nil, fmt.Errorf("wireframe material: %w", err)
	}
	vertex := glbuild.AppendLines(nil,
		"attribute vec3 barycentric;",
		"varying vec3 vTestNormal;",
		"varying vec3 vPosition;",
		"varying vec3 vBarycentric;",
		"void main()",
		"{",
		"   vec3 vNormal = normalize(normalMatrix * normal);",
		"   vPosition = position;",
		"   vTestNormal = normal;",
		"   vBarycentric = barycentric;",
		"   gl_Position = projectionMatrix * modelViewMatrix * vec4(position, 1.0);",
		"}",
	)
	fragment := glbuild.AppendLines(nil,
		"uniform float opacity;",
		"uniform float lineWidth;",
		"uniform vec3 color;",
		"uniform vec3 lineColor;",
		"varying vec3 vTestNormal;",
		"varying vec3 vPosition;",
		"varying vec3 vBarycentric;",
		"#ifdef GL_OES_standard_derivatives",
		"   float edgeFactor(vec3 vBarycentric){",
		"       vec3 d = lineWidth*fwidth(vBarycentric);",
		"       vec3 a3 = smoothstep(vec3(0.0), d, vBarycentric);",
		"       return min(min(a3.x, a3.y), a3.z);",
		"   }",
		"#endif",
		"void main()",
		"{",
		"#ifdef GL_OES_standard_derivatives",
		"    gl_FragColor = mix(vec4(lineColor,1.0), vec4(color,opacity), edgeFactor(vBarycentric));",
		"#else",
		"   if(any(lessThan(vBarycentric, vec3(0.02)))){",
		"       gl_FragColor = vec4(lineColor,1.0);",
		"   }",
		"   else{",
		"       gl_FragColor = vec4(color,opacity);",
		"   }",
		"#endif",
		"}",
	)
	m := newMaterial(Wireframe,
		MergeUniforms(normal.Uniforms, Uniforms{
			"opacity":   {Value: params.Opacity},
			"lineWidth": {Value: params.LineWidth},
			"color":     {Value: params.Color},
			"lineColor": {Value: params.LineColor},
		}),
		string(vertex),
		string(fragment),
	)
	m.Extensions.Derivatives = true
	m.Opacity = params.Opacity
	m.Transparent = params.Opacity != 1
	m.Side = params.Side
	return m, nil
}
