// Package glbuild contains helpers for assembling GLSL shader sources
// from byte buffers without intermediate allocations.
package glbuild

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// ErrTokenNotFound is returned by Replace when the source does not contain
// the token to be replaced.
var ErrTokenNotFound = errors.New("shader token not found")

// Mat4 is a 4x4 matrix stored in column major order, as GLSL expects it.
type Mat4 [16]float32

// IdentityMat4 returns the 4x4 identity matrix.
func IdentityMat4() Mat4 {
	return Mat4{0: 1, 5: 1, 10: 1, 15: 1}
}

// At returns the element at row i and column j.
func (m Mat4) At(i, j int) float32 { return m[j*4+i] }

// AppendIncludes appends an #include directive per chunk.
func AppendIncludes(b []byte, chunks ...string) []byte {
	for _, chunk := range chunks {
		b = append(b, "#include <"...)
		b = append(b, chunk...)
		b = append(b, ">\n"...)
	}
	return b
}

// AppendLines appends each line followed by a newline.
func AppendLines(b []byte, lines ...string) []byte {
	for _, line := range lines {
		b = append(b, line...)
		b = append(b, '\n')
	}
	return b
}

// Replace replaces the first occurrence of old in src with new.
func Replace(src, old, new string) (string, error) {
	if !strings.Contains(src, old) {
		return "", fmt.Errorf("%w: %q", ErrTokenNotFound, old)
	}
	return strings.Replace(src, old, new, 1), nil
}

// AppendVec3Decl appends a GLSL vec3 declaration such as "vec3 name=vec3(1,2,3);".
func AppendVec3Decl(b []byte, name string, v ms3.Vec) []byte {
	b = append(b, "vec3 "...)
	b = append(b, name...)
	b = append(b, "=vec3("...)
	arr := v.Array()
	b = AppendFloats(b, arr[:], ',', '-', '.')
	b = append(b, ')', ';', '\n')
	return b
}

// AppendVec2Decl appends a GLSL vec2 declaration of name initialized to v.
func AppendVec2Decl(b []byte, name string, v ms2.Vec) []byte {
	b = append(b, "vec2 "...)
	b = append(b, name...)
	b = append(b, "=vec2("...)
	arr := v.Array()
	b = AppendFloats(b, arr[:], ',', '-', '.')
	b = append(b, ')', ';', '\n')
	return b
}

// AppendFloatDecl appends a GLSL float declaration of name initialized to v.
func AppendFloatDecl(b []byte, name string, v float32) []byte {
	b = append(b, "float "...)
	b = append(b, name...)
	b = append(b, '=')
	b = AppendFloat(b, v, '-', '.')
	b = append(b, ';', '\n')
	return b
}

// AppendBoolDecl appends a GLSL bool declaration of name initialized to v.
func AppendBoolDecl(b []byte, name string, v bool) []byte {
	b = append(b, "bool "...)
	b = append(b, name...)
	b = append(b, '=')
	b = strconv.AppendBool(b, v)
	b = append(b, ';', '\n')
	return b
}

// AppendMat4Decl appends a GLSL mat4 declaration. The elements of m44 are
// written in column major order, as the mat4 constructor takes them.
func AppendMat4Decl(b []byte, name string, m44 Mat4) []byte {
	b = append(b, "mat4 "...)
	b = append(b, name...)
	b = append(b, "=mat4("...)
	b = AppendFloats(b, m44[:], ',', '-', '.')
	b = append(b, ");\n"...)
	return b
}

// AppendFloat appends v with up to 6 decimals and trailing zeroes trimmed.
// neg and decimal replace the minus sign and decimal point, which allows
// building identifiers out of numbers.
func AppendFloat(b []byte, v float32, neg, decimal byte) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', 6, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

// AppendFloats appends the elements of s formatted with AppendFloat.
// A non-zero sep is written between consecutive elements.
func AppendFloats(b []byte, s []float32, sep, neg, decimal byte) []byte {
	for i, v := range s {
		b = AppendFloat(b, v, neg, decimal)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}
