// Package hek defines the little-endian, exact-size binary layout shared by
// every structure that ends up in a Halo cache file: tag strings, points,
// matrices, flagged indices, and the cache file header family in map.go.
package hek

import (
	"encoding/binary"
	"math"
)

// NullIndex is the sentinel used by 16-bit tag/node/marker indices.
const NullIndex uint16 = 0xFFFF

// NullTagID is the null encoding of a 32-bit TagID.
const NullTagID uint32 = 0xFFFFFFFF

// NullClass is the absence marker for a secondary/tertiary class code.
const NullClass uint32 = 0xFFFFFFFF

// TagString is a 32-byte NUL-padded ASCII string, the layout used for tag
// names, cache file names, and build strings throughout the format.
type TagString [32]byte

// NewTagString truncates or pads s to the fixed 32-byte record.
func NewTagString(s string) TagString {
	var t TagString
	n := copy(t[:], s)
	_ = n
	return t
}

// String returns the string up to the first NUL.
func (t TagString) String() string {
	for i, b := range t {
		if b == 0 {
			return string(t[:i])
		}
	}
	return string(t[:])
}

// Point3D is a little-endian 3-float point.
type Point3D struct {
	X, Y, Z float32
}

// Vector3D is a little-endian 3-float vector (same layout as Point3D).
type Vector3D = Point3D

// Add returns the component-wise sum of a and b.
func (a Point3D) Add(b Point3D) Point3D {
	return Point3D{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Scale returns a scaled by s.
func (a Point3D) Scale(s float32) Point3D {
	return Point3D{a.X * s, a.Y * s, a.Z * s}
}

// Matrix3x3 is a little-endian row-major 3x3 matrix.
type Matrix3x3 struct {
	M [3][3]float32
}

// Identity3x3 returns the 3x3 identity matrix.
func Identity3x3() Matrix3x3 {
	var m Matrix3x3
	for i := 0; i < 3; i++ {
		m.M[i][i] = 1.0
	}
	return m
}

// Multiply returns a * b (matrix product, a applied after b).
func (a Matrix3x3) Multiply(b Matrix3x3) Matrix3x3 {
	var out Matrix3x3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float32
			for k := 0; k < 3; k++ {
				sum += a.M[i][k] * b.M[k][j]
			}
			out.M[i][j] = sum
		}
	}
	return out
}

// RotateVector applies the matrix to a vector.
func (a Matrix3x3) RotateVector(v Vector3D) Vector3D {
	return Vector3D{
		X: a.M[0][0]*v.X + a.M[0][1]*v.Y + a.M[0][2]*v.Z,
		Y: a.M[1][0]*v.X + a.M[1][1]*v.Y + a.M[1][2]*v.Z,
		Z: a.M[2][0]*v.X + a.M[2][1]*v.Y + a.M[2][2]*v.Z,
	}
}

// Quaternion is a little-endian x,y,z,w unit quaternion as stored in model
// node default_rotation fields.
type Quaternion struct {
	X, Y, Z, W float32
}

// ToMatrix converts the quaternion to an equivalent rotation matrix.
func (q Quaternion) ToMatrix() Matrix3x3 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	var m Matrix3x3
	m.M[0][0] = 1 - 2*(y*y+z*z)
	m.M[0][1] = 2 * (x*y - z*w)
	m.M[0][2] = 2 * (x*z + y*w)
	m.M[1][0] = 2 * (x*y + z*w)
	m.M[1][1] = 1 - 2*(x*x+z*z)
	m.M[1][2] = 2 * (y*z - x*w)
	m.M[2][0] = 2 * (x*z - y*w)
	m.M[2][1] = 2 * (y*z + x*w)
	m.M[2][2] = 1 - 2*(x*x+y*y)
	return m
}

// FlaggedInt is a 32-bit integer whose MSB distinguishes a sentinel value
// (used by BSP leaf encodings: MSB set means "leaf index in low 31 bits",
// except the all-ones pattern, NullFlaggedInt, which means
// "solid/outside" and also has IsSet true).
type FlaggedInt uint32

const flaggedMSB uint32 = 0x80000000

// NullFlaggedInt is the "no leaf" / "outside" encoding.
const NullFlaggedInt FlaggedInt = FlaggedInt(0xFFFFFFFF)

// NewFlaggedIndex sets the MSB flag and stores idx in the low bits.
func NewFlaggedIndex(idx uint32) FlaggedInt {
	return FlaggedInt(flaggedMSB | (idx & ^flaggedMSB))
}

// IsSet reports whether the flag bit is set.
func (f FlaggedInt) IsSet() bool {
	return uint32(f)&flaggedMSB != 0
}

// Index returns the low 31 bits.
func (f FlaggedInt) Index() uint32 {
	return uint32(f) & ^flaggedMSB
}

// IsNull reports whether f is the null/"solid" encoding.
func (f FlaggedInt) IsNull() bool {
	return f == NullFlaggedInt
}

// ReadFloat32LE reads a little-endian IEEE-754 float at offset.
func ReadFloat32LE(b []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[offset:]))
}

// PutFloat32LE writes f little-endian at offset.
func PutFloat32LE(b []byte, offset int, f float32) {
	binary.LittleEndian.PutUint32(b[offset:], math.Float32bits(f))
}
