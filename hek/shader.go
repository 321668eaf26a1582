package hek

import "errors"

// ErrMalformedShader is returned when a shader payload is too short for
// the fixed-size record every shader class shares.
var ErrMalformedShader = errors.New("hek: malformed shader payload")

// ShaderPayload is the fixed-size record common to every shader class's
// payload; not every field is meaningful for every class (e.g. BumpMapScale
// only matters for ShaderEnvironment), but all of them are carried so
// pre-compile can normalise whichever fields its class cares about without
// a separate schema per shader class.
type ShaderPayload struct {
	Type ShaderType

	BumpMapScale   float32
	BumpMapScaleXY [2]float32

	MaterialColorR, MaterialColorG, MaterialColorB float32

	Unknown                    float32
	ReflectionFalloffDistance  float32
	ReflectionCutoffDistance   float32
}

const shaderPayloadSize = 4 + 4 + 8 + 4*3 + 4 + 4 + 4

// DecodeShaderPayload parses a shader tag's Payload bytes.
func DecodeShaderPayload(data []byte) (*ShaderPayload, error) {
	if len(data) < shaderPayloadSize {
		return nil, ErrMalformedShader
	}
	pos := 0
	readU32 := func() uint32 {
		v := uint32(data[pos]) | uint32(data[pos+1])<<8 | uint32(data[pos+2])<<16 | uint32(data[pos+3])<<24
		pos += 4
		return v
	}
	readF32 := func() float32 {
		f := ReadFloat32LE(data, pos)
		pos += 4
		return f
	}

	s := &ShaderPayload{}
	s.Type = ShaderType(readU32())
	s.BumpMapScale = readF32()
	s.BumpMapScaleXY[0] = readF32()
	s.BumpMapScaleXY[1] = readF32()
	s.MaterialColorR = readF32()
	s.MaterialColorG = readF32()
	s.MaterialColorB = readF32()
	s.Unknown = readF32()
	s.ReflectionFalloffDistance = readF32()
	s.ReflectionCutoffDistance = readF32()
	return s, nil
}

// Encode serializes the shader payload back to its on-disk form, mirroring
// DecodeShaderPayload.
func (s *ShaderPayload) Encode() []byte {
	buf := make([]byte, shaderPayloadSize)
	pos := 0
	putU32 := func(v uint32) {
		buf[pos] = byte(v)
		buf[pos+1] = byte(v >> 8)
		buf[pos+2] = byte(v >> 16)
		buf[pos+3] = byte(v >> 24)
		pos += 4
	}
	putF32 := func(f float32) {
		PutFloat32LE(buf, pos, f)
		pos += 4
	}

	putU32(uint32(s.Type))
	putF32(s.BumpMapScale)
	putF32(s.BumpMapScaleXY[0])
	putF32(s.BumpMapScaleXY[1])
	putF32(s.MaterialColorR)
	putF32(s.MaterialColorG)
	putF32(s.MaterialColorB)
	putF32(s.Unknown)
	putF32(s.ReflectionFalloffDistance)
	putF32(s.ReflectionCutoffDistance)
	return buf
}
