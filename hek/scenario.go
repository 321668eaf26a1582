package hek

import (
	"encoding/binary"
	"errors"
)

// ErrMalformedScenario is returned when a scenario payload's encounter or
// command-list arrays don't fit the buffer they're decoded from.
var ErrMalformedScenario = errors.New("hek: malformed scenario payload")

// FiringPosition is one encounter firing position. Leaf starts out
// NullFlaggedInt and is filled in by the scenario geometry fixup once its
// containing BSP leaf is known.
type FiringPosition struct {
	Position Point3D
	Leaf     FlaggedInt
}

// Encounter groups the firing positions an AI squad may occupy.
type Encounter struct {
	Name            TagString
	FiringPositions []FiringPosition
}

// CommandPoint is one command-list waypoint, fixed up the same way as a
// firing position.
type CommandPoint struct {
	Position Point3D
	Leaf     FlaggedInt
}

// CommandList groups a sequence of command points.
type CommandList struct {
	Name   TagString
	Points []CommandPoint
}

// Scenario is the decoded form of a scenario tag's class-specific payload.
type Scenario struct {
	Type         CacheFileType
	Encounters   []Encounter
	CommandLists []CommandList
}

// DecodeScenario parses a scenario tag's Payload bytes.
func DecodeScenario(data []byte) (*Scenario, error) {
	if len(data) < 2 {
		return nil, ErrMalformedScenario
	}
	s := &Scenario{Type: CacheFileType(binary.LittleEndian.Uint16(data))}
	pos := 2

	readU32 := func() (uint32, bool) {
		if pos+4 > len(data) {
			return 0, false
		}
		v := binary.LittleEndian.Uint32(data[pos:])
		pos += 4
		return v, true
	}
	readTagString := func() (TagString, bool) {
		if pos+32 > len(data) {
			return TagString{}, false
		}
		var t TagString
		copy(t[:], data[pos:pos+32])
		pos += 32
		return t, true
	}
	readPoint := func() (Point3D, bool) {
		if pos+12 > len(data) {
			return Point3D{}, false
		}
		p := Point3D{X: ReadFloat32LE(data, pos), Y: ReadFloat32LE(data, pos+4), Z: ReadFloat32LE(data, pos+8)}
		pos += 12
		return p, true
	}
	readLeaf := func() (FlaggedInt, bool) {
		v, ok := readU32()
		return FlaggedInt(v), ok
	}

	encCount, ok := readU32()
	if !ok {
		return nil, ErrMalformedScenario
	}
	for i := uint32(0); i < encCount; i++ {
		name, ok := readTagString()
		if !ok {
			return nil, ErrMalformedScenario
		}
		fpCount, ok := readU32()
		if !ok {
			return nil, ErrMalformedScenario
		}
		enc := Encounter{Name: name}
		for j := uint32(0); j < fpCount; j++ {
			p, ok := readPoint()
			if !ok {
				return nil, ErrMalformedScenario
			}
			leaf, ok := readLeaf()
			if !ok {
				return nil, ErrMalformedScenario
			}
			enc.FiringPositions = append(enc.FiringPositions, FiringPosition{Position: p, Leaf: leaf})
		}
		s.Encounters = append(s.Encounters, enc)
	}

	listCount, ok := readU32()
	if !ok {
		return nil, ErrMalformedScenario
	}
	for i := uint32(0); i < listCount; i++ {
		name, ok := readTagString()
		if !ok {
			return nil, ErrMalformedScenario
		}
		ptCount, ok := readU32()
		if !ok {
			return nil, ErrMalformedScenario
		}
		list := CommandList{Name: name}
		for j := uint32(0); j < ptCount; j++ {
			p, ok := readPoint()
			if !ok {
				return nil, ErrMalformedScenario
			}
			leaf, ok := readLeaf()
			if !ok {
				return nil, ErrMalformedScenario
			}
			list.Points = append(list.Points, CommandPoint{Position: p, Leaf: leaf})
		}
		s.CommandLists = append(s.CommandLists, list)
	}

	return s, nil
}

// Encode serializes a Scenario back to its payload byte form.
func (s *Scenario) Encode() []byte {
	var buf []byte
	putU16 := func(v uint16) {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], v)
		buf = append(buf, b[:]...)
	}
	putU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	putTagString := func(t TagString) { buf = append(buf, t[:]...) }
	putPoint := func(p Point3D) {
		var b [4]byte
		PutFloat32LE(b[:], 0, p.X)
		buf = append(buf, b[:]...)
		PutFloat32LE(b[:], 0, p.Y)
		buf = append(buf, b[:]...)
		PutFloat32LE(b[:], 0, p.Z)
		buf = append(buf, b[:]...)
	}

	putU16(uint16(s.Type))

	putU32(uint32(len(s.Encounters)))
	for _, e := range s.Encounters {
		putTagString(e.Name)
		putU32(uint32(len(e.FiringPositions)))
		for _, fp := range e.FiringPositions {
			putPoint(fp.Position)
			putU32(uint32(fp.Leaf))
		}
	}

	putU32(uint32(len(s.CommandLists)))
	for _, l := range s.CommandLists {
		putTagString(l.Name)
		putU32(uint32(len(l.Points)))
		for _, p := range l.Points {
			putPoint(p.Position)
			putU32(uint32(p.Leaf))
		}
	}

	return buf
}
