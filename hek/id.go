package hek

// TagID packs a tag-array index in its low 16 bits and a build-local salt
// in its high 16 bits. The builder derives the salt from the slot index,
// so it is unique within one build; TagIDs from different builds are not
// distinguished by it.
type TagID uint32

// NewTagID builds a TagID from an array index and a salt.
func NewTagID(index, salt uint16) TagID {
	return TagID(uint32(salt)<<16 | uint32(index))
}

// Index returns the low 16 bits: the tag's slot in the tag array.
func (t TagID) Index() uint16 {
	return uint16(t)
}

// Salt returns the high 16 bits.
func (t TagID) Salt() uint16 {
	return uint16(t >> 16)
}

// IsNull reports whether t is the null TagID (all bits set).
func (t TagID) IsNull() bool {
	return uint32(t) == NullTagID
}

// NullTagIDValue is the typed null constant, mirroring the raw NullTagID.
const NullTagIDValue TagID = TagID(NullTagID)

// TagReference is an unresolved (by path) or resolved (by TagID) pointer
// from one tag to another, as stored inline in a parent tag's fields.
type TagReference struct {
	// Class is the reference's declared class (possibly a base class
	// such as "object" or "shader" that several concrete classes satisfy).
	Class TagClass
	// Path is the tag path as authored, without extension.
	Path string
	// ID is filled in once the dependency graph has been resolved; it is
	// NullTagIDValue beforehand or if the reference is empty.
	ID TagID
}

// Empty reports whether the reference names no tag at all.
func (r TagReference) Empty() bool {
	return r.Path == "" && r.ID.IsNull()
}

// Satisfies reports whether a candidate tag of class actual may fill this
// reference slot.
func (r TagReference) Satisfies(actual TagClass) bool {
	return MatchesReference(r.Class, actual)
}
