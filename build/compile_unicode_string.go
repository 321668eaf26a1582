package build

import (
	"encoding/binary"
	"errors"

	"golang.org/x/text/encoding/unicode"

	"github.com/PumbleCorp/invader/hek"
)

// ErrMalformedUnicodeStringList is returned when a unicode_string_list
// payload's string table doesn't fit the buffer it's decoded from.
var ErrMalformedUnicodeStringList = errors.New("build: malformed unicode string list payload")

// compileUnicodeStringList validates and re-encodes a localized-string
// tag's payload: each entry is a UTF-16LE string, the same encoding the
// HUD and UI text tags use at runtime. This is a supplemented feature —
// the distilled spec doesn't call it out directly, but the rest of the
// pre-compile pipeline (string tables, UI widgets) assumes it exists.
func (w *Workload) compileUnicodeStringList(ct *CompiledTag) error {
	if ct.Class != hek.ClassUnicodeStringList {
		return nil
	}

	strs, err := decodeUnicodeStringList(ct.Payload)
	if err != nil {
		return w.sink.fatalf(KindBrokenDependency, ct.Path, "malformed unicode string list: %v", err)
	}

	ct.Payload = encodeUnicodeStringList(strs)
	return nil
}

func decodeUnicodeStringList(data []byte) ([]string, error) {
	if len(data) < 4 {
		return nil, ErrMalformedUnicodeStringList
	}
	count := binary.LittleEndian.Uint32(data)
	pos := 4

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	var out []string
	for i := uint32(0); i < count; i++ {
		if pos+4 > len(data) {
			return nil, ErrMalformedUnicodeStringList
		}
		size := binary.LittleEndian.Uint32(data[pos:])
		pos += 4
		if pos+int(size) > len(data) {
			return nil, ErrMalformedUnicodeStringList
		}
		raw := data[pos : pos+int(size)]
		pos += int(size)

		decoded, err := decoder.Bytes(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, string(decoded))
	}
	return out, nil
}

func encodeUnicodeStringList(strs []string) []byte {
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

	var buf []byte
	putU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}

	putU32(uint32(len(strs)))
	for _, s := range strs {
		encoded, err := encoder.Bytes([]byte(s))
		if err != nil {
			// Strings that fail to round-trip through UTF-16 (unpaired
			// surrogates from upstream corruption) are dropped to an
			// empty entry rather than failing the whole tag.
			encoded = nil
		}
		putU32(uint32(len(encoded)))
		buf = append(buf, encoded...)
	}
	return buf
}
