package wire

import (
	"bytes"
	"encoding/json"

	"github.com/dkeye/callrelay/internal/domain"
)

// Encode builds an outbound frame. The blob is spliced in unchanged, so
// recipients see exactly the bytes the sender produced.
func Encode(typ string, room domain.RoomID, blob json.RawMessage) []byte {
	var buf bytes.Buffer
	buf.Grow(len(typ) + len(room) + len(blob) + 40)
	buf.WriteString(`{"type":`)
	writeString(&buf, typ)
	if room != "" {
		buf.WriteString(`,"room":`)
		writeString(&buf, string(room))
	}
	if len(blob) > 0 {
		buf.WriteString(`,"payload":`)
		buf.Write(blob)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	// Marshalling a string cannot fail.
	b, _ := json.Marshal(s)
	buf.Write(b)
}
