package attr

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Unknown carries an attribute this package does not model. The payload
// is kept verbatim so it can be passed on unchanged.
type Unknown struct {
	Meta Metadata
	Data []byte
}

// NewUnknown copies payload into a new Unknown.
func NewUnknown(meta Metadata, payload []byte) Unknown {
	return Unknown{Meta: meta, Data: append([]byte(nil), payload...)}
}

func (Unknown) isAttr() {}

func (u Unknown) Metadata() Metadata { return u.Meta }

func (u Unknown) Len() int { return len(u.Data) }

func (u Unknown) Encode(_ *SessionParams, buf []byte) (int, error) {
	if len(buf) < len(u.Data) {
		return 0, &BufferError{Type: u.Meta.TypeCode, Need: len(u.Data), Have: len(buf)}
	}
	return copy(buf, u.Data), nil
}

func (u Unknown) Compare(b Unknown) int {
	switch {
	case u.Meta.TypeCode != b.Meta.TypeCode:
		if u.Meta.TypeCode < b.Meta.TypeCode {
			return -1
		}
		return 1
	case u.Meta.Flags != b.Meta.Flags:
		if u.Meta.Flags < b.Meta.Flags {
			return -1
		}
		return 1
	}
	return bytes.Compare(u.Data, b.Data)
}

func (u Unknown) String() string {
	return fmt.Sprintf("Unknown{type: %d, flags: 0x%02x, data: %s}", uint8(u.Meta.TypeCode), uint8(u.Meta.Flags), hex.EncodeToString(u.Data))
}

func (u Unknown) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint8("type", uint8(u.Meta.TypeCode))
	enc.AddUint8("flags", uint8(u.Meta.Flags))
	enc.AddBinary("data", u.Data)
	return nil
}
