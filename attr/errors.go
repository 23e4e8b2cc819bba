package attr

import (
	"errors"
	"fmt"

	"github.com/osrg/gobgp/v4/pkg/packet/bgp"
)

var (
	// ErrInvalidLength is matched by every *LengthError.
	ErrInvalidLength = errors.New("attr: invalid attribute length")
	// ErrBufferTooSmall is matched by every *BufferError.
	ErrBufferTooSmall = errors.New("attr: buffer too small")
	// ErrInvalidFlags is matched by every *FlagsError.
	ErrInvalidFlags = errors.New("attr: invalid attribute flags")
)

// LengthError reports a payload whose length the variant cannot decode.
type LengthError struct {
	Type   bgp.BGPAttrType
	Length int
	Data   []byte
	Err    error
}

func (e *LengthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("attr: %s: invalid length %d: %v", e.Type, e.Length, e.Err)
	}
	return fmt.Sprintf("attr: %s: invalid length %d", e.Type, e.Length)
}

func (e *LengthError) Is(target error) bool { return target == ErrInvalidLength }

func (e *LengthError) Unwrap() error { return e.Err }

// BufferError reports an encode target that cannot hold the payload.
type BufferError struct {
	Type bgp.BGPAttrType
	Need int
	Have int
}

func (e *BufferError) Error() string {
	return fmt.Sprintf("attr: %s: buffer too small: need %d bytes, have %d", e.Type, e.Need, e.Have)
}

func (e *BufferError) Is(target error) bool { return target == ErrBufferTooSmall }

// FlagsError reports a well-known attribute received with the wrong
// optional/transitive bits.
type FlagsError struct {
	Type  bgp.BGPAttrType
	Flags bgp.BGPAttrFlag
	Data  []byte
}

func (e *FlagsError) Error() string {
	return fmt.Sprintf("attr: %s: unexpected flags %s", e.Type, e.Flags)
}

func (e *FlagsError) Is(target error) bool { return target == ErrInvalidFlags }

// NotificationFor maps a decode error to the NOTIFICATION a speaker
// would send for it. It returns nil for errors that have no wire
// representation, such as encode failures.
func NotificationFor(err error) *bgp.MessageError {
	var merr *bgp.MessageError
	if errors.As(err, &merr) {
		return merr
	}
	var lerr *LengthError
	if errors.As(err, &lerr) {
		return newMessageError(bgp.BGP_ERROR_SUB_ATTRIBUTE_LENGTH_ERROR, lerr.Data, lerr.Error())
	}
	var ferr *FlagsError
	if errors.As(err, &ferr) {
		return newMessageError(bgp.BGP_ERROR_SUB_ATTRIBUTE_FLAGS_ERROR, ferr.Data, ferr.Error())
	}
	return nil
}

func newMessageError(subcode uint8, data []byte, msg string) *bgp.MessageError {
	return bgp.NewMessageError(bgp.BGP_ERROR_UPDATE_MESSAGE_ERROR, subcode, data, msg).(*bgp.MessageError)
}
