package update

import (
	"encoding/binary"
	"fmt"
	"io"

	"bgpattr/attr"

	"github.com/osrg/gobgp/v4/pkg/packet/bgp"
)

// NewMessage builds an UPDATE message with no withdrawn routes and no
// NLRI that carries attrs as its path attributes.
func NewMessage(s *attr.SessionParams, attrs ...attr.Attr) ([]byte, error) {
	msg := make([]byte, bgp.BGP_HEADER_LENGTH+4, bgp.BGP_HEADER_LENGTH+64)
	for i := 0; i < 16; i++ {
		msg[i] = 0xff
	}
	msg[18] = bgp.BGP_MSG_UPDATE

	msg, err := AppendAttrs(s, msg, attrs...)
	if err != nil {
		return nil, err
	}
	alen := len(msg) - bgp.BGP_HEADER_LENGTH - 4
	if len(msg) > bgp.BGP_MAX_MESSAGE_LENGTH {
		return nil, fmt.Errorf("update: message too long: %d bytes", len(msg))
	}
	binary.BigEndian.PutUint16(msg[16:18], uint16(len(msg)))
	binary.BigEndian.PutUint16(msg[bgp.BGP_HEADER_LENGTH+2:], uint16(alen))
	return msg, nil
}

// ReadMessage reads one BGP message from r using the length field of its
// header.
func ReadMessage(r io.Reader) ([]byte, error) {
	hdr := make([]byte, bgp.BGP_HEADER_LENGTH)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint16(hdr[16:18]))
	if n < bgp.BGP_HEADER_LENGTH || n > bgp.BGP_MAX_MESSAGE_LENGTH {
		return nil, bgp.NewMessageError(bgp.BGP_ERROR_MESSAGE_HEADER_ERROR, bgp.BGP_ERROR_SUB_BAD_MESSAGE_LENGTH, hdr[16:18], fmt.Sprintf("bad message length %d", n))
	}
	msg := make([]byte, n)
	copy(msg, hdr)
	if _, err := io.ReadFull(r, msg[bgp.BGP_HEADER_LENGTH:]); err != nil {
		return nil, err
	}
	return msg, nil
}
