// SPDX-License-Identifier: http://www.apache.org/licenses/LICENSE-2.0
/*
 *
 * Copyright (C) 2026 , Inc.
 *
 * Authors:
 *
 */

// Package attr implements BGP path-attribute codecs. Every attribute
// variant provides the same three operations: its wire metadata (type
// code and flags), a decoder from the raw attribute payload, and an
// encoder into a caller-supplied buffer. The set of variants is closed;
// Decode dispatches on the type code with an exhaustive switch.
package attr

import (
	"github.com/osrg/gobgp/v4/pkg/packet/bgp"
	"go.uber.org/zap/zapcore"
)

// Metadata identifies an attribute on the wire. It is a property of the
// variant, never of a particular value.
type Metadata struct {
	TypeCode bgp.BGPAttrType
	Flags    bgp.BGPAttrFlag
}

// HeaderLen returns the size of the attribute header needed to carry a
// payload of n bytes.
func (m Metadata) HeaderLen(n int) int {
	if m.Flags&bgp.BGP_ATTR_FLAG_EXTENDED_LENGTH != 0 || n > 255 {
		return 4
	}
	return 3
}

// flagMask selects the flag bits that are fixed per attribute type.
const flagMask = bgp.BGP_ATTR_FLAG_OPTIONAL | bgp.BGP_ATTR_FLAG_TRANSITIVE

// SessionParams is the read-only per-peer context handed to every codec
// call. A nil *SessionParams behaves like the zero value.
type SessionParams struct {
	// Strict rejects legacy encodings that are otherwise accepted,
	// such as an ATOMIC_AGGREGATE without a payload.
	Strict bool
	// FourOctetAS is set when the four-octet AS capability was negotiated.
	FourOctetAS bool
	// AddPath is set when ADD-PATH was negotiated for the session.
	AddPath bool
}

func (s *SessionParams) strict() bool {
	return s != nil && s.Strict
}

// Attr is implemented by every path-attribute variant of this package.
type Attr interface {
	zapcore.ObjectMarshaler

	// Metadata returns the constant wire identity of the variant.
	Metadata() Metadata
	// Len returns the payload size Encode will write.
	Len() int
	// Encode writes the payload at the start of buf and returns the
	// number of bytes written. Nothing is written on error.
	Encode(s *SessionParams, buf []byte) (int, error)
	String() string

	isAttr()
}

// Decode decodes payload as the attribute identified by meta. Types this
// package does not model are returned as Unknown.
func Decode(s *SessionParams, meta Metadata, payload []byte) (Attr, error) {
	switch meta.TypeCode {
	case bgp.BGP_ATTR_TYPE_ATOMIC_AGGREGATE:
		if err := checkFlags(atomicAggregateMeta, meta.Flags, payload); err != nil {
			return nil, err
		}
		a, err := DecodeAtomicAggregate(s, payload)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return NewUnknown(meta, payload), nil
	}
}

func checkFlags(want Metadata, got bgp.BGPAttrFlag, payload []byte) error {
	if got&flagMask == want.Flags&flagMask {
		return nil
	}
	return &FlagsError{Type: want.TypeCode, Flags: got, Data: append([]byte(nil), payload...)}
}

// Compare orders attributes by type code, then by value. Within one type
// code an AtomicAggregate sorts before an Unknown.
func Compare(a, b Attr) int {
	ta, tb := a.Metadata().TypeCode, b.Metadata().TypeCode
	switch {
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	}
	switch x := a.(type) {
	case AtomicAggregate:
		if y, ok := b.(AtomicAggregate); ok {
			return x.Compare(y)
		}
		return -1
	case Unknown:
		if y, ok := b.(Unknown); ok {
			return x.Compare(y)
		}
		return 1
	}
	panic("attr: unhandled variant")
}
