// SPDX-License-Identifier: http://www.apache.org/licenses/LICENSE-2.0
/*
 *
 * Copyright (C) 2026 , Inc.
 *
 * Authors:
 *
 */

package attr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"

	"bgpattr/addr"

	"github.com/osrg/gobgp/v4/pkg/packet/bgp"
	"go.uber.org/zap/zapcore"
)

var atomicAggregateMeta = Metadata{
	TypeCode: bgp.BGP_ATTR_TYPE_ATOMIC_AGGREGATE,
	Flags:    bgp.BGP_ATTR_FLAG_TRANSITIVE,
}

// AtomicAggregate is the ATOMIC_AGGREGATE path attribute (type 6). Its
// presence marks a route aggregated without full AS path preservation.
// Some speakers attach the aggregator's address as payload; that value
// is informational only.
//
// The zero value carries 0.0.0.0. Build values with NewAtomicAggregate
// when they are used as map keys.
type AtomicAggregate struct {
	Value netip.Addr
}

// NewAtomicAggregate returns an ATOMIC_AGGREGATE carrying a. An invalid
// address is replaced by 0.0.0.0 and any IPv6 zone is dropped, since
// neither can be represented on the wire.
func NewAtomicAggregate(a netip.Addr) AtomicAggregate {
	if !a.IsValid() {
		return AtomicAggregate{Value: netip.IPv4Unspecified()}
	}
	return AtomicAggregate{Value: a.WithZone("")}
}

// DecodeAtomicAggregate decodes an ATOMIC_AGGREGATE payload. An empty
// payload yields 0.0.0.0 unless the session is strict; 4 and 16 byte
// payloads carry an IPv4 or IPv6 address.
func DecodeAtomicAggregate(s *SessionParams, b []byte) (AtomicAggregate, error) {
	if len(b) == 0 {
		if s.strict() {
			return AtomicAggregate{}, &LengthError{Type: atomicAggregateMeta.TypeCode}
		}
		return AtomicAggregate{Value: netip.IPv4Unspecified()}, nil
	}
	a, _, err := addr.Decode(b)
	if err != nil {
		return AtomicAggregate{}, &LengthError{
			Type:   atomicAggregateMeta.TypeCode,
			Length: len(b),
			Data:   append([]byte(nil), b...),
			Err:    err,
		}
	}
	return AtomicAggregate{Value: a}, nil
}

func (AtomicAggregate) isAttr() {}

func (AtomicAggregate) Metadata() Metadata { return atomicAggregateMeta }

func (a AtomicAggregate) value() netip.Addr {
	if !a.Value.IsValid() {
		return netip.IPv4Unspecified()
	}
	return a.Value
}

// Family returns the address family of the carried value.
func (a AtomicAggregate) Family() addr.Family {
	if a.value().Is4() {
		return addr.FamilyIPv4
	}
	return addr.FamilyIPv6
}

func (a AtomicAggregate) Len() int { return a.Family().Len() }

func (a AtomicAggregate) Encode(_ *SessionParams, buf []byte) (int, error) {
	n, err := addr.Encode(a.value(), buf)
	if err != nil {
		var berr *addr.BufferError
		if errors.As(err, &berr) {
			return 0, &BufferError{Type: atomicAggregateMeta.TypeCode, Need: berr.Need, Have: berr.Have}
		}
		return 0, err
	}
	return n, nil
}

func (a AtomicAggregate) Compare(b AtomicAggregate) int {
	return addr.Compare(a.value(), b.value())
}

func (a AtomicAggregate) Equal(b AtomicAggregate) bool {
	return a.Compare(b) == 0
}

func (a AtomicAggregate) String() string {
	return fmt.Sprintf("AtomicAggregate{%s}", a.value())
}

func (a AtomicAggregate) GoString() string {
	return fmt.Sprintf("attr.AtomicAggregate{Value: %s}", a.value())
}

// MarshalText returns the address in its textual form. This is the
// interchange representation; it is unrelated to the wire encoding.
func (a AtomicAggregate) MarshalText() ([]byte, error) {
	return a.value().MarshalText()
}

func (a *AtomicAggregate) UnmarshalText(text []byte) error {
	v, err := netip.ParseAddr(string(text))
	if err != nil {
		return fmt.Errorf("attr: atomic aggregate: %w", err)
	}
	*a = NewAtomicAggregate(v)
	return nil
}

func (a AtomicAggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.value().String())
}

func (a *AtomicAggregate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("attr: atomic aggregate: %w", err)
	}
	return a.UnmarshalText([]byte(s))
}

func (a AtomicAggregate) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", atomicAggregateMeta.TypeCode.String())
	enc.AddUint8("flags", uint8(atomicAggregateMeta.Flags))
	enc.AddString("family", a.Family().String())
	enc.AddString("value", a.value().String())
	return nil
}
