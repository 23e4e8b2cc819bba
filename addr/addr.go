// SPDX-License-Identifier: http://www.apache.org/licenses/LICENSE-2.0
/*
 *
 * Copyright (C) 2026 , Inc.
 *
 * Authors:
 *
 */

// Package addr encodes and decodes raw IP addresses carried inside BGP
// path attributes. The family is never tagged on the wire: it is derived
// from the payload length (4 bytes for IPv4, 16 bytes for IPv6) and then
// carried explicitly as a Family next to the decoded value.
package addr

import (
	"bytes"
	"errors"
	"fmt"
	"net/netip"
)

// Family identifies the address family of a decoded address.
type Family uint8

const (
	FamilyIPv4 Family = 4
	FamilyIPv6 Family = 6
)

// Len returns the wire width of the family in bytes, or 0 for an
// unknown family.
func (f Family) Len() int {
	switch f {
	case FamilyIPv4:
		return 4
	case FamilyIPv6:
		return 16
	}
	return 0
}

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	}
	return fmt.Sprintf("family(%d)", uint8(f))
}

var (
	// ErrLength is matched by every *LengthError.
	ErrLength = errors.New("addr: invalid address length")
	// ErrShortBuffer is matched by every *BufferError.
	ErrShortBuffer = errors.New("addr: buffer too small")
	// ErrInvalid is returned when encoding the zero netip.Addr.
	ErrInvalid = errors.New("addr: invalid address")
)

// LengthError reports a payload whose length is neither 4 nor 16.
type LengthError struct {
	Length int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("addr: invalid address length %d (want 4 or 16)", e.Length)
}

func (e *LengthError) Is(target error) bool { return target == ErrLength }

// BufferError reports an encode target that cannot hold the address.
type BufferError struct {
	Need int
	Have int
}

func (e *BufferError) Error() string {
	return fmt.Sprintf("addr: buffer too small: need %d bytes, have %d", e.Need, e.Have)
}

func (e *BufferError) Is(target error) bool { return target == ErrShortBuffer }

// FamilyOf infers the address family from a payload length.
func FamilyOf(n int) (Family, error) {
	switch n {
	case 4:
		return FamilyIPv4, nil
	case 16:
		return FamilyIPv6, nil
	}
	return 0, &LengthError{Length: n}
}

// FamilyOfAddr returns the family of a, using the 16-byte form for
// IPv4-mapped IPv6 addresses.
func FamilyOfAddr(a netip.Addr) (Family, error) {
	switch {
	case a.Is4():
		return FamilyIPv4, nil
	case a.Is6():
		return FamilyIPv6, nil
	}
	return 0, ErrInvalid
}

// Decode parses buf as a raw address. The whole slice is consumed.
func Decode(buf []byte) (netip.Addr, Family, error) {
	fam, err := FamilyOf(len(buf))
	if err != nil {
		return netip.Addr{}, 0, err
	}
	if fam == FamilyIPv4 {
		return netip.AddrFrom4([4]byte(buf)), fam, nil
	}
	return netip.AddrFrom16([16]byte(buf)), fam, nil
}

// Encode writes a in network byte order at the start of buf and returns
// the number of bytes written. buf is left untouched on error.
func Encode(a netip.Addr, buf []byte) (int, error) {
	fam, err := FamilyOfAddr(a)
	if err != nil {
		return 0, err
	}
	n := fam.Len()
	if len(buf) < n {
		return 0, &BufferError{Need: n, Have: len(buf)}
	}
	if fam == FamilyIPv4 {
		b := a.As4()
		return copy(buf, b[:]), nil
	}
	b := a.As16()
	return copy(buf, b[:]), nil
}

// Append appends the wire form of a to dst.
func Append(dst []byte, a netip.Addr) ([]byte, error) {
	fam, err := FamilyOfAddr(a)
	if err != nil {
		return dst, err
	}
	var tmp [16]byte
	n, err := Encode(a, tmp[:fam.Len()])
	if err != nil {
		return dst, err
	}
	return append(dst, tmp[:n]...), nil
}

// Compare orders addresses IPv4 before IPv6, then by byte value. The
// zero netip.Addr sorts before everything else.
func Compare(a, b netip.Addr) int {
	if c := rank(a) - rank(b); c != 0 {
		if c < 0 {
			return -1
		}
		return 1
	}
	if !a.IsValid() {
		return 0
	}
	if a.Is4() {
		x, y := a.As4(), b.As4()
		return bytes.Compare(x[:], y[:])
	}
	x, y := a.As16(), b.As16()
	if c := bytes.Compare(x[:], y[:]); c != 0 {
		return c
	}
	// same bytes, zones may still differ
	switch za, zb := a.Zone(), b.Zone(); {
	case za < zb:
		return -1
	case za > zb:
		return 1
	}
	return 0
}

func rank(a netip.Addr) int {
	switch {
	case a.Is4():
		return 1
	case a.Is6():
		return 2
	}
	return 0
}
