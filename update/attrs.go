// SPDX-License-Identifier: http://www.apache.org/licenses/LICENSE-2.0
/*
 *
 * Copyright (C) 2026 , Inc.
 *
 * Authors:
 *
 */

// Package update frames the path attribute section of BGP UPDATE
// messages and hands each attribute payload to the attr codecs.
package update

import (
	"encoding/binary"
	"fmt"
	"sort"

	"bgpattr/attr"

	"github.com/osrg/gobgp/v4/pkg/packet/bgp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Parser walks a path attribute section. The zero value is usable and
// fails on the first malformed attribute.
type Parser struct {
	Session *attr.SessionParams
	Logger  *zap.Logger
	// Lenient skips attributes whose payload fails to decode instead of
	// aborting. Skipped attributes are reported in the returned error.
	Lenient bool
}

func (p *Parser) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// ParseAttrs decodes every attribute in b. A truncated header or payload
// always aborts. In lenient mode the attributes decoded so far are
// returned together with the combined decode errors.
func (p *Parser) ParseAttrs(b []byte) ([]attr.Attr, error) {
	log := p.logger()
	var (
		attrs []attr.Attr
		errs  error
	)
	for len(b) > 0 {
		meta, payload, rest, err := readAttr(b)
		if err != nil {
			log.Debug("truncated path attribute", zap.Int("remaining", len(b)), zap.Error(err))
			if !p.Lenient {
				return nil, err
			}
			return attrs, multierr.Append(errs, err)
		}
		b = rest

		a, err := attr.Decode(p.Session, meta, payload)
		if err != nil {
			if !p.Lenient {
				return nil, err
			}
			log.Warn("skipping malformed path attribute",
				zap.Uint8("type", uint8(meta.TypeCode)),
				zap.Uint8("flags", uint8(meta.Flags)),
				zap.Int("length", len(payload)),
				zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		log.Debug("decoded path attribute", zap.Object("attr", a))
		attrs = append(attrs, a)
	}
	return attrs, errs
}

func readAttr(b []byte) (attr.Metadata, []byte, []byte, error) {
	if len(b) < 3 {
		return attr.Metadata{}, nil, nil, malformed(b, "attribute header length is short")
	}
	meta := attr.Metadata{Flags: bgp.BGPAttrFlag(b[0]), TypeCode: bgp.BGPAttrType(b[1])}
	var n, off int
	if meta.Flags&bgp.BGP_ATTR_FLAG_EXTENDED_LENGTH != 0 {
		if len(b) < 4 {
			return attr.Metadata{}, nil, nil, malformed(b, "attribute header length is short")
		}
		n, off = int(binary.BigEndian.Uint16(b[2:4])), 4
	} else {
		n, off = int(b[2]), 3
	}
	if len(b)-off < n {
		return attr.Metadata{}, nil, nil, malformed(b, fmt.Sprintf("attribute %d value length is short: want %d, have %d", b[1], n, len(b)-off))
	}
	return meta, b[off : off+n], b[off+n:], nil
}

func malformed(data []byte, msg string) error {
	return bgp.NewMessageError(bgp.BGP_ERROR_UPDATE_MESSAGE_ERROR, bgp.BGP_ERROR_SUB_MALFORMED_ATTRIBUTE_LIST, data, msg)
}

// AppendAttrs appends the wire form of attrs to dst. The extended length
// bit is set for payloads longer than 255 bytes. On error dst is
// returned as it was before the failing attribute.
func AppendAttrs(s *attr.SessionParams, dst []byte, attrs ...attr.Attr) ([]byte, error) {
	for _, a := range attrs {
		meta := a.Metadata()
		n := a.Len()
		if n > 0xffff {
			return dst, fmt.Errorf("update: attribute %d payload too long: %d bytes", uint8(meta.TypeCode), n)
		}
		start := len(dst)
		flags := meta.Flags
		if meta.HeaderLen(n) == 4 {
			flags |= bgp.BGP_ATTR_FLAG_EXTENDED_LENGTH
		}
		dst = append(dst, byte(flags), byte(meta.TypeCode))
		if flags&bgp.BGP_ATTR_FLAG_EXTENDED_LENGTH != 0 {
			dst = binary.BigEndian.AppendUint16(dst, uint16(n))
		} else {
			dst = append(dst, byte(n))
		}
		off := len(dst)
		dst = append(dst, make([]byte, n)...)
		if _, err := a.Encode(s, dst[off:]); err != nil {
			return dst[:start], err
		}
	}
	return dst, nil
}

// PathAttributes returns the path attribute section of a full UPDATE
// message, header included. The returned slice aliases msg.
func PathAttributes(msg []byte) ([]byte, error) {
	if len(msg) < bgp.BGP_HEADER_LENGTH+4 {
		return nil, fmt.Errorf("update: message too short: %d bytes", len(msg))
	}
	if msg[18] != bgp.BGP_MSG_UPDATE {
		return nil, fmt.Errorf("update: not an UPDATE message: type %d", msg[18])
	}
	if l := int(binary.BigEndian.Uint16(msg[16:18])); l != len(msg) {
		return nil, fmt.Errorf("update: header length %d does not match message size %d", l, len(msg))
	}
	body := msg[bgp.BGP_HEADER_LENGTH:]
	wlen := int(binary.BigEndian.Uint16(body[0:2]))
	if len(body) < 2+wlen+2 {
		return nil, malformed(body, "withdrawn routes length is short")
	}
	body = body[2+wlen:]
	alen := int(binary.BigEndian.Uint16(body[0:2]))
	if len(body) < 2+alen {
		return nil, malformed(body, "path attribute length is short")
	}
	return body[2 : 2+alen], nil
}

// Dedup returns attrs sorted by attr.Compare with duplicates removed.
// The input slice is not modified.
func Dedup(attrs []attr.Attr) []attr.Attr {
	out := append([]attr.Attr(nil), attrs...)
	sort.SliceStable(out, func(i, j int) bool { return attr.Compare(out[i], out[j]) < 0 })
	var j int
	for i := range out {
		if i > 0 && attr.Compare(out[j-1], out[i]) == 0 {
			continue
		}
		out[j] = out[i]
		j++
	}
	return out[:j]
}
