package update

import (
	"net/netip"
	"testing"

	"bgpattr/attr"

	"github.com/osrg/gobgp/v4/pkg/packet/bgp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseAttrs(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want []attr.Attr
	}{
		{
			name: "empty-atomic-aggregate",
			in:   []byte{0x40, 6, 0},
			want: []attr.Attr{attr.NewAtomicAggregate(netip.IPv4Unspecified())},
		},
		{
			name: "ipv4-atomic-aggregate",
			in:   []byte{0x40, 6, 4, 10, 0, 0, 1},
			want: []attr.Attr{attr.NewAtomicAggregate(netip.MustParseAddr("10.0.0.1"))},
		},
		{
			name: "extended-length",
			in:   []byte{0x50, 6, 0, 4, 192, 0, 2, 1},
			want: []attr.Attr{attr.NewAtomicAggregate(netip.MustParseAddr("192.0.2.1"))},
		},
		{
			name: "origin-then-atomic-aggregate",
			in:   []byte{0x40, 1, 1, 0, 0x40, 6, 0},
			want: []attr.Attr{
				attr.NewUnknown(attr.Metadata{TypeCode: bgp.BGP_ATTR_TYPE_ORIGIN, Flags: bgp.BGP_ATTR_FLAG_TRANSITIVE}, []byte{0}),
				attr.NewAtomicAggregate(netip.IPv4Unspecified()),
			},
		},
		{
			name: "nothing",
			in:   nil,
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Parser{}
			got, err := p.ParseAttrs(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseAttrsTruncated(t *testing.T) {
	for _, in := range [][]byte{
		{0x40},
		{0x40, 6},
		{0x50, 6, 0},
		{0x40, 6, 4, 10, 0},
	} {
		_, err := (&Parser{}).ParseAttrs(in)
		require.Error(t, err)
		merr := attr.NotificationFor(err)
		require.NotNil(t, merr)
		assert.Equal(t, uint8(bgp.BGP_ERROR_SUB_MALFORMED_ATTRIBUTE_LIST), merr.SubTypeCode)
	}
}

func TestParseAttrsStrictFailsFast(t *testing.T) {
	in := []byte{0x40, 6, 5, 1, 2, 3, 4, 5, 0x40, 1, 1, 0}
	got, err := (&Parser{}).ParseAttrs(in)
	require.ErrorIs(t, err, attr.ErrInvalidLength)
	assert.Nil(t, got)
}

func TestParseAttrsLenient(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := &Parser{Logger: zap.New(core), Lenient: true}

	in := []byte{
		0x40, 6, 5, 1, 2, 3, 4, 5, // bad length
		0x80, 6, 0, // optional bit set on a well-known attribute
		0x40, 1, 1, 0,
	}
	got, err := p.ParseAttrs(in)
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], attr.ErrInvalidLength)
	assert.ErrorIs(t, errs[1], attr.ErrInvalidFlags)

	require.Len(t, got, 1)
	assert.Equal(t, bgp.BGP_ATTR_TYPE_ORIGIN, got[0].Metadata().TypeCode)

	assert.Equal(t, 2, logs.FilterMessage("skipping malformed path attribute").Len())
}

func TestParseAttrsLenientKeepsPrefixOnTruncation(t *testing.T) {
	p := &Parser{Lenient: true}
	got, err := p.ParseAttrs([]byte{0x40, 6, 0, 0x40, 1})
	require.Error(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, attr.NewAtomicAggregate(netip.IPv4Unspecified()), got[0])
}

func TestParseAttrsStrictSession(t *testing.T) {
	p := &Parser{Session: &attr.SessionParams{Strict: true}}
	_, err := p.ParseAttrs([]byte{0x40, 6, 0})
	require.ErrorIs(t, err, attr.ErrInvalidLength)
}

func TestAppendAttrs(t *testing.T) {
	out, err := AppendAttrs(nil, []byte{0xff},
		attr.NewAtomicAggregate(netip.MustParseAddr("10.0.0.1")),
		attr.NewAtomicAggregate(netip.IPv6Loopback()),
	)
	require.NoError(t, err)
	want := []byte{0xff, 0x40, 6, 4, 10, 0, 0, 1, 0x40, 6, 16, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	assert.Equal(t, want, out)
}

func TestAppendAttrsExtendedLength(t *testing.T) {
	big := attr.NewUnknown(attr.Metadata{TypeCode: 99, Flags: bgp.BGP_ATTR_FLAG_OPTIONAL}, make([]byte, 300))
	out, err := AppendAttrs(nil, nil, big)
	require.NoError(t, err)
	require.Len(t, out, 304)
	assert.Equal(t, []byte{0x90, 99, 0x01, 0x2c}, out[:4])

	got, err := (&Parser{}).ParseAttrs(out)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 300, got[0].Len())
}

func TestRoundTrip(t *testing.T) {
	in := []attr.Attr{
		attr.NewUnknown(attr.Metadata{TypeCode: bgp.BGP_ATTR_TYPE_ORIGIN, Flags: bgp.BGP_ATTR_FLAG_TRANSITIVE}, []byte{2}),
		attr.NewAtomicAggregate(netip.MustParseAddr("2001:db8::1")),
	}
	b, err := AppendAttrs(nil, nil, in...)
	require.NoError(t, err)
	got, err := (&Parser{}).ParseAttrs(b)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestGoBGPInterop(t *testing.T) {
	origin := bgp.NewPathAttributeOrigin(0)
	msg := bgp.NewBGPUpdateMessage(nil, []bgp.PathAttributeInterface{origin, bgp.NewPathAttributeAtomicAggregate()}, nil)
	data, err := msg.Serialize()
	require.NoError(t, err)

	section, err := PathAttributes(data)
	require.NoError(t, err)

	got, err := (&Parser{}).ParseAttrs(section)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, bgp.BGP_ATTR_TYPE_ORIGIN, got[0].Metadata().TypeCode)
	assert.Equal(t, attr.NewAtomicAggregate(netip.IPv4Unspecified()), got[1])

	// the trailing record is gobgp's own zero-length encoding
	want, err := bgp.NewPathAttributeAtomicAggregate().Serialize()
	require.NoError(t, err)
	assert.Equal(t, section[4:], want)
}

func TestPathAttributesErrors(t *testing.T) {
	_, err := PathAttributes(make([]byte, 10))
	assert.Error(t, err)

	keepalive := make([]byte, 23)
	keepalive[16], keepalive[17], keepalive[18] = 0, 23, bgp.BGP_MSG_KEEPALIVE
	_, err = PathAttributes(keepalive)
	assert.Error(t, err)

	bad := make([]byte, 23)
	bad[16], bad[17], bad[18] = 0, 23, bgp.BGP_MSG_UPDATE
	bad[19], bad[20] = 0, 9 // withdrawn length past the end
	_, err = PathAttributes(bad)
	assert.Error(t, err)
}

func TestDedup(t *testing.T) {
	a := attr.NewAtomicAggregate(netip.MustParseAddr("10.0.0.2"))
	b := attr.NewAtomicAggregate(netip.MustParseAddr("10.0.0.1"))
	c := attr.NewAtomicAggregate(netip.IPv6Loopback())
	origin := attr.NewUnknown(attr.Metadata{TypeCode: bgp.BGP_ATTR_TYPE_ORIGIN, Flags: bgp.BGP_ATTR_FLAG_TRANSITIVE}, []byte{0})

	in := []attr.Attr{c, a, b, a, origin, c}
	got := Dedup(in)
	assert.Equal(t, []attr.Attr{origin, b, a, c}, got)
	assert.Equal(t, c, in[0])
	assert.Empty(t, Dedup(nil))
}
