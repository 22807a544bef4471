/*
 * Copyright (C) 2025 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package ingest

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/netip"
	"testing"

	"github.com/netobserv/asn-ranges/pkg/asn"
	"github.com/osrg/gobgp/v3/pkg/packet/bgp"
	"github.com/osrg/gobgp/v3/pkg/packet/mrt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, msg *mrt.MRTMessage) []Record {
	t.Helper()
	var got []Record
	require.NoError(t, emitMRT(msg, func(r Record) error {
		got = append(got, r)
		return nil
	}))
	return got
}

func asPath(segments ...bgp.AsPathParamInterface) *bgp.PathAttributeAsPath {
	return bgp.NewPathAttributeAsPath(segments)
}

func TestEmitRib(t *testing.T) {
	rib := &mrt.Rib{
		Prefix: bgp.NewIPAddrPrefix(8, "10.0.0.0"),
		Entries: []*mrt.RibEntry{
			{PeerIndex: 0, PathAttributes: []bgp.PathAttributeInterface{
				bgp.NewPathAttributeOrigin(0),
				asPath(bgp.NewAs4PathParam(bgp.BGP_ASPATH_ATTR_TYPE_SEQ, []uint32{64496, 3356, 1000})),
			}},
			{PeerIndex: 1, PathAttributes: []bgp.PathAttributeInterface{
				asPath(
					bgp.NewAs4PathParam(bgp.BGP_ASPATH_ATTR_TYPE_SEQ, []uint32{64497}),
					bgp.NewAs4PathParam(bgp.BGP_ASPATH_ATTR_TYPE_SET, []uint32{1001, 1000}),
				),
			}},
			{PeerIndex: 2, PathAttributes: []bgp.PathAttributeInterface{bgp.NewPathAttributeOrigin(0)}},
		},
	}
	got := collect(t, &mrt.MRTMessage{Body: rib})

	pfx := netip.MustParsePrefix("10.0.0.0/8")
	assert.Equal(t, []Record{
		{Type: Announce, Prefix: pfx, Origins: asn.Set{1000}, Path: []uint32{64496, 3356, 1000}},
		{Type: Announce, Prefix: pfx, Origins: asn.NewSet(1000, 1001)},
		{Type: Announce, Prefix: pfx},
	}, got)
}

func TestEmitRibV6(t *testing.T) {
	rib := &mrt.Rib{
		Prefix: bgp.NewIPv6AddrPrefix(32, "2001:db8::"),
		Entries: []*mrt.RibEntry{
			{PathAttributes: []bgp.PathAttributeInterface{
				asPath(bgp.NewAs4PathParam(bgp.BGP_ASPATH_ATTR_TYPE_SEQ, []uint32{64496, 4200000001})),
			}},
		},
	}
	got := collect(t, &mrt.MRTMessage{Body: rib})
	require.Len(t, got, 1)
	assert.Equal(t, netip.MustParsePrefix("2001:db8::/32"), got[0].Prefix)
	assert.Equal(t, asn.Set{4200000001}, got[0].Origins)
}

func TestEmitUpdate(t *testing.T) {
	attrs := []bgp.PathAttributeInterface{
		bgp.NewPathAttributeOrigin(0),
		asPath(bgp.NewAsPathParam(bgp.BGP_ASPATH_ATTR_TYPE_SEQ, []uint16{64496, 23456})),
		bgp.NewPathAttributeAs4Path([]*bgp.As4PathParam{
			bgp.NewAs4PathParam(bgp.BGP_ASPATH_ATTR_TYPE_SEQ, []uint32{64496, 4200000001}),
		}),
		bgp.NewPathAttributeMpReachNLRI("2001:db8::1", []bgp.AddrPrefixInterface{bgp.NewIPv6AddrPrefix(48, "2001:db8:1::")}),
		bgp.NewPathAttributeMpUnreachNLRI([]bgp.AddrPrefixInterface{bgp.NewIPv6AddrPrefix(48, "2001:db8:2::")}),
	}
	msg := bgp.NewBGPUpdateMessage(
		[]*bgp.IPAddrPrefix{bgp.NewIPAddrPrefix(16, "10.255.0.0")},
		attrs,
		[]*bgp.IPAddrPrefix{bgp.NewIPAddrPrefix(8, "10.0.0.0")},
	)
	got := collect(t, &mrt.MRTMessage{Body: &mrt.BGP4MPMessage{BGPMessage: msg}})

	origins, path := asn.Set{4200000001}, []uint32{64496, 4200000001}
	assert.Equal(t, []Record{
		{Type: Withdraw, Prefix: netip.MustParsePrefix("10.255.0.0/16")},
		{Type: Withdraw, Prefix: netip.MustParsePrefix("2001:db8:2::/48")},
		{Type: Announce, Prefix: netip.MustParsePrefix("10.0.0.0/8"), Origins: origins, Path: path},
		{Type: Announce, Prefix: netip.MustParsePrefix("2001:db8:1::/48"), Origins: origins, Path: path},
	}, got)
}

func TestEmitNonUpdate(t *testing.T) {
	keepalive := bgp.NewBGPKeepAliveMessage()
	assert.Empty(t, collect(t, &mrt.MRTMessage{Body: &mrt.BGP4MPMessage{BGPMessage: keepalive}}))
	assert.Empty(t, collect(t, &mrt.MRTMessage{Body: &mrt.BGP4MPMessage{}}))
}

func mrtHeader(typ, subtype uint16, length uint32) []byte {
	h := make([]byte, mrt.MRT_COMMON_HEADER_LEN)
	binary.BigEndian.PutUint32(h[0:4], 1700000000)
	binary.BigEndian.PutUint16(h[4:6], typ)
	binary.BigEndian.PutUint16(h[6:8], subtype)
	binary.BigEndian.PutUint32(h[8:12], length)
	return h
}

func TestDecodeMRTSkipsAndFails(t *testing.T) {
	var buf bytes.Buffer
	// PEER_INDEX_TABLE is not consumed, its body is skipped unparsed
	buf.Write(mrtHeader(uint16(mrt.TABLE_DUMPv2), uint16(mrt.PEER_INDEX_TABLE), 4))
	buf.Write([]byte{1, 2, 3, 4})
	count := 0
	process := func(Record) error {
		count++
		return nil
	}
	require.NoError(t, decodeMRT(context.Background(), "rib", bytes.NewReader(buf.Bytes()), process))
	assert.Zero(t, count)

	require.NoError(t, decodeMRT(context.Background(), "empty", bytes.NewReader(nil), process))

	buf.Write(mrtHeader(uint16(mrt.TABLE_DUMPv2), uint16(mrt.RIB_IPV4_UNICAST), 100))
	buf.Write([]byte{0, 0})
	err := decodeMRT(context.Background(), "truncated", bytes.NewReader(buf.Bytes()), process)
	assert.ErrorIs(t, err, ErrSourceUnreadable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, decodeMRT(ctx, "rib", bytes.NewReader(buf.Bytes()), process), context.Canceled)
}

func serializeMRT(t *testing.T, typ mrt.MRTType, subtype mrt.MRTSubTyper, body mrt.Body) []byte {
	t.Helper()
	msg, err := mrt.NewMRTMessage(1700000000, typ, subtype, body)
	require.NoError(t, err)
	b, err := msg.Serialize()
	require.NoError(t, err)
	return b
}

func as4Update(nlri ...*bgp.IPAddrPrefix) *bgp.BGPMessage {
	return bgp.NewBGPUpdateMessage(
		[]*bgp.IPAddrPrefix{bgp.NewIPAddrPrefix(12, "172.16.0.0")},
		[]bgp.PathAttributeInterface{
			bgp.NewPathAttributeOrigin(0),
			asPath(bgp.NewAs4PathParam(bgp.BGP_ASPATH_ATTR_TYPE_SEQ, []uint32{64496, 4200000001})),
			bgp.NewPathAttributeNextHop("192.0.2.2"),
		},
		nlri,
	)
}

// toET rewrites a serialized BGP4MP message as BGP4MP_ET, inserting the
// microsecond timestamp in front of the body.
func toET(t *testing.T, b []byte) []byte {
	t.Helper()
	h := &mrt.MRTHeader{}
	require.NoError(t, h.DecodeFromBytes(b[:mrt.MRT_COMMON_HEADER_LEN]))
	body := b[mrt.MRT_COMMON_HEADER_LEN:]
	out := mrtHeader(uint16(mrt.BGP4MP_ET), h.SubType, uint32(len(body)+4))
	out = append(out, 0, 0, 0x01, 0xf4)
	return append(out, body...)
}

func TestDecodeMRTSerialized(t *testing.T) {
	peers := mrt.NewPeerIndexTable("192.0.2.1", "rib", []*mrt.Peer{
		mrt.NewPeer("192.0.2.2", "192.0.2.2", 64496, true),
	})
	ribEntry := mrt.NewRibEntry(0, 1700000000, 0, []bgp.PathAttributeInterface{
		bgp.NewPathAttributeOrigin(0),
		asPath(bgp.NewAs4PathParam(bgp.BGP_ASPATH_ATTR_TYPE_SEQ, []uint32{64496, 3356, 1000})),
	}, false)
	rib := mrt.NewRib(1, bgp.NewIPAddrPrefix(8, "10.0.0.0"), []*mrt.RibEntry{ribEntry})

	addPathNLRI := func() *bgp.IPAddrPrefix {
		p := bgp.NewIPAddrPrefix(24, "198.51.100.0")
		p.SetPathLocalIdentifier(7)
		return p
	}
	addPathPayload := func(msg *bgp.BGPMessage) []byte {
		b, err := msg.Serialize(addPathOption)
		require.NoError(t, err)
		return b
	}

	as4Path := []uint32{64496, 4200000001}
	withdrawn := Record{Type: Withdraw, Prefix: netip.MustParsePrefix("172.16.0.0/12")}

	tests := []struct {
		name   string
		stream func() []byte
		want   []Record
	}{
		{
			name: "table dump",
			stream: func() []byte {
				b := serializeMRT(t, mrt.TABLE_DUMPv2, mrt.PEER_INDEX_TABLE, peers)
				return append(b, serializeMRT(t, mrt.TABLE_DUMPv2, mrt.RIB_IPV4_UNICAST, rib)...)
			},
			want: []Record{{
				Type: Announce, Prefix: netip.MustParsePrefix("10.0.0.0/8"),
				Origins: asn.Set{1000}, Path: []uint32{64496, 3356, 1000},
			}},
		},
		{
			name: "bgp4mp update",
			stream: func() []byte {
				body := mrt.NewBGP4MPMessage(64496, 64511, 0, "192.0.2.2", "192.0.2.1", true,
					as4Update(bgp.NewIPAddrPrefix(8, "10.0.0.0")))
				return serializeMRT(t, mrt.BGP4MP, mrt.MESSAGE_AS4, body)
			},
			want: []Record{withdrawn, {
				Type: Announce, Prefix: netip.MustParsePrefix("10.0.0.0/8"),
				Origins: asn.Set{4200000001}, Path: as4Path,
			}},
		},
		{
			name: "bgp4mp extended timestamp",
			stream: func() []byte {
				body := mrt.NewBGP4MPMessage(64496, 64511, 0, "192.0.2.2", "192.0.2.1", true,
					as4Update(bgp.NewIPAddrPrefix(8, "10.0.0.0")))
				return toET(t, serializeMRT(t, mrt.BGP4MP, mrt.MESSAGE_AS4, body))
			},
			want: []Record{withdrawn, {
				Type: Announce, Prefix: netip.MustParsePrefix("10.0.0.0/8"),
				Origins: asn.Set{4200000001}, Path: as4Path,
			}},
		},
		{
			name: "bgp4mp as4 addpath",
			stream: func() []byte {
				body := mrt.NewBGP4MPMessageAddPath(64496, 64511, 0, "192.0.2.2", "192.0.2.1", true, nil)
				body.BGPMessagePayload = addPathPayload(as4Update(addPathNLRI()))
				return serializeMRT(t, mrt.BGP4MP, mrt.MESSAGE_AS4_ADDPATH, body)
			},
			want: []Record{withdrawn, {
				Type: Announce, Prefix: netip.MustParsePrefix("198.51.100.0/24"),
				Origins: asn.Set{4200000001}, Path: as4Path,
			}},
		},
		{
			name: "bgp4mp addpath over ipv6 session with extended timestamp",
			stream: func() []byte {
				update := bgp.NewBGPUpdateMessage(nil, []bgp.PathAttributeInterface{
					bgp.NewPathAttributeOrigin(0),
					asPath(bgp.NewAsPathParam(bgp.BGP_ASPATH_ATTR_TYPE_SEQ, []uint16{64496, 1000})),
					bgp.NewPathAttributeNextHop("192.0.2.2"),
				}, []*bgp.IPAddrPrefix{addPathNLRI()})
				body := mrt.NewBGP4MPMessageAddPath(64496, 64511, 0, "2001:db8::2", "2001:db8::1", false, nil)
				body.BGPMessagePayload = addPathPayload(update)
				return toET(t, serializeMRT(t, mrt.BGP4MP, mrt.MESSAGE_ADDPATH, body))
			},
			want: []Record{{
				Type: Announce, Prefix: netip.MustParsePrefix("198.51.100.0/24"),
				Origins: asn.Set{1000}, Path: []uint32{64496, 1000},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Record
			err := decodeMRT(context.Background(), tt.name, bytes.NewReader(tt.stream()), func(r Record) error {
				got = append(got, r)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeMRTAddPathTruncated(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(mrtHeader(uint16(mrt.BGP4MP), uint16(mrt.MESSAGE_AS4_ADDPATH), 6))
	buf.Write([]byte{0, 0, 0xfb, 0xf0, 0, 0})
	err := decodeMRT(context.Background(), "addpath", bytes.NewReader(buf.Bytes()), func(Record) error { return nil })
	assert.ErrorIs(t, err, ErrSourceUnreadable)

	buf.Reset()
	buf.Write(mrtHeader(uint16(mrt.BGP4MP_ET), uint16(mrt.MESSAGE_AS4), 2))
	buf.Write([]byte{0, 0})
	err = decodeMRT(context.Background(), "et", bytes.NewReader(buf.Bytes()), func(Record) error { return nil })
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}
