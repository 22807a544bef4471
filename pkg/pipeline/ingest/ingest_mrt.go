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
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/netip"

	"github.com/netobserv/asn-ranges/pkg/asn"
	"github.com/netobserv/asn-ranges/pkg/pipeline/cidr"
	"github.com/osrg/gobgp/v3/pkg/packet/bgp"
	"github.com/osrg/gobgp/v3/pkg/packet/mrt"
	log "github.com/sirupsen/logrus"
)

// decodeMRT reads MRT messages one at a time. Only TABLE_DUMPv2 unicast RIB
// entries and BGP4MP (or BGP4MP_ET) update messages produce records; every
// other message type is skipped unparsed.
func decodeMRT(ctx context.Context, name string, r io.Reader, process ProcessFunction) error {
	header := make([]byte, mrt.MRT_COMMON_HEADER_LEN)
	var messages, skipped int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, header); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("%w: %s: reading MRT header: %v", ErrSourceUnreadable, name, err)
		}
		h := &mrt.MRTHeader{}
		if err := h.DecodeFromBytes(header); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, name, err)
		}
		body := make([]byte, h.Len)
		if _, err := io.ReadFull(r, body); err != nil {
			return fmt.Errorf("%w: %s: reading MRT body: %v", ErrSourceUnreadable, name, err)
		}
		messages++
		if !consumed(h) {
			log.Debugf("%s: message %d: skipping MRT type %d subtype %d", name, messages, h.Type, h.SubType)
			skipped++
			continue
		}
		msg, err := parseMRT(h, body)
		if err != nil {
			return fmt.Errorf("%w: %s: message %d: %v", ErrSourceUnreadable, name, messages, err)
		}
		if err := emitMRT(msg, process); err != nil {
			return err
		}
	}
	log.Debugf("%s: %d MRT messages, %d skipped", name, messages, skipped)
	return nil
}

func consumed(h *mrt.MRTHeader) bool {
	switch h.Type {
	case mrt.TABLE_DUMPv2:
		switch mrt.MRTSubTypeTableDumpv2(h.SubType) {
		case mrt.RIB_IPV4_UNICAST, mrt.RIB_IPV6_UNICAST,
			mrt.RIB_IPV4_UNICAST_ADDPATH, mrt.RIB_IPV6_UNICAST_ADDPATH:
			return true
		}
	case mrt.BGP4MP, mrt.BGP4MP_ET:
		switch subtype := mrt.MRTSubTypeBGP4MP(h.SubType); subtype {
		case mrt.MESSAGE, mrt.MESSAGE_AS4, mrt.MESSAGE_LOCAL, mrt.MESSAGE_AS4_LOCAL:
			return true
		default:
			return isAddPath(subtype)
		}
	}
	return false
}

func isAddPath(subtype mrt.MRTSubTypeBGP4MP) bool {
	switch subtype {
	case mrt.MESSAGE_ADDPATH, mrt.MESSAGE_AS4_ADDPATH,
		mrt.MESSAGE_LOCAL_ADDPATH, mrt.MESSAGE_AS4_LOCAL_ADDPATH:
		return true
	}
	return false
}

var addPathOption = &bgp.MarshallingOption{AddPath: map[bgp.RouteFamily]bgp.BGPAddPathMode{
	bgp.RF_IPv4_UC: bgp.BGP_ADD_PATH_BOTH,
	bgp.RF_IPv6_UC: bgp.BGP_ADD_PATH_BOTH,
}}

// etTimestampLen is the microsecond field leading every BGP4MP_ET body.
const etTimestampLen = 4

// parseMRT decodes a consumed message body. gobgp rejects BGP4MP_ET and
// reads BGP4MP ADDPATH updates without path identifiers, so both are
// unwrapped here before the BGP message is parsed.
func parseMRT(h *mrt.MRTHeader, body []byte) (*mrt.MRTMessage, error) {
	if h.Type == mrt.BGP4MP_ET {
		if len(body) < etTimestampLen {
			return nil, errors.New("BGP4MP_ET body shorter than its timestamp")
		}
		plain := *h
		plain.Type = mrt.BGP4MP
		plain.Len -= etTimestampLen
		h, body = &plain, body[etTimestampLen:]
	}
	subtype := mrt.MRTSubTypeBGP4MP(h.SubType)
	if h.Type != mrt.BGP4MP || !isAddPath(subtype) {
		return mrt.ParseMRTBody(h, body)
	}
	n, err := bgp4mpHeaderLen(subtype, body)
	if err != nil {
		return nil, err
	}
	if len(body) < n+bgp.BGP_HEADER_LENGTH {
		return nil, errors.New("BGP4MP message shorter than a BGP header")
	}
	msg, err := bgp.ParseBGPMessage(body[n:], addPathOption)
	if err != nil {
		return nil, err
	}
	return &mrt.MRTMessage{Header: *h, Body: &mrt.BGP4MPMessage{BGPMessage: msg}}, nil
}

// bgp4mpHeaderLen is the size of the peer header that precedes the BGP
// message: two AS numbers, the interface index, the AFI and two addresses.
func bgp4mpHeaderLen(subtype mrt.MRTSubTypeBGP4MP, body []byte) (int, error) {
	asLen := 2
	if subtype == mrt.MESSAGE_AS4_ADDPATH || subtype == mrt.MESSAGE_AS4_LOCAL_ADDPATH {
		asLen = 4
	}
	afiAt := 2*asLen + 2
	if len(body) < afiAt+2 {
		return 0, errors.New("BGP4MP peer header truncated")
	}
	switch afi := binary.BigEndian.Uint16(body[afiAt:]); afi {
	case bgp.AFI_IP:
		return afiAt + 2 + 2*4, nil
	case bgp.AFI_IP6:
		return afiAt + 2 + 2*16, nil
	default:
		return 0, fmt.Errorf("BGP4MP peer header: unsupported address family %d", afi)
	}
}

func emitMRT(msg *mrt.MRTMessage, process ProcessFunction) error {
	switch body := msg.Body.(type) {
	case *mrt.Rib:
		prefix, ok, err := prefixOf(body.Prefix)
		if err != nil || !ok {
			return err
		}
		for _, entry := range body.Entries {
			origins, path := pathOf(entry.PathAttributes)
			if err := process(Record{Type: Announce, Prefix: prefix, Origins: origins, Path: path}); err != nil {
				return err
			}
		}
	case *mrt.BGP4MPMessage:
		if body.BGPMessage == nil {
			return nil
		}
		if update, ok := body.BGPMessage.Body.(*bgp.BGPUpdate); ok {
			return emitUpdate(update, process)
		}
	}
	return nil
}

func emitUpdate(update *bgp.BGPUpdate, process ProcessFunction) error {
	origins, path := pathOf(update.PathAttributes)
	var announced, withdrawn []bgp.AddrPrefixInterface
	for _, n := range update.NLRI {
		announced = append(announced, n)
	}
	for _, n := range update.WithdrawnRoutes {
		withdrawn = append(withdrawn, n)
	}
	for _, attr := range update.PathAttributes {
		switch a := attr.(type) {
		case *bgp.PathAttributeMpReachNLRI:
			announced = append(announced, a.Value...)
		case *bgp.PathAttributeMpUnreachNLRI:
			withdrawn = append(withdrawn, a.Value...)
		}
	}
	for _, n := range withdrawn {
		prefix, ok, err := prefixOf(n)
		if err != nil {
			return err
		}
		if ok {
			if err := process(Record{Type: Withdraw, Prefix: prefix}); err != nil {
				return err
			}
		}
	}
	for _, n := range announced {
		prefix, ok, err := prefixOf(n)
		if err != nil {
			return err
		}
		if ok {
			if err := process(Record{Type: Announce, Prefix: prefix, Origins: origins, Path: path}); err != nil {
				return err
			}
		}
	}
	return nil
}

// prefixOf converts unicast NLRI. Other address families report ok == false.
func prefixOf(nlri bgp.AddrPrefixInterface) (netip.Prefix, bool, error) {
	var addr netip.Addr
	var length uint8
	switch n := nlri.(type) {
	case *bgp.IPAddrPrefix:
		a, ok := netip.AddrFromSlice(n.Prefix)
		if !ok {
			return netip.Prefix{}, false, fmt.Errorf("%w: bad IPv4 NLRI %v", cidr.ErrInvalidBlock, n.Prefix)
		}
		addr, length = a.Unmap(), n.Length
	case *bgp.IPv6AddrPrefix:
		a, ok := netip.AddrFromSlice(n.Prefix)
		if !ok || !a.Is6() {
			return netip.Prefix{}, false, fmt.Errorf("%w: bad IPv6 NLRI %v", cidr.ErrInvalidBlock, n.Prefix)
		}
		addr, length = a, n.Length
	default:
		return netip.Prefix{}, false, nil
	}
	p, err := cidr.NewBlock(addr, int(length))
	if err != nil {
		return netip.Prefix{}, false, err
	}
	return p, true, nil
}

// pathOf extracts the origin set and the AS_SEQUENCE hops. AS4_PATH, when
// present, carries the 4-byte tail of the path and is preferred.
func pathOf(attrs []bgp.PathAttributeInterface) (asn.Set, []uint32) {
	var segments []bgp.AsPathParamInterface
	var as4 []bgp.AsPathParamInterface
	for _, attr := range attrs {
		switch a := attr.(type) {
		case *bgp.PathAttributeAsPath:
			segments = a.Value
		case *bgp.PathAttributeAs4Path:
			for _, p := range a.Value {
				as4 = append(as4, p)
			}
		}
	}
	if len(as4) > 0 {
		segments = as4
	}
	return fromSegments(segments)
}

func fromSegments(segments []bgp.AsPathParamInterface) (asn.Set, []uint32) {
	if len(segments) == 0 {
		return nil, nil
	}
	var hops []uint32
	usable := true
	for _, seg := range segments {
		switch seg.GetType() {
		case bgp.BGP_ASPATH_ATTR_TYPE_SEQ:
			hops = append(hops, seg.GetAS()...)
		case bgp.BGP_ASPATH_ATTR_TYPE_SET:
			usable = false
		}
	}
	var origins asn.Set
	last := segments[len(segments)-1]
	switch as := last.GetAS(); last.GetType() {
	case bgp.BGP_ASPATH_ATTR_TYPE_SEQ:
		if len(as) > 0 {
			origins = asn.Set{as[len(as)-1]}
		}
	case bgp.BGP_ASPATH_ATTR_TYPE_SET:
		origins = asn.NewSet(as...)
	}
	if !usable {
		hops = nil
	}
	return origins, hops
}
