// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package starknet

import (
	"regexp"
	"strings"
)

var addressRegexp = regexp.MustCompile(`^0x[a-fA-F0-9]+$`)

// NormalizeAddress returns the canonical form of a hex-encoded chain
// identifier: lowercase, 0x prefix, leading zero digits stripped. The
// gateway and verification reads may return differently padded
// representations of the same value, so every comparison goes through
// this normalization.
func NormalizeAddress(addr string) string {
	s := strings.ToLower(strings.TrimSpace(addr))
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return "0x" + s
}

// AddressesEqual compares two hex identifiers after normalization.
func AddressesEqual(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}

// IsValidAddress checks that the given string is a 0x-prefixed hex value.
func IsValidAddress(addr string) bool {
	return addressRegexp.MatchString(strings.TrimSpace(addr))
}

// IsZeroAddress reports whether addr normalizes to 0x0. Zero means
// "not configured" for optional roles like the verifier.
func IsZeroAddress(addr string) bool {
	return NormalizeAddress(addr) == "0x0"
}

// FormatAddress shortens a long identifier for terminal display.
func FormatAddress(addr string) string {
	const startChars, endChars = 10, 4
	if len(addr) <= startChars+endChars {
		return addr
	}
	return addr[:startChars] + "..." + addr[len(addr)-endChars:]
}
