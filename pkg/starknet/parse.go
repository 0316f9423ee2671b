// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package starknet

import (
	"fmt"
	"regexp"
	"strings"
)

// sncast output formats have shifted between releases, so each field is
// matched against the known variants in order.
var (
	contractAddressPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:contract_address:|Contract Address:)\s*(0x[a-fA-F0-9]+)`),
		regexp.MustCompile(`Contract deployed at:\s*(0x[a-fA-F0-9]+)`),
		regexp.MustCompile(`Deployed contract address:\s*(0x[a-fA-F0-9]+)`),
	}
	classHashPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:class_hash:|Class Hash:)\s*(0x[a-fA-F0-9]+)`),
		regexp.MustCompile(`Contract class hash:\s*(0x[a-fA-F0-9]+)`),
		regexp.MustCompile(`Declared class hash:\s*(0x[a-fA-F0-9]+)`),
	}
	transactionHashPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:transaction_hash:|Transaction Hash:)\s*(0x[a-fA-F0-9]+)`),
		regexp.MustCompile(`Transaction hash:\s*(0x[a-fA-F0-9]+)`),
		regexp.MustCompile(`Tx hash:\s*(0x[a-fA-F0-9]+)`),
	}
	alreadyDeclaredPattern = regexp.MustCompile(`Class with hash (0x[a-fA-F0-9]+) is already declared`)
	responsePattern        = regexp.MustCompile(`response:\s*(\[[^\]]*\]|0x[a-fA-F0-9]+)`)
	hexValuePattern        = regexp.MustCompile(`0x[a-fA-F0-9]+`)
)

func matchFirst(patterns []*regexp.Regexp, output string) (string, bool) {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(output); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ParseContractAddress extracts the deployed contract address from
// sncast deploy output.
func ParseContractAddress(output string) (string, error) {
	if v, ok := matchFirst(contractAddressPatterns, output); ok {
		return v, nil
	}
	return "", fmt.Errorf("could not parse contract address from output")
}

// ParseClassHash extracts the declared class hash from sncast declare output.
func ParseClassHash(output string) (string, error) {
	if v, ok := matchFirst(classHashPatterns, output); ok {
		return v, nil
	}
	return "", fmt.Errorf("could not parse class hash from output")
}

// ParseTransactionHash extracts a transaction hash from sncast output.
func ParseTransactionHash(output string) (string, error) {
	if v, ok := matchFirst(transactionHashPatterns, output); ok {
		return v, nil
	}
	return "", fmt.Errorf("could not parse transaction hash from output")
}

// ParseAlreadyDeclared checks declare output for the already-declared
// condition and returns the existing class hash if present.
func ParseAlreadyDeclared(output string) (string, bool) {
	if m := alreadyDeclaredPattern.FindStringSubmatch(output); m != nil {
		return m[1], true
	}
	return "", false
}

// ParseCallResponse extracts the raw response payload of a read-only
// call. Falls back to the trimmed output when no response marker is
// found, the orchestrator only ever compares it as an address anyway.
func ParseCallResponse(output string) string {
	if m := responsePattern.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	return strings.TrimSpace(output)
}

// FirstHexValue pulls the first hex-encoded value out of a raw call
// response, which may arrive bare or wrapped in a response array.
func FirstHexValue(raw string) (string, bool) {
	if m := hexValuePattern.FindString(raw); m != "" {
		return m, true
	}
	return "", false
}
