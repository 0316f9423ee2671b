// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package starknet

import (
	"math/big"
	"strconv"
)

// felts hold at most 31 bytes of string data
const byteArrayChunkSize = 31

// ByteArrayCalldata encodes a string into Cairo ByteArray calldata:
// [number_of_full_words, full_words..., pending_word, pending_word_len].
// Full 31-byte chunks become big-endian felts; the trailing partial chunk
// is the pending word.
func ByteArrayCalldata(text string) []string {
	if text == "" {
		return []string{"0", "0", "0"}
	}

	data := []byte(text)
	var words []string
	for i := 0; i < len(data); i += byteArrayChunkSize {
		end := i + byteArrayChunkSize
		if end > len(data) {
			end = len(data)
		}
		words = append(words, new(big.Int).SetBytes(data[i:end]).String())
	}

	pendingLen := len(data) % byteArrayChunkSize
	if pendingLen == 0 {
		// string length is a multiple of the chunk size, the last full
		// word still travels as the pending word
		pendingLen = byteArrayChunkSize
	}
	pending := words[len(words)-1]
	fullWords := words[:len(words)-1]

	calldata := []string{strconv.Itoa(len(fullWords))}
	calldata = append(calldata, fullWords...)
	calldata = append(calldata, pending, strconv.Itoa(pendingLen))
	return calldata
}

// Uint64Calldata renders a scalar constructor parameter.
func Uint64Calldata(v uint64) string {
	return strconv.FormatUint(v, 10)
}
