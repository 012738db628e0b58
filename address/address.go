// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package address implements the concrete encoding for spec §4.3's Address
// Item variant, which spec.md presumes but never specifies (an Open
// Question resolved in SPEC_FULL.md §5.3 / DESIGN.md): a bech32-encoded
// lock script, carrying the full (code_hash, hash_type, args) rather than
// a fixed P2PKH/Taproot payload, since this engine's locks are not limited
// to secp256k1 — ground truth is the teacher's
// addresses/shell_addresses.go bech32 usage, generalized from a fixed
// witness-version-plus-program payload to an arbitrary Script.
package address

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/wire"
)

// ErrInvalidAddress is returned when an address string cannot be decoded at
// all (bad bech32 checksum, wrong length, wrong human-readable part).
var ErrInvalidAddress = errors.New("address: invalid address format")

func hrpFor(network wire.Network) string {
	switch network {
	case wire.NetworkMain:
		return "xsl"
	case wire.NetworkTest:
		return "xslt"
	default:
		return "xsld"
	}
}

func networkForHRP(hrp string) (wire.Network, bool) {
	switch hrp {
	case "xsl":
		return wire.NetworkMain, true
	case "xslt":
		return wire.NetworkTest, true
	case "xsld":
		return wire.NetworkDev, true
	default:
		return 0, false
	}
}

// Encode bech32-encodes script for network: payload is
// [hash_type(1)] ‖ code_hash(32) ‖ args.
func Encode(network wire.Network, script wire.Script) (string, error) {
	payload := make([]byte, 0, 1+chainhash.HashSize+len(script.Args))
	payload = append(payload, byte(script.HashType))
	payload = append(payload, script.CodeHash[:]...)
	payload = append(payload, script.Args...)

	conv, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("address: bit conversion failed: %w", err)
	}

	encoded, err := bech32.Encode(hrpFor(network), conv)
	if err != nil {
		return "", fmt.Errorf("address: bech32 encode failed: %w", err)
	}
	return encoded, nil
}

// Decode parses an address produced by Encode back into its network and
// Script.
func Decode(addr string) (wire.Network, wire.Script, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return 0, wire.Script{}, ErrInvalidAddress
	}
	network, ok := networkForHRP(hrp)
	if !ok {
		return 0, wire.Script{}, fmt.Errorf("%w: unknown network prefix %q", ErrInvalidAddress, hrp)
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return 0, wire.Script{}, fmt.Errorf("%w: bit conversion failed", ErrInvalidAddress)
	}
	if len(payload) < 1+chainhash.HashSize {
		return 0, wire.Script{}, fmt.Errorf("%w: payload too short", ErrInvalidAddress)
	}

	script := wire.Script{HashType: wire.HashType(payload[0])}
	copy(script.CodeHash[:], payload[1:1+chainhash.HashSize])
	if rest := payload[1+chainhash.HashSize:]; len(rest) > 0 {
		script.Args = append([]byte(nil), rest...)
	}
	return network, script, nil
}
