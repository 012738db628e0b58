// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// Network identifies which cell-chain network a Script or address was
// produced for. It plays the same discriminating role the teacher's
// BitcoinNet magic number played for P2P framing, but here it only ever
// travels inside an address string or a Script's implicit context — this
// engine has no wire-level peer handshake.
type Network uint8

const (
	// NetworkMain is the production network.
	NetworkMain Network = iota

	// NetworkTest is the public test network.
	NetworkTest

	// NetworkDev is a local development network used by integration tests.
	NetworkDev
)

var networkStrings = map[Network]string{
	NetworkMain: "main",
	NetworkTest: "test",
	NetworkDev:  "dev",
}

// String returns the Network in human-readable form.
func (n Network) String() string {
	if s, ok := networkStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Network (%d)", uint8(n))
}
