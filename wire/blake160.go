// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "golang.org/x/crypto/blake2b"

// Blake160Size is the length of a blake160 identity hash: the first 20
// bytes of a blake2b-256 digest, the identity encoding embedded in secp256k1
// and pw-lock script args.
const Blake160Size = 20

// Blake160 returns the first 20 bytes of the blake2b-256 digest of data.
// Panics only if the blake2b constructor itself fails, which happens only
// for an unsupported key size — New256 is called with a nil key and never
// fails.
func Blake160(data []byte) [Blake160Size]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write(data)
	sum := h.Sum(nil)
	var out [Blake160Size]byte
	copy(out[:], sum[:Blake160Size])
	return out
}
