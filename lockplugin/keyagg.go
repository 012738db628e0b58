// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lockplugin

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// keyAgg aggregates pubKeys into a single MuSig2-style public key using
// Bellare-Neven coefficients (H(all_keys || pk_i) mod N per key) to defeat
// rogue-key attacks, then sums the scaled points on the curve. This
// completes the aggregation the teacher's crypto/musig2.KeyAgg left as a
// TODO (it computed the same coefficients in computeKeyCoefficients but
// never combined them into a point), reusing the identical coefficient
// derivation.
func keyAgg(pubKeys []btcec.PublicKey) (*btcec.PublicKey, error) {
	if len(pubKeys) == 0 {
		return nil, fmt.Errorf("no public keys provided")
	}
	if len(pubKeys) == 1 {
		k := pubKeys[0]
		return &k, nil
	}

	coeffs, err := keyCoefficients(pubKeys)
	if err != nil {
		return nil, err
	}

	var accum btcec.JacobianPoint
	accum.X.SetInt(0)
	accum.Y.SetInt(0)
	accum.Z.SetInt(0)
	haveAccum := false

	for i, pk := range pubKeys {
		var point btcec.JacobianPoint
		pk.AsJacobian(&point)

		var scaled btcec.JacobianPoint
		btcec.ScalarMultNonConst(coeffs[i], &point, &scaled)

		if !haveAccum {
			accum = scaled
			haveAccum = true
			continue
		}
		var sum btcec.JacobianPoint
		btcec.AddNonConst(&accum, &scaled, &sum)
		accum = sum
	}

	accum.ToAffine()
	return btcec.NewPublicKey(&accum.X, &accum.Y), nil
}

func keyCoefficients(pubKeys []btcec.PublicKey) ([]*btcec.ModNScalar, error) {
	allKeysData := make([]byte, 0, len(pubKeys)*33)
	for _, pk := range pubKeys {
		allKeysData = append(allKeysData, pk.SerializeCompressed()...)
	}

	coeffs := make([]*btcec.ModNScalar, len(pubKeys))
	for i, pk := range pubKeys {
		h := sha256.New()
		h.Write(allKeysData)
		h.Write(pk.SerializeCompressed())
		digest := h.Sum(nil)

		var scalar btcec.ModNScalar
		scalar.SetByteSlice(digest)
		coeffs[i] = &scalar
	}
	return coeffs, nil
}
