// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package feeloop implements the Fee Fixed-Point (spec §4.7): iterates a
// planner+balancer build step with a provisional fee until the serialized
// transaction size stabilizes against the fee it implies.
package feeloop

import (
	"github.com/btcsuite/btclog"

	"github.com/toole-brendan/shell-mercury/cellerrors"
)

// log is this package's logger, set via UseLogger.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the fee loop.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// MaxIterations bounds the fixed-point search; exceeding it means a
// pathological request (spec §4.7: "16 iterations").
const MaxIterations = 16

// BuildFunc runs one planner+balancer pass at the given assumed fee and
// returns the resulting serialized size. Implementations are expected to be
// deterministic for a fixed fee (repeated calls with the same fee at the
// same step must return the same size), since Run relies on this to detect
// convergence.
type BuildFunc func(fee uint64) (size uint32, err error)

// Run iterates BuildFunc starting from initFee, raising the fee to
// ceil(feeRate*size/1000) each round until the implied fee no longer
// exceeds the fee the last round assumed. Returns the converged
// (fee, size) pair.
func Run(op string, build BuildFunc, initFee, feeRate uint64) (fee uint64, size uint32, err error) {
	fee = initFee
	var lastSize uint32

	for i := 0; i < MaxIterations; i++ {
		s, buildErr := build(fee)
		if buildErr != nil {
			return 0, 0, buildErr
		}

		next := impliedFee(feeRate, s)
		log.Debugf("%s: iteration %d fee=%d size=%d implied=%d", op, i, fee, s, next)

		if next <= fee {
			return fee, s, nil
		}

		if s == lastSize && next > fee {
			// Size stopped growing but the implied fee still exceeds
			// the assumed one: bump by one step rather than looping
			// on a fee that can never be satisfied by this size.
			fee++
			lastSize = s
			continue
		}

		fee = next
		lastSize = s
	}

	return 0, 0, cellerrors.New(op, cellerrors.Internal, cellerrors.ReasonFeeConvergenceFailure,
		"fee fixed-point did not converge within the iteration bound")
}

// impliedFee computes ceil(feeRate * size / 1000), the fee a transaction of
// size bytes owes at feeRate shannons per kilobyte.
func impliedFee(feeRate uint64, size uint32) uint64 {
	numerator := feeRate * uint64(size)
	return (numerator + 999) / 1000
}
