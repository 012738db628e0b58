// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sudt

import "errors"

var (
	errNegativeAmount = errors.New("sudt: amount must not be negative")
	errAmountOverflow = errors.New("sudt: amount exceeds 128 bits")
)
