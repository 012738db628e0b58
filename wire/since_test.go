package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeSinceRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		flag   SinceFlag
		metric SinceMetric
		value  uint64
	}{
		{"absolute epoch", SinceAbsolute, SinceMetricEpoch, 42},
		{"relative block number", SinceRelative, SinceMetricBlockNumber, 1000},
		{"absolute timestamp", SinceAbsolute, SinceMetricTimestamp, 1700000000},
		{"zero value", SinceRelative, SinceMetricEpoch, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeSince(tc.flag, tc.metric, tc.value)
			flag, metric, value := DecodeSince(encoded)
			assert.Equal(t, tc.flag, flag)
			assert.Equal(t, tc.metric, metric)
			assert.Equal(t, tc.value, value)
		})
	}
}

func TestEncodeSinceMasksOversizedValue(t *testing.T) {
	// A value above the 56-bit magnitude field must not bleed into the
	// flag or metric bits.
	encoded := EncodeSince(SinceAbsolute, SinceMetricBlockNumber, ^uint64(0))
	flag, metric, _ := DecodeSince(encoded)
	assert.Equal(t, SinceAbsolute, flag)
	assert.Equal(t, SinceMetricBlockNumber, metric)
}
