package address

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/shell-mercury/wire"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		network wire.Network
	}{
		{"main", wire.NetworkMain},
		{"test", wire.NetworkTest},
		{"dev", wire.NetworkDev},
	}
	script := wire.Script{
		CodeHash: chainhash.Hash{1, 2, 3},
		HashType: wire.HashTypeType,
		Args:     []byte{0xAA, 0xBB, 0xCC, 0xDD},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Encode(tc.network, script)
			require.NoError(t, err)

			gotNetwork, gotScript, err := Decode(addr)
			require.NoError(t, err)
			assert.Equal(t, tc.network, gotNetwork)
			assert.True(t, script.Equal(gotScript))
		})
	}
}

func TestEncodeRoundTripWithEmptyArgs(t *testing.T) {
	script := wire.Script{CodeHash: chainhash.Hash{9}, HashType: wire.HashTypeData}
	addr, err := Encode(wire.NetworkMain, script)
	require.NoError(t, err)

	_, got, err := Decode(addr)
	require.NoError(t, err)
	assert.True(t, script.Equal(got))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode("not-a-bech32-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestDecodeRejectsUnknownHRP(t *testing.T) {
	conv, err := bech32.ConvertBits([]byte{0, 1, 2, 3}, 8, 5, true)
	require.NoError(t, err)
	addr, err := bech32.Encode("xslx", conv)
	require.NoError(t, err)

	_, _, err = Decode(addr)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
