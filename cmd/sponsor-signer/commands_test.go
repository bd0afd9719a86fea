package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_decodeBytes(t *testing.T) {
	b, err := decodeBytes("0x00ff10")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, b)

	b, err = decodeBytes("AP8Q")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, b)

	_, err = decodeBytes("0xzz")
	require.Error(t, err)
}
