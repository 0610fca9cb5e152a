package resolver

import (
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-market-sol/internal/consts"
	"rental-market-sol/internal/pkg/types"
)

func TestFindMetadataAddress(t *testing.T) {
	mint := types.PubkeyFromBase58(consts.WSOLMintStr)

	got, err := findMetadataAddress(mint)
	require.NoError(t, err)
	assert.False(t, got.IsZero())

	// 与 SDK 直接派生的结果逐字节一致
	program := common.PublicKeyFromBytes(consts.TokenMetaProgram[:])
	want, _, err := common.FindProgramAddress(
		[][]byte{[]byte("metadata"), program.Bytes(), mint[:]},
		program,
	)
	require.NoError(t, err)
	assert.Equal(t, want.ToBase58(), got.String())
}

func TestFindEditionAddress(t *testing.T) {
	mint := types.PubkeyFromBase58(consts.WSOLMintStr)

	got, err := findEditionAddress(mint)
	require.NoError(t, err)
	assert.False(t, got.IsZero())

	// edition PDA 与 metadata PDA 必须不同，且派生结果稳定
	md, err := findMetadataAddress(mint)
	require.NoError(t, err)
	assert.False(t, got.Equals(md))

	again, err := findEditionAddress(mint)
	require.NoError(t, err)
	assert.True(t, got.Equals(again))
}
