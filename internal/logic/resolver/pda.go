package resolver

import (
	"github.com/blocto/solana-go-sdk/common"

	"rental-market-sol/internal/consts"
	"rental-market-sol/internal/pkg/types"
)

// Metaplex PDA 种子
var (
	seedMetadata = []byte("metadata")
	seedEdition  = []byte("edition")
)

// findMetadataAddress 派生 mint 的 metadata PDA：["metadata", programId, mint]
func findMetadataAddress(mint types.Pubkey) (types.Pubkey, error) {
	program := common.PublicKeyFromBytes(consts.TokenMetaProgram[:])
	pub, _, err := common.FindProgramAddress(
		[][]byte{seedMetadata, program.Bytes(), mint[:]},
		program,
	)
	if err != nil {
		return types.Pubkey{}, err
	}
	return types.PubkeyFromBytes(pub.Bytes())
}

// findEditionAddress 派生 mint 的 edition PDA：["metadata", programId, mint, "edition"]
func findEditionAddress(mint types.Pubkey) (types.Pubkey, error) {
	program := common.PublicKeyFromBytes(consts.TokenMetaProgram[:])
	pub, _, err := common.FindProgramAddress(
		[][]byte{seedMetadata, program.Bytes(), mint[:], seedEdition},
		program,
	)
	if err != nil {
		return types.Pubkey{}, err
	}
	return types.PubkeyFromBytes(pub.Bytes())
}
