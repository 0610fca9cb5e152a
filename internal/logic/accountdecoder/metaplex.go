package accountdecoder

import (
	"strings"

	"github.com/near/borsh-go"

	"rental-market-sol/internal/logic/core"
	"rental-market-sol/internal/pkg/types"
)

// Metaplex 账户首字节为 key，标识账户种类
const (
	metaplexKeyEditionV1       = 1
	metaplexKeyMasterEditionV1 = 2
	metaplexKeyMetadataV1      = 4
	metaplexKeyMasterEditionV2 = 6
)

// metadata 的 name/symbol/uri 为定容量缓冲，内容以 \x00 补齐
type metadataLayout struct {
	Key                 uint8
	UpdateAuthority     types.Pubkey
	Mint                types.Pubkey
	Data                metadataDataLayout
	PrimarySaleHappened bool
	IsMutable           bool
}

type metadataDataLayout struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             *[]creatorLayout
}

type creatorLayout struct {
	Address  types.Pubkey
	Verified bool
	Share    uint8
}

type editionLayout struct {
	Key     uint8
	Parent  types.Pubkey
	Edition uint64
}

type masterEditionV2Layout struct {
	Key       uint8
	Supply    uint64
	MaxSupply *uint64
}

// decodeMetaplex 按 key 字节分发 metadata / edition / master edition
func decodeMetaplex(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	if len(data) == 0 {
		return nil, false
	}
	switch data[0] {
	case metaplexKeyMetadataV1:
		return decodeMetadata(addr, data)
	case metaplexKeyEditionV1:
		return decodeEdition(addr, data)
	case metaplexKeyMasterEditionV1, metaplexKeyMasterEditionV2:
		return decodeMasterEdition(addr, data)
	default:
		return nil, false
	}
}

func decodeMetadata(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	var layout metadataLayout
	if err := borsh.Deserialize(&layout, data); err != nil {
		return nil, false
	}

	out := &core.MetadataData{
		Address:         addr,
		UpdateAuthority: layout.UpdateAuthority,
		Mint:            layout.Mint,
		Name:            strings.TrimRight(layout.Data.Name, "\x00"),
		Symbol:          strings.TrimRight(layout.Data.Symbol, "\x00"),
		URI:             strings.TrimRight(layout.Data.URI, "\x00"),
	}
	if layout.Data.Creators != nil {
		out.Creators = make([]core.Creator, 0, len(*layout.Data.Creators))
		for _, c := range *layout.Data.Creators {
			out.Creators = append(out.Creators, core.Creator{
				Address:  c.Address,
				Verified: c.Verified,
				Share:    c.Share,
			})
		}
	}
	return &core.DecodedRecord{
		Address:  addr,
		Type:     core.RecordMetadata,
		Metadata: out,
	}, true
}

func decodeEdition(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	var layout editionLayout
	if err := borsh.Deserialize(&layout, data); err != nil {
		return nil, false
	}
	return &core.DecodedRecord{
		Address: addr,
		Type:    core.RecordEdition,
		Edition: &core.EditionData{
			Address: addr,
			Key:     layout.Key,
			Parent:  layout.Parent,
			Edition: layout.Edition,
		},
	}, true
}

func decodeMasterEdition(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	var layout masterEditionV2Layout
	if err := borsh.Deserialize(&layout, data); err != nil {
		return nil, false
	}
	return &core.DecodedRecord{
		Address: addr,
		Type:    core.RecordEdition,
		Edition: &core.EditionData{
			Address:   addr,
			Key:       layout.Key,
			Supply:    layout.Supply,
			MaxSupply: layout.MaxSupply,
		},
	}, true
}
