package types

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/mr-tron/base58"
)

type Pubkey [32]byte

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) Equals(other Pubkey) bool {
	return p == other
}

// IsZero 判断是否为全零地址（常用于表示"未设置"）
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// Less 按字节序比较，用于确定性排序（与 base58 字典序不同，但同样是全序）
func (p Pubkey) Less(other Pubkey) bool {
	return bytes.Compare(p[:], other[:]) < 0
}

// TryPubkeyFromBase58 解析 base58 字符串为 Pubkey，失败时返回 error（用于不信任输入路径）
func TryPubkeyFromBase58(s string) (Pubkey, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("failed to decode base58 pubkey %q: %w", s, err)
	}
	if len(data) != 32 {
		return Pubkey{}, fmt.Errorf("invalid pubkey length: got %d, want 32, input=%q", len(data), s)
	}
	var p Pubkey
	copy(p[:], data)
	return p, nil
}

func PubkeyFromBase58(s string) Pubkey {
	data, err := base58.Decode(s)
	if err != nil {
		panic(fmt.Errorf("failed to decode base58 pubkey %q: %w", s, err))
	}
	if len(data) != 32 {
		panic(fmt.Errorf("invalid pubkey length: got %d, want 32, input=%q", len(data), s))
	}
	var p Pubkey
	copy(p[:], data)
	return p
}

func PubkeysFromBase58(strs []string) []Pubkey {
	result := make([]Pubkey, 0, len(strs))
	for _, s := range strs {
		result = append(result, PubkeyFromBase58(s))
	}
	return result
}

func PubkeyFromBytes(b []byte) (Pubkey, error) {
	if len(b) != 32 {
		return Pubkey{}, fmt.Errorf("invalid pubkey length: got %d, want 32", len(b))
	}
	var p Pubkey
	copy(p[:], b)
	return p, nil
}

// SortPubkeys 原地按字节序升序排序
func SortPubkeys(keys []Pubkey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
}

// DedupPubkeys 去重并过滤 nil，保留首次出现顺序。
// 入参允许包含 nil（表示调用方已知缺失的地址），不会出现在结果中。
func DedupPubkeys(keys []*Pubkey) []Pubkey {
	seen := make(map[Pubkey]struct{}, len(keys))
	result := make([]Pubkey, 0, len(keys))
	for _, k := range keys {
		if k == nil {
			continue
		}
		if _, ok := seen[*k]; ok {
			continue
		}
		seen[*k] = struct{}{}
		result = append(result, *k)
	}
	return result
}
