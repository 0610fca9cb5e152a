package filter

import (
	"strconv"

	"rental-market-sol/internal/logic/core"
)

// Kind 过滤器种类
type Kind string

const (
	KindCreators Kind = "creators" // 按 metadata 登记的创作者集合
	KindIssuer   Kind = "issuer"   // 按出租方（owner 或 rentalManager.issuer）
	KindState    Kind = "state"    // 按租赁生命周期状态
	KindOwner    Kind = "owner"    // 按 token account 的 owner
	KindClaimer  Kind = "claimer"  // 按当前租用者
)

// Spec 声明式过滤条件：无状态纯谓词，join 之后应用，可重复执行（幂等）。
// Values 为 base58 地址集合；state 过滤时为状态名或十进制枚举值。
type Spec struct {
	Kind            Kind
	Values          []string
	RequireVerified bool // creators 过滤时是否要求 verified 标记（devnet 放宽）
}

// ValueSet 将 Values 转为集合形式
func (s *Spec) ValueSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Values))
	for _, v := range s.Values {
		set[v] = struct{}{}
	}
	return set
}

// MatchCreators 判断 metadata 的创作者集合是否与 values 相交。
// requireVerified 为 true 时只统计 verified 创作者。
func MatchCreators(md *core.MetadataData, values map[string]struct{}, requireVerified bool) bool {
	if md == nil {
		return false
	}
	for _, creator := range md.Creators {
		if _, ok := values[creator.Address.String()]; !ok {
			continue
		}
		if !requireVerified || creator.Verified {
			return true
		}
	}
	return false
}

// MatchIssuer 判断出租方：token owner 在集合内，或其租赁管理账户的 issuer 在集合内
func MatchIssuer(ta *core.TokenAccountData, rm *core.RentalManagerData, values map[string]struct{}) bool {
	if ta != nil {
		if _, ok := values[ta.Owner.String()]; ok {
			return true
		}
	}
	if rm != nil {
		if _, ok := values[rm.Issuer.String()]; ok {
			return true
		}
	}
	return false
}

func matchState(rm *core.RentalManagerData, values map[string]struct{}) bool {
	if rm == nil {
		return false
	}
	if _, ok := values[strconv.Itoa(int(rm.State))]; ok {
		return true
	}
	_, ok := values[rm.State.String()]
	return ok
}

func (s *Spec) matches(record *core.CompositeTokenRecord, values map[string]struct{}) bool {
	switch s.Kind {
	case KindCreators:
		return MatchCreators(record.Metadata, values, s.RequireVerified)
	case KindIssuer:
		return MatchIssuer(record.TokenAccount, record.RentalManager, values)
	case KindState:
		return matchState(record.RentalManager, values)
	case KindOwner:
		if record.TokenAccount == nil {
			return false
		}
		_, ok := values[record.TokenAccount.Owner.String()]
		return ok
	case KindClaimer:
		claimer := record.Claimer()
		if claimer == nil {
			return false
		}
		_, ok := values[claimer.String()]
		return ok
	default:
		return false
	}
}

// Apply 对 join 结果应用过滤条件，保持输入顺序。spec 为 nil 时原样返回。
func Apply(records []*core.CompositeTokenRecord, spec *Spec) []*core.CompositeTokenRecord {
	if spec == nil {
		return records
	}
	values := spec.ValueSet()
	result := make([]*core.CompositeTokenRecord, 0, len(records))
	for _, record := range records {
		if spec.matches(record, values) {
			result = append(result, record)
		}
	}
	return result
}
