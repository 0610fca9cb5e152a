package errmap

import (
	"errors"
	"strconv"
	"strings"

	"github.com/blocto/solana-go-sdk/rpc"
)

// Failure 一次失败提交的原始信息：主错误文本 + 链上日志行
type Failure struct {
	Message string
	Logs    []string
}

// FromError 从 RPC 错误中提取 message 与链上日志
func FromError(err error) Failure {
	var rpcErr *rpc.JsonRpcError
	if errors.As(err, &rpcErr) {
		f := Failure{Message: rpcErr.Message}
		if data, ok := rpcErr.Data.(map[string]any); ok {
			if rawLogs, ok := data["logs"].([]any); ok {
				for _, l := range rawLogs {
					if s, ok := l.(string); ok {
						f.Logs = append(f.Logs, s)
					}
				}
			}
		}
		return f
	}
	return Failure{Message: err.Error()}
}

type candidate struct {
	programMatch bool
	errorMatch   string
}

// Classify 把失败原文映射为可读文案。两层匹配：
// 第一层按 message 尾部十六进制码做数值精确查表；第二层退化为在 message
// 与日志里做错误码子串扫描。程序表按调用方给定的优先序尝试，之后是通用表。
// 选择策略：优先取 programMatch（日志同时出现程序地址与 "failed"）且有文案
// 的结果，其次任意有文案的结果，都没有则原样返回 fallback。
func Classify(f Failure, tables []ProgramTable, fallback string) string {
	code, codeOK := trailingHexCode(f.Message)

	logs := f.Logs
	if len(logs) == 0 {
		logs = []string{f.Message}
	}

	candidates := make([]candidate, 0, len(tables)*2+2)

	// 第一层：数值精确匹配
	for i := range tables {
		table := &tables[i]
		c := candidate{programMatch: programMatched(logs, table)}
		if codeOK {
			c.errorMatch = table.lookup(code)
		}
		candidates = append(candidates, c)
	}
	if codeOK {
		decimal := strconv.FormatUint(code, 10)
		candidates = append(candidates, candidate{errorMatch: nativeExact(decimal)})
	} else {
		candidates = append(candidates, candidate{})
	}

	// 第二层：子串扫描
	for i := range tables {
		table := &tables[i]
		c := candidate{programMatch: programMatched(logs, table)}
		for _, e := range table.Errors {
			if containsCode(f, strconv.FormatUint(e.Code, 10)) {
				c.errorMatch = e.Message
				break
			}
		}
		candidates = append(candidates, c)
	}
	scan := candidate{}
	for _, rule := range nativeErrors {
		if containsCode(f, rule.Code) {
			scan.errorMatch = rule.Message
			break
		}
	}
	candidates = append(candidates, scan)

	for _, c := range candidates {
		if c.programMatch && c.errorMatch != "" {
			return c.errorMatch
		}
	}
	for _, c := range candidates {
		if c.errorMatch != "" {
			return c.errorMatch
		}
	}
	return fallback
}

// programMatched 某行日志同时包含程序地址与 "failed" 才算命中该程序
func programMatched(logs []string, table *ProgramTable) bool {
	program := table.Program.String()
	for _, l := range logs {
		if strings.Contains(l, program) && strings.Contains(l, "failed") {
			return true
		}
	}
	return false
}

func nativeExact(code string) string {
	for _, rule := range nativeErrors {
		if rule.Code == code {
			return rule.Message
		}
	}
	return ""
}

func containsCode(f Failure, code string) bool {
	if strings.Contains(f.Message, code) {
		return true
	}
	for _, l := range f.Logs {
		if strings.Contains(l, code) {
			return true
		}
	}
	return false
}

// trailingHexCode 取 message 的最后一个空白分隔字段，按十六进制解析其前缀。
// 形如 "... custom program error: 0x1772" 的 RPC 文本解析为 6002。
func trailingHexCode(message string) (uint64, bool) {
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return 0, false
	}
	token := strings.TrimPrefix(fields[len(fields)-1], "0x")

	// 取前缀中的合法十六进制段
	end := 0
	for end < len(token) && isHexDigit(token[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	code, err := strconv.ParseUint(token[:end], 16, 64)
	if err != nil {
		return 0, false
	}
	return code, true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
