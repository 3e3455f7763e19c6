// internal/pkg/integrity/canonical.go
package integrity

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind 标识规范化中间表示的节点类型。
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindMapping
	KindSequence
)

// Value 是参与签名的消息的显式中间表示。
// 两个服务对同一 Value 产出的规范化字节序列必须逐位一致，
// 它是签名校验的硬性线上契约：任何序列化差异都会让所有验签失败。
type Value struct {
	kind     Kind
	boolean  bool
	number   json.Number // 保留原始字面量，避免数值重排
	str      string
	mapping  map[string]Value
	sequence []Value
}

func Null() Value           { return Value{kind: KindNull} }
func Bool(b bool) Value     { return Value{kind: KindBool, boolean: b} }
func String(s string) Value { return Value{kind: KindString, str: s} }
func Number(n json.Number) Value {
	return Value{kind: KindNumber, number: n}
}

// Mapping 构造一个映射节点。键在序列化时按字典序排序。
func Mapping(m map[string]Value) Value {
	return Value{kind: KindMapping, mapping: m}
}

// Sequence 构造一个有序序列节点。
func Sequence(items []Value) Value {
	return Value{kind: KindSequence, sequence: items}
}

// Fields 把一组字符串字段转成映射节点。
// 表单编码的请求全部数值按字符串传输，签名两端用同一个构造方式。
func Fields(fields map[string]string) Value {
	m := make(map[string]Value, len(fields))
	for k, v := range fields {
		m[k] = String(v)
	}
	return Mapping(m)
}

// Kind 返回节点类型。
func (v Value) Kind() Kind { return v.kind }

// Text 实现规范化的第一步：输入是文本时先尝试按 JSON 解析，
// 解析成功则用解析后的结构替换输入；失败则整体当作不透明字符串。
func Text(s string) Value {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return String(s)
	}
	// 尾部还有内容说明不是单个 JSON 文档，按不透明字符串处理
	if dec.More() {
		return String(s)
	}
	return fromAny(raw)
}

func fromAny(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case json.Number:
		return Number(t)
	case string:
		return String(t)
	case []interface{}:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = fromAny(item)
		}
		return Sequence(items)
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			m[k] = fromAny(item)
		}
		return Mapping(m)
	default:
		// json 解码不会产出其它类型
		return String(fmt.Sprint(t))
	}
}

// Canonical 产出 Value 的规范化字节序列。
// 映射和序列输出紧凑 JSON：键按字典序、无多余空白、非 ASCII 字符不转义。
// 标量输出其朴素字符串表示（字符串不加引号，数字保留字面量）。
func (v Value) Canonical() string {
	switch v.kind {
	case KindMapping, KindSequence:
		var sb strings.Builder
		v.writeJSON(&sb)
		return sb.String()
	case KindString:
		return v.str
	case KindNumber:
		return v.number.String()
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	default:
		return "null"
	}
}

func (v Value) writeJSON(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.boolean {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		sb.WriteString(v.number.String())
	case KindString:
		writeJSONString(sb, v.str)
	case KindSequence:
		sb.WriteByte('[')
		for i, item := range v.sequence {
			if i > 0 {
				sb.WriteByte(',')
			}
			item.writeJSON(sb)
		}
		sb.WriteByte(']')
	case KindMapping:
		keys := make([]string, 0, len(v.mapping))
		for k := range v.mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeJSONString(sb, k)
			sb.WriteByte(':')
			item := v.mapping[k]
			item.writeJSON(sb)
		}
		sb.WriteByte('}')
	}
}

// writeJSONString 按最小转义规则输出 JSON 字符串。
// 不做 HTML 转义也不转义非 ASCII 字符，保证与对端实现逐位一致。
func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
}
