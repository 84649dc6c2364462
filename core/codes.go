package core

import "sort"

// ValueKind 组码对应的值类型
type ValueKind uint8

const (
	KindString  ValueKind = iota + 1 // 字符串
	KindDouble                       // 64 位浮点（含坐标分量）
	KindInt16                        // 16 位整数
	KindInt32                        // 32 位整数
	KindInt64                        // 64 位整数
	KindBool                         // 布尔（二进制下占 1 字节）
	KindBinary                       // 二进制块（文本下为十六进制）
	KindHandle                       // 十六进制句柄
	KindComment                      // 注释，仅文本格式允许
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindDouble:
		return "double"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindBool:
		return "bool"
	case KindBinary:
		return "binary"
	case KindHandle:
		return "handle"
	case KindComment:
		return "comment"
	}
	return "unknown"
}

type codeRange struct {
	lo, hi int
	kind   ValueKind
}

// codeTable 组码范围表，文本与二进制编解码共用同一份，不允许重叠。
var codeTable = []codeRange{
	{0, 9, KindString},
	{10, 39, KindDouble},
	{40, 59, KindDouble},
	{60, 79, KindInt16},
	{90, 99, KindInt32},
	{100, 102, KindString},
	{105, 105, KindHandle},
	{110, 149, KindDouble},
	{160, 169, KindInt64},
	{170, 179, KindInt16},
	{210, 239, KindDouble},
	{270, 289, KindInt16},
	{290, 299, KindBool},
	{300, 309, KindString},
	{310, 319, KindBinary},
	{320, 369, KindHandle},
	{370, 389, KindInt16},
	{390, 399, KindHandle},
	{400, 409, KindInt16},
	{410, 419, KindString},
	{420, 429, KindInt32},
	{430, 439, KindString},
	{440, 459, KindInt32},
	{460, 469, KindDouble},
	{470, 479, KindString},
	{480, 481, KindHandle},
	{999, 999, KindComment},
	{1000, 1003, KindString},
	{1004, 1004, KindBinary},
	{1005, 1005, KindHandle},
	{1006, 1009, KindString},
	{1010, 1059, KindDouble},
	{1060, 1070, KindInt16},
	{1071, 1071, KindInt32},
}

// KindOf 查找组码的值类型，未知组码返回 false
func KindOf(code int) (ValueKind, bool) {
	i := sort.Search(len(codeTable), func(i int) bool {
		return codeTable[i].hi >= code
	})
	if i < len(codeTable) && codeTable[i].lo <= code {
		return codeTable[i].kind, true
	}
	return 0, false
}
