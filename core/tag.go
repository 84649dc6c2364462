package core

import (
	"strconv"
	"strings"

	"github.com/zooyer/golib/xmath"
)

// Tag 代表 DXF 中的一组标签对，Value 已按组码类型解码：
// string / float64 / int16 / int32 / int64 / bool / []byte，句柄为大写十六进制字符串。
type Tag struct {
	Code  int
	Value any
}

// EOF 流结束时返回的终止标签
var EOF = Tag{Code: 0, Value: "EOF"}

// IsEOF 是否为终止标签
func (t Tag) IsEOF() bool {
	return t.Code == 0 && t.Value == "EOF"
}

// Is 判断是否为指定的 0 组码结构标签，比如 SECTION、ENDSEC
func (t Tag) Is(name string) bool {
	if t.Code != 0 {
		return false
	}
	s, ok := t.Value.(string)
	return ok && strings.EqualFold(s, name)
}

func (t Tag) mismatch(want ValueKind) error {
	err := &TypeError{Code: t.Code, Want: want, Got: t.Value}
	if Debug {
		panic(err)
	}
	return err
}

// Str 读取字符串值（含注释）
func (t Tag) Str() (string, error) {
	if s, ok := t.Value.(string); ok {
		if k, _ := KindOf(t.Code); k != KindHandle {
			return s, nil
		}
	}
	return "", t.mismatch(KindString)
}

// Handle 读取句柄值
func (t Tag) Handle() (string, error) {
	if s, ok := t.Value.(string); ok {
		if k, _ := KindOf(t.Code); k == KindHandle {
			return s, nil
		}
	}
	return "", t.mismatch(KindHandle)
}

// Float 读取浮点值
func (t Tag) Float() (float64, error) {
	if f, ok := t.Value.(float64); ok {
		return f, nil
	}
	return 0, t.mismatch(KindDouble)
}

// Int16 读取 16 位整数
func (t Tag) Int16() (int16, error) {
	if i, ok := t.Value.(int16); ok {
		return i, nil
	}
	return 0, t.mismatch(KindInt16)
}

// Int32 读取 32 位整数
func (t Tag) Int32() (int32, error) {
	if i, ok := t.Value.(int32); ok {
		return i, nil
	}
	return 0, t.mismatch(KindInt32)
}

// Int64 读取 64 位整数
func (t Tag) Int64() (int64, error) {
	if i, ok := t.Value.(int64); ok {
		return i, nil
	}
	return 0, t.mismatch(KindInt64)
}

// Bool 读取布尔值
func (t Tag) Bool() (bool, error) {
	if b, ok := t.Value.(bool); ok {
		return b, nil
	}
	return false, t.mismatch(KindBool)
}

// Bytes 读取二进制块
func (t Tag) Bytes() ([]byte, error) {
	if b, ok := t.Value.([]byte); ok {
		return b, nil
	}
	return nil, t.mismatch(KindBinary)
}

// AsFloat 将值转换为 float64，整数也接受
func (t Tag) AsFloat() float64 {
	switch v := t.Value.(type) {
	case float64:
		return v
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}

// AsInt 将值转换为 int
func (t Tag) AsInt() int {
	switch v := t.Value.(type) {
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(v))
		return i
	}
	return 0
}

// AsBool 非零即真
func (t Tag) AsBool() bool {
	if b, ok := t.Value.(bool); ok {
		return b
	}
	return t.AsInt() != 0
}

// AsString 清洗字符串（去除多余空格）
func (t Tag) AsString() string {
	if s, ok := t.Value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// Point 代表三维空间中的一个点
type Point struct {
	X, Y, Z float64
}

// Equal 按容差比较两个点
func (p Point) Equal(o Point, epsilon float64) bool {
	return xmath.Equal(p.X, o.X, epsilon) &&
		xmath.Equal(p.Y, o.Y, epsilon) &&
		xmath.Equal(p.Z, o.Z, epsilon)
}

// ParsePoint 组码为 code、code+10、code+20 时写入对应分量
func ParsePoint(tag Tag, code int, p *Point) bool {
	switch tag.Code {
	case code:
		p.X = tag.AsFloat()
	case code + 10:
		p.Y = tag.AsFloat()
	case code + 20:
		p.Z = tag.AsFloat()
	default:
		return false
	}
	return true
}
