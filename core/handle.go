package core

import (
	"strconv"
	"strings"
)

// FormatHandle 句柄的外部表示：大写十六进制
func FormatHandle(n uint64) string {
	return strings.ToUpper(strconv.FormatUint(n, 16))
}

// ParseHandle 解析十六进制句柄
func ParseHandle(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 16, 64)
}

// NormalizeHandle 规范化为大写十六进制，去掉前导零
func NormalizeHandle(s string) (string, error) {
	n, err := ParseHandle(s)
	if err != nil {
		return "", err
	}
	return FormatHandle(n), nil
}

// AssignHandle 按当前计数分配句柄，返回句柄和下一个计数。
// 计数从 1 开始，句柄 0 表示空引用。
func AssignHandle(counter uint64) (string, uint64) {
	if counter == 0 {
		counter = 1
	}
	return FormatHandle(counter), counter + 1
}
