package core

import (
	"errors"
	"strings"
)

var errVersion = errors.New("unknown DXF version")

// Version 对应头变量 $ACADVER
type Version int

const (
	VersionUnknown Version = iota
	R12                    // AC1009
	R13                    // AC1012
	R14                    // AC1014
	R2000                  // AC1015
	R2004                  // AC1018
	R2007                  // AC1021
	R2010                  // AC1024
	R2013                  // AC1027
	R2018                  // AC1032
)

// MinVersion 支持的最低版本
const MinVersion = R2000

var versionNames = map[Version]string{
	R12:   "AC1009",
	R13:   "AC1012",
	R14:   "AC1014",
	R2000: "AC1015",
	R2004: "AC1018",
	R2007: "AC1021",
	R2010: "AC1024",
	R2013: "AC1027",
	R2018: "AC1032",
}

// ParseVersion 解析 $ACADVER 的值，比如 "AC1015"
func ParseVersion(s string) (Version, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for v, name := range versionNames {
		if name == s {
			return v, nil
		}
	}
	return VersionUnknown, errVersion
}

// Supported 是否在支持范围内（2000 及以后）
func (v Version) Supported() bool {
	return v >= MinVersion && v <= R2018
}

// UTF8 2007 及以后的文件统一使用 UTF-8
func (v Version) UTF8() bool {
	return v >= R2007
}

func (v Version) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return "UNKNOWN"
}
