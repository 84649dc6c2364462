package core

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrSentinel    = errors.New("binary sentinel mismatch")
	ErrUnknownCode = errors.New("unknown group code")
	ErrComment     = errors.New("comments are not allowed in binary DXF")
	ErrLineBreak   = errors.New("string value contains a line break")
)

// FormatError 表示组码流无法解析。Offset 在二进制下为字节偏移，文本下为行号。
type FormatError struct {
	Offset int64
	Binary bool
	Code   int
	Err    error
}

func (err *FormatError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	unit := "line"
	if err.Binary {
		unit = "byte"
	}
	return "not a valid DXF stream" + middle + " (code " + strconv.Itoa(err.Code) +
		" at " + unit + " " + strconv.FormatInt(err.Offset, 10) + ")"
}

func (err *FormatError) Unwrap() error {
	return err.Err
}

// TypeError 读写时值类型与组码类型不符，属于调用方错误。
type TypeError struct {
	Code int
	Want ValueKind
	Got  any
}

func (err *TypeError) Error() string {
	return fmt.Sprintf("group code %d expects %s, got %T", err.Code, err.Want, err.Got)
}
