package core

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
)

// decoder 组码流的底层解码器，流结束时返回 io.EOF
type decoder interface {
	next() (Tag, error)
	setEncoding(enc encoding.Encoding)
	offset() int64
}

// Scanner 顺序读取组码对，文本与二进制格式共用
type Scanner struct {
	dec     decoder
	binary  bool
	done    bool
	LastTag Tag
	err     error
	maxSeen uint64
}

// NewScanner 自动识别文本/二进制格式。enc 为字符串使用的代码页，nil 表示 UTF-8。
func NewScanner(r io.Reader, enc encoding.Encoding) *Scanner {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(BinarySentinel)); bytes.HasPrefix(head, []byte(binaryMagic)) {
		return &Scanner{dec: newBinaryDecoder(br, enc), binary: true}
	}
	return &Scanner{dec: newTextDecoder(br, enc)}
}

// NewTextScanner 读取文本格式
func NewTextScanner(r io.Reader, enc encoding.Encoding) *Scanner {
	return &Scanner{dec: newTextDecoder(bufio.NewReader(r), enc)}
}

// NewBinaryScanner 读取二进制格式，流必须以哨兵开头
func NewBinaryScanner(r io.Reader, enc encoding.Encoding) *Scanner {
	return &Scanner{dec: newBinaryDecoder(bufio.NewReader(r), enc), binary: true}
}

// Next 读取下一组码对。底层流耗尽时先返回一次 EOF 标签，之后返回 false。
func (s *Scanner) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	tag, err := s.dec.next()
	if errors.Is(err, io.EOF) {
		s.LastTag = EOF
		s.done = true
		return true
	}
	if err != nil {
		s.err = err
		return false
	}

	if tag.IsEOF() {
		s.done = true
	}
	if tag.Code == 5 || tag.Code == 105 {
		if n, err := ParseHandle(tag.AsString()); err == nil && n > s.maxSeen {
			s.maxSeen = n
		}
	}
	s.LastTag = tag
	return true
}

// MaxHandle 已读到的最大对象句柄（组码 5 和 105）
func (s *Scanner) MaxHandle() uint64 {
	return s.maxSeen
}

// SetEncoding 读到 $DWGCODEPAGE 或 $ACADVER 后切换字符串编码
func (s *Scanner) SetEncoding(enc encoding.Encoding) {
	s.dec.setEncoding(enc)
}

// Binary 是否为二进制格式
func (s *Scanner) Binary() bool {
	return s.binary
}

// Offset 当前位置：二进制为字节偏移，文本为行号
func (s *Scanner) Offset() int64 {
	return s.dec.offset()
}

func (s *Scanner) Err() error {
	return s.err
}

type textDecoder struct {
	reader *bufio.Reader
	enc    encoding.Encoding
	line   int64
}

func newTextDecoder(r *bufio.Reader, enc encoding.Encoding) *textDecoder {
	return &textDecoder{reader: r, enc: enc}
}

func (d *textDecoder) setEncoding(enc encoding.Encoding) { d.enc = enc }

func (d *textDecoder) offset() int64 { return d.line }

func (d *textDecoder) readLine() ([]byte, error) {
	line, err := d.reader.ReadBytes('\n')
	if len(line) == 0 && err != nil {
		return nil, err
	}
	d.line++
	return bytes.TrimRight(line, "\r\n"), nil
}

func (d *textDecoder) fail(code int, err error) error {
	return &FormatError{Offset: d.line, Code: code, Err: err}
}

func (d *textDecoder) next() (Tag, error) {
	// 1. 读取 Code 行，跳过空行
	var codeLine []byte
	for {
		line, err := d.readLine()
		if err != nil {
			return Tag{}, err
		}
		if codeLine = bytes.TrimSpace(line); len(codeLine) > 0 {
			break
		}
	}

	code, err := strconv.Atoi(string(codeLine))
	if err != nil {
		return Tag{}, d.fail(-1, err)
	}
	kind, ok := KindOf(code)
	if !ok {
		return Tag{}, d.fail(code, ErrUnknownCode)
	}

	// 2. 读取 Value 行，Value 行 EOF 说明数据不完整
	raw, err := d.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Tag{}, d.fail(code, err)
	}

	value, err := parseText(kind, raw, d.enc)
	if err != nil {
		return Tag{}, d.fail(code, err)
	}
	return Tag{Code: code, Value: value}, nil
}

// parseText 按类型解析文本值。字符串保留开头的空格（DXF 规范要求）。
func parseText(kind ValueKind, raw []byte, enc encoding.Encoding) (any, error) {
	text := strings.TrimSpace(string(raw))
	switch kind {
	case KindString:
		return DecodeString(enc, raw), nil
	case KindComment:
		// 注释通常在 HEADER 之前，此时代码页未知，保留原始字节由调用方解码
		return string(raw), nil
	case KindDouble:
		return strconv.ParseFloat(text, 64)
	case KindInt16:
		i, err := strconv.ParseInt(text, 10, 16)
		return int16(i), err
	case KindInt32:
		i, err := strconv.ParseInt(text, 10, 32)
		return int32(i), err
	case KindInt64:
		return strconv.ParseInt(text, 10, 64)
	case KindBool:
		i, err := strconv.ParseInt(text, 10, 16)
		return i != 0, err
	case KindBinary:
		return hex.DecodeString(text)
	case KindHandle:
		return NormalizeHandle(text)
	}
	return nil, ErrUnknownCode
}
