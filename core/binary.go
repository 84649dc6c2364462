package core

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"golang.org/x/text/encoding"
)

const binaryMagic = "AutoCAD Binary DXF"

// BinarySentinel 二进制 DXF 的 22 字节文件头
const BinarySentinel = binaryMagic + "\r\n\x1a\x00"

type binaryDecoder struct {
	reader  *bufio.Reader
	enc     encoding.Encoding
	pos     int64
	checked bool
	// legacy R12 及更早的文件组码只占 1 字节，255 之后跟 2 字节组码
	legacy bool
}

func newBinaryDecoder(r *bufio.Reader, enc encoding.Encoding) *binaryDecoder {
	return &binaryDecoder{reader: r, enc: enc}
}

func (d *binaryDecoder) setEncoding(enc encoding.Encoding) { d.enc = enc }

func (d *binaryDecoder) offset() int64 { return d.pos }

func (d *binaryDecoder) fail(code int, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &FormatError{Offset: d.pos, Binary: true, Code: code, Err: err}
}

func (d *binaryDecoder) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	m, err := io.ReadFull(d.reader, buf)
	d.pos += int64(m)
	return buf, err
}

// cstring 读取以 NUL 结尾的字节串
func (d *binaryDecoder) cstring() ([]byte, error) {
	b, err := d.reader.ReadBytes(0)
	d.pos += int64(len(b))
	if err != nil {
		return nil, err
	}
	return b[:len(b)-1], nil
}

// code 读取组码
func (d *binaryDecoder) code() (int, error) {
	if d.legacy {
		b, err := d.read(1)
		if err != nil {
			return 0, err
		}
		if b[0] != math.MaxUint8 {
			return int(b[0]), nil
		}
	}
	raw, err := d.read(2)
	if err != nil {
		if d.legacy && errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	return int(int16(binary.LittleEndian.Uint16(raw))), nil
}

func (d *binaryDecoder) next() (Tag, error) {
	if !d.checked {
		head, err := d.read(len(BinarySentinel))
		if err != nil || string(head[:len(binaryMagic)]) != binaryMagic {
			return Tag{}, &FormatError{Offset: 0, Binary: true, Code: -1, Err: ErrSentinel}
		}
		d.checked = true
		// 两字节组码时第一个组码 0 为 00 00，旧格式为 00 后直接是 "SECTION"
		if head, err := d.reader.Peek(2); err == nil && head[0] == 0 && head[1] == 'S' {
			d.legacy = true
		}
	}

	code, err := d.code()
	if err != nil {
		if errors.Is(err, io.EOF) {
			// 刚好在组码边界结束
			return Tag{}, io.EOF
		}
		return Tag{}, d.fail(-1, err)
	}

	kind, ok := KindOf(code)
	if !ok {
		return Tag{}, d.fail(code, ErrUnknownCode)
	}

	var (
		value any
		raw   []byte
	)
	switch kind {
	case KindString:
		var b []byte
		if b, err = d.cstring(); err == nil {
			value = DecodeString(d.enc, b)
		}
	case KindHandle:
		var b []byte
		if b, err = d.cstring(); err == nil {
			value, err = NormalizeHandle(string(b))
		}
	case KindDouble:
		if raw, err = d.read(8); err == nil {
			value = math.Float64frombits(binary.LittleEndian.Uint64(raw))
		}
	case KindInt16:
		if raw, err = d.read(2); err == nil {
			value = int16(binary.LittleEndian.Uint16(raw))
		}
	case KindInt32:
		if raw, err = d.read(4); err == nil {
			value = int32(binary.LittleEndian.Uint32(raw))
		}
	case KindInt64:
		if raw, err = d.read(8); err == nil {
			value = int64(binary.LittleEndian.Uint64(raw))
		}
	case KindBool:
		if raw, err = d.read(1); err == nil {
			value = raw[0] != 0
		}
	case KindBinary:
		if raw, err = d.read(1); err == nil {
			value, err = d.read(int(raw[0]))
		}
	case KindComment:
		err = ErrComment
	}
	if err != nil {
		return Tag{}, d.fail(code, err)
	}
	return Tag{Code: code, Value: value}, nil
}
