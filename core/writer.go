package core

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
)

// encoder 组码流的底层编码器
type encoder interface {
	encode(code int, kind ValueKind, value any) error
	setEncoding(enc encoding.Encoding)
}

// Writer 顺序写出组码对，错误是粘性的，写完后检查 Err()
type Writer struct {
	enc    encoder
	buf    *bufio.Writer
	binary bool
	err    error
}

// NewWriter 创建写入器。binary 为 true 时先写出 22 字节哨兵。
func NewWriter(w io.Writer, binary bool, enc encoding.Encoding) *Writer {
	buf := bufio.NewWriter(w)
	wr := &Writer{buf: buf, binary: binary}
	if binary {
		wr.enc = &binaryEncoder{w: buf, enc: enc}
		_, wr.err = buf.WriteString(BinarySentinel)
	} else {
		wr.enc = &textEncoder{w: buf, enc: enc}
	}
	return wr
}

// Binary 是否为二进制格式
func (w *Writer) Binary() bool {
	return w.binary
}

// SetEncoding 切换字符串代码页
func (w *Writer) SetEncoding(enc encoding.Encoding) {
	w.enc.setEncoding(enc)
}

// Write 写出一个组码对，值类型必须与组码类型一致
func (w *Writer) Write(code int, value any) {
	if w.err != nil {
		return
	}
	kind, ok := KindOf(code)
	if !ok {
		w.err = &FormatError{Code: code, Binary: w.binary, Err: ErrUnknownCode}
		return
	}
	if !accepts(kind, value) {
		err := &TypeError{Code: code, Want: kind, Got: value}
		if Debug {
			panic(err)
		}
		w.err = err
		return
	}
	// 文本格式一行一个值，换行写出后无法读回，二进制格式同样拒绝以保持两种格式一致
	if v, ok := value.(string); ok && strings.ContainsAny(v, "\r\n") {
		w.err = &FormatError{Code: code, Binary: w.binary, Err: ErrLineBreak}
		return
	}
	w.err = w.enc.encode(code, kind, value)
}

// WriteTag 写出一个标签
func (w *Writer) WriteTag(t Tag) {
	w.Write(t.Code, t.Value)
}

func (w *Writer) Str(code int, s string) { w.Write(code, s) }
func (w *Writer) Double(code int, f float64) { w.Write(code, f) }
func (w *Writer) Int16(code int, i int16) { w.Write(code, i) }
func (w *Writer) Int32(code int, i int32) { w.Write(code, i) }
func (w *Writer) Int64(code int, i int64) { w.Write(code, i) }
func (w *Writer) Bool(code int, b bool) { w.Write(code, b) }
func (w *Writer) Bytes(code int, b []byte) { w.Write(code, b) }

// Handle 写出句柄，无论组码是否为句柄类型都规范化为大写十六进制
func (w *Writer) Handle(code int, handle string) {
	if w.err != nil {
		return
	}
	h, err := NormalizeHandle(handle)
	if err != nil {
		w.err = &FormatError{Code: code, Binary: w.binary, Err: err}
		return
	}
	w.Write(code, h)
}

// Point 写出坐标，code 为 X 分量组码，Y/Z 依次加 10/20
func (w *Writer) Point(code int, p Point) {
	w.Write(code, p.X)
	w.Write(code+10, p.Y)
	w.Write(code+20, p.Z)
}

// Point2D 只写 X/Y 分量
func (w *Writer) Point2D(code int, p Point) {
	w.Write(code, p.X)
	w.Write(code+10, p.Y)
}

// Comment 写出注释，二进制格式不支持时忽略
func (w *Writer) Comment(s string) {
	if w.binary {
		return
	}
	w.Write(999, s)
}

// Flush 把缓冲写入底层流
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.buf.Flush()
	return w.err
}

func (w *Writer) Err() error {
	return w.err
}

func accepts(kind ValueKind, value any) bool {
	switch value.(type) {
	case string:
		return kind == KindString || kind == KindHandle || kind == KindComment
	case float64:
		return kind == KindDouble
	case int16:
		return kind == KindInt16
	case int32:
		return kind == KindInt32
	case int64:
		return kind == KindInt64
	case bool:
		return kind == KindBool
	case []byte:
		return kind == KindBinary
	}
	return false
}

// FormatDouble 定点格式，小数点为 '.'，至少 1 位、至多 15 位小数，与区域设置无关。
// 绝对值小于 5e-16 的数写成 0.0，二进制格式保留原值，两种格式在这个量级上不一致。
func FormatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'f', 15, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	if s == "-0.0" {
		s = "0.0"
	}
	return s
}

type textEncoder struct {
	w   *bufio.Writer
	enc encoding.Encoding
}

func (e *textEncoder) setEncoding(enc encoding.Encoding) { e.enc = enc }

func (e *textEncoder) encode(code int, kind ValueKind, value any) error {
	var line []byte
	switch v := value.(type) {
	case string:
		if kind == KindHandle {
			h, err := NormalizeHandle(v)
			if err != nil {
				return &FormatError{Code: code, Err: err}
			}
			line = []byte(h)
		} else {
			line = EncodeString(e.enc, v)
		}
	case float64:
		line = []byte(FormatDouble(v))
	case int16:
		line = strconv.AppendInt(nil, int64(v), 10)
	case int32:
		line = strconv.AppendInt(nil, int64(v), 10)
	case int64:
		line = strconv.AppendInt(nil, v, 10)
	case bool:
		line = []byte("0")
		if v {
			line = []byte("1")
		}
	case []byte:
		line = []byte(strings.ToUpper(hex.EncodeToString(v)))
	}

	if _, err := e.w.WriteString(strconv.Itoa(code) + "\n"); err != nil {
		return err
	}
	if _, err := e.w.Write(line); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

var errBlobTooLong = errors.New("binary chunk longer than 255 bytes")

type binaryEncoder struct {
	w   *bufio.Writer
	enc encoding.Encoding
}

func (e *binaryEncoder) setEncoding(enc encoding.Encoding) { e.enc = enc }

func (e *binaryEncoder) encode(code int, kind ValueKind, value any) error {
	if kind == KindComment {
		return &FormatError{Code: code, Binary: true, Err: ErrComment}
	}

	var buf []byte
	buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(code)))
	switch v := value.(type) {
	case string:
		if kind == KindHandle {
			h, err := NormalizeHandle(v)
			if err != nil {
				return &FormatError{Code: code, Binary: true, Err: err}
			}
			buf = append(buf, h...)
		} else {
			buf = append(buf, EncodeString(e.enc, v)...)
		}
		buf = append(buf, 0)
	case float64:
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	case int16:
		buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
	case int32:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	case int64:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(v))
	case bool:
		var b byte
		if v {
			b = 1
		}
		buf = append(buf, b)
	case []byte:
		if len(v) > math.MaxUint8 {
			return &FormatError{Code: code, Binary: true, Err: errBlobTooLong}
		}
		buf = append(buf, byte(len(v)))
		buf = append(buf, v...)
	}

	_, err := e.w.Write(buf)
	return err
}
