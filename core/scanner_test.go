package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestScanner_Basic(t *testing.T) {
	// 模拟一个简单的 DXF 片段
	dxfData := "0\nSECTION\n2\nHEADER\n0\nENDSEC\n"
	r := strings.NewReader(dxfData)
	scanner := NewScanner(r, nil)

	expected := []Tag{
		{0, "SECTION"},
		{2, "HEADER"},
		{0, "ENDSEC"},
		EOF, // 流耗尽时补一个终止标签
	}

	for i, exp := range expected {
		if !scanner.Next() {
			t.Fatalf("第 %d 步读取失败: %v", i, scanner.Err())
		}
		if scanner.LastTag.Code != exp.Code || scanner.LastTag.Value != exp.Value {
			t.Errorf("第 %d 步数据不符: 期望 %+v, 得到 %+v", i, exp, scanner.LastTag)
		}
	}

	if scanner.Next() {
		t.Errorf("EOF 之后不应该再有数据: %+v", scanner.LastTag)
	}
	if scanner.Err() != nil {
		t.Errorf("不应该有错误: %v", scanner.Err())
	}
}

func TestScanner_TypedValues(t *testing.T) {
	dxfData := strings.Join([]string{
		"  10", "1.5",
		"70", "     3",
		"90", "-7",
		"160", "1234567890123",
		"290", "1",
		"310", "0aff",
		"5", "2f",
		"330", "2f",
		"999", "comment",
		"1", "  keep leading spaces",
		"0", "EOF",
	}, "\r\n") + "\r\n"

	scanner := NewScanner(strings.NewReader(dxfData), nil)
	var tags []Tag
	for scanner.Next() {
		tags = append(tags, scanner.LastTag)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, tags, 11)

	assert.Equal(t, 1.5, tags[0].Value)
	assert.Equal(t, int16(3), tags[1].Value)
	assert.Equal(t, int32(-7), tags[2].Value)
	assert.Equal(t, int64(1234567890123), tags[3].Value)
	assert.Equal(t, true, tags[4].Value)
	assert.Equal(t, []byte{0x0a, 0xff}, tags[5].Value)
	assert.Equal(t, "2f", tags[6].Value, "组码 5 按字符串读取")
	assert.Equal(t, "2F", tags[7].Value, "句柄规范化为大写")
	assert.Equal(t, "comment", tags[8].Value)
	assert.Equal(t, "  keep leading spaces", tags[9].Value)
	assert.True(t, tags[10].IsEOF())
}

func TestScanner_UnknownCode(t *testing.T) {
	scanner := NewScanner(strings.NewReader("0\nSECTION\n85\nX\n"), nil)
	require.True(t, scanner.Next())
	require.False(t, scanner.Next())

	var fe *FormatError
	require.ErrorAs(t, scanner.Err(), &fe)
	assert.ErrorIs(t, fe, ErrUnknownCode)
	assert.Equal(t, 85, fe.Code)
	assert.Equal(t, int64(3), fe.Offset, "文本格式按行号报告位置")
}

func TestScanner_TruncatedValue(t *testing.T) {
	scanner := NewScanner(strings.NewReader("0\nSECTION\n2\n"), nil)
	require.True(t, scanner.Next())
	// 组码 2 行之后没有值行，第二次读取需要报错
	require.False(t, scanner.Next())
	assert.ErrorIs(t, scanner.Err(), io.ErrUnexpectedEOF)
}

func TestBinaryScanner_BadSentinel(t *testing.T) {
	data := []byte("AutoCAD Binary DXG\r\n\x1a\x00\x00\x00SECTION\x00")
	scanner := NewBinaryScanner(bytes.NewReader(data), nil)
	require.False(t, scanner.Next())

	var fe *FormatError
	require.ErrorAs(t, scanner.Err(), &fe)
	assert.True(t, errors.Is(fe, ErrSentinel))
	assert.Equal(t, int64(0), fe.Offset)
}

func TestBinaryScanner_CommentRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(BinarySentinel)
	buf.Write([]byte{0xe7, 0x03}) // 999
	buf.WriteString("hello\x00")

	scanner := NewScanner(&buf, nil)
	require.True(t, scanner.Binary())
	require.False(t, scanner.Next())
	assert.ErrorIs(t, scanner.Err(), ErrComment)
}

func TestScanner_CommentRaw(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("说明"))
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.WriteString("999\n")
	buf.Write(gbk)
	buf.WriteString("\n1\n")
	buf.Write(gbk)
	buf.WriteString("\n")

	// 注释保留原始字节，普通字符串按代码页解码
	scanner := NewScanner(&buf, simplifiedchinese.GBK)
	require.True(t, scanner.Next())
	raw := scanner.LastTag.AsString()
	assert.Equal(t, string(gbk), raw)
	assert.Equal(t, "说明", DecodeString(simplifiedchinese.GBK, []byte(raw)))
	require.True(t, scanner.Next())
	assert.Equal(t, "说明", scanner.LastTag.Value)
}

func TestBinaryScanner_Legacy(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(BinarySentinel)
	buf.WriteString("\x00SECTION\x00")
	buf.WriteString("\x02HEADER\x00")
	buf.WriteString("\x09$ACADVER\x00")
	buf.WriteString("\x01AC1009\x00")
	buf.WriteString("\x46\x03\x00") // 70
	buf.Write([]byte{0xff, 0x39, 0x01}) // 313 使用 255 转义
	buf.Write([]byte{1, 'x'})
	buf.WriteString("\x00EOF\x00")

	scanner := NewScanner(&buf, nil)
	require.True(t, scanner.Binary())
	var tags []Tag
	for scanner.Next() {
		tags = append(tags, scanner.LastTag)
	}
	require.NoError(t, scanner.Err())

	want := []Tag{
		{0, "SECTION"},
		{2, "HEADER"},
		{9, "$ACADVER"},
		{1, "AC1009"},
		{70, int16(3)},
		{313, []byte("x")},
		EOF,
	}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Errorf("旧格式读取不一致 (-want +got):\n%s", diff)
	}
}

func TestScanner_CodePage(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false, simplifiedchinese.GBK)
	w.Str(1, "门窗")
	w.Str(1, "€ก😀") // 泰文和表情不在 GBK 里，写成 \U+XXXX
	require.NoError(t, w.Flush())

	scanner := NewScanner(bytes.NewReader(buf.Bytes()), simplifiedchinese.GBK)
	require.True(t, scanner.Next())
	assert.Equal(t, "门窗", scanner.LastTag.Value)
	require.True(t, scanner.Next())
	assert.Equal(t, "€ก😀", scanner.LastTag.Value)

	// 换成 UTF-8 读取时中文就是乱码
	scanner = NewScanner(bytes.NewReader(buf.Bytes()), nil)
	require.True(t, scanner.Next())
	assert.NotEqual(t, "门窗", scanner.LastTag.Value)
}

func TestTag_TypeMismatch(t *testing.T) {
	if Debug {
		t.Skip("调试构建下类型不符直接 panic")
	}
	tag := Tag{Code: 40, Value: 2.5}

	_, err := tag.Int16()
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindInt16, te.Want)

	f, err := tag.Float()
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)
	assert.Equal(t, 2, tag.AsInt())

	_, err = Tag{Code: 2, Value: "A"}.Handle()
	assert.Error(t, err)
	h, err := Tag{Code: 330, Value: "1F"}.Handle()
	require.NoError(t, err)
	assert.Equal(t, "1F", h)
}
