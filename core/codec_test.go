package core

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// representative 每个值类型至少一个代表
var representative = []Tag{
	{0, "SECTION"},
	{2, "ENTITIES"},
	{5, "1A"},
	{8, "墙体"},
	{10, 1.5},
	{20, -2.25},
	{30, 0.0},
	{40, 1e-9},
	{50, 123456.789},
	{62, int16(-7)},
	{70, int16(32767)},
	{90, int32(-123456)},
	{100, "AcDbEntity"},
	{105, "FF"},
	{140, 0.1},
	{160, int64(1) << 40},
	{170, int16(1)},
	{210, 1.0},
	{280, int16(2)},
	{290, true},
	{291, false},
	{300, "text"},
	{310, []byte{0, 1, 2, 0xfe, 0xff}},
	{330, "2F"},
	{340, "ABC"},
	{370, int16(-3)},
	{390, "E"},
	{420, int32(0x00ff00)},
	{440, int32(0)},
	{460, 3.5},
	{480, "10"},
	{1000, "xdata"},
	{1001, "ACAD"},
	{1002, "{"},
	{1004, []byte("blob")},
	{1005, "3B"},
	{1010, 1.0},
	{1040, 2.5},
	{1070, int16(12)},
	{1071, int32(99999)},
	EOF,
}

func roundTrip(t *testing.T, binary bool, tags []Tag) []Tag {
	t.Helper()

	var buf bytes.Buffer
	w := NewWriter(&buf, binary, nil)
	for _, tag := range tags {
		w.WriteTag(tag)
	}
	require.NoError(t, w.Flush())

	scanner := NewScanner(&buf, nil)
	require.Equal(t, binary, scanner.Binary())

	var out []Tag
	for scanner.Next() {
		out = append(out, scanner.LastTag)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestCodecAgreement(t *testing.T) {
	text := roundTrip(t, false, representative)
	bin := roundTrip(t, true, representative)

	if diff := cmp.Diff(representative, text); diff != "" {
		t.Errorf("文本往返不一致 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(text, bin); diff != "" {
		t.Errorf("文本与二进制结果不一致 (-text +binary):\n%s", diff)
	}
}

func TestWriter_Mismatch(t *testing.T) {
	if Debug {
		t.Skip("调试构建下类型不符直接 panic")
	}
	var buf bytes.Buffer
	w := NewWriter(&buf, false, nil)
	w.Int32(70, 1) // 70 是 int16
	var te *TypeError
	require.ErrorAs(t, w.Err(), &te)

	// 粘性错误，后续写入全部忽略
	w.Int16(70, 1)
	assert.ErrorAs(t, w.Flush(), &te)
}

func TestWriter_UnknownCode(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true, nil)
	w.Str(85, "x")
	assert.ErrorIs(t, w.Err(), ErrUnknownCode)
}

func TestWriter_CommentBinary(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true, nil)
	w.Comment("skipped")
	require.NoError(t, w.Flush())
	assert.Equal(t, BinarySentinel, buf.String(), "二进制格式不写注释")

	w = NewWriter(&buf, true, nil)
	w.Str(999, "forced")
	assert.ErrorIs(t, w.Err(), ErrComment)
}

func TestWriter_BinaryLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true, charmap.Windows1252)
	w.Str(0, "LINE")
	w.Handle(5, "2f")
	w.Int16(70, 258)
	w.Bytes(310, []byte{0xaa})
	require.NoError(t, w.Flush())

	want := []byte(BinarySentinel)
	want = append(want, 0, 0)
	want = append(want, "LINE\x00"...)
	want = append(want, 5, 0)
	want = append(want, "2F\x00"...)
	want = append(want, 70, 0, 2, 1)
	want = append(want, 0x36, 0x01, 1, 0xaa)
	assert.Equal(t, want, buf.Bytes())
}

func TestWriter_Handle(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false, nil)
	w.Handle(5, "00a")
	w.Handle(105, "1b")
	w.Handle(330, "0")
	require.NoError(t, w.Flush())
	assert.Equal(t, "5\nA\n105\n1B\n330\n0\n", buf.String(), "组码 5 是字符串类型也写成大写")

	w = NewWriter(&buf, false, nil)
	w.Handle(5, "xyz")
	var fe *FormatError
	require.ErrorAs(t, w.Err(), &fe)
	assert.Equal(t, 5, fe.Code)
}

func TestWriter_LineBreak(t *testing.T) {
	for _, binary := range []bool{false, true} {
		for _, value := range []string{"line1\nline2", "cr\r", "\r\n"} {
			var buf bytes.Buffer
			w := NewWriter(&buf, binary, nil)
			w.Str(1, value)
			var fe *FormatError
			require.ErrorAs(t, w.Err(), &fe, "binary=%v %q", binary, value)
			assert.ErrorIs(t, fe, ErrLineBreak)
			assert.Equal(t, 1, fe.Code)
		}
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, false, nil)
	w.Comment("a\nb")
	assert.ErrorIs(t, w.Err(), ErrLineBreak)
}

func TestFormatDouble(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-1.5, "-1.5"},
		{0.1, "0.1"},
		{1e-9, "0.000000001"},
		{1234567.125, "1234567.125"},
		{1e20, "100000000000000000000.0"},
		{1.0 / 3, "0.333333333333333"},
		// 小于 15 位小数精度的值写成 0
		{1e-15, "0.000000000000001"},
		{4e-16, "0.0"},
		{-1e-17, "0.0"},
	}
	for _, test := range cases {
		if got := FormatDouble(test.in); got != test.out {
			t.Errorf("FormatDouble(%g) = %q, want %q", test.in, got, test.out)
		}
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		code int
		kind ValueKind
		ok   bool
	}{
		{0, KindString, true},
		{9, KindString, true},
		{10, KindDouble, true},
		{59, KindDouble, true},
		{60, KindInt16, true},
		{80, 0, false},
		{99, KindInt32, true},
		{103, 0, false},
		{105, KindHandle, true},
		{160, KindInt64, true},
		{289, KindInt16, true},
		{290, KindBool, true},
		{319, KindBinary, true},
		{320, KindHandle, true},
		{369, KindHandle, true},
		{370, KindInt16, true},
		{390, KindHandle, true},
		{400, KindInt16, true},
		{482, 0, false},
		{999, KindComment, true},
		{1004, KindBinary, true},
		{1005, KindHandle, true},
		{1059, KindDouble, true},
		{1060, KindInt16, true},
		{1071, KindInt32, true},
		{1072, 0, false},
		{-1, 0, false},
	}
	for _, test := range cases {
		kind, ok := KindOf(test.code)
		if ok != test.ok || kind != test.kind {
			t.Errorf("KindOf(%d) = %s, %v; want %s, %v", test.code, kind, ok, test.kind, test.ok)
		}
	}
}

func TestCodecProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// 文本和二进制往返结果一致
	agree := func(tags []Tag) bool {
		text := roundTrip(t, false, tags)
		bin := roundTrip(t, true, tags)
		return cmp.Equal(text, bin) && cmp.Equal(tags, text[:len(tags)])
	}

	properties.Property("double agreement", prop.ForAll(
		func(n int64) bool {
			// n/1024 在 15 位小数内可以精确表示
			return agree([]Tag{{40, float64(n) / 1024}})
		},
		gen.Int64Range(-1<<40, 1<<40),
	))

	properties.Property("int16 agreement", prop.ForAll(
		func(i int16) bool {
			return agree([]Tag{{70, i}, {1070, i}})
		},
		gen.Int16(),
	))

	properties.Property("int32 agreement", prop.ForAll(
		func(i int32) bool {
			return agree([]Tag{{90, i}, {1071, i}})
		},
		gen.Int32(),
	))

	properties.Property("handle agreement", prop.ForAll(
		func(n uint64) bool {
			return agree([]Tag{{330, FormatHandle(n)}, {5, FormatHandle(n)}})
		},
		gen.UInt64Range(1, 1<<48),
	))

	properties.Property("string agreement", prop.ForAll(
		func(s string) bool {
			return agree([]Tag{{1, s}})
		},
		gen.RegexMatch(`^[A-Za-z0-9_ ]{0,40}$`),
	))

	properties.TestingRun(t)
}
