package tables

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxfdoc/core"
)

// stubResolver 按名称创建对象，句柄引用立即解析
type stubResolver struct {
	byHandle map[string]Object
}

func (r *stubResolver) AppRegistry(name string) *ApplicationRegistry {
	return NewApplicationRegistry(name)
}
func (r *stubResolver) Layer(name string) *Layer                   { return NewLayer(name) }
func (r *stubResolver) Linetype(name string) *Linetype             { return NewLinetype(name) }
func (r *stubResolver) TextStyle(name string) *TextStyle           { return NewTextStyle(name, "txt") }
func (r *stubResolver) DimensionStyle(name string) *DimensionStyle { return NewDimensionStyle(name) }
func (r *stubResolver) MLineStyle(name string) *MLineStyle         { return NewMLineStyle(name) }
func (r *stubResolver) Block(name string) *Block                   { return NewBlock(name) }
func (r *stubResolver) ByHandle(handle string, fn func(obj Object)) {
	fn(r.byHandle[handle])
}

func scan(t *testing.T, buf *bytes.Buffer, binary bool) *core.Scanner {
	t.Helper()
	var s *core.Scanner
	if binary {
		s = core.NewBinaryScanner(bytes.NewReader(buf.Bytes()), nil)
	} else {
		s = core.NewTextScanner(bytes.NewReader(buf.Bytes()), nil)
	}
	require.True(t, s.Next(), "%v", s.Err())
	return s
}

func TestLayer_RoundTrip(t *testing.T) {
	for _, binary := range []bool{false, true} {
		l := NewLayer("墙体")
		l.SetHandle("2A")
		l.SetOwner("2")
		l.Color = -3
		l.Plot = false
		l.Linetype.Init(NewLinetype("DASHED"))
		l.XData().Init("MYAPP", NewXData(NewApplicationRegistry("MYAPP"), core.Tag{Code: 1000, Value: "note"}))

		var buf bytes.Buffer
		w := core.NewWriter(&buf, binary, nil)
		l.Write(w)
		w.Str(0, "ENDTAB")
		require.NoError(t, w.Flush())

		s := scan(t, &buf, binary)
		got := NewLayer("")
		require.NoError(t, got.Parse(s, &stubResolver{}))

		assert.Equal(t, "墙体", got.Name())
		assert.Equal(t, "2A", got.Handle())
		assert.Equal(t, "2", got.Owner())
		assert.True(t, got.Off())
		assert.False(t, got.Plot)
		assert.Equal(t, "DASHED", got.Linetype.Get().Name())
		x := got.GetXData("myapp")
		require.NotNil(t, x)
		assert.Empty(t, cmp.Diff([]core.Tag{{Code: 1000, Value: "note"}}, x.Records))
		assert.True(t, s.LastTag.Is("ENDTAB"), "停在下一个 0 组码")
	}
}

func TestLinetype_TextSegment(t *testing.T) {
	style := NewTextStyle("Annot", "romans.shx")
	style.SetHandle("11")

	lt := NewLinetype("GAS",
		&LinetypeSegment{Length: 0.5},
		&LinetypeSegment{Length: -0.2, Text: "GAS", Style: style, Scale: 0.1, Offset: core.Point{X: -0.1, Y: -0.05}},
		&LinetypeSegment{Length: -0.25},
	)
	assert.Equal(t, []*TextStyle{style}, lt.TextStyles())

	var buf bytes.Buffer
	w := core.NewWriter(&buf, false, nil)
	lt.Write(w)
	w.Str(0, "ENDTAB")
	require.NoError(t, w.Flush())

	got := NewLinetype("")
	require.NoError(t, got.Parse(scan(t, &buf, false), &stubResolver{byHandle: map[string]Object{"11": style}}))

	segs := got.Segments.Items()
	require.Len(t, segs, 3)
	assert.Equal(t, "GAS", segs[1].Text)
	assert.Same(t, style, segs[1].Style)
	assert.InDelta(t, -0.05, segs[1].Offset.Y, 1e-12)
	assert.Nil(t, segs[0].Style)
}

func TestBlock_LayoutBlocks(t *testing.T) {
	assert.True(t, IsLayoutBlock("*model_space"))
	assert.True(t, IsLayoutBlock("*Paper_Space3"))
	assert.False(t, IsLayoutBlock("Door"))

	assert.True(t, NewBlock("*Paper_Space0").IsPaperSpace())
	assert.False(t, NewBlock(ModelSpace).IsPaperSpace())
}

func TestBlock_HandlesAndRelease(t *testing.T) {
	b := NewBlock("Door")
	next := b.AssignHandle(0x10)
	assert.Equal(t, uint64(0x13), next)
	assert.Equal(t, "10", b.BeginHandle())
	assert.Equal(t, "11", b.EndHandle())
	assert.Equal(t, "12", b.Handle())

	// 读取的记录只缺子句柄
	c := NewBlock("Window")
	c.SetHandle("40")
	next = c.FillHandles(0x50)
	assert.Equal(t, uint64(0x52), next)
	assert.Equal(t, "40", c.Handle())

	b.SetLayoutHandle("20")
	b.Release()
	assert.Empty(t, b.Handle())
	assert.Empty(t, b.BeginHandle())
	assert.Empty(t, b.LayoutHandle())
}

func TestUnderlayKind(t *testing.T) {
	k, ok := UnderlayKindOf("PDFDEFINITION")
	require.True(t, ok)
	assert.Equal(t, UnderlayPDF, k)
	assert.Equal(t, "ACAD_PDFDEFINITIONS", k.Dictionary())
	assert.Equal(t, "PDFUNDERLAY", k.EntityName())

	k, ok = UnderlayKindOf("DGNUNDERLAY")
	require.True(t, ok)
	assert.Equal(t, UnderlayDGN, k)
}

func TestIsValidName(t *testing.T) {
	for name, want := range map[string]bool{
		"0":           true,
		"墙体":          true,
		"*Model_Space": true,
		"":            false,
		"  ":          false,
		"a/b":         false,
		"a=b":         false,
		"a`b":         false,
	} {
		assert.Equal(t, want, IsValidName(name), name)
	}
}
