package dxf

import (
	"bytes"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/tables"
)

type entitySnapshot struct {
	Handle   string
	Kind     string
	Block    string
	Layer    string
	Linetype string
	Paper    bool
}

type snapshot struct {
	Layers     []string
	Linetypes  []string
	TextStyles []string
	DimStyles  []string
	Blocks     []string
	Layouts    []string
	Images     []string
	Entities   []entitySnapshot
}

func sortedNames(names []string) []string {
	names = append([]string(nil), names...)
	sort.Strings(names)
	return names
}

// takeSnapshot 与读写顺序无关的文档摘要
func takeSnapshot(t *testing.T, d *Document) snapshot {
	t.Helper()
	s := snapshot{
		Layers:     sortedNames(d.Layers.Names()),
		Linetypes:  sortedNames(d.Linetypes.Names()),
		TextStyles: sortedNames(d.TextStyles.Names()),
		DimStyles:  sortedNames(d.DimensionStyles.Names()),
		Blocks:     sortedNames(d.Blocks.Names()),
		Layouts:    sortedNames(d.Layouts.Names()),
		Images:     sortedNames(d.ImageDefinitions.Names()),
	}
	for _, e := range d.AllEntities() {
		block := ""
		if obj, ok := d.Object(e.Owner()); ok {
			block = obj.(*tables.Block).Name()
		}
		s.Entities = append(s.Entities, entitySnapshot{
			Handle:   e.Handle(),
			Kind:     e.Kind().String(),
			Block:    block,
			Layer:    e.Entity().Layer.Get().Name(),
			Linetype: e.Entity().Linetype.Get().Name(),
			Paper:    e.Entity().PaperSpace(),
		})
	}
	sort.Slice(s.Entities, func(i, j int) bool {
		a, _ := core.ParseHandle(s.Entities[i].Handle)
		b, _ := core.ParseHandle(s.Entities[j].Handle)
		return a < b
	})
	return s
}

func sampleDocument(t *testing.T) *Document {
	t.Helper()
	d := New()

	dashed := tables.NewLinetype("DASHED", &tables.LinetypeSegment{Length: 0.5}, &tables.LinetypeSegment{Length: -0.25})
	wall := tables.NewLayer("Wall")
	wall.Color = 3
	wall.Linetype.Init(dashed)
	annot := tables.NewTextStyle("Annot", "romans.shx")

	line := entities.NewLine(core.Point{}, core.Point{X: 100})
	line.Layer.Init(wall)
	require.NoError(t, d.AddEntity(line))

	def := entities.NewAttributeDefinition("NO", "编号", "D-00")
	door := tables.NewBlock("Door", entities.NewCircle(core.Point{}, 450))
	door.AttributeDefinitions.Init("NO", def)
	ins := entities.NewInsert(door, core.Point{X: 50})
	ins.Attributes.Init(entities.NewAttrib("NO", "D-01"))
	require.NoError(t, d.AddEntity(ins))

	dim := entities.NewDimension(nil)
	dim.MeasureEnd = core.Point{X: 100}
	dim.ActualMeasurement = 100
	dim.StyleOverrides.Init(entities.OverrideTextStyle, annot)
	dim.StyleOverrides.Init(entities.OverridePrecision, int16(1))
	require.NoError(t, d.AddEntity(dim))

	boundary := entities.NewLWPolyline(true, core.Point{}, core.Point{X: 10}, core.Point{X: 10, Y: 10})
	require.NoError(t, d.AddEntity(entities.NewHatch("SOLID", entities.NewHatchBoundaryPath(nil, boundary))))

	note := entities.NewMText("墙体 240", core.Point{Y: 20}, 2.5)
	note.Style.Init(annot)
	require.NoError(t, d.AddEntity(note))

	require.NoError(t, d.AddEntity(entities.NewMLine(nil, core.Point{}, core.Point{Y: 100})))
	require.NoError(t, d.AddEntity(entities.NewImage(tables.NewImageDefinition("", "site.png", 640, 480), core.Point{}, 64, 48)))

	title := entities.NewText("标题栏", core.Point{X: 10, Y: 10}, 5)
	require.NoError(t, d.AddEntityTo(d.PaperSpace(), title, true))
	return d
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, binary := range []bool{false, true} {
		d := sampleDocument(t)
		want := takeSnapshot(t, d)

		var buf bytes.Buffer
		require.NoError(t, d.Save(&buf, binary))

		got, err := Load(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err, "binary=%v", binary)
		if diff := cmp.Diff(want, takeSnapshot(t, got)); diff != "" {
			t.Errorf("binary=%v snapshot mismatch (-want +got):\n%s", binary, diff)
		}

		seed, err := core.ParseHandle(got.Header.HandleSeed)
		require.NoError(t, err)
		orig, _ := core.ParseHandle(d.Header.HandleSeed)
		assert.GreaterOrEqual(t, seed, orig)

		// 读取后引用关系恢复
		assert.True(t, got.Layers.HasReferences("Wall"))
		assert.False(t, got.Layers.Remove("Wall"))
		assert.Equal(t, 1, got.Blocks.ReferenceCount("Door"))
		wall, ok := got.Layers.Get("Wall")
		require.True(t, ok)
		assert.Equal(t, "DASHED", wall.Linetype.Get().Name())
		assert.Equal(t, int16(3), wall.Color)

		var ins *entities.Insert
		var dim *entities.Dimension
		for _, e := range got.Entities() {
			switch v := e.(type) {
			case *entities.Insert:
				ins = v
			case *entities.Dimension:
				dim = v
			}
		}
		require.NotNil(t, ins)
		v, ok := ins.GetAttr("NO")
		assert.True(t, ok)
		assert.Equal(t, "D-01", v)

		require.NotNil(t, dim)
		style, ok := dim.StyleOverrides.Get(entities.OverrideTextStyle)
		require.True(t, ok)
		annot, _ := got.TextStyles.Get("Annot")
		assert.Same(t, annot, style)
		assert.ElementsMatch(t, []string{dim.Handle(), findMText(got).Handle()}, got.TextStyles.References("Annot"))

		// 新实体的句柄不与读到的冲突
		line := entities.NewLine(core.Point{}, core.Point{X: 1})
		require.NoError(t, got.AddEntity(line))
		n, _ := core.ParseHandle(line.Handle())
		for _, e := range got.AllEntities() {
			if e != entities.Entity(line) {
				h, _ := core.ParseHandle(e.Handle())
				assert.NotEqual(t, h, n)
			}
		}
	}
}

func findMText(d *Document) *entities.MText {
	for _, e := range d.Entities() {
		if m, ok := e.(*entities.MText); ok {
			return m
		}
	}
	return nil
}

func TestSave_Comments(t *testing.T) {
	d := New()
	d.Comments = []string{"generated by dxfdoc", "图纸说明"}

	var text bytes.Buffer
	require.NoError(t, d.Save(&text, false))
	got, err := Load(&text)
	require.NoError(t, err)
	assert.Equal(t, d.Comments, got.Comments)

	var bin bytes.Buffer
	require.NoError(t, d.Save(&bin, true))
	got, err = Load(&bin)
	require.NoError(t, err)
	assert.Empty(t, got.Comments, "二进制格式不写注释")

	// 注释在 HEADER 之前，按读到的代码页解码
	d = New(WithVersion(core.R2000), WithCodePage("ANSI_936"))
	d.Comments = []string{"图纸说明"}
	text.Reset()
	require.NoError(t, d.Save(&text, false))
	got, err = Load(&text)
	require.NoError(t, err)
	assert.Equal(t, d.Comments, got.Comments)
}

func TestSave_LineBreak(t *testing.T) {
	d := New()
	require.NoError(t, d.AddEntity(entities.NewText("line1\nline2", core.Point{}, 2.5)))

	// 单行文字中的换行无法写出
	err := d.Save(&bytes.Buffer{}, false)
	assert.ErrorIs(t, err, ErrSaveFailed)

	d = New(WithDebug(true))
	require.NoError(t, d.AddEntity(entities.NewText("line1\r\nline2", core.Point{}, 2.5)))
	for _, binary := range []bool{false, true} {
		err = d.Save(&bytes.Buffer{}, binary)
		var fe *core.FormatError
		require.ErrorAs(t, err, &fe, "binary=%v", binary)
		assert.ErrorIs(t, err, core.ErrLineBreak)
	}

	// 多行文字的换行写成分段符
	d = New()
	require.NoError(t, d.AddEntity(entities.NewMText("第一段\n第二段\r\n第三段", core.Point{}, 2.5)))
	var buf bytes.Buffer
	require.NoError(t, d.Save(&buf, false))
	got, err := Load(&buf)
	require.NoError(t, err)
	m := findMText(got)
	require.NotNil(t, m)
	assert.Equal(t, `第一段\P第二段\P第三段`, m.Value)
}

func TestSave_VersionGUID(t *testing.T) {
	d := New()
	fingerprint := d.Header.FingerprintGUID

	var first, second bytes.Buffer
	require.NoError(t, d.Save(&first, false))
	g1 := d.Header.VersionGUID
	require.NoError(t, d.Save(&second, false))
	g2 := d.Header.VersionGUID
	assert.NotEqual(t, g1, g2)
	assert.Equal(t, fingerprint, d.Header.FingerprintGUID)

	got, err := Load(&second)
	require.NoError(t, err)
	assert.Equal(t, g2, got.Header.VersionGUID)
	assert.Equal(t, fingerprint, got.Header.FingerprintGUID)
}

func TestSave_CodePage(t *testing.T) {
	d := New(WithVersion(core.R2000), WithCodePage("ANSI_936"))
	_, err := d.Layers.Add(tables.NewLayer("墙体"), true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, d.Save(&buf, false))

	gbk, err := simplifiedchinese.GBK.NewEncoder().String("墙体")
	require.NoError(t, err)
	assert.True(t, bytes.Contains(buf.Bytes(), []byte(gbk)))
	assert.False(t, bytes.Contains(buf.Bytes(), []byte("墙体")), "R2000 不写 UTF-8")

	got, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, core.R2000, got.Version())
	assert.True(t, got.Layers.Contains("墙体"))
}

// dxfText 由组码和值拼出文本格式
func dxfText(pairs ...string) string {
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return sb.String()
}

func minimalDXF(version string, lineValues ...string) string {
	pairs := []string{"0", "SECTION", "2", "HEADER"}
	if version != "" {
		pairs = append(pairs, "9", "$ACADVER", "1", version)
	}
	pairs = append(pairs, "9", "$INSUNITS", "70", "4", "0", "ENDSEC")
	pairs = append(pairs, "0", "SECTION", "2", "ENTITIES", "0", "LINE")
	pairs = append(pairs, lineValues...)
	pairs = append(pairs, "0", "ENDSEC", "0", "EOF")
	return dxfText(pairs...)
}

var lineValues = []string{"5", "2F", "8", "Wall", "10", "0.0", "20", "0.0", "30", "0.0", "11", "10.0", "21", "0.0", "31", "0.0"}

func TestLoad_Minimal(t *testing.T) {
	d, err := Load(strings.NewReader(minimalDXF("AC1015", lineValues...)))
	require.NoError(t, err)
	assert.Equal(t, core.R2000, d.Version())
	assert.Equal(t, int16(4), d.Header.InsUnits)

	list := d.Entities()
	require.Len(t, list, 1)
	line := list[0].(*entities.Line)
	assert.Equal(t, "2F", line.Handle())
	assert.Equal(t, d.ModelSpace().Handle(), line.Owner())
	assert.Equal(t, "Wall", line.Layer.Get().Name())
	assert.True(t, d.Layers.Contains("Wall"))
	assert.InDelta(t, 10, line.End.X, 1e-12)

	// 默认对象补齐
	assert.True(t, d.Layers.Contains("0"))
	assert.Equal(t, []string{"Model", "Layout1"}, d.Layouts.Names())

	next := entities.NewCircle(core.Point{}, 1)
	require.NoError(t, d.AddEntity(next))
	h, _ := core.ParseHandle(next.Handle())
	assert.Greater(t, h, uint64(0x2F))
}

func TestLoad_VersionGate(t *testing.T) {
	_, err := Load(strings.NewReader(minimalDXF("AC1009", lineValues...)))
	var verr *VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "AC1009", verr.Version)
	assert.False(t, errors.Is(err, ErrLoadFailed), "版本错误不包装")

	_, err = Load(strings.NewReader(minimalDXF("", lineValues...)))
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, verr.Version)

	d := New()
	d.Header.Version = core.R12
	err = d.Save(&bytes.Buffer{}, false)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, core.R12.String(), verr.Version)
}

// legacyBinary R12 二进制格式，组码只占 1 字节
func legacyBinary() []byte {
	var buf bytes.Buffer
	buf.WriteString(core.BinarySentinel)
	buf.WriteString("\x00SECTION\x00\x02HEADER\x00")
	buf.WriteString("\x09$ACADVER\x00\x01AC1009\x00")
	buf.WriteString("\x09$INSBASE\x00")
	buf.WriteString("\x0a")
	buf.Write(make([]byte, 8))
	buf.WriteString("\x00ENDSEC\x00\x00EOF\x00")
	return buf.Bytes()
}

func TestLoad_LegacyBinary(t *testing.T) {
	_, err := Load(bytes.NewReader(legacyBinary()))
	var verr *VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "AC1009", verr.Version)
	assert.False(t, errors.Is(err, ErrLoadFailed))

	v, binary, err := CheckVersion(bytes.NewReader(legacyBinary()))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, core.R12, v)
	assert.True(t, binary)
}

func TestLoad_FormatError(t *testing.T) {
	bad := []string{"5", "2F", "8", "0", "10", "abc", "20", "0.0"}

	_, err := Load(strings.NewReader(minimalDXF("AC1015", bad...)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = Load(strings.NewReader(minimalDXF("AC1015", bad...)), WithDebug(true))
	var fe *core.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 10, fe.Code)
	assert.False(t, errors.Is(err, ErrLoadFailed))
}

func TestCheckVersion(t *testing.T) {
	d := New(WithVersion(core.R2010))
	for _, binary := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, d.Save(&buf, binary))
		v, isBinary, err := CheckVersion(&buf)
		require.NoError(t, err)
		assert.Equal(t, core.R2010, v)
		assert.Equal(t, binary, isBinary)
	}

	_, _, err := CheckVersion(strings.NewReader(minimalDXF("AC1012")))
	var verr *VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "AC1012", verr.Version)

	_, _, err = CheckVersion(strings.NewReader(minimalDXF("")))
	assert.ErrorAs(t, err, &verr)
}

func TestSaveFile_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.dxf")
	d := sampleDocument(t)
	require.NoError(t, d.SaveFile(path, true))

	v, binary, err := CheckFileVersion(path)
	require.NoError(t, err)
	assert.Equal(t, core.R2018, v)
	assert.True(t, binary)

	got, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(takeSnapshot(t, d), takeSnapshot(t, got)))

	_, err = Open(filepath.Join(t.TempDir(), "missing.dxf"))
	assert.Error(t, err)
}
