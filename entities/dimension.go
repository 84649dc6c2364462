package entities

import (
	"math"
	"regexp"
	"strconv"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// Dimension 标注。Block 为标注的显示块（*D 开头的匿名块），
// StyleOverrides 中的块、线型、文字样式和 Style 一样登记引用。
type Dimension struct {
	EntityBase
	DimType           int        // 组码 70 (关键：区分标注类型)
	ActualMeasurement float64    // 组码 42
	Text              string     // 组码 1
	Angle             float64    // 组码 50
	TextMidPoint      core.Point // 组码 11 (中间的点)
	DefPoint          core.Point // 组码 10 (标注线起点)
	MeasureStart      core.Point // 组码 13 (被测量的起点)
	MeasureEnd        core.Point // 组码 14 (被测量的终点)

	Style          notify.Property[*tables.DimensionStyle] // 组码 3 (标注样式名称，用于关联 TABLES)
	Block          notify.Property[*tables.Block]          // 组码 2
	StyleOverrides Overrides
}

func init() {
	Register("DIMENSION", func() Entity { return NewDimension(nil) })
}

// NewDimension 创建线性标注，样式为 nil 时使用 Standard
func NewDimension(style *tables.DimensionStyle) *Dimension {
	d := &Dimension{EntityBase: newEntityBase(KindDimension, "DIMENSION")}
	d.Style.Init(style)
	return d
}

func (d *Dimension) Parse(scanner *core.Scanner, r tables.Resolver) error {
	for {
		tag := scanner.LastTag
		switch {
		case d.parseCommon(tag, r):
		case tag.Code == 3:
			// 核心：读取标注样式名称
			d.Style.Init(r.DimensionStyle(tag.AsString()))
		case tag.Code == 2:
			d.Block.Init(r.Block(tag.AsString()))
		case tag.Code == 1:
			d.Text = tag.AsString()
		case tag.Code == 42:
			d.ActualMeasurement = tag.AsFloat()
		case tag.Code == 50:
			d.Angle = tag.AsFloat()
		case tag.Code == 70:
			// 组码 70 包含了很多信息，我们只需要低 3 位来判定类型
			d.DimType = tag.AsInt() & 0x07
		// 解析核心点坐标
		case core.ParsePoint(tag, 10, &d.DefPoint):
		case core.ParsePoint(tag, 11, &d.TextMidPoint):
		case core.ParsePoint(tag, 13, &d.MeasureStart):
		case core.ParsePoint(tag, 14, &d.MeasureEnd):
		}
		if !scanner.Next() || scanner.LastTag.Code == 0 {
			break
		}
	}
	parseOverrides(&d.EntityBase, &d.StyleOverrides, r)
	return scanner.Err()
}

func (d *Dimension) Write(w *core.Writer) {
	d.writeCommon(w)
	w.Str(100, "AcDbDimension")
	if b := d.Block.Get(); b != nil {
		w.Str(2, b.Name())
	}
	w.Point(10, d.DefPoint)
	w.Point(11, d.TextMidPoint)
	// 32 表示显示块只被这个标注使用
	w.Int16(70, int16(d.DimType|32))
	if d.Text != "" {
		w.Str(1, d.Text)
	}
	w.Double(42, d.ActualMeasurement)
	w.Str(3, tables.NameOf(d.Style.Get(), "Standard"))
	w.Str(100, "AcDbAlignedDimension")
	w.Point(13, d.MeasureStart)
	w.Point(14, d.MeasureEnd)
	w.Double(50, d.Angle)
	w.Str(100, "AcDbRotatedDimension")
	writeXData(&d.EntityBase, w, &d.StyleOverrides)
}

func (d *Dimension) Clone() Entity {
	c := *d
	c.EntityBase = d.cloneBase()
	c.Style = notify.NewProperty(d.Style.Get())
	c.Block = notify.NewProperty(d.Block.Get())
	c.StyleOverrides = Overrides{}
	cloneOverrides(&c.StyleOverrides, &d.StyleOverrides)
	return &c
}

// GetExtensionPoints 计算标注线上的两个转角点
// 返回：对应 P13 的转角点, 对应 P14 的转角点
func (d *Dimension) GetExtensionPoints() (p13Corner, p14Corner core.Point) {
	// 将角度从角度制转为弧度制
	rad := d.Angle * math.Pi / 180.0
	v := core.Point{X: math.Cos(rad), Y: math.Sin(rad)}

	// 向量 (P - P10) 在方向向量 v 上的投影
	project := func(p core.Point) core.Point {
		dot := (p.X-d.DefPoint.X)*v.X + (p.Y-d.DefPoint.Y)*v.Y
		return core.Point{X: d.DefPoint.X + v.X*dot, Y: d.DefPoint.Y + v.Y*dot}
	}
	return project(d.MeasureStart), project(d.MeasureEnd)
}

// BuildBlock 生成显示块的内容：两条延伸线和一条标注线
func (d *Dimension) BuildBlock(name string) *tables.Block {
	c13, c14 := d.GetExtensionPoints()
	return tables.NewBlock(name,
		NewLine(d.MeasureStart, c13),
		NewLine(d.MeasureEnd, c14),
		NewLine(c13, c14),
	)
}

// GetCleanVal 正则提取数值
func (d *Dimension) GetCleanVal() float64 {
	val := d.ActualMeasurement
	if val <= 0 && d.Text != "" {
		reFormat := regexp.MustCompile(`\\[A-Z].*?;`)
		cleanText := reFormat.ReplaceAllString(d.Text, "")
		reNum := regexp.MustCompile(`[0-9.]+`)
		if match := reNum.FindString(cleanText); match != "" {
			parsed, _ := strconv.ParseFloat(match, 64)
			val = parsed
		}
	}
	return val
}
