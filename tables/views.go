package tables

import "github.com/zooyer/dxfdoc/core"

// UCS 用户坐标系
type UCS struct {
	TableBase
	Origin core.Point
	XAxis  core.Point
	YAxis  core.Point
}

func NewUCS(name string, origin, xAxis, yAxis core.Point) *UCS {
	return &UCS{TableBase: NewTableBase("UCS", name), Origin: origin, XAxis: xAxis, YAxis: yAxis}
}

func (u *UCS) Reserved() bool { return false }

func (u *UCS) Parse(s *core.Scanner, r Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case u.ParseCommon(tag, r):
		case u.parseName(tag):
		default:
			core.ParsePoint(tag, 10, &u.Origin)
			core.ParsePoint(tag, 11, &u.XAxis)
			core.ParsePoint(tag, 12, &u.YAxis)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (u *UCS) Write(w *core.Writer) {
	u.writeRecord(w, "AcDbUCSTableRecord")
	w.Point(10, u.Origin)
	w.Point(11, u.XAxis)
	w.Point(12, u.YAxis)
	u.WriteXData(w)
}

// View 命名视图
type View struct {
	TableBase
	Center    core.Point
	Height    float64
	Width     float64
	Direction core.Point
	Target    core.Point
}

func NewView(name string) *View {
	return &View{TableBase: NewTableBase("VIEW", name), Height: 1, Width: 1, Direction: core.Point{Z: 1}}
}

func (v *View) Reserved() bool { return false }

func (v *View) Parse(s *core.Scanner, r Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case v.ParseCommon(tag, r):
		case v.parseName(tag):
		case tag.Code == 40:
			v.Height = tag.AsFloat()
		case tag.Code == 41:
			v.Width = tag.AsFloat()
		default:
			core.ParsePoint(tag, 10, &v.Center)
			core.ParsePoint(tag, 11, &v.Direction)
			core.ParsePoint(tag, 12, &v.Target)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (v *View) Write(w *core.Writer) {
	v.writeRecord(w, "AcDbViewTableRecord")
	w.Double(40, v.Height)
	w.Point2D(10, v.Center)
	w.Double(41, v.Width)
	w.Point(11, v.Direction)
	w.Point(12, v.Target)
	v.WriteXData(w)
}

// VPort 视口配置，*Active 为当前配置
type VPort struct {
	TableBase
	LowerLeft   core.Point
	UpperRight  core.Point
	Center      core.Point
	Direction   core.Point
	Target      core.Point
	Height      float64
	AspectRatio float64
}

func NewVPort(name string) *VPort {
	return &VPort{
		TableBase:   NewTableBase("VPORT", name),
		UpperRight:  core.Point{X: 1, Y: 1},
		Direction:   core.Point{Z: 1},
		Height:      10,
		AspectRatio: 1,
	}
}

func (v *VPort) Reserved() bool { return nameIs(v.name, "*Active") }

func (v *VPort) Parse(s *core.Scanner, r Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case v.ParseCommon(tag, r):
		case v.parseName(tag):
		case tag.Code == 40:
			v.Height = tag.AsFloat()
		case tag.Code == 41:
			v.AspectRatio = tag.AsFloat()
		default:
			core.ParsePoint(tag, 10, &v.LowerLeft)
			core.ParsePoint(tag, 11, &v.UpperRight)
			core.ParsePoint(tag, 12, &v.Center)
			core.ParsePoint(tag, 16, &v.Direction)
			core.ParsePoint(tag, 17, &v.Target)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (v *VPort) Write(w *core.Writer) {
	v.writeRecord(w, "AcDbViewportTableRecord")
	w.Point2D(10, v.LowerLeft)
	w.Point2D(11, v.UpperRight)
	w.Point2D(12, v.Center)
	w.Point(16, v.Direction)
	w.Point(17, v.Target)
	w.Double(40, v.Height)
	w.Double(41, v.AspectRatio)
	v.WriteXData(w)
}
