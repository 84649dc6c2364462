package tables

import (
	"path/filepath"
	"strings"

	"github.com/zooyer/dxfdoc/core"
)

// ImageDefinition 光栅图像定义，名称为字典中的键
type ImageDefinition struct {
	TableBase
	FileName  string
	Size      core.Point // 像素
	PixelSize core.Point
	Units     int16
}

// NewImageDefinition 名称为空时取文件名（不含扩展名）
func NewImageDefinition(name, fileName string, width, height float64) *ImageDefinition {
	if name == "" {
		name = fileStem(fileName)
	}
	return &ImageDefinition{
		TableBase: NewTableBase("IMAGEDEF", name),
		FileName:  fileName,
		Size:      core.Point{X: width, Y: height},
		PixelSize: core.Point{X: 1, Y: 1},
	}
}

func (i *ImageDefinition) Reserved() bool { return false }

// SetEntryName 读取时由字典条目给出名称
func (i *ImageDefinition) SetEntryName(name string) { i.name = name }

func (i *ImageDefinition) Parse(s *core.Scanner, r Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case i.ParseCommon(tag, r):
		case tag.Code == 1:
			i.FileName = tag.AsString()
		case tag.Code == 281:
			i.Units = int16(tag.AsInt())
		default:
			core.ParsePoint(tag, 10, &i.Size)
			core.ParsePoint(tag, 11, &i.PixelSize)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	if i.name == "" && i.FileName != "" {
		i.name = fileStem(i.FileName)
	}
	return s.Err()
}

// Write reactors 为引用它的图像的 IMAGEDEF_REACTOR 句柄
func (i *ImageDefinition) Write(w *core.Writer, reactors []string) {
	w.Str(0, i.code)
	w.Handle(5, HandleOrZero(i.handle))
	if len(reactors) > 0 {
		w.Str(102, "{ACAD_REACTORS")
		for _, h := range reactors {
			w.Handle(330, h)
		}
		w.Str(102, "}")
	}
	w.Handle(330, HandleOrZero(i.owner))
	w.Str(100, "AcDbRasterImageDef")
	w.Int32(90, 0)
	w.Str(1, i.FileName)
	w.Point2D(10, i.Size)
	w.Point2D(11, i.PixelSize)
	w.Int16(280, 1)
	w.Int16(281, i.Units)
	i.WriteXData(w)
}

// UnderlayKind 参考底图类型
type UnderlayKind int

const (
	UnderlayPDF UnderlayKind = iota
	UnderlayDWF
	UnderlayDGN
)

var underlayNames = [...]string{"PDF", "DWF", "DGN"}

func (k UnderlayKind) String() string { return underlayNames[k] }

// CodeName 定义对象的类型名，如 PDFDEFINITION
func (k UnderlayKind) CodeName() string { return underlayNames[k] + "DEFINITION" }

// Dictionary 定义所在的命名字典
func (k UnderlayKind) Dictionary() string { return "ACAD_" + underlayNames[k] + "DEFINITIONS" }

// EntityName 参考底图实体的类型名，如 PDFUNDERLAY
func (k UnderlayKind) EntityName() string { return underlayNames[k] + "UNDERLAY" }

// UnderlayKindOf 由 PDFDEFINITION 或 PDFUNDERLAY 得到类型
func UnderlayKindOf(codeName string) (UnderlayKind, bool) {
	for k, name := range underlayNames {
		if strings.HasPrefix(strings.ToUpper(codeName), name) {
			return UnderlayKind(k), true
		}
	}
	return 0, false
}

// UnderlayDefinition PDF、DWF、DGN 参考底图定义
type UnderlayDefinition struct {
	TableBase
	Kind     UnderlayKind
	FileName string
	Page     string
}

func NewUnderlayDefinition(kind UnderlayKind, name, fileName, page string) *UnderlayDefinition {
	if name == "" {
		name = fileStem(fileName)
	}
	return &UnderlayDefinition{
		TableBase: NewTableBase(kind.CodeName(), name),
		Kind:      kind,
		FileName:  fileName,
		Page:      page,
	}
}

func (u *UnderlayDefinition) Reserved() bool { return false }

func (u *UnderlayDefinition) SetEntryName(name string) { u.name = name }

func (u *UnderlayDefinition) Parse(s *core.Scanner, r Resolver) error {
	if k, ok := UnderlayKindOf(s.LastTag.AsString()); ok {
		u.Kind, u.code = k, k.CodeName()
	}
	for {
		tag := s.LastTag
		switch {
		case u.ParseCommon(tag, r):
		case tag.Code == 1:
			u.FileName = tag.AsString()
		case tag.Code == 2:
			u.Page = tag.AsString()
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	if u.name == "" && u.FileName != "" {
		u.name = fileStem(u.FileName)
	}
	return s.Err()
}

func (u *UnderlayDefinition) Write(w *core.Writer) {
	u.WriteHeader(w)
	w.Str(100, "AcDbUnderlayDefinition")
	w.Str(1, u.FileName)
	w.Str(2, u.Page)
	u.WriteXData(w)
}

// fileStem 文件名去掉目录和扩展名，文件中可能是 Windows 路径
func fileStem(name string) string {
	base := name[strings.LastIndexAny(name, `/\`)+1:]
	return strings.TrimSuffix(base, filepath.Ext(base))
}
