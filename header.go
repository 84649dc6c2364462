package dxf

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding"

	"github.com/zooyer/dxfdoc/core"
)

// Variable 未识别的头变量，原样保留
type Variable struct {
	Name   string
	Values []core.Tag
}

// Header HEADER 段
type Header struct {
	Version         core.Version
	HandleSeed      string
	CodePage        string
	InsBase         core.Point
	InsUnits        int16
	LTScale         float64
	CurrentLayer    string
	CurrentLinetype string
	TextStyle       string
	DimStyle        string
	MLineStyle      string
	LastSavedBy     string
	FingerprintGUID string
	VersionGUID     string
	Extra           []Variable
}

// NewHeader 新建文档的头变量，生成新的 GUID
func NewHeader(version core.Version, codePage string) *Header {
	return &Header{
		Version:         version,
		HandleSeed:      "1",
		CodePage:        codePage,
		LTScale:         1,
		CurrentLayer:    "0",
		CurrentLinetype: "ByLayer",
		TextStyle:       "Standard",
		DimStyle:        "Standard",
		MLineStyle:      "Standard",
		FingerprintGUID: newGUID(),
		VersionGUID:     newGUID(),
	}
}

func newGUID() string {
	return "{" + strings.ToUpper(uuid.NewString()) + "}"
}

// Get 按名称取未识别的变量
func (h *Header) Get(name string) (Variable, bool) {
	for _, v := range h.Extra {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return Variable{}, false
}

// set 处理一个变量的全部值，返回 false 表示未识别
func (h *Header) set(name string, values []core.Tag) (bool, error) {
	first := func() core.Tag {
		if len(values) == 0 {
			return core.Tag{}
		}
		return values[0]
	}
	switch strings.ToUpper(name) {
	case "$ACADVER":
		s := first().AsString()
		v, err := core.ParseVersion(s)
		if err != nil || !v.Supported() {
			return true, &VersionError{Version: s}
		}
		h.Version = v
	case "$HANDSEED":
		h.HandleSeed = first().AsString()
	case "$DWGCODEPAGE":
		h.CodePage = first().AsString()
	case "$INSBASE":
		for _, t := range values {
			core.ParsePoint(t, 10, &h.InsBase)
		}
	case "$INSUNITS":
		h.InsUnits = int16(first().AsInt())
	case "$LTSCALE":
		h.LTScale = first().AsFloat()
	case "$CLAYER":
		h.CurrentLayer = first().AsString()
	case "$CELTYPE":
		h.CurrentLinetype = first().AsString()
	case "$TEXTSTYLE":
		h.TextStyle = first().AsString()
	case "$DIMSTYLE":
		h.DimStyle = first().AsString()
	case "$CMLSTYLE":
		h.MLineStyle = first().AsString()
	case "$LASTSAVEDBY":
		h.LastSavedBy = first().AsString()
	case "$FINGERPRINTGUID":
		h.FingerprintGUID = first().AsString()
	case "$VERSIONGUID":
		h.VersionGUID = first().AsString()
	default:
		return false, nil
	}
	return true, nil
}

// encoding 字符串使用的编码，R2007 起为 UTF-8（nil），否则为代码页，未设置时用 def
func (h *Header) encoding(def string) encoding.Encoding {
	if h.Version.UTF8() {
		return nil
	}
	if h.CodePage != "" {
		return core.CodePage(h.CodePage)
	}
	return core.CodePage(def)
}

// parse 读取 HEADER 段，停在 ENDSEC。读到 $ACADVER 和 $DWGCODEPAGE 后切换字符串编码。
func (h *Header) parse(s *core.Scanner, codePage string) error {
	var (
		name   string
		values []core.Tag
	)
	flush := func() error {
		if name == "" {
			return nil
		}
		known, err := h.set(name, values)
		if err != nil {
			return err
		}
		if !known {
			h.Extra = append(h.Extra, Variable{Name: name, Values: values})
		}
		switch strings.ToUpper(name) {
		case "$ACADVER", "$DWGCODEPAGE":
			s.SetEncoding(h.encoding(codePage))
		}
		name, values = "", nil
		return nil
	}

	for s.Next() {
		tag := s.LastTag
		switch {
		case tag.Code == 0:
			if err := flush(); err != nil {
				return err
			}
			return s.Err()
		case tag.Code == 9:
			if err := flush(); err != nil {
				return err
			}
			name = tag.AsString()
		case name != "":
			values = append(values, tag)
		}
	}
	return s.Err()
}

func (h *Header) write(w *core.Writer) {
	w.Str(0, "SECTION")
	w.Str(2, "HEADER")

	w.Str(9, "$ACADVER")
	w.Str(1, h.Version.String())
	w.Str(9, "$DWGCODEPAGE")
	w.Str(3, h.CodePage)
	w.Str(9, "$HANDSEED")
	w.Handle(5, h.HandleSeed)
	w.Str(9, "$INSBASE")
	w.Point(10, h.InsBase)
	w.Str(9, "$INSUNITS")
	w.Int16(70, h.InsUnits)
	w.Str(9, "$LTSCALE")
	w.Double(40, h.LTScale)
	w.Str(9, "$CLAYER")
	w.Str(8, h.CurrentLayer)
	w.Str(9, "$CELTYPE")
	w.Str(6, h.CurrentLinetype)
	w.Str(9, "$TEXTSTYLE")
	w.Str(7, h.TextStyle)
	w.Str(9, "$DIMSTYLE")
	w.Str(2, h.DimStyle)
	w.Str(9, "$CMLSTYLE")
	w.Str(2, h.MLineStyle)
	if h.LastSavedBy != "" {
		w.Str(9, "$LASTSAVEDBY")
		w.Str(1, h.LastSavedBy)
	}
	w.Str(9, "$FINGERPRINTGUID")
	w.Str(2, h.FingerprintGUID)
	w.Str(9, "$VERSIONGUID")
	w.Str(2, h.VersionGUID)

	for _, v := range h.Extra {
		w.Str(9, v.Name)
		for _, t := range v.Values {
			w.WriteTag(t)
		}
	}
	w.Str(0, "ENDSEC")
}
