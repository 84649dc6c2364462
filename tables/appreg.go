package tables

import "github.com/zooyer/dxfdoc/core"

// ApplicationRegistry 扩展数据所属的应用程序
type ApplicationRegistry struct {
	TableBase
}

func NewApplicationRegistry(name string) *ApplicationRegistry {
	return &ApplicationRegistry{TableBase: NewTableBase("APPID", name)}
}

func (a *ApplicationRegistry) Reserved() bool { return nameIs(a.name, "ACAD") }

func (a *ApplicationRegistry) Parse(s *core.Scanner, r Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case a.ParseCommon(tag, r):
		case a.parseName(tag):
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (a *ApplicationRegistry) Write(w *core.Writer) {
	a.writeRecord(w, "AcDbRegAppTableRecord")
	a.WriteXData(w)
}
