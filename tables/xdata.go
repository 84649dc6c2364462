package tables

import "github.com/zooyer/dxfdoc/core"

// XData 某个应用程序的扩展数据，记录只允许 1000~1071 组码
type XData struct {
	App     *ApplicationRegistry
	Records []core.Tag
}

// NewXData 创建扩展数据
func NewXData(app *ApplicationRegistry, records ...core.Tag) *XData {
	return &XData{App: app, Records: records}
}

// Valid 有应用程序，且记录组码都在扩展数据范围内
func (x *XData) Valid() bool {
	if x == nil || x.App == nil {
		return false
	}
	for _, rec := range x.Records {
		if rec.Code < 1000 || rec.Code == 1001 || rec.Code > 1071 {
			return false
		}
	}
	return true
}
