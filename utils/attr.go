package utils

import (
	"strings"

	dxf "github.com/zooyer/dxfdoc"
	"github.com/zooyer/dxfdoc/entities"
)

// GetAttrs 块参照的属性，标签为键
func GetAttrs(ins *entities.Insert) map[string]string {
	var attrs = make(map[string]string)
	for _, a := range ins.Attributes.Items() {
		attrs[a.Tag] = a.Text
	}

	return attrs
}

func GetAttr(ins *entities.Insert, key string) string {
	return GetAttrs(ins)[key]
}

// SetAttr 修改已有属性的值，没有该标签时从块的属性定义生成一个加入文档
func SetAttr(doc *dxf.Document, ins *entities.Insert, key, value string) error {
	for _, a := range ins.Attributes.Items() {
		if a.Tag == key {
			a.Text = value
			return nil
		}
	}

	a := entities.NewAttrib(key, value)
	if blk := ins.Block.Get(); blk != nil {
		if def, ok := blk.AttributeDefinitions.Get(strings.ToUpper(key)); ok {
			if d, ok := def.(*entities.AttributeDefinition); ok {
				a = d.NewAttrib()
				a.Text = value
			}
		}
	}
	return doc.AddAttribute(ins, a)
}

// Inserts 模型空间和图纸空间中引用指定块的块参照，块名不区分大小写
func Inserts(doc *dxf.Document, block string) []*entities.Insert {
	var list []*entities.Insert
	for _, e := range doc.Entities() {
		ins, ok := e.(*entities.Insert)
		if !ok {
			continue
		}
		if blk := ins.Block.Get(); blk != nil && strings.EqualFold(blk.Name(), block) {
			list = append(list, ins)
		}
	}
	return list
}
