// Package entities 定义块和布局中的实体。实体只保存对表对象的引用，
// 引用的登记和变更跟踪由文档在加入实体时完成。
package entities

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/tables"
)

// Kind 实体类型，文档按类型分派引用登记
type Kind int

const (
	KindLine Kind = iota
	KindCircle
	KindArc
	KindPoint
	KindLwPolyline
	KindText
	KindMText
	KindInsert
	KindAttribute
	KindAttributeDefinition
	KindDimension
	KindLeader
	KindHatch
	KindViewport
	KindPolyfaceMesh
	KindImage
	KindUnderlay
	KindMLine
	kindCount
)

var kindNames = [...]string{
	"LINE", "CIRCLE", "ARC", "POINT", "LWPOLYLINE", "TEXT", "MTEXT", "INSERT", "ATTRIB", "ATTDEF",
	"DIMENSION", "LEADER", "HATCH", "VIEWPORT", "POLYLINE", "IMAGE", "UNDERLAY", "MLINE",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Kinds 所有实体类型
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Entity 是一切实体的接口
type Entity interface {
	tables.Entity
	Kind() Kind
	Entity() *EntityBase
	Parse(s *core.Scanner, r tables.Resolver) error
	Write(w *core.Writer)
	// Clone 复制一个未加入文档的实体，引用的表对象不复制
	Clone() Entity
}

// EntityFactory 定义了如何从标签流中创建一个实体
type EntityFactory func() Entity

var registry = map[string]EntityFactory{}

// Register 允许以后动态扩展新的实体类型
func Register(typeName string, factory EntityFactory) {
	registry[typeName] = factory
}

// CreateEntity 根据实体名称生产对应的结构体
func CreateEntity(typeName string) Entity {
	if factory, ok := registry[typeName]; ok {
		return factory()
	}
	return nil
}
