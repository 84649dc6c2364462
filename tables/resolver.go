package tables

// Resolver 读取文件时按名称或句柄解析引用。
// 按名称找不到时创建同名对象，句柄引用延迟到全部读完后再解析。
type Resolver interface {
	AppRegistry(name string) *ApplicationRegistry
	Layer(name string) *Layer
	Linetype(name string) *Linetype
	TextStyle(name string) *TextStyle
	DimensionStyle(name string) *DimensionStyle
	MLineStyle(name string) *MLineStyle
	Block(name string) *Block
	// ByHandle 登记一个句柄引用，fn 在全部对象读完后调用；找不到时 obj 为 nil
	ByHandle(handle string, fn func(obj Object))
}
