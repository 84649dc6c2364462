//go:build dxfdebug

package core

// Debug 调试构建下类型不符直接 panic，加载/保存返回原始错误
const Debug = true
