package dxf

import (
	"errors"
	"fmt"
)

var (
	ErrLoadFailed = errors.New("dxf: load failed")
	ErrSaveFailed = errors.New("dxf: save failed")

	ErrNilEntity   = errors.New("nil entity")
	ErrUnknownKind = errors.New("unknown entity kind")
	ErrOwnership   = errors.New("nested entity belongs to another block")
	ErrAttached    = errors.New("entity already attached")
	ErrNotAttached = errors.New("entity not attached to this document")
	ErrRejected    = errors.New("change rejected")
)

// VersionError 文件版本不在支持范围内，读写都会原样返回
type VersionError struct {
	Version string
}

func (err *VersionError) Error() string {
	return fmt.Sprintf("dxf: unsupported version %q (AC1015 or later required)", err.Version)
}

// GraphError 挂接、摘除或修改引用失败，文档保持调用前的状态
type GraphError struct {
	Op     string
	Handle string
	Err    error
}

func (err *GraphError) Error() string {
	if err.Handle == "" {
		return "dxf: " + err.Op + ": " + err.Err.Error()
	}
	return "dxf: " + err.Op + " " + err.Handle + ": " + err.Err.Error()
}

func (err *GraphError) Unwrap() error {
	return err.Err
}
