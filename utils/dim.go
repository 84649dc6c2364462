package utils

import (
	"math"
	"strings"

	"github.com/zooyer/dxfdoc/entities"
)

// GetDimValue 标注显示的数值：有手动文字时取文字中的数字，否则按精度四舍五入测量值。
// 精度先取标注自己的覆盖，再取标注样式。
func GetDimValue(dim *entities.Dimension) float64 {
	// 1. 如果有手动文字覆盖，直接按文字提取数字
	if dim.Text != "" && !strings.Contains(dim.Text, "<>") {
		return dim.GetCleanVal()
	}

	// 2. 查找精度，默认取整
	precision := 0
	if style := dim.Style.Get(); style != nil {
		precision = int(style.Precision)
	}
	if v, ok := dim.StyleOverrides.Get(entities.OverridePrecision); ok {
		if p, ok := v.(int16); ok {
			precision = int(p)
		}
	}

	// 3. 根据精度进行四舍五入
	p := math.Pow(10, float64(precision))

	return math.Round(dim.ActualMeasurement*p) / p
}
