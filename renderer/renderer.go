package renderer

import "github.com/ByLCY/quill/layout"

// Renderer 是完整的输出后端：既是排版引擎的绘制目标，也负责测量文本宽度。
// 每个 Renderer 实例只服务于一个文档，Serialize 之后不可再用。
type Renderer interface {
	layout.ContentSink
	layout.FontMetrics
	layout.MetaSetter
	layout.FaceBinder
	layout.ImageLoader
}
