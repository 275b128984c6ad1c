package layout

// 该文件定义文档汇总结构，供日志与调试 JSON 共用。

// Summary 描述一份文档的排版尺寸与页面情况。
type Summary struct {
	ID      string          `json:"id"`
	Closed  bool            `json:"closed"`
	Metrics MetricsSnapshot `json:"metrics"`
	Meta    DocumentMeta    `json:"meta"`
	Pages   []FinalPage     `json:"pages"`
	Bytes   int             `json:"bytes,omitempty"`
}

// TotalWrittenHeight 是所有页面已写高度之和（pt）。
func (s Summary) TotalWrittenHeight() float64 {
	var total float64
	for _, p := range s.Pages {
		total += p.WrittenHeight
	}
	return total
}
