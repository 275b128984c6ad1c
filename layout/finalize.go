package layout

import "strings"

// FinalPage 是定稿后保留下来的一页。VisibleHeight 仅在热敏纸上非零。
type FinalPage struct {
	PageRecord
	VisibleHeight float64 `json:"visibleHeight,omitempty"`
}

// Finalized 是定稿结果：最终文件字节与实际输出的页面。
type Finalized struct {
	Data  []byte      `json:"-"`
	Pages []FinalPage `json:"pages"`
}

// Finalize 对已完成的页面做后处理并序列化。
//
// 热敏纸：每页的可见区域裁剪为该页已写高度加一个行高，顶端对齐可写区域上边缘，
// 宽度保持整张纸宽。
// 单张纸：丢弃提取文本为空白的页面（通常是预判换页留下的末尾空页）；
// 若全部为空白则保留第一页，保证输出至少一页。
func Finalize(sink ContentSink, pages []PageRecord, metrics *Metrics) (*Finalized, error) {
	var kept []FinalPage
	if metrics.Paper().IsThermal() {
		var err error
		if kept, err = cropThermal(sink, pages, metrics); err != nil {
			return nil, err
		}
	} else {
		var err error
		if kept, err = dropBlank(sink, pages); err != nil {
			return nil, err
		}
	}

	handles := make([]PageHandle, len(kept))
	for i, p := range kept {
		handles[i] = p.Handle
	}
	data, err := sink.Serialize(handles)
	if err != nil {
		return nil, sinkErr("serialize", err)
	}
	return &Finalized{Data: data, Pages: kept}, nil
}

func cropThermal(sink ContentSink, pages []PageRecord, metrics *Metrics) ([]FinalPage, error) {
	paper := metrics.Paper()
	lh := metrics.LineHeight()
	kept := make([]FinalPage, 0, len(pages))
	for _, p := range pages {
		height := p.WrittenHeight + lh
		y := metrics.ContentTop() - height
		if err := sink.SetVisibleRegion(p.Handle, 0, y, paper.Width, height); err != nil {
			return nil, sinkErr("setVisibleRegion", err)
		}
		kept = append(kept, FinalPage{PageRecord: p, VisibleHeight: height})
	}
	return kept, nil
}

func dropBlank(sink ContentSink, pages []PageRecord) ([]FinalPage, error) {
	kept := make([]FinalPage, 0, len(pages))
	for _, p := range pages {
		text, err := sink.ExtractText(p.Handle)
		if err != nil {
			return nil, sinkErr("extractText", err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		kept = append(kept, FinalPage{PageRecord: p})
	}
	if len(kept) == 0 && len(pages) > 0 {
		kept = append(kept, FinalPage{PageRecord: pages[0]})
	}
	return kept, nil
}
