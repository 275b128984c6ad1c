package layout

import "math"

// 默认值与原有收据打印行为保持一致。
const (
	DefaultFontSize    = 12
	DefaultLineSpacing = 1.15
)

// Margins 以 pt 为单位。
type Margins struct {
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// DefaultMargins 返回默认边距（左右 4pt，上 8pt，下 4pt）。
func DefaultMargins() Margins {
	return Margins{Left: 4, Right: 4, Top: 8, Bottom: 4}
}

// Metrics 由纸张、边距、行距与字号推导出排版所需的全部尺寸。
// 所有派生字段在任一输入变化时一次性重算；校验失败的 setter 不改变任何字段。
type Metrics struct {
	paper       Paper
	margins     Margins
	fontSize    float64
	lineSpacing float64

	startX        float64
	startY        float64
	lineHeight    float64
	maxLineWidth  float64
	writingHeight float64
}

// NewMetrics 校验输入并计算派生尺寸。
func NewMetrics(paper Paper, margins Margins, fontSize, lineSpacing float64) (*Metrics, error) {
	m := &Metrics{}
	if err := m.apply(paper, margins, fontSize, lineSpacing); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) apply(paper Paper, margins Margins, fontSize, lineSpacing float64) error {
	if !(paper.Width > 0) || !(paper.Height > 0) || math.IsInf(paper.Width, 0) || math.IsInf(paper.Height, 0) {
		return invalid("paper", "纸张宽高必须为正数")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"marginLeft", margins.Left}, {"marginRight", margins.Right}, {"marginTop", margins.Top}, {"marginBottom", margins.Bottom}} {
		if f.v < 0 || math.IsNaN(f.v) {
			return invalid(f.name, "边距不能为负数")
		}
	}
	if !(fontSize > 0) {
		return invalid("fontSize", "字号必须为正数")
	}
	if !(lineSpacing > 0) {
		return invalid("lineSpacing", "行距倍数必须为正数")
	}

	next := Metrics{
		paper:         paper,
		margins:       margins,
		fontSize:      fontSize,
		lineSpacing:   lineSpacing,
		startX:        margins.Left,
		startY:        paper.Height - margins.Top - fontSize,
		lineHeight:    fontSize * lineSpacing,
		maxLineWidth:  paper.Width - margins.Left - margins.Right,
		writingHeight: paper.Height - margins.Top - margins.Bottom,
	}
	if next.maxLineWidth <= 0 {
		return invalid("margins", "左右边距之和不小于纸张宽度")
	}
	if next.writingHeight <= 0 {
		return invalid("margins", "上下边距之和不小于纸张高度")
	}
	if next.lineHeight > next.writingHeight {
		return invalid("fontSize", "行高超过页面可写高度")
	}
	*m = next
	return nil
}

// SetMargins 更新边距并重算。
func (m *Metrics) SetMargins(margins Margins) error {
	return m.apply(m.paper, margins, m.fontSize, m.lineSpacing)
}

// SetPaper 更新纸张并重算。
func (m *Metrics) SetPaper(paper Paper) error {
	return m.apply(paper, m.margins, m.fontSize, m.lineSpacing)
}

// SetFontSize 更新默认字号并重算。
func (m *Metrics) SetFontSize(size float64) error {
	return m.apply(m.paper, m.margins, size, m.lineSpacing)
}

// SetLineSpacing 更新行距倍数并重算。
func (m *Metrics) SetLineSpacing(spacing float64) error {
	return m.apply(m.paper, m.margins, m.fontSize, spacing)
}

func (m *Metrics) Paper() Paper         { return m.paper }
func (m *Metrics) Margins() Margins     { return m.margins }
func (m *Metrics) FontSize() float64    { return m.fontSize }
func (m *Metrics) LineSpacing() float64 { return m.lineSpacing }

// StartX 是可写区域左边缘。
func (m *Metrics) StartX() float64 { return m.startX }

// StartY 是页面第一行文本的基线：上边距之下一个字号处。
func (m *Metrics) StartY() float64 { return m.startY }

// LineHeight 是默认字号下相邻两条基线的距离。
func (m *Metrics) LineHeight() float64 { return m.lineHeight }

// LineHeightFor 返回指定字号的行高。
func (m *Metrics) LineHeightFor(fontSize float64) float64 { return fontSize * m.lineSpacing }

// MaxLineWidth 是一行文本允许的最大宽度。
func (m *Metrics) MaxLineWidth() float64 { return m.maxLineWidth }

// PageWritingHeight 是扣除上下边距后的可写高度。
func (m *Metrics) PageWritingHeight() float64 { return m.writingHeight }

// ContentTop 是可写区域的上边缘。
func (m *Metrics) ContentTop() float64 { return m.paper.Height - m.margins.Top }

// MetricsSnapshot 是 Metrics 的 JSON 友好快照，用于调试输出。
type MetricsSnapshot struct {
	Paper         Paper   `json:"paper"`
	Margins       Margins `json:"margins"`
	FontSize      float64 `json:"fontSize"`
	LineSpacing   float64 `json:"lineSpacing"`
	StartX        float64 `json:"startX"`
	StartY        float64 `json:"startY"`
	LineHeight    float64 `json:"lineHeight"`
	MaxLineWidth  float64 `json:"maxLineWidth"`
	WritingHeight float64 `json:"pageWritingHeight"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Paper:         m.paper,
		Margins:       m.margins,
		FontSize:      m.fontSize,
		LineSpacing:   m.lineSpacing,
		StartX:        m.startX,
		StartY:        m.startY,
		LineHeight:    m.lineHeight,
		MaxLineWidth:  m.maxLineWidth,
		WritingHeight: m.writingHeight,
	}
}
