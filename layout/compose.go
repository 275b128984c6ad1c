package layout

// TextRun 是一段共享同一字体角色与字号的文本。X/Y 由排版阶段填写。
type TextRun struct {
	Content string   `json:"content"`
	Font    FontSpec `json:"font"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
}

// Run 构造一个待排版的 TextRun。
func Run(content string, role FontRole, size float64) TextRun {
	return TextRun{Content: content, Font: FontSpec{Role: role, Size: size}}
}

// TextLinePlan 是共享同一基线的一行 run，MaxFontSize 决定该行的行高。
type TextLinePlan struct {
	Runs        []TextRun `json:"runs"`
	MaxFontSize float64   `json:"maxFontSize"`
	Width       float64   `json:"width"`
	Y           float64   `json:"y"`
}

// lineAccumulator 累积当前行的 run，记录已用宽度与最大字号。
type lineAccumulator struct {
	startX      float64
	width       float64
	maxFontSize float64
	runs        []TextRun
}

func (a *lineAccumulator) empty() bool { return len(a.runs) == 0 }

func (a *lineAccumulator) add(run TextRun, width float64) {
	run.X = a.startX + a.width
	a.runs = append(a.runs, run)
	a.width += width
	if run.Font.Size > a.maxFontSize {
		a.maxFontSize = run.Font.Size
	}
}

func (a *lineAccumulator) flushInto(plans []TextLinePlan) []TextLinePlan {
	if a.empty() {
		return plans
	}
	plans = append(plans, TextLinePlan{
		Runs:        a.runs,
		MaxFontSize: a.maxFontSize,
		Width:       a.width,
	})
	a.runs = nil
	a.width = 0
	a.maxFontSize = 0
	return plans
}

// LineComposer 把不同字体/字号的 run 序列装入宽度受限的若干行。
type LineComposer struct {
	Metrics  FontMetrics
	StartX   float64
	MaxWidth float64
}

// Compose 依次处理待排 run：放得下就追加；放不下时
// (a) 空行且连首字符都放不下：强制接受首字符，避免死循环；
// (b) 非空行且首字符放不下：先结束当前行，再用新行重试同一个 run；
// (c) 否则在剩余宽度处切分，头部入行、结束当前行，尾部作为下一个待排 run 立即处理。
func (c LineComposer) Compose(runs []TextRun) []TextLinePlan {
	pending := make([]TextRun, 0, len(runs))
	for _, r := range runs {
		if r.Content != "" {
			pending = append(pending, r)
		}
	}

	var plans []TextLinePlan
	acc := &lineAccumulator{startX: c.StartX}
	for len(pending) > 0 {
		current := pending[0]
		font := current.Font
		widthOf := func(r rune) float64 { return c.Metrics.RuneWidth(r, font) }

		available := c.MaxWidth - acc.width
		textWidth := c.Metrics.TextWidth(current.Content, font)
		if textWidth <= available+widthEpsilon {
			acc.add(current, textWidth)
			pending = pending[1:]
			continue
		}

		first := []rune(current.Content)[0]
		firstFits := available > 0 && widthOf(first) <= available+widthEpsilon
		if !firstFits {
			if !acc.empty() {
				plans = acc.flushInto(plans)
				continue
			}
			head := string(first)
			acc.add(TextRun{Content: head, Font: font}, widthOf(first))
			plans = acc.flushInto(plans)
			rest := current.Content[len(head):]
			if rest == "" {
				pending = pending[1:]
			} else {
				pending[0] = TextRun{Content: rest, Font: font}
			}
			continue
		}

		head, tail := SplitAt(current.Content, widthOf, available)
		if head != "" {
			acc.add(TextRun{Content: head, Font: font}, c.Metrics.TextWidth(head, font))
		}
		if tail == "" {
			pending = pending[1:]
			continue
		}
		plans = acc.flushInto(plans)
		// 尾部放回队首，紧接着处理
		pending[0] = TextRun{Content: tail, Font: font}
	}
	return acc.flushInto(plans)
}
