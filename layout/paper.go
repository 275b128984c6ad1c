package layout

import (
	"sort"
	"strings"
)

// PaperClass 区分连续卷纸（热敏）与单张纸。
type PaperClass int

const (
	CutSheet PaperClass = iota
	Thermal
)

func (c PaperClass) String() string {
	if c == Thermal {
		return "thermal"
	}
	return "cut-sheet"
}

// Paper 描述纸张尺寸（单位 pt）与类别。
type Paper struct {
	Name   string     `json:"name"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Class  PaperClass `json:"class"`
}

// IsThermal 报告纸张是否为热敏卷纸。
func (p Paper) IsThermal() bool { return p.Class == Thermal }

// thermalHeight 是热敏卷纸的“页”高，足够长以容纳一整张小票。
const thermalHeight = 5669

// 预置纸张。
var (
	A0      = Paper{Name: "A0", Width: 2383.937, Height: 3370.3938}
	A1      = Paper{Name: "A1", Width: 1683.7795, Height: 2383.937}
	A2      = Paper{Name: "A2", Width: 1190.5513, Height: 1683.7795}
	A3      = Paper{Name: "A3", Width: 841.8898, Height: 1190.5513}
	A4      = Paper{Name: "A4", Width: 595.27563, Height: 841.8898}
	A5      = Paper{Name: "A5", Width: 419.52756, Height: 595.27563}
	A6      = Paper{Name: "A6", Width: 297.63782, Height: 419.52756}
	Letter  = Paper{Name: "LETTER", Width: 612, Height: 792}
	Legal   = Paper{Name: "LEGAL", Width: 612, Height: 1008}
	Tabloid = Paper{Name: "TABLOID", Width: 792, Height: 1224}

	Thermal80mm = Paper{Name: "THERMAL_80MM", Width: 227, Height: thermalHeight, Class: Thermal}
	Thermal64mm = Paper{Name: "THERMAL_64MM", Width: 181, Height: thermalHeight, Class: Thermal}
	Thermal58mm = Paper{Name: "THERMAL_58MM", Width: 164, Height: thermalHeight, Class: Thermal}
	Thermal56mm = Paper{Name: "THERMAL_56MM", Width: 159, Height: thermalHeight, Class: Thermal}
	Thermal42mm = Paper{Name: "THERMAL_42MM", Width: 119, Height: thermalHeight, Class: Thermal}
)

var paperPresets = map[string]Paper{}

func init() {
	for _, p := range []Paper{A0, A1, A2, A3, A4, A5, A6, Letter, Legal, Tabloid,
		Thermal80mm, Thermal64mm, Thermal58mm, Thermal56mm, Thermal42mm} {
		paperPresets[p.Name] = p
	}
}

// LookupPaper 按名称查找预置纸张，大小写与 "-"/"_" 不敏感（thermal-80mm 等价于 THERMAL_80MM）。
func LookupPaper(name string) (Paper, bool) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	p, ok := paperPresets[key]
	return p, ok
}

// Papers 返回全部预置纸张，单张纸在前、热敏纸在后，同类按名称排序。
func Papers() []Paper {
	out := make([]Paper, 0, len(paperPresets))
	for _, p := range paperPresets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CustomPaper 构造自定义尺寸的纸张；尺寸合法性在 NewMetrics 时校验。
func CustomPaper(width, height float64, thermal bool) Paper {
	p := Paper{Name: "CUSTOM", Width: width, Height: height}
	if thermal {
		p.Class = Thermal
	}
	return p
}
