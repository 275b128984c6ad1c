package barcode

import (
	"math"

	"github.com/ByLCY/quill/layout"
)

// 打印尺寸（mm）：二维码 48mm 见方，一维码 80×12mm。超出行宽时由排版按比例缩小。
const (
	qrSizeMM     = 48.0
	linearWidth  = 80.0
	linearHeight = 12.0
)

// DefaultDotsPerMM 对应 203dpi 热敏打印头。
const DefaultDotsPerMM = 8.0

// Printer 把条码编码为图片并写入文档，实现 layout.BarcodePrinter。
type Printer struct {
	DotsPerMM float64
}

var _ layout.BarcodePrinter = (*Printer)(nil)

// NewPrinter 返回按 203dpi 栅格化的 Printer。
func NewPrinter() *Printer { return &Printer{DotsPerMM: DefaultDotsPerMM} }

// PrintBarcode 解析制式、编码并作为图片写入文档。
func (p *Printer) PrintBarcode(doc *layout.Document, payload, symbology string) error {
	sym, err := ParseSymbology(symbology)
	if err != nil {
		return err
	}
	w, h := Size(sym)
	img, err := Encode(payload, sym, p.dots(w), p.dots(h))
	if err != nil {
		return err
	}
	return doc.PrintImage(img, layout.MM(w), layout.MM(h))
}

// Size 返回制式的打印尺寸（mm）。
func Size(sym Symbology) (width, height float64) {
	if sym.Is2D() {
		return qrSizeMM, qrSizeMM
	}
	return linearWidth, linearHeight
}

func (p *Printer) dots(mm float64) int {
	dpmm := p.DotsPerMM
	if dpmm <= 0 {
		dpmm = DefaultDotsPerMM
	}
	return int(math.Round(mm * dpmm))
}
