package layout

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// monoMetrics 是等宽字宽：每个字符宽 size*ratio pt。
type monoMetrics struct{ ratio float64 }

func (m monoMetrics) RuneWidth(_ rune, font FontSpec) float64 { return font.Size * m.ratio }

func (m monoMetrics) TextWidth(s string, font FontSpec) float64 {
	return float64(len([]rune(s))) * font.Size * m.ratio
}

// unitWidth 让每个字符宽 1pt，便于按字符数推算折行。
func unitWidth(rune) float64 { return 1 }

type fakeOp struct {
	kind string
	x, y float64
	w, h float64
	text string
	font FontSpec
}

type fakePage struct {
	width, height float64
	closes        int
	ops           []fakeOp
	region        []float64
}

func (p *fakePage) texts() []string {
	var out []string
	for _, op := range p.ops {
		if op.kind == "text" {
			out = append(out, op.text)
		}
	}
	return out
}

// fakeSink 记录所有绘制命令；failOp 命名的操作在调用次数超过 failAfter 后返回错误。
type fakeSink struct {
	pages      []*fakePage
	serialized [][]PageHandle
	calls      map[string]int
	failOp     string
	failAfter  int
	meta       DocumentMeta
	faces      FontFaces
}

var errBoom = errors.New("boom")

func newFakeSink() *fakeSink { return &fakeSink{calls: map[string]int{}} }

func (s *fakeSink) hit(op string) error {
	s.calls[op]++
	if s.failOp == op && s.calls[op] > s.failAfter {
		return errBoom
	}
	return nil
}

func (s *fakeSink) page(h PageHandle) *fakePage { return s.pages[int(h)] }

func (s *fakeSink) OpenPage(width, height float64) (PageHandle, error) {
	if err := s.hit("openPage"); err != nil {
		return 0, err
	}
	s.pages = append(s.pages, &fakePage{width: width, height: height})
	return PageHandle(len(s.pages) - 1), nil
}

func (s *fakeSink) DrawText(page PageHandle, x, y float64, text string, font FontSpec) error {
	if err := s.hit("drawText"); err != nil {
		return err
	}
	p := s.page(page)
	p.ops = append(p.ops, fakeOp{kind: "text", x: x, y: y, text: text, font: font})
	return nil
}

func (s *fakeSink) DrawImage(page PageHandle, x, y, width, height float64, _ image.Image) error {
	if err := s.hit("drawImage"); err != nil {
		return err
	}
	p := s.page(page)
	p.ops = append(p.ops, fakeOp{kind: "image", x: x, y: y, w: width, h: height})
	return nil
}

func (s *fakeSink) ClosePage(page PageHandle) error {
	if err := s.hit("closePage"); err != nil {
		return err
	}
	s.page(page).closes++
	return nil
}

func (s *fakeSink) Serialize(pages []PageHandle) ([]byte, error) {
	if err := s.hit("serialize"); err != nil {
		return nil, err
	}
	s.serialized = append(s.serialized, append([]PageHandle(nil), pages...))
	parts := make([]string, len(pages))
	for i, h := range pages {
		parts[i] = fmt.Sprint(int(h))
	}
	return []byte("PDF:" + strings.Join(parts, ",")), nil
}

func (s *fakeSink) ExtractText(page PageHandle) (string, error) {
	if err := s.hit("extractText"); err != nil {
		return "", err
	}
	return strings.Join(s.page(page).texts(), "\n"), nil
}

func (s *fakeSink) SetVisibleRegion(page PageHandle, x, y, width, height float64) error {
	if err := s.hit("setVisibleRegion"); err != nil {
		return err
	}
	s.page(page).region = []float64{x, y, width, height}
	return nil
}

func (s *fakeSink) SetMeta(meta DocumentMeta) { s.meta = meta }

func (s *fakeSink) BindFaces(faces FontFaces) error {
	if faces.Default == "missing" {
		return errors.New("font not found")
	}
	s.faces = faces
	return nil
}

// testPaper 是 200x100pt 的单张纸；配合 testMargins 可写高度为 80pt。
func testPaper(thermal bool) Paper { return CustomPaper(200, 100, thermal) }

func testMargins() Margins { return Margins{Top: 10, Bottom: 10} }

// newTestCursor 使用 10pt 字号、行距 1，行高恰好 10pt。
func newTestCursor(thermal bool) (*PageCursor, *fakeSink, *Metrics) {
	m, err := NewMetrics(testPaper(thermal), testMargins(), 10, 1)
	if err != nil {
		panic(err)
	}
	sink := newFakeSink()
	return NewPageCursor(m, sink, monoMetrics{ratio: 0.5}), sink, m
}

func testConfig(thermal bool) Config {
	cfg := DefaultConfig()
	cfg.Paper = testPaper(thermal)
	cfg.Margins = testMargins()
	cfg.Font.Size = 10
	cfg.LineSpacing = 1
	return cfg
}
