package barcode

import (
	"errors"
	"image"
	"testing"

	"github.com/ByLCY/quill/layout"
)

func TestParseSymbology(t *testing.T) {
	cases := map[string]Symbology{
		"":                QR,
		"QR":              QR,
		"qr-code":         QR,
		"UPC-A":           UPCA,
		"upc_e":           UPCE,
		"EAN 13":          EAN13,
		"ean8":            EAN8,
		"ITF-14":          ITF,
		"code128":         Code128,
		"Code-39":         Code39,
		"codabar":         Codabar,
		"interleaved2of5": ITF,
	}
	for in, want := range cases {
		got, err := ParseSymbology(in)
		if err != nil || got != want {
			t.Fatalf("ParseSymbology(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSymbology("pdf417"); err == nil {
		t.Fatalf("unknown symbology should fail")
	}
	if UPCE.String() != "upc-e" || Symbology(99).String() != "Symbology(99)" {
		t.Fatalf("unexpected names: %s %s", UPCE, Symbology(99))
	}
}

func TestEncodeSizes(t *testing.T) {
	qr, err := Encode("https://example.com/r/42", QR, 384, 384)
	if err != nil {
		t.Fatalf("encode qr: %v", err)
	}
	if b := qr.Bounds(); b.Dx() != b.Dy() || b.Dx() < 384 {
		t.Fatalf("qr should be square and at least 384px, got %v", b)
	}

	cases := []struct {
		sym     Symbology
		payload string
	}{
		{Code128, "A-1024"},
		{EAN13, "590123412345"},
		{EAN8, "9638507"},
		{UPCA, "03600029145"},
		{Code39, "quill"},
		{Codabar, "40156"},
		{ITF, "12345678"},
	}
	for _, c := range cases {
		img, err := Encode(c.payload, c.sym, 640, 96)
		if err != nil {
			t.Fatalf("encode %s %q: %v", c.sym, c.payload, err)
		}
		if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 96 {
			t.Fatalf("%s should scale to 640x96, got %v", c.sym, b)
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, err := Encode("01234565", UPCE, 640, 96); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("UPC-E should be unsupported, got %v", err)
	}
	if _, err := Encode("12AB", EAN13, 640, 96); err == nil {
		t.Fatalf("non-digit EAN should fail")
	}
	if _, err := Encode("123", UPCA, 640, 96); err == nil {
		t.Fatalf("short UPC-A should fail")
	}
	if _, err := Encode("  ", Code128, 640, 96); err == nil {
		t.Fatalf("empty payload should fail")
	}
	if _, err := Encode("x", Code128, 0, 96); err == nil {
		t.Fatalf("zero width should fail")
	}
}

// imageSink 只记录图片绘制，用于检查打印尺寸。
type imageSink struct {
	images [][2]float64
	pages  int
}

func (s *imageSink) OpenPage(w, h float64) (layout.PageHandle, error) {
	s.pages++
	return layout.PageHandle(s.pages - 1), nil
}
func (s *imageSink) DrawText(layout.PageHandle, float64, float64, string, layout.FontSpec) error {
	return nil
}
func (s *imageSink) DrawImage(_ layout.PageHandle, _, _, w, h float64, _ image.Image) error {
	s.images = append(s.images, [2]float64{w, h})
	return nil
}
func (s *imageSink) ClosePage(layout.PageHandle) error { return nil }
func (s *imageSink) Serialize([]layout.PageHandle) ([]byte, error) { return []byte("ok"), nil }
func (s *imageSink) ExtractText(layout.PageHandle) (string, error) { return "", nil }
func (s *imageSink) SetVisibleRegion(layout.PageHandle, float64, float64, float64, float64) error {
	return nil
}

type fixedWidth struct{}

func (fixedWidth) RuneWidth(rune, layout.FontSpec) float64 { return 5 }
func (fixedWidth) TextWidth(s string, _ layout.FontSpec) float64 { return 5 * float64(len([]rune(s))) }

func TestPrinterPrintsImageAtSymbolSize(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.Paper = layout.A4
	sink := &imageSink{}
	doc, err := layout.NewDocument(cfg, sink, fixedWidth{})
	if err != nil {
		t.Fatal(err)
	}
	p := NewPrinter()
	if err := p.PrintBarcode(doc, "order-7", "qr"); err != nil {
		t.Fatalf("print qr: %v", err)
	}
	if err := p.PrintBarcode(doc, "order-7", "code128"); err != nil {
		t.Fatalf("print code128: %v", err)
	}
	if len(sink.images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(sink.images))
	}
	const eps = 1e-9
	qr, bar := sink.images[0], sink.images[1]
	if d := qr[0] - layout.MM(48); d > eps || d < -eps || qr[0] != qr[1] {
		t.Fatalf("qr should be 48mm square, got %v", qr)
	}
	if d := bar[0] - layout.MM(80); d > eps || d < -eps {
		t.Fatalf("1D code should be 80mm wide, got %v", bar)
	}
	if err := p.PrintBarcode(doc, "x", "pdf417"); err == nil {
		t.Fatalf("unknown symbology should fail")
	}
}

func TestPrinterScalesToNarrowPaper(t *testing.T) {
	sink := &imageSink{}
	doc, err := layout.NewDocument(layout.DefaultConfig(), sink, fixedWidth{})
	if err != nil {
		t.Fatal(err)
	}
	if err := NewPrinter().PrintBarcode(doc, "A-1024", "code128"); err != nil {
		t.Fatal(err)
	}
	w, h := sink.images[0][0], sink.images[0][1]
	if limit := doc.Metrics().MaxLineWidth; w > limit+1e-9 {
		t.Fatalf("barcode wider than the line: %g > %g", w, limit)
	}
	if ratio := w / h; ratio < 6.66 || ratio > 6.67 {
		t.Fatalf("aspect ratio should be kept at 80:12, got %g", ratio)
	}
}
