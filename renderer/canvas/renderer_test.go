package canvasrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/quill/layout"
)

var body = layout.FontSpec{Role: layout.RoleDefault, Size: 12}

func TestRuneWidthsAreConsistent(t *testing.T) {
	r := NewRenderer("")
	if err := r.BindFaces(layout.FontFaces{}); err != nil {
		t.Fatalf("bind default faces: %v", err)
	}
	a, b := r.RuneWidth('a', body), r.RuneWidth('W', body)
	if a <= 0 || b <= 0 {
		t.Fatalf("expected positive widths, got %g %g", a, b)
	}
	// 默认字体是等宽的 Go Mono
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected monospace widths, got a=%g W=%g", a, b)
	}
	if got, want := r.TextWidth("aW", body), a+b; math.Abs(got-want) > 1e-9 {
		t.Fatalf("TextWidth should equal the sum of rune widths: got=%g want=%g", got, want)
	}
	big := r.RuneWidth('a', layout.FontSpec{Size: 24})
	if math.Abs(big-2*a) > 1e-6 {
		t.Fatalf("width should scale with size: 12pt=%g 24pt=%g", a, big)
	}
	if r.RuneWidth('a', layout.FontSpec{Size: 0}) != 0 {
		t.Fatalf("zero size should measure zero")
	}
}

func TestBindFacesRejectsMissingFont(t *testing.T) {
	r := NewRenderer(t.TempDir())
	err := r.BindFaces(layout.FontFaces{Bold: "missing.ttf"})
	if err == nil || !strings.Contains(err.Error(), "missing.ttf") {
		t.Fatalf("expected error naming the missing font, got %v", err)
	}
	if err := r.BindFaces(layout.FontFaces{Default: "builtin:go", Bold: "builtin:nope"}); err == nil {
		t.Fatalf("expected unknown builtin font to fail")
	}
	if NewRenderer("").BindFaces(layout.FontFaces{Default: "fonts/a.ttf"}) == nil {
		t.Fatalf("relative font paths need a base dir")
	}
}

func TestResolveSource(t *testing.T) {
	cases := []struct {
		faces layout.FontFaces
		role  layout.FontRole
		want  string
	}{
		{layout.FontFaces{}, layout.RoleDefault, "builtin:go-mono"},
		{layout.FontFaces{}, layout.RoleBoldItalic, "builtin:go-mono-bold-italic"},
		{layout.FontFaces{Default: "builtin:go"}, layout.RoleBold, "builtin:go-mono-bold"},
		{layout.FontFaces{Default: "shop.ttf"}, layout.RoleItalic, "shop.ttf"},
		{layout.FontFaces{Default: "shop.ttf", Bold: "shop-b.ttf"}, layout.RoleBold, "shop-b.ttf"},
	}
	for _, c := range cases {
		if got := resolveSource(c.faces, c.role); got != c.want {
			t.Fatalf("resolveSource(%+v, %s) = %q, want %q", c.faces, c.role, got, c.want)
		}
	}
}

func TestPageLifecycle(t *testing.T) {
	r := NewRenderer("")
	h, err := r.OpenPage(200, 300)
	if err != nil {
		t.Fatalf("open page: %v", err)
	}
	if err := r.DrawText(h, 10, 280, "hello", body); err != nil {
		t.Fatalf("draw text: %v", err)
	}
	if err := r.DrawText(h, 10, 266, "world", body); err != nil {
		t.Fatalf("draw text: %v", err)
	}
	text, err := r.ExtractText(h)
	if err != nil || text != "hello\nworld" {
		t.Fatalf("unexpected extracted text %q (%v)", text, err)
	}
	if _, err := r.Serialize([]layout.PageHandle{h}); err == nil {
		t.Fatalf("serializing an open page should fail")
	}
	if err := r.ClosePage(h); err != nil {
		t.Fatalf("close page: %v", err)
	}
	if err := r.ClosePage(h); err == nil {
		t.Fatalf("closing twice should fail")
	}
	if err := r.DrawText(h, 0, 0, "late", body); err == nil {
		t.Fatalf("drawing on a closed page should fail")
	}
	if err := r.DrawText(7, 0, 0, "x", body); err == nil {
		t.Fatalf("unknown handle should fail")
	}
	data, err := r.Serialize([]layout.PageHandle{h})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF output, got %q", data[:min(len(data), 8)])
	}
	if _, err := r.Serialize([]layout.PageHandle{h}); err != ErrSerialized {
		t.Fatalf("second serialize should return ErrSerialized, got %v", err)
	}
	if _, err := r.OpenPage(10, 10); err != ErrSerialized {
		t.Fatalf("renderer should be unusable after serialize, got %v", err)
	}
}

func TestVisibleRegionBecomesPageBox(t *testing.T) {
	r := NewRenderer("")
	h, _ := r.OpenPage(227, 5669)
	p := r.pages[h]
	if x, y, w, hgt := p.box(); x != 0 || y != 0 || w != 227 || hgt != 5669 {
		t.Fatalf("default box should be the whole page, got %g %g %g %g", x, y, w, hgt)
	}
	if err := r.SetVisibleRegion(h, 0, 5500, 227, 100); err != nil {
		t.Fatalf("set region: %v", err)
	}
	if diff := cmp.Diff(&[4]float64{0, 5500, 227, 100}, p.region); diff != "" {
		t.Fatalf("region mismatch (-want +got):\n%s", diff)
	}
	if err := r.SetVisibleRegion(h, 0, 0, 0, 10); err == nil {
		t.Fatalf("empty region should be rejected")
	}
}

func TestFitRaster(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 10))
	if got := fitRaster(src, 50, 50); got != image.Image(src) {
		t.Fatalf("matching aspect should reuse the source image")
	}
	got := fitRaster(src, 50, 25)
	if b := got.Bounds(); b.Dx() != 10 || b.Dy() != 5 {
		t.Fatalf("expected 10x5 raster, got %v", b)
	}
}

func TestLoadImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	r := NewRendererWithOptions(Options{Images: map[string][]byte{"logo": buf.Bytes()}})
	got, err := r.LoadImage("built-in:logo")
	if err != nil {
		t.Fatalf("load built-in image: %v", err)
	}
	if got.Bounds().Dx() != 3 || got.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", got.Bounds())
	}
	if _, err := r.LoadImage("builtin:nope"); err == nil {
		t.Fatalf("unknown built-in image should fail")
	}
	if _, err := r.LoadImage("logo.png"); err == nil {
		t.Fatalf("relative path without base dir should fail")
	}
}

// 用真实字体度量跑完整的排版与定稿流程。
func TestDocumentEndToEnd(t *testing.T) {
	r := NewRenderer("")
	cfg := layout.DefaultConfig()
	cfg.Meta = layout.DocumentMeta{Title: "Order 42", Creator: "quill"}
	doc, err := layout.NewDocument(cfg, r, r)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	if err := doc.PrintLineAs("COFFEE HOUSE", layout.RoleBold); err != nil {
		t.Fatal(err)
	}
	if err := doc.PrintLine(strings.Repeat("espresso ", 20)); err != nil {
		t.Fatal(err)
	}
	if err := doc.PrintImage(image.NewGray(image.Rect(0, 0, 20, 20)), 60, 60); err != nil {
		t.Fatal(err)
	}
	if err := doc.CutSignal(); err != nil {
		t.Fatal(err)
	}
	data, err := doc.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF output")
	}
	s := doc.Summary()
	if len(s.Pages) != 1 || s.Pages[0].VisibleHeight <= 0 {
		t.Fatalf("thermal receipt should be one cropped page: %+v", s.Pages)
	}
}

// 一行宽度恰好等于行宽且紧跟换行时，不应多出空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := NewRenderer("")
	widthOf := func(ch rune) float64 { return r.RuneWidth(ch, body) }
	first := "SAMPLE-A"
	limit := r.TextWidth(first, body)
	lines := layout.Wrap(first+"\nSAMPLE-B", widthOf, limit, false)
	if diff := cmp.Diff([]string{"SAMPLE-A", "SAMPLE-B"}, lines); diff != "" {
		t.Fatalf("unexpected lines (-want +got):\n%s", diff)
	}
}
