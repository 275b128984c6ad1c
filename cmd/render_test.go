package cmd

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/quill/config"
	canvasrenderer "github.com/ByLCY/quill/renderer/canvas"
)

const receiptScript = `receipt Coffee v1 {
  meta {
    title: "Order 1024"
  }
  settings {
    paper: thermal-58mm
    font-size: 9
  }
  body {
    text bold { "Hello, ${customer}" }
    line "="
    each items as item {
      text "${item}"
    }
    barcode "A-1024" code128
    cut
  }
}`

func newTestOptions(t *testing.T, data any) *renderOptions {
	t.Helper()
	base, err := config.Defaults().ToLayout()
	if err != nil {
		t.Fatal(err)
	}
	return &renderOptions{
		outDir:   filepath.Join(t.TempDir(), "out"),
		debugDir: filepath.Join(t.TempDir(), "debug"),
		data:     data,
		base:     base,
		dpmm:     8,
		fonts:    map[string]*canvasrenderer.FontCache{},
	}
}

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coffee.quill")
	if err := os.WriteFile(path, []byte(receiptScript), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderScriptWritesPDFAndDebug(t *testing.T) {
	data, err := loadData(`{"customer": "Ada", "items": ["Latte", "Scone"]}`)
	if err != nil {
		t.Fatalf("load data: %v", err)
	}
	opts := newTestOptions(t, data)
	out, summary, err := renderScript(writeScript(t), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if filepath.Base(out) != "coffee.pdf" {
		t.Fatalf("unexpected output path %s", out)
	}
	pdf, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) || summary.Bytes != len(pdf) {
		t.Fatalf("expected PDF output of %d bytes, got %d", summary.Bytes, len(pdf))
	}
	if len(summary.Pages) != 1 || summary.Pages[0].VisibleHeight <= 0 || !summary.Closed {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(opts.debugDir, "coffee.json")); err != nil {
		t.Fatalf("debug JSON missing: %v", err)
	}
}

func TestRenderScriptBase64(t *testing.T) {
	opts := newTestOptions(t, nil)
	opts.base64 = true
	out, _, err := renderScript(writeScript(t), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil || !bytes.HasPrefix(decoded, []byte("%PDF")) {
		t.Fatalf("expected base64 encoded PDF in %s (%v)", out, err)
	}
}

func TestLoadData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`{"total": 12.5}`), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := loadData("@" + path)
	if err != nil {
		t.Fatalf("load @file: %v", err)
	}
	if m, ok := data.(map[string]any); !ok || m["total"] != 12.5 {
		t.Fatalf("unexpected data %#v", data)
	}
	if data, err := loadData(""); err != nil || data != nil {
		t.Fatalf("empty data should be nil, got %#v %v", data, err)
	}
	if _, err := loadData("{broken"); err == nil {
		t.Fatalf("invalid JSON should fail")
	}
}

func TestRenderScriptReportsMissingFile(t *testing.T) {
	if _, _, err := renderScript(filepath.Join(t.TempDir(), "nope.quill"), newTestOptions(t, nil)); err == nil {
		t.Fatalf("missing script should fail")
	}
}
