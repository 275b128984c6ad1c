package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFinalizeThermalCropsEachPage(t *testing.T) {
	c, sink, m := newTestCursor(true)
	for i := 0; i < 11; i++ {
		if err := c.WriteLine("row", RoleDefault); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	res, err := Finalize(sink, c.Pages(), m)
	if err != nil {
		t.Fatalf("定稿失败: %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("期望 2 页，实际 %d", len(res.Pages))
	}
	for i, p := range res.Pages {
		want := p.WrittenHeight + m.LineHeight()
		if p.VisibleHeight != want {
			t.Fatalf("第 %d 页可见高度应为 %g，实际 %g", i+1, want, p.VisibleHeight)
		}
		region := sink.page(p.Handle).region
		if diff := cmp.Diff([]float64{0, m.ContentTop() - want, 200, want}, region); diff != "" {
			t.Fatalf("第 %d 页裁剪区域不符 (-want +got):\n%s", i+1, diff)
		}
	}
	if res.Pages[0].VisibleHeight != 90 || res.Pages[1].VisibleHeight != 40 {
		t.Fatalf("裁剪高度应为 90/40，实际 %+v", res.Pages)
	}
	if sink.calls["extractText"] != 0 {
		t.Fatalf("热敏纸不做空白页检查")
	}
}

func TestFinalizeCutSheetDropsBlankPages(t *testing.T) {
	c, sink, m := newTestCursor(false)
	for i := 0; i < 8; i++ {
		if err := c.WriteLine("row", RoleDefault); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.WriteCutSignal(); err != nil {
		t.Fatal(err)
	}
	if err := c.Skip(2); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if c.PageCount() != 3 {
		t.Fatalf("预期 3 页（内容、裁切线、换页后的空行），实际 %d", c.PageCount())
	}
	res, err := Finalize(sink, c.Pages(), m)
	if err != nil {
		t.Fatalf("定稿失败: %v", err)
	}
	if diff := cmp.Diff([][]PageHandle{{0, 1}}, sink.serialized); diff != "" {
		t.Fatalf("空白页应被丢弃 (-want +got):\n%s", diff)
	}
	if string(res.Data) != "PDF:0,1" {
		t.Fatalf("序列化结果不符: %s", res.Data)
	}
	for _, p := range sink.pages {
		if p.region != nil {
			t.Fatalf("单张纸不应设置裁剪区域")
		}
	}
}

func TestFinalizeKeepsOnePageWhenAllBlank(t *testing.T) {
	c, sink, m := newTestCursor(false)
	if err := c.Skip(9); err != nil {
		t.Fatal(err)
	}
	res, err := Finalize(sink, c.Pages(), m)
	if err != nil {
		t.Fatalf("定稿失败: %v", err)
	}
	if len(res.Pages) != 1 || res.Pages[0].Handle != 0 {
		t.Fatalf("全部空白时应保留第一页，实际 %+v", res.Pages)
	}
}

func TestFinalizeWrapsSinkErrors(t *testing.T) {
	c, sink, m := newTestCursor(false)
	if err := c.WriteLine("x", RoleDefault); err != nil {
		t.Fatal(err)
	}
	sink.failOp = "serialize"
	_, err := Finalize(sink, c.Pages(), m)
	var se *SinkError
	if !errors.Is(err, ErrSinkFailure) || !errors.As(err, &se) || se.Op != "serialize" {
		t.Fatalf("序列化失败应包装为 SinkError，实际 %v", err)
	}
}
