package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将文档汇总输出为 JSON，便于调试分页与裁剪结果。
func WriteDebugJSON(doc *Document, path string) error {
	if doc == nil {
		return nil
	}
	data, err := json.MarshalIndent(doc.Summary(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
