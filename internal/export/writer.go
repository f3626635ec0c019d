package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/matsu1213/ipcheck/internal/netblock"
)

// Document is the serialized result: every foreign CIDR in canonical
// "a.b.c.d/p" form under a single named array field.
type Document struct {
	Foreign []string `json:"foreign"`
}

// Render converts blocks into their canonical string form, ordered by
// ascending network address and then ascending prefix length. The caller's
// slice is not modified.
func Render(blocks []netblock.Block) []string {
	sorted := append([]netblock.Block(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Compare(sorted[j]) < 0
	})

	out := make([]string, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, b.String())
	}
	return out
}

// WriteFile serializes blocks as an indented JSON document and installs it at
// path via a temp file and rename, so readers never observe a partial file.
func WriteFile(path string, blocks []netblock.Block) error {
	doc := Document{Foreign: Render(blocks)}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("export: serialize document: %w", err)
	}

	if err := writeToFile(path, data); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

func writeToFile(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "foreign-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), destPath); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}

	return nil
}

// PrefixHistogram counts blocks per prefix length for the closing summary.
func PrefixHistogram(blocks []netblock.Block) map[uint8]int {
	hist := make(map[uint8]int)
	for _, b := range blocks {
		hist[b.PrefixLen()]++
	}
	return hist
}
