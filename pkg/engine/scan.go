package engine

import (
	"os"
	"path/filepath"
)

// TotalSize sums the length of every file under root. Entries that cannot be
// stat'ed contribute zero; the scan itself never fails, so a single unreadable
// file cannot prevent a copy from starting. The total is therefore a
// best-effort estimate, not an exact promise.
func TotalSize(root string) int64 {
	var total int64
	filepath.Walk(normalizePath(root), func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

// InitialCopiedEstimate seeds the progress baseline for a resumed copy: for
// every source file with a same-relative-path counterpart at the destination
// it counts min(source length, destination length). Missing counterparts and
// stat failures count zero.
func InitialCopiedEstimate(srcRoot, dstRoot string) int64 {
	srcRoot = normalizePath(srcRoot)
	dstRoot = normalizePath(dstRoot)

	var copied int64
	filepath.Walk(srcRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return nil
		}
		dstInfo, err := os.Stat(filepath.Join(dstRoot, rel))
		if err != nil {
			return nil
		}
		if dstInfo.Size() < info.Size() {
			copied += dstInfo.Size()
		} else {
			copied += info.Size()
		}
		return nil
	})
	return copied
}
