package engine

import "os"

// ResumeOffset decides how many bytes of an existing destination file can be
// trusted as already correctly written:
//
//   - 0 when the destination is missing or empty
//   - the full source length when the destination is at least as long
//     (the file is treated as already present)
//   - the destination length otherwise (continue where the last run stopped)
//
// Any stat failure yields 0: re-copying from scratch is always safe, trusting
// a file we cannot inspect is not.
func ResumeOffset(srcFile, dstFile string) int64 {
	srcInfo, err := os.Stat(normalizePath(srcFile))
	if err != nil {
		return 0
	}
	dstInfo, err := os.Stat(normalizePath(dstFile))
	if err != nil {
		return 0
	}
	if dstInfo.Size() <= 0 {
		return 0
	}
	if dstInfo.Size() >= srcInfo.Size() {
		return srcInfo.Size()
	}
	return dstInfo.Size()
}
