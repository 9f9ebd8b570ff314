//go:build windows

package engine

import "path/filepath"

// normalizePath rewrites absolute paths to the extended-length form so deep
// directory trees and long file names do not fail Win32 I/O calls.
func normalizePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	return extendLongPath(filepath.Clean(path))
}
