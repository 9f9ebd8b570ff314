//go:build !windows

package engine

// normalizePath is the identity on platforms without a path-length limit.
func normalizePath(path string) string {
	return path
}
