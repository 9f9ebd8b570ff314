package engine

import "strings"

// extendLongPath rewrites an absolute Windows path into its extended-length
// form so I/O calls are not limited to MAX_PATH (260) characters. Network
// paths get the \\?\UNC\ prefix, local drive paths get \\?\. Paths that are
// already extended, or not absolute, come back unchanged.
func extendLongPath(path string) string {
	if strings.HasPrefix(path, `\\?\`) {
		return path
	}
	if strings.HasPrefix(path, `\\`) {
		return `\\?\UNC\` + path[2:]
	}
	if len(path) >= 2 && path[1] == ':' {
		return `\\?\` + path
	}
	return path
}
