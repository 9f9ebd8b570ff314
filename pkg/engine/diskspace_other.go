//go:build !windows

package engine

import "golang.org/x/sys/unix"

// freeSpace returns the number of bytes available to the current user on the
// filesystem containing path.
func freeSpace(path string) (int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return int64(st.Bavail) * int64(st.Bsize), nil
}
