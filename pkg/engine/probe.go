package engine

import "os"

// CheckSource verifies the source path exists as either a file or a
// directory. Errors wrap ErrSourceNotFound.
func CheckSource(path string) (os.FileInfo, error) {
	info, err := os.Stat(normalizePath(path))
	if err != nil {
		return nil, newSourceNotFoundError(path, err)
	}
	return info, nil
}

// ProbeWritable verifies the destination is creatable and writable before any
// copy work begins: it creates the directory (with parents) if absent, writes
// a small sentinel file and deletes it again. It runs before the first byte is
// transferred so permission or disk problems surface immediately instead of
// mid-copy.
func ProbeWritable(dest string) error {
	dest = normalizePath(dest)

	if err := os.MkdirAll(dest, 0755); err != nil {
		return newUnwritableError(dest, err)
	}

	probe, err := os.CreateTemp(dest, ".hauler-probe-*")
	if err != nil {
		return newUnwritableError(dest, err)
	}
	name := probe.Name()

	if _, err := probe.Write([]byte("hauler")); err != nil {
		probe.Close()
		os.Remove(name)
		return newUnwritableError(dest, err)
	}
	if err := probe.Close(); err != nil {
		os.Remove(name)
		return newUnwritableError(dest, err)
	}
	if err := os.Remove(name); err != nil {
		return newUnwritableError(dest, err)
	}
	return nil
}
