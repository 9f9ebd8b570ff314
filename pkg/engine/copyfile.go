package engine

import (
	"context"
	"io"
	"os"
)

// copyFile copies one file's bytes from srcPath to dstPath, continuing at
// offset when a previous run left a trustable partial copy behind. It returns
// the number of bytes newly accounted for this file.
//
// Streaming failures are retried once as a whole-file copy: some destinations
// (removable and network filesystems mostly) reject the seek-and-append
// pattern that a plain copy accepts. Cancellation is never retried.
func (e *Engine) copyFile(ctx context.Context, srcPath, dstPath string, size, offset int64, em *progressEmitter) (int64, error) {
	srcPath = normalizePath(srcPath)
	dstPath = normalizePath(dstPath)

	written, err := e.streamCopy(ctx, srcPath, dstPath, size, offset, em)
	if err == nil {
		return written, nil
	}
	if ctx.Err() != nil {
		return written, ctx.Err()
	}

	if fbErr := wholeFileCopy(srcPath, dstPath); fbErr != nil {
		return written, newFallbackCopyError(srcPath, dstPath, fbErr)
	}
	// The fallback rewrote the file front to back, so the whole length is
	// accounted regardless of what streaming managed before it failed.
	em.Add(size)
	return size, nil
}

func (e *Engine) streamCopy(ctx context.Context, srcPath, dstPath string, size, offset int64, em *progressEmitter) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, newOpenSourceError(srcPath, err)
	}
	defer src.Close()

	var dst *os.File
	if offset > 0 {
		dstInfo, statErr := os.Stat(dstPath)
		if statErr != nil || dstInfo.Size() < offset {
			offset = 0
		} else {
			dst, err = os.OpenFile(dstPath, os.O_RDWR, 0644)
			if err != nil {
				return 0, newOpenDestinationError(dstPath, err)
			}
			if dstInfo.Size() > size {
				// A destination longer than its source cannot be a valid
				// partial copy. Discard it and start over.
				if err := dst.Truncate(0); err != nil {
					dst.Close()
					return 0, newOpenDestinationError(dstPath, err)
				}
				offset = 0
			}
		}
	}
	if dst == nil {
		dst, err = os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return 0, newOpenDestinationError(dstPath, err)
		}
	}
	defer dst.Close()

	if offset > 0 {
		if _, err := src.Seek(offset, io.SeekStart); err != nil {
			return 0, newStreamCopyError(srcPath, dstPath, err)
		}
		if _, err := dst.Seek(offset, io.SeekStart); err != nil {
			return 0, newStreamCopyError(srcPath, dstPath, err)
		}
	}

	buf := make([]byte, e.config.BufferSize)
	var written int64
	for {
		// Cancellation is observed between chunks, so cancel latency is
		// bounded by one buffered write.
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return written, newStreamCopyError(srcPath, dstPath, writeErr)
			}
			written += int64(n)
			em.Add(int64(n))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, newStreamCopyError(srcPath, dstPath, readErr)
		}
	}

	if err := dst.Sync(); err != nil {
		return written, newStreamCopyError(srcPath, dstPath, err)
	}
	return written, nil
}

// wholeFileCopy is the unconditional recovery primitive: open, io.Copy,
// overwrite, sync.
func wholeFileCopy(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
