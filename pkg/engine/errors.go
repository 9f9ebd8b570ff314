package engine

import (
	"github.com/boostgo/errorx"
)

var (
	ErrSourceNotFound        = errorx.New("hauler.source.not_found")
	ErrDestinationUnwritable = errorx.New("hauler.dest.not_writable")

	ErrOpenSource      = errorx.New("hauler.copy.open_source")
	ErrOpenDestination = errorx.New("hauler.copy.open_dest")
	ErrStreamCopy      = errorx.New("hauler.copy.stream")
	ErrFallbackCopy    = errorx.New("hauler.copy.fallback")

	ErrCreateDirectory = errorx.New("hauler.dir.create")
	ErrWriteErrorLog   = errorx.New("hauler.errorlog.write")
)

type pathErrorContext struct {
	Path  string `json:"path"`
	Error error  `json:"error"`
}

type copyErrorContext struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Error       error  `json:"error"`
}

func newSourceNotFoundError(path string, err error) error {
	return ErrSourceNotFound.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		})
}

func newUnwritableError(path string, err error) error {
	return ErrDestinationUnwritable.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		})
}

func newOpenSourceError(path string, err error) error {
	return ErrOpenSource.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		})
}

func newOpenDestinationError(path string, err error) error {
	return ErrOpenDestination.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		})
}

func newStreamCopyError(source, destination string, err error) error {
	return ErrStreamCopy.
		SetError(err).
		SetData(copyErrorContext{
			Source:      source,
			Destination: destination,
			Error:       err,
		})
}

func newFallbackCopyError(source, destination string, err error) error {
	return ErrFallbackCopy.
		SetError(err).
		SetData(copyErrorContext{
			Source:      source,
			Destination: destination,
			Error:       err,
		})
}

func newCreateDirectoryError(path string, err error) error {
	return ErrCreateDirectory.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		})
}

func newWriteErrorLogError(path string, err error) error {
	return ErrWriteErrorLog.
		SetError(err).
		SetData(pathErrorContext{
			Path:  path,
			Error: err,
		})
}
