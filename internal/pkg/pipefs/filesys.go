package pipefs

import (
	"io"
	"strings"
)

// FileSystem is the file backend used by text sources and sinks. It is
// abstracted so remote filesystems like S3 can back a pipeline the same way
// the local disk does.
type FileSystem interface {
	ListFiles(pathGlob string) ([]FileInfo, error)
	Stat(filePath string) (FileInfo, error)
	OpenReader(filePath string, startAt int64) (io.ReadCloser, error)
	OpenWriter(filePath string) (io.WriteCloser, error)
	Join(elem ...string) string
	Init() error
}

// FileInfo provides information about a file
type FileInfo struct {
	Name string // file path
	Size int64  // file size in bytes
}

// Infer selects and initializes a filesystem based on the path scheme:
// "s3://" paths get the S3 filesystem, everything else the local one.
func Infer(path string) (FileSystem, error) {
	var fs FileSystem
	if strings.HasPrefix(path, "s3://") {
		fs = &S3Filesystem{}
	} else {
		fs = &LocalFilesystem{}
	}

	if err := fs.Init(); err != nil {
		return nil, err
	}
	return fs, nil
}
