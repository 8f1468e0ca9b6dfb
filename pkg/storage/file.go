package storage

import (
	"fmt"

	"github.com/bomt1me/paris/pkg/config"
)

// File is one upload job. Its destination bucket and object key are resolved
// from config by file type, so the same job description works against any
// engine.
type File struct {
	config   *config.Config
	filepath string
	filetype string
	filename string
}

func NewFile(conf *config.Config, filepath, filetype, filename string) *File {
	return &File{
		config:   conf,
		filepath: filepath,
		filetype: filetype,
		filename: filename,
	}
}

// Bucket is read from files.<filetype>.bucket.
func (f *File) Bucket() string {
	return f.config.Get(fmt.Sprintf("files.%s.bucket", f.filetype))
}

// Key prepends the files.<filetype>.key prefix when one is configured.
func (f *File) Key() string {
	prefix := f.config.Get(fmt.Sprintf("files.%s.key", f.filetype))
	if prefix != "" {
		return prefix + f.filename
	}
	return f.filename
}

func (f *File) Filepath() string {
	return f.filepath
}
