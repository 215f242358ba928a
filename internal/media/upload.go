package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"backend-friendbook/internal/apperr"
)

const MaxUploadSize = 3_000_000

var allowedTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

type Upload struct {
	Filename string
	Mimetype string
	Data     []byte
}

// CheckFile validates the name and size of an uploaded image.
func CheckFile(filename string, size int64) (string, error) {
	mimetype, ok := allowedTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", apperr.BadRequestf("please upload an image (png, jpg or jpeg)")
	}
	if size > MaxUploadSize {
		return "", apperr.BadRequestf("file too large, the limit is %d bytes", MaxUploadSize)
	}
	return mimetype, nil
}

// FromFileHeader validates and reads a multipart file.
func FromFileHeader(fh *multipart.FileHeader) (Upload, error) {
	mimetype, err := CheckFile(fh.Filename, fh.Size)
	if err != nil {
		return Upload{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return Upload{}, apperr.BadRequestf("file too large, the limit is %d bytes", MaxUploadSize)
	}
	return Upload{Filename: fh.Filename, Mimetype: mimetype, Data: data}, nil
}
