package utils

import (
	"errors"
	"io"
	"mime/multipart"
)

var ErrFileTooLarge = errors.New("file too large")

func ReadAllLimit(r io.Reader, max int64) ([]byte, error) {
	lr := io.LimitReader(r, max+1)
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, ErrFileTooLarge
	}
	return b, nil
}

// ReadFormFile reads an uploaded part without trusting its declared size.
func ReadFormFile(fh *multipart.FileHeader, max int64) ([]byte, error) {
	if fh.Size > max {
		return nil, ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAllLimit(f, max)
}
