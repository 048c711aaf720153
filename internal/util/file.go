package util

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const MaxImportBytes = 10 << 20

// ReadJSONUpload 读取上传的备份文件，只接受 .json 且不超过 MaxImportBytes
func ReadJSONUpload(fh *multipart.FileHeader) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(fh.Filename), ExportFileSuffix) {
		return nil, fmt.Errorf("%w: expected a .json file", ErrInvalidImport)
	}
	if fh.Size > MaxImportBytes {
		return nil, fmt.Errorf("%w: file too large", ErrInvalidImport)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLimited(f, MaxImportBytes)
}

// ReadLimited 读取至多 limit 字节，超出时报错
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrInvalidImport, limit)
	}
	return data, nil
}
