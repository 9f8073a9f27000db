package utils

import (
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// DetectContentType 按文件头嗅探 MIME 类型，不信任客户端声明
func DetectContentType(r io.Reader) (string, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	return mt.String(), nil
}
