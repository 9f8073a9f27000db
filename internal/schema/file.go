package schema

import (
	"strings"

	"github.com/spf13/cast"
)

const (
	// MaxFileSize 单张图片上限 5MB
	MaxFileSize int64 = 5 * 1024 * 1024
)

// AcceptedImageTypes 允许上传的图片 MIME 类型
var AcceptedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
}

// File 图片文件引用，只保留元数据，不持有文件内容
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// asFile 把各种形态的输入统一成 *File
// nil / 空 map / (*File)(nil) 一律视为缺省
func asFile(v any) (*File, bool) {
	switch f := v.(type) {
	case nil:
		return nil, true
	case *File:
		return f, true
	case File:
		return &f, true
	case map[string]any:
		if len(f) == 0 {
			return nil, true
		}
		size, err := cast.ToInt64E(f["size"])
		if err != nil {
			return nil, false
		}
		return &File{
			Name:        cast.ToString(f["name"]),
			Size:        size,
			ContentType: strings.ToLower(cast.ToString(f["content_type"])),
		}, true
	default:
		return nil, false
	}
}

func isAcceptedImageType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, t := range AcceptedImageTypes {
		if t == ct {
			return true
		}
	}
	return false
}
