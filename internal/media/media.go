package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// ErrNotImage 表示内容不是可识别的图片。
var ErrNotImage = errors.New("content is not an image")

// EncodeDataURL 读取全部内容并返回 data URL，读取失败时返回错误。
func EncodeDataURL(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return DataURL(data), nil
}

// DataURL 将字节编码为 data URL，MIME 类型根据内容探测。
func DataURL(data []byte) string {
	mime := mimetype.Detect(data).String()
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURL 判断字符串是否为 data URL。
func IsDataURL(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "data:")
}

// DetectImage 返回图片的 MIME 类型与推荐扩展名；非图片返回 ErrNotImage。
func DetectImage(data []byte) (mime string, ext string, err error) {
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", "", ErrNotImage
	}
	return detected.String(), detected.Extension(), nil
}

// Dimensions 解析图片头部并返回宽高，支持 jpeg/png/gif/webp。
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
