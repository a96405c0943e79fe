package utils

import (
	"mime"
	"net/http"
	"path"
	"strings"
)

// ExtensionFromMime maps an image content type to a file extension without
// the leading dot. Unknown types return "".
func ExtensionFromMime(mimeType string) string {
	if mimeType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}

	switch strings.ToLower(mimeType) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	case "image/svg+xml":
		return "svg"
	case "image/heic":
		return "heic"
	case "image/heif":
		return "heif"
	default:
		return ""
	}
}

// UploadExtension 返回上传文件的扩展名（不含点）。优先使用原始文件名的扩展名，
// 没有时根据内容嗅探图片类型，仍无法识别则返回空串。
func UploadExtension(fileName string, data []byte) string {
	base := strings.TrimSpace(fileName)
	// 兼容 Windows 客户端提交的完整路径
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	if ext := strings.TrimPrefix(path.Ext(base), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if len(data) == 0 {
		return ""
	}
	return ExtensionFromMime(http.DetectContentType(data))
}
