package storage

import (
	"context"
	"errors"
	"mime"
	"path"
	"strings"
)

var errEmptyKey = errors.New("storage: empty object key")

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimSpace(ext)
	trimmed = strings.TrimPrefix(trimmed, ".")
	return sanitizePathSegment(trimmed)
}

// buildObjectPath 生成 dir/base.ext 形式的对象键，dir 中的每一级都会被清洗。
func buildObjectPath(dir, baseName, ext string) (string, error) {
	base := sanitizeFileBase(baseName)
	if base == "" {
		return "", errors.New("storage: missing file base name")
	}
	filename := base
	if normalized := normalizeExtension(ext); normalized != "" {
		filename = base + "." + normalized
	}

	segments := make([]string, 0, 4)
	for _, segment := range strings.Split(dir, "/") {
		if clean := sanitizePathSegment(segment); clean != "" {
			segments = append(segments, clean)
		}
	}
	segments = append(segments, filename)
	return path.Join(segments...), nil
}

// cleanKey rejects keys that would escape the storage root.
func cleanKey(key string) (string, error) {
	trimmed := strings.TrimLeft(strings.TrimSpace(key), "/")
	if trimmed == "" {
		return "", errEmptyKey
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid object key")
	}
	return cleaned, nil
}

func detectContentType(ext string) string {
	normalized := normalizeExtension(ext)
	if normalized == "" {
		return "application/octet-stream"
	}
	typeName := mime.TypeByExtension("." + normalized)
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func sanitizeFileBase(value string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(value), " ", "-")
	sanitized := sanitizePathSegment(replaced)
	return strings.Trim(sanitized, "-_")
}

// checkPayload 拒绝空数据和已取消的上下文
func checkPayload(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return errors.New("empty payload")
	}
	return ctx.Err()
}

// remoteObjectKey 生成带前缀的远端对象键
func remoteObjectKey(prefix string, opts SaveOptions) (string, error) {
	key, err := buildObjectPath(opts.Dir, opts.BaseName, opts.Extension)
	if err != nil {
		return "", err
	}
	return joinPrefix(prefix, key), nil
}

// remoteDeleteKey 接受 Save 返回的键，缺少前缀时补上
func remoteDeleteKey(prefix, key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if prefix != "" && !strings.HasPrefix(cleaned, prefix+"/") {
		cleaned = joinPrefix(prefix, cleaned)
	}
	return cleaned, nil
}
