package utils

import (
	"encoding/base64"
	"errors"
	"mime"
	"net/url"
	"path"
	"strings"
)

// ErrInvalidDataURI data URIの形式が不正
var ErrInvalidDataURI = errors.New("invalid data URI")

// DataURI デコード済みのdata URI
type DataURI struct {
	ContentType string
	Data        []byte
}

// Extension Content-Typeに対応する拡張子（不明な場合は空文字）
func (d DataURI) Extension() string {
	switch d.ContentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	exts, err := mime.ExtensionsByType(d.ContentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

// IsDataURI data: で始まるか
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURI "data:image/png;base64,...." 形式をデコード
func DecodeDataURI(s string) (*DataURI, error) {
	if !IsDataURI(s) {
		return nil, ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, ErrInvalidDataURI
	}

	params := strings.Split(header, ";")
	contentType := params[0]
	if contentType == "" {
		contentType = "text/plain"
	}

	isBase64 := false
	for _, p := range params[1:] {
		if p == "base64" {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, ErrInvalidDataURI
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, ErrInvalidDataURI
		}
		data = []byte(unescaped)
	}

	return &DataURI{ContentType: contentType, Data: data}, nil
}

// CloudinaryPublicID 配信URLから public_id を取り出す。
// 例: https://res.cloudinary.com/demo/image/upload/v1712/avatars/abc.jpg -> avatars/abc
func CloudinaryPublicID(imageURL, folder string) string {
	if imageURL == "" {
		return ""
	}
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	id := strings.TrimSuffix(base, path.Ext(base))
	if folder != "" {
		return strings.Trim(folder, "/") + "/" + id
	}
	return id
}

// ObjectKeyFromURL S3互換ストレージのURLからオブジェクトキーを取り出す
func ObjectKeyFromURL(objectURL, baseURL, bucket string) string {
	if baseURL != "" && strings.HasPrefix(objectURL, baseURL) {
		return strings.TrimPrefix(strings.TrimPrefix(objectURL, baseURL), "/")
	}
	u, err := url.Parse(objectURL)
	if err != nil {
		return ""
	}
	key := strings.TrimPrefix(u.Path, "/")
	// パススタイル（endpoint/bucket/key）の場合はバケット名を除く
	if bucket != "" && strings.HasPrefix(key, bucket+"/") {
		key = strings.TrimPrefix(key, bucket+"/")
	}
	return key
}
