package naming

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
}

// MIMETypeForExtension returns the image MIME type for an accepted extension, defaulting to JPEG
func MIMETypeForExtension(ext string) string {
	if mimeType, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return mimeType
	}
	return "image/jpeg"
}

// EncodeBytes returns the standard base64 encoding of data
func EncodeBytes(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// EncodeFile reads a file and returns its base64 encoding
func EncodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return EncodeBytes(data), nil
}

// DataURL embeds an image in a data URL suitable for chat completion image parts
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + EncodeBytes(data)
}
