package roblox

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// multipartFile builds a form with a single file field.
func multipartFile(field, path string) (body []byte, contentType string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// placeContentType picks the upload content type from the place file extension.
func placeContentType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rbxlx":
		return "application/xml", nil
	case ".rbxl":
		return "application/octet-stream", nil
	default:
		return "", fmt.Errorf("unsupported place file %s: expected .rbxl or .rbxlx", path)
	}
}
