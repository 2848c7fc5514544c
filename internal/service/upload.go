package service

import (
	"bytes"
	"image"
	"strings"

	"PortfolioCMS/internal/model"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// ThumbnailSize максимальная сторона превью в пикселях.
const ThumbnailSize = 300

var documentMIMEs = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.ms-excel":                                                  {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.ms-powerpoint":                                             {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"application/vnd.oasis.opendocument.text":                                   {},
	"application/rtf":  {},
	"text/plain":       {},
	"text/csv":         {},
	"text/markdown":    {},
	"application/json": {},
}

// detectMIME определяет тип по содержимому, без параметров ("; charset=...").
func detectMIME(content []byte) string {
	m := mimetype.Detect(content).String()
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.TrimSpace(m)
}

// allowedMIME разрешённые к загрузке типы.
func allowedMIME(m string) bool {
	switch {
	case strings.HasPrefix(m, "image/"), strings.HasPrefix(m, "video/"), strings.HasPrefix(m, "audio/"):
		return true
	}
	_, ok := documentMIMEs[m]
	return ok
}

// classifyMIME сопоставляет MIME с типом медиа.
func classifyMIME(m string) string {
	switch {
	case strings.HasPrefix(m, "image/"):
		return model.MediaImage
	case strings.HasPrefix(m, "video/"):
		return model.MediaVideo
	case strings.HasPrefix(m, "audio/"):
		return model.MediaAudio
	}
	if _, ok := documentMIMEs[m]; ok {
		return model.MediaDocument
	}
	return model.MediaOther
}

// thumbnailable форматы, которые умеет декодировать imaging.
func thumbnailable(m string) bool {
	switch m {
	case "image/jpeg", "image/png", "image/gif", "image/bmp", "image/tiff":
		return true
	}
	return false
}

// makeThumbnail вписывает изображение в квадрат ThumbnailSize и кодирует в JPEG.
func makeThumbnail(content []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	var thumb image.Image = img
	b := img.Bounds()
	if b.Dx() > ThumbnailSize || b.Dy() > ThumbnailSize {
		thumb = imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
