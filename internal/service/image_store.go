package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// ArticleImageDir is where article images live inside the upload dir.
	ArticleImageDir = "blog/articulos/imagenes"
	// ContentImageDir holds images embedded in article bodies.
	ContentImageDir = "blog/articulos/contenido"

	// MaxImageBytes caps the size of an uploaded image file.
	MaxImageBytes = 8 << 20

	maxImageWidth  = 1200
	maxImagePixels = 40_000_000
	jpegQuality    = 85
)

var (
	ErrImageInvalid = errors.New("uploaded file is not a supported image")
	ErrImagePath    = errors.New("image path escapes the upload directory")
)

// ImageStore keeps uploaded images on the local filesystem.
type ImageStore struct {
	root      string
	urlPrefix string
	log       *zap.Logger
	now       func() time.Time
}

// NewImageStore creates a store rooted at dir, served under urlPrefix.
func NewImageStore(dir, urlPrefix string, log *zap.Logger) *ImageStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageStore{
		root:      dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		log:       log,
		now:       time.Now,
	}
}

// Save decodes src, downscales it to maxImageWidth, re-encodes it as JPEG and
// writes it under subdir. It returns the path relative to the upload dir.
// Files over MaxImageBytes or maxImagePixels are rejected before decoding.
func (s *ImageStore) Save(src io.Reader, subdir string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrImageInvalid, MaxImageBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageInvalid, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return "", fmt.Errorf("%w: %dx%d exceeds the pixel limit", ErrImageInvalid, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageInvalid, err)
	}

	bounds := img.Bounds()
	if w, h := bounds.Dx(), bounds.Dy(); w > maxImageWidth {
		newH := h * maxImageWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	name := fmt.Sprintf("%s-%s.jpg", s.now().Format("20060102"), uuid.New().String())
	rel := path.Join(strings.Trim(subdir, "/"), name)

	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(full, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return rel, nil
}

// Remove deletes the stored file. A missing file is not an error.
func (s *ImageStore) Remove(rel string) error {
	if strings.TrimSpace(rel) == "" {
		return nil
	}
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveQuietly is Remove with failures logged instead of returned.
func (s *ImageStore) RemoveQuietly(rel string) {
	if err := s.Remove(rel); err != nil {
		s.log.Warn("remove image failed", zap.String("path", rel), zap.Error(err))
	}
}

// Exists reports whether rel is present on disk.
func (s *ImageStore) Exists(rel string) bool {
	full, err := s.resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// URL returns the public URL of rel, or "" when rel is empty.
func (s *ImageStore) URL(rel string) string {
	if strings.TrimSpace(rel) == "" {
		return ""
	}
	return strings.TrimRight(s.urlPrefix, "/") + "/" + strings.TrimLeft(rel, "/")
}

func (s *ImageStore) resolve(rel string) (string, error) {
	cleaned := path.Clean("/" + filepath.ToSlash(rel))
	if cleaned == "/" {
		return "", ErrImagePath
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}
