package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"travel-admin/metrics"
	"travel-admin/storage"
	"travel-admin/utils"
)

const (
	DefaultMaxUploadBytes = 5 << 20
	MsgNoFile             = "No file uploaded"
	MsgNotImage           = "File must be an image"

	sniffLen = 3072
)

type UploadService struct {
	store    storage.BlobStore
	maxBytes int64
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewUploadService(store storage.BlobStore, maxBytes int64, m *metrics.Metrics, log *slog.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if log == nil {
		log = slog.Default()
	}
	return &UploadService{store: store, maxBytes: maxBytes, metrics: m, log: log}
}

func (s *UploadService) MaxBytes() int64 { return s.maxBytes }

func (s *UploadService) TooLarge() *utils.AppError {
	return utils.BadRequest(fmt.Sprintf("File size must be less than %dMB", s.maxBytes>>20))
}

// Upload checks the declared type and size, confirms the content really is an
// image and stores it. It returns the public URL.
func (s *UploadService) Upload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", utils.BadRequest(MsgNoFile)
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return "", utils.BadRequest(MsgNotImage)
	}
	if fh.Size > s.maxBytes {
		return "", s.TooLarge()
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !strings.HasPrefix(detected.String(), "image/") {
		s.log.WarnContext(ctx, "rejected upload with non-image content",
			"filename", fh.Filename, "declared", fh.Header.Get("Content-Type"), "detected", detected.String())
		return "", utils.BadRequest(MsgNotImage)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	url, err := s.store.Put(ctx, storage.ObjectKey(fh.Filename), detected.String(), f, fh.Size)
	s.metrics.Upload(s.store.Backend(), err)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return url, nil
}
