// Package media stores uploaded product images in a bucket and returns their
// public URLs.
package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"storefront/internal/config"
	"storefront/internal/logging"
)

// MaxUploadBytes bounds a single image upload.
const MaxUploadBytes = 10 << 20

var (
	ErrNotConfigured   = errors.New("media storage is not configured")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image exceeds upload limit")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type Uploader interface {
	Upload(ctx context.Context, fileName string, r io.Reader) (string, error)
	Close() error
}

// writerFunc opens a writer for a new object.
type writerFunc func(ctx context.Context, object, contentType string) io.WriteCloser

// Bucket uploads into one storage bucket under a prefix.
type Bucket struct {
	name   string
	prefix string
	open   writerFunc
	close  func() error
	now    func() time.Time
	logger *zap.Logger
}

// NewGCS connects to Google Cloud Storage. Empty credentials fall back to the
// ambient application default credentials.
func NewGCS(ctx context.Context, cfg config.MediaConfig, logger *zap.Logger) (*Bucket, error) {
	if cfg.GCSBucket == "" {
		return nil, ErrNotConfigured
	}
	var opts []option.ClientOption
	if cfg.GCSCredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.GCSCredentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	bucket := client.Bucket(cfg.GCSBucket)
	open := func(ctx context.Context, object, contentType string) io.WriteCloser {
		w := bucket.Object(object).NewWriter(ctx)
		w.ContentType = contentType
		w.CacheControl = "public, max-age=31536000"
		return w
	}
	return newBucket(cfg.GCSBucket, open, client.Close, logger), nil
}

func newBucket(name string, open writerFunc, closeFn func() error, logger *zap.Logger) *Bucket {
	return &Bucket{
		name:   name,
		prefix: "products",
		open:   open,
		close:  closeFn,
		now:    time.Now,
		logger: logging.OrNop(logger).Named("media"),
	}
}

// Upload sniffs the image type, stores the object under a unique name and
// returns its public URL.
func (b *Bucket) Upload(ctx context.Context, fileName string, r io.Reader) (string, error) {
	br := bufio.NewReaderSize(io.LimitReader(r, MaxUploadBytes+1), 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head)
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	object := b.objectName(ext)
	w := b.open(ctx, object, contentType)
	n, err := io.Copy(w, br)
	if err != nil {
		w.Close()
		return "", fmt.Errorf("write %s: %w", object, err)
	}
	if n > MaxUploadBytes {
		w.Close()
		return "", ErrTooLarge
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", object, err)
	}

	url := PublicURL(b.name, object)
	b.logger.Info("image uploaded",
		zap.String("file", fileName),
		zap.String("object", object),
		zap.String("content_type", contentType),
		zap.Int64("bytes", n),
	)
	return url, nil
}

func (b *Bucket) objectName(ext string) string {
	return path.Join(b.prefix, fmt.Sprintf("%d-%s%s", b.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:12], ext))
}

func (b *Bucket) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// PublicURL is the storage.googleapis.com address of an object.
func PublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}

// Disabled rejects every upload. Used when no bucket is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Close() error { return nil }
