package attachment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/internal/config"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

// Store decides where attachment content lives before an appointment is saved.
// Discard undoes a Normalize whose appointment was never saved.
type Store interface {
	Normalize(ctx context.Context, appointmentID string, files model.Attachments) (model.Attachments, error)
	Discard(ctx context.Context, appointmentID string, files model.Attachments)
}

// InlineStore keeps embedded content inside the appointment record.
type InlineStore struct{}

func (InlineStore) Normalize(_ context.Context, _ string, files model.Attachments) (model.Attachments, error) {
	if files == nil {
		return model.Attachments{}, nil
	}
	return files, nil
}

func (InlineStore) Discard(context.Context, string, model.Attachments) {}

type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioStore uploads embedded content to a bucket and replaces it with a
// reference to the stored object.
type MinioStore struct {
	client  objectStore
	bucket  string
	baseURL string
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewMinioStore(ctx context.Context, cfg config.MinioConfig, logger zerolog.Logger, m *metrics.Metrics) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info().Str("bucket", cfg.Bucket).Msg("created attachment bucket")
	}

	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = client.EndpointURL().String()
	}

	return newMinioStore(client, cfg.Bucket, baseURL, logger, m), nil
}

func newMinioStore(client objectStore, bucket, baseURL string, logger zerolog.Logger, m *metrics.Metrics) *MinioStore {
	return &MinioStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		metrics: m,
	}
}

func (s *MinioStore) Normalize(ctx context.Context, appointmentID string, files model.Attachments) (model.Attachments, error) {
	out := make(model.Attachments, 0, len(files))
	var uploaded []string
	for _, f := range files {
		if f.Kind != model.AttachmentEmbedded {
			out = append(out, f)
			continue
		}

		object := path.Join("appointments", appointmentID, uuid.NewString()+"-"+sanitize(f.Name))
		contentType := f.ContentType
		if contentType == "" {
			contentType = defaultContentType
		}

		_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(f.Data), int64(len(f.Data)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			s.count("failed", 0)
			s.remove(ctx, uploaded)
			return nil, fmt.Errorf("failed to upload %s: %w", f.Name, err)
		}
		uploaded = append(uploaded, object)
		s.count("uploaded", len(f.Data))
		s.logger.Debug().Str("object", object).Int("bytes", len(f.Data)).Msg("attachment uploaded")

		ref := model.Reference(f.Name, s.objectURL(object))
		ref.ContentType = contentType
		out = append(out, ref)
	}
	return out, nil
}

// Discard removes the objects Normalize uploaded for appointmentID. Other
// references are left alone.
func (s *MinioStore) Discard(ctx context.Context, appointmentID string, files model.Attachments) {
	prefix := s.objectURL(path.Join("appointments", appointmentID)) + "/"
	var objects []string
	for _, f := range files {
		if f.Kind == model.AttachmentReference && strings.HasPrefix(f.URL, prefix) {
			objects = append(objects, strings.TrimPrefix(f.URL, s.baseURL+"/"+s.bucket+"/"))
		}
	}
	s.remove(ctx, objects)
}

func (s *MinioStore) remove(ctx context.Context, objects []string) {
	for _, object := range objects {
		if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
			s.logger.Warn().Err(err).Str("object", object).Msg("failed to remove orphaned attachment")
			continue
		}
		s.count("discarded", 0)
	}
}

func (s *MinioStore) objectURL(object string) string {
	return s.baseURL + "/" + s.bucket + "/" + object
}

func (s *MinioStore) count(status string, n int) {
	if s.metrics == nil {
		return
	}
	s.metrics.AttachmentUploads.WithLabelValues(status).Inc()
	s.metrics.AttachmentBytes.Add(float64(n))
}

func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
