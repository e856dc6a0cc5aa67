package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"palearn_backend/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider stores uploaded files and returns their public URL.
type StorageProvider interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
}

// NewStorageProvider selects the provider from configuration. Local
// disk is the default.
func NewStorageProvider(cfg config.StorageConfig) (StorageProvider, error) {
	if cfg.Type == "minio" {
		return newMinioStorage(cfg)
	}
	return &localStorage{basePath: cfg.LocalPath}, nil
}

type localStorage struct {
	basePath string
}

func (s *localStorage) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	path := filepath.Join(s.basePath, objectName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return "", err
	}
	return "/uploads/" + objectName, nil
}

type minioStorage struct {
	client *minio.Client
	config config.StorageConfig
}

func newMinioStorage(cfg config.StorageConfig) (*minioStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: true,
	})
	if err != nil {
		return nil, err
	}
	return &minioStorage{client: client, config: cfg}, nil
}

func (s *minioStorage) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.config.MinioBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s/%s/%s", s.config.MinioEndpoint, s.config.MinioBucket, objectName), nil
}
