// Package model resolves, parses, and serves trained model artifacts.
// Artifacts are JSON parameter documents exported at training time: fitted
// classifier weights, scaler statistics, and encoder category tables.
package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "clinovia-inference/internal/common/errors"
	"clinovia-inference/internal/common/logger"
)

// Store resolves an artifact key (e.g. "alzheimer/diagnosis/basic/v1/model.json")
// to its raw bytes. A key that does not exist is ErrCodeArtifactNotFound.
type Store interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// LocalStore serves artifacts from a directory tree rooted at Root.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) Fetch(_ context.Context, key string) ([]byte, error) {
	path := filepath.Join(s.Root, filepath.FromSlash(key))
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NewArtifactNotFoundError(key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}
	return data, nil
}

// S3Store fetches artifacts from an S3 bucket and stages each download under
// a local directory, so restarts can be pointed at the staging tree when the
// bucket is unreachable.
type S3Store struct {
	client  *s3.Client
	bucket  string
	staging string
	logger  logger.Logger
}

func NewS3Store(client *s3.Client, bucket, stagingDir string, log logger.Logger) *S3Store {
	return &S3Store{client: client, bucket: bucket, staging: stagingDir, logger: log}
}

func (s *S3Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, apperrors.NewArtifactNotFoundError(key)
		}
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, key, err)
	}

	if s.staging != "" {
		s.stage(key, data)
	}
	return data, nil
}

func (s *S3Store) stage(key string, data []byte) {
	path := filepath.Join(s.staging, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		err = os.WriteFile(path, data, 0o644)
		if err == nil {
			return
		}
	}
	if s.logger != nil {
		s.logger.Warn("Failed to stage artifact locally", map[string]interface{}{
			"artifact_key": key,
			"staging_dir":  s.staging,
		})
	}
}
