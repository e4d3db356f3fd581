// Package minio persists the vector store to an S3-compatible bucket.
//
// The same two objects as the local backend (index.bin and metadata.json)
// are stored under a configurable key prefix, so a directory written by the
// local backend can be uploaded as-is and vice versa.
package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/codec"
	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// Object names under the prefix.
const (
	IndexObject    = "index.bin"
	MetadataObject = "metadata.json"
)

var errObjectNotFound = errors.New("object not found")

// objectStore is the subset of bucket operations the state store needs.
type objectStore interface {
	get(ctx context.Context, key string) ([]byte, error)
	put(ctx context.Context, key string, data []byte, contentType string) error
}

// StateStore keeps the index and metadata as two objects in a bucket.
type StateStore struct {
	objects     objectStore
	bucket      string
	prefix      string
	compression domain.Compression
}

// New connects to the endpoint described by settings and ensures the bucket exists.
func New(ctx context.Context, settings domain.SnapshotSettings, compression domain.Compression) (*StateStore, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: snapshot endpoint and bucket are required", domain.ErrInvalidInput)
	}

	client, err := minio.New(settings.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, ""),
		Secure: settings.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, settings.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", settings.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, settings.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", settings.Bucket, err)
		}
	}

	return newStateStore(&bucketObjects{client: client, bucket: settings.Bucket}, settings.Bucket, settings.Prefix, compression), nil
}

func newStateStore(objects objectStore, bucket, prefix string, compression domain.Compression) *StateStore {
	return &StateStore{
		objects:     objects,
		bucket:      bucket,
		prefix:      prefix,
		compression: compression,
	}
}

// Location returns the s3-style bucket path.
func (s *StateStore) Location() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

// Load reads both objects. It returns (nil, nil) when either is missing.
func (s *StateStore) Load(ctx context.Context) (*driven.PersistedState, error) {
	indexData, err := s.objects.get(ctx, s.key(IndexObject))
	if errors.Is(err, errObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", IndexObject, err)
	}

	metaData, err := s.objects.get(ctx, s.key(MetadataObject))
	if errors.Is(err, errObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", MetadataObject, err)
	}

	dim, vectors, err := codec.DecodeIndex(indexData)
	if err != nil {
		return nil, err
	}
	records, err := codec.DecodeMetadata(metaData)
	if err != nil {
		return nil, err
	}

	return &driven.PersistedState{Dimension: dim, Vectors: vectors, Records: records}, nil
}

// Save uploads the index first and the metadata second.
func (s *StateStore) Save(ctx context.Context, state *driven.PersistedState) error {
	indexData, err := codec.EncodeIndex(state.Dimension, state.Vectors, s.compression)
	if err != nil {
		return err
	}
	metaData, err := codec.EncodeMetadata(state.Records)
	if err != nil {
		return err
	}

	if err := s.objects.put(ctx, s.key(IndexObject), indexData, "application/octet-stream"); err != nil {
		return fmt.Errorf("put %s: %w", IndexObject, err)
	}
	if err := s.objects.put(ctx, s.key(MetadataObject), metaData, "application/json"); err != nil {
		return fmt.Errorf("put %s: %w", MetadataObject, err)
	}
	return nil
}

func (s *StateStore) key(name string) string {
	return path.Join(s.prefix, name)
}

// bucketObjects implements objectStore over a minio client.
type bucketObjects struct {
	client *minio.Client
	bucket string
}

func (b *bucketObjects) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, translate(err)
	}
	return data, nil
}

func (b *bucketObjects) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func translate(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NotFound" {
		return errObjectNotFound
	}
	return err
}
