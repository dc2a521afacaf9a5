package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func s3Object(key string, size int64) s3types.Object {
	return s3types.Object{Key: aws.String(key), Size: aws.Int64(size)}
}

// FakeStore is an in-memory multi-bucket object store backing a
// MockS3Client. It supports prefix-filtered paginated listing, reads,
// writes, and head requests, which is the full surface the sync core
// uses. Useful when a test needs real listing/transfer behavior rather
// than scripted responses.
type FakeStore struct {
	mu sync.Mutex

	// buckets maps bucket name to key to content
	buckets map[string]map[string][]byte

	// PageSize caps keys per ListObjectsV2 page; 0 means 1000
	PageSize int

	// ListErr fails listings for the named bucket when set
	ListErr map[string]error

	// GetErr fails reads of the named key when set
	GetErr map[string]error

	// PutErr fails writes of the named key when set
	PutErr map[string]error
}

// NewFakeStore creates an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		buckets: make(map[string]map[string][]byte),
		ListErr: make(map[string]error),
		GetErr:  make(map[string]error),
		PutErr:  make(map[string]error),
	}
}

// Put stores content under bucket/key, creating the bucket as needed.
func (s *FakeStore) Put(bucket, key string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string][]byte)
	}
	s.buckets[bucket][key] = content
}

// PutBytes stores a zero-filled object of the given size.
func (s *FakeStore) PutBytes(bucket, key string, size int64) {
	s.Put(bucket, key, make([]byte, size))
}

// Get returns the stored content and whether it exists.
func (s *FakeStore) Get(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.buckets[bucket][key]
	return content, ok
}

// Keys returns the sorted keys of a bucket.
func (s *FakeStore) Keys(bucket string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.buckets[bucket]))
	for k := range s.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Client returns a MockS3Client served by this store.
func (s *FakeStore) Client() *MockS3Client {
	return &MockS3Client{
		ListObjectsV2Func: s.listObjectsV2,
		GetObjectFunc:     s.getObject,
		PutObjectFunc:     s.putObject,
		HeadObjectFunc:    s.headObject,
	}
}

func (s *FakeStore) listObjectsV2(
	_ context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := aws.ToString(params.Bucket)
	if err := s.ListErr[bucket]; err != nil {
		return nil, err
	}

	prefix := aws.ToString(params.Prefix)
	var keys []string
	for k := range s.buckets[bucket] {
		if prefix == "" || len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	// Resume after the continuation token, which is the last key of the
	// previous page.
	if token := aws.ToString(params.ContinuationToken); token != "" {
		idx := sort.SearchStrings(keys, token)
		if idx < len(keys) && keys[idx] == token {
			idx++
		}
		keys = keys[idx:]
	}

	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	if params.MaxKeys != nil && int(*params.MaxKeys) < pageSize {
		pageSize = int(*params.MaxKeys)
	}

	truncated := len(keys) > pageSize
	if truncated {
		keys = keys[:pageSize]
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(truncated)}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3Object(k, int64(len(s.buckets[bucket][k]))))
	}
	if truncated {
		out.NextContinuationToken = aws.String(keys[len(keys)-1])
	}
	return out, nil
}

func (s *FakeStore) getObject(
	_ context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := aws.ToString(params.Key)
	if err := s.GetErr[key]; err != nil {
		return nil, err
	}
	content, ok := s.buckets[aws.ToString(params.Bucket)][key]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s", key)
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(content)),
		ContentLength: aws.Int64(int64(len(content))),
	}, nil
}

func (s *FakeStore) putObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	key := aws.ToString(params.Key)

	s.mu.Lock()
	err := s.PutErr[key]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	content, readErr := io.ReadAll(params.Body)
	if readErr != nil {
		return nil, readErr
	}
	s.Put(aws.ToString(params.Bucket), key, content)
	return &s3.PutObjectOutput{ETag: aws.String("fake-etag")}, nil
}

func (s *FakeStore) headObject(
	_ context.Context,
	params *s3.HeadObjectInput,
	_ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, ok := s.buckets[aws.ToString(params.Bucket)][aws.ToString(params.Key)]
	if !ok {
		return nil, fmt.Errorf("NotFound: %s", aws.ToString(params.Key))
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(content)))}, nil
}
