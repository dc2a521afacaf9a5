package transfer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/nbarbarousis/fieldsync/errors"
	"github.com/nbarbarousis/fieldsync/internal/s3api"
)

// DefaultMultipartThreshold is the file size above which uploads go
// through the multipart upload manager.
const DefaultMultipartThreshold = 100 * 1024 * 1024

// Uploader is the multipart upload surface of the SDK's upload manager.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

var _ Uploader = (*manager.Uploader)(nil)

// Backend bundles the storage handles the strategies move bytes with.
type Backend struct {
	// S3 is the object store client
	S3 s3api.S3API

	// Uploader handles large uploads when set; small uploads and all
	// uploads without one go through a single PutObject
	Uploader Uploader

	// FS is the local filesystem
	FS fs.Filesystem

	// RawBucket holds raw recordings
	RawBucket string

	// MLBucket holds ML samples
	MLBucket string

	// MultipartThreshold is the upload size cutover; 0 means the default
	MultipartThreshold int64

	// Logger receives per-file transfer logs
	Logger *log.Logger
}

func (b *Backend) threshold() int64 {
	if b.MultipartThreshold > 0 {
		return b.MultipartThreshold
	}
	return DefaultMultipartThreshold
}

// downloadObject streams one object to a local file and verifies the
// written size. On any failure the partial local file is removed before
// returning.
func (b *Backend) downloadObject(ctx context.Context, bucket, key, localPath string, wantSize int64) (int64, error) {
	if err := b.FS.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return 0, errors.NewObjectError("download", bucket, key, err)
	}

	out, err := b.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, errors.NewObjectError("download", bucket, key, errors.ClassifyS3(err))
	}
	defer out.Body.Close()

	file, err := b.FS.Create(localPath)
	if err != nil {
		return 0, errors.NewObjectError("download", bucket, key, err)
	}

	_, copyErr := io.Copy(file, out.Body)
	closeErr := file.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		b.removePartial(localPath)
		return 0, errors.NewObjectError("download", bucket, key, copyErr)
	}

	info, err := b.FS.Stat(localPath)
	if err != nil {
		b.removePartial(localPath)
		return 0, errors.NewObjectError("download", bucket, key, err)
	}
	if info.Size() != wantSize {
		b.removePartial(localPath)
		return 0, errors.NewObjectError("download", bucket, key,
			fmt.Errorf("%w: wrote %d bytes, expected %d", errors.ErrSizeMismatch, info.Size(), wantSize))
	}

	return wantSize, nil
}

// uploadObject streams one local file to the object store and verifies
// the stored size. Files at or above the multipart threshold go through
// the upload manager when one is configured.
func (b *Backend) uploadObject(ctx context.Context, localPath, bucket, key string, wantSize int64) (int64, error) {
	file, err := b.FS.Open(localPath)
	if err != nil {
		return 0, errors.NewObjectError("upload", bucket, key, err)
	}

	contentType := b.detectContentType(file)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	}

	if b.Uploader != nil && wantSize >= b.threshold() {
		_, err = b.Uploader.Upload(ctx, input)
	} else {
		input.ContentLength = aws.Int64(wantSize)
		_, err = b.S3.PutObject(ctx, input)
	}
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, errors.NewObjectError("upload", bucket, key, errors.ClassifyS3(err))
	}

	head, err := b.S3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, errors.NewObjectError("upload", bucket, key, errors.ClassifyS3(err))
	}
	if head.ContentLength == nil || *head.ContentLength != wantSize {
		stored := int64(-1)
		if head.ContentLength != nil {
			stored = *head.ContentLength
		}
		return 0, errors.NewObjectError("upload", bucket, key,
			fmt.Errorf("%w: stored %d bytes, expected %d", errors.ErrSizeMismatch, stored, wantSize))
	}

	return wantSize, nil
}

// detectContentType sniffs the content type from the file's leading
// bytes and rewinds the reader. Detection failures fall back to
// octet-stream.
func (b *Backend) detectContentType(file fs.File) string {
	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectReader(file); err == nil {
		contentType = mt.String()
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		b.Logger.Warn("failed to rewind file after content type detection", "error", err)
	}
	return contentType
}

func (b *Backend) removePartial(localPath string) {
	if err := b.FS.Remove(localPath); err != nil {
		b.Logger.Warn("failed to remove partial file", "path", localPath, "error", err)
	}
}
