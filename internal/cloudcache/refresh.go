package cloudcache

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nbarbarousis/fieldsync/errors"
	"github.com/nbarbarousis/fieldsync/paths"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

// listedObject is one object returned by a bucket scan.
type listedObject struct {
	key  string
	size int64
}

// scanBucket lists every object in a bucket, following pagination.
func (c *Cache) scanBucket(ctx context.Context, bucket string) ([]listedObject, error) {
	var objects []listedObject
	var continuationToken *string

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during bucket listing: %w", ctx.Err())
		default:
		}

		input := &s3.ListObjectsV2Input{
			Bucket:            &bucket,
			ContinuationToken: continuationToken,
			MaxKeys:           aws.Int32(1000), // AWS default and maximum
		}

		result, err := c.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in bucket %s: %w", bucket, errors.ClassifyS3(err))
		}

		for _, obj := range result.Contents {
			if obj.Key == nil {
				continue
			}
			var size int64
			if obj.Size != nil {
				size = *obj.Size
			}
			objects = append(objects, listedObject{key: *obj.Key, size: size})
		}

		if result.IsTruncated == nil || !*result.IsTruncated {
			break
		}
		continuationToken = result.NextContinuationToken
	}

	return objects, nil
}

// addRawObject folds one raw-bucket object into the snapshot. Keys that
// do not follow the bag convention are ignored.
func addRawObject(snap *Snapshot, key string, size int64) {
	parsed, ok := paths.ParseRawKey(key)
	if !ok {
		return
	}
	coordKey := parsed.Coordinate.String()
	entry, ok := snap.Raw[coordKey]
	if !ok {
		entry = &RawEntry{Bags: make(map[string]int64)}
		snap.Raw[coordKey] = entry
	}
	entry.Bags[parsed.BagName] = size
}

// addMLObject folds one ML-bucket object into the snapshot. Keys that
// do not follow the sample convention are ignored.
func addMLObject(snap *Snapshot, key string, size int64) {
	parsed, ok := paths.ParseMLKey(key)
	if !ok {
		return
	}
	coordKey := parsed.Coordinate.String()
	entry, ok := snap.ML[coordKey]
	if !ok {
		entry = &MLEntry{Bags: make(map[string]*BagListing)}
		snap.ML[coordKey] = entry
	}
	listing, ok := entry.Bags[parsed.BagName]
	if !ok {
		listing = &BagListing{
			Frames: make(map[string]int64),
			Labels: make(map[string]int64),
		}
		entry.Bags[parsed.BagName] = listing
	}
	switch parsed.FileType {
	case synctypes.FileTypeFrames:
		listing.Frames[parsed.Filename] = size
	case synctypes.FileTypeLabels:
		listing.Labels[parsed.Filename] = size
	}
}
