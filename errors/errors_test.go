package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	base := stderrors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op only",
			err:  NewError("refresh", base),
			want: "fieldsync.refresh: boom",
		},
		{
			name: "bucket",
			err:  NewBucketError("refresh", "robot-raw", base),
			want: "fieldsync.refresh bucket robot-raw: boom",
		},
		{
			name: "bucket and key",
			err:  NewObjectError("download", "robot-raw", "a/b.bag", base),
			want: "fieldsync.download robot-raw/a/b.bag: boom",
		},
		{
			name: "key only",
			err:  NewError("scan", base).WithKey("a/b.bag"),
			want: "fieldsync.scan a/b.bag: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Same(t, base, stderrors.Unwrap(tt.err))
		})
	}
}

func TestClassifyS3(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "missing key",
			err:  stderrors.New("NoSuchKey: a/b.bag"),
			want: ErrObjectNotFound,
		},
		{
			name: "head not found",
			err:  stderrors.New("NotFound: a/b.bag"),
			want: ErrObjectNotFound,
		},
		{
			name: "missing bucket",
			err:  stderrors.New("NoSuchBucket: robot-raw"),
			want: ErrBucketNotFound,
		},
		{
			name: "denied",
			err:  stderrors.New("AccessDenied: robot-raw"),
			want: ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyS3(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), tt.err.Error())
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, ClassifyS3(nil))
	})

	t.Run("unrecognized passes through", func(t *testing.T) {
		err := stderrors.New("connection reset by peer")
		assert.Same(t, err, ClassifyS3(err))
	})
}

func TestSentinelHelpers(t *testing.T) {
	wrap := func(sentinel error) error {
		return NewObjectError("download", "robot-raw", "a/b.bag",
			fmt.Errorf("%w: detail", sentinel))
	}

	require.True(t, IsObjectNotFound(wrap(ErrObjectNotFound)))
	require.True(t, IsAccessDenied(wrap(ErrAccessDenied)))
	require.True(t, IsSizeMismatch(wrap(ErrSizeMismatch)))
	require.True(t, IsInvalidInput(wrap(ErrInvalidInput)))

	other := wrap(stderrors.New("unrelated"))
	assert.False(t, IsObjectNotFound(other))
	assert.False(t, IsAccessDenied(other))
	assert.False(t, IsSizeMismatch(other))
	assert.False(t, IsInvalidInput(other))
}
