package keyspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/datatrails/go-datatrails-common/azblob"
)

// WriteCondition guards a blob write against racing writers.
//
// Creating writes must fail if the blob exists. Updating writes must fail
// unless the blob still has ETag.
type WriteCondition struct {
	ETag     string
	Creating bool
}

// BlobStore is the narrow storage interface the committer needs. Read returns
// an error wrapping ErrBlobNotFound if there is no blob at the path, and Write
// returns one wrapping ErrBlobConflict if the condition does not hold.
type BlobStore interface {
	Read(ctx context.Context, blobPath string) ([]byte, string, error)
	Write(ctx context.Context, blobPath string, data []byte, cond WriteCondition, tags map[string]string) (string, error)
}

// azblobStore is the subset of the go-datatrails-common azblob Storer used by
// AzureBlobStore.
type azblobStore interface {
	Put(ctx context.Context, identity string, source io.ReadSeekCloser, opts ...azblob.Option) (*azblob.WriteResponse, error)
	Reader(ctx context.Context, identity string, opts ...azblob.Option) (*azblob.ReaderResponse, error)
}

// AzureBlobStore adapts an azblob Storer to BlobStore.
type AzureBlobStore struct {
	Store azblobStore
}

func NewAzureBlobStore(store azblobStore) *AzureBlobStore {
	return &AzureBlobStore{Store: store}
}

func (s *AzureBlobStore) Read(ctx context.Context, blobPath string) ([]byte, string, error) {
	rr, err := s.Store.Reader(ctx, blobPath)
	if err != nil {
		if isBlobError(err, http.StatusNotFound, azblobBlobNotFound) {
			return nil, "", fmt.Errorf("%w: %s: %v", ErrBlobNotFound, blobPath, err)
		}
		return nil, "", err
	}
	defer rr.Reader.Close()

	data, err := io.ReadAll(rr.Reader)
	if err != nil {
		return nil, "", err
	}
	var etag string
	if rr.ETag != nil {
		etag = *rr.ETag
	}
	return data, etag, nil
}

func (s *AzureBlobStore) Write(
	ctx context.Context, blobPath string, data []byte, cond WriteCondition, tags map[string]string) (string, error) {

	opts := []azblob.Option{azblob.WithTags(tags)}
	if cond.Creating {
		// fail without modifying if the blob exists
		opts = append(opts, azblob.WithEtagNoneMatch("*"))
	} else {
		if cond.ETag == "" {
			return "", ErrEtagRequired
		}
		opts = append(opts, azblob.WithEtagMatch(cond.ETag))
	}

	wr, err := s.Store.Put(ctx, blobPath, azblob.NewBytesReaderCloser(data), opts...)
	if err != nil {
		if isBlobError(err, http.StatusConflict, azblobBlobAlreadyExists) ||
			isBlobError(err, http.StatusPreconditionFailed, azblobConditionNotMet) {
			return "", fmt.Errorf("%w: %s: %v", ErrBlobConflict, blobPath, err)
		}
		return "", err
	}
	var etag string
	if wr != nil && wr.ETag != nil {
		etag = *wr.ETag
	}
	return etag, nil
}

// MemoryBlobStore is a BlobStore held in memory. It enforces write conditions
// the same way the azure store does, which makes it suitable for tests and for
// single process use.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string]memoryBlob
	next  uint64
}

type memoryBlob struct {
	data []byte
	etag string
	tags map[string]string
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string]memoryBlob)}
}

func (m *MemoryBlobStore) Read(_ context.Context, blobPath string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[blobPath]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrBlobNotFound, blobPath)
	}
	return bytes.Clone(b.data), b.etag, nil
}

func (m *MemoryBlobStore) Write(
	_ context.Context, blobPath string, data []byte, cond WriteCondition, tags map[string]string) (string, error) {

	m.mu.Lock()
	defer m.mu.Unlock()
	b, exists := m.blobs[blobPath]
	switch {
	case cond.Creating && exists:
		return "", fmt.Errorf("%w: %s exists", ErrBlobConflict, blobPath)
	case !cond.Creating && cond.ETag == "":
		return "", ErrEtagRequired
	case !cond.Creating && (!exists || b.etag != cond.ETag):
		return "", fmt.Errorf("%w: %s etag %q", ErrBlobConflict, blobPath, cond.ETag)
	}

	m.next++
	etag := fmt.Sprintf("\"0x%016X\"", m.next)
	m.blobs[blobPath] = memoryBlob{data: bytes.Clone(data), etag: etag, tags: maps.Clone(tags)}
	return etag, nil
}

// Tags returns the tags last written with the blob.
func (m *MemoryBlobStore) Tags(blobPath string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.blobs[blobPath].tags)
}

const (
	azblobBlobNotFound      = "BlobNotFound"
	azblobBlobAlreadyExists = "BlobAlreadyExists"
	azblobConditionNotMet   = "ConditionNotMet"
)

// asStorageError unwraps the storage error carried by the azure sdk's
// InternalError.
func asStorageError(err error) (azStorageBlob.StorageError, bool) {
	serr := &azStorageBlob.StorageError{}
	var ierr *azStorageBlob.InternalError
	if !errors.As(err, &ierr) || ierr == nil {
		return azStorageBlob.StorageError{}, false
	}
	if !ierr.As(&serr) {
		return azStorageBlob.StorageError{}, false
	}
	return *serr, true
}

// isBlobError matches either the storage error code or, for sdk versions that
// report a plain response error, the http status.
func isBlobError(err error, status int, code string) bool {
	if serr, ok := asStorageError(err); ok {
		return string(serr.ErrorCode) == code
	}
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == status
}
