// Package storage archives audio recordings in an object storage bucket and
// builds the public-ish links the planner blocks point back to.
package storage

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	supabase "github.com/supabase-community/supabase-go"

	"vnotes/internal/errors"
)

// Uploader stores a recording's bytes under a key and is the only capability
// the pipeline needs from object storage.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader) error
}

// BucketClient uploads to a single configured bucket through the storage API.
type BucketClient struct {
	client *supabase.Client
	bucket string
}

// NewBucketClient builds a client for the configured project and bucket.
func NewBucketClient(projectURL, serviceKey, bucket string) (*BucketClient, error) {
	client, err := supabase.NewClient(projectURL, serviceKey, nil)
	if err != nil {
		return nil, errors.NewConfiguration(fmt.Sprintf("initialize storage client: %v", err))
	}
	return &BucketClient{client: client, bucket: bucket}, nil
}

// Upload stores the recording bytes under key in the configured bucket.
// Keys repeat across runs, so an "already exists" response from the service
// is treated as success: the audio bytes for a given key never change.
func (b *BucketClient) Upload(_ context.Context, key string, r io.Reader) error {
	if _, err := b.client.Storage.UploadFile(b.bucket, key, r); err != nil {
		if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "Duplicate") {
			return nil
		}
		return errors.NewUpload(key, err)
	}
	return nil
}

// AudioLink builds the deep link for an archived recording at a given offset.
// The prefix comes from configuration; the offset becomes a player seek
// parameter.
func AudioLink(prefix, key string, offsetSeconds float64) string {
	link := prefix
	if link != "" && !strings.HasSuffix(link, "/") {
		link += "/"
	}
	link += key
	if offsetSeconds > 0 {
		link += fmt.Sprintf("#t=%d", int(math.Floor(offsetSeconds)))
	}
	return link
}
