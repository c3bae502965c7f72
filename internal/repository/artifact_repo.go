package repository

import (
	"context"
	"io"
)

// ArtifactStore persists the flat text artifacts of a job under a file name.
type ArtifactStore interface {
	Write(ctx context.Context, name string, content string) error
	Open(ctx context.Context, name string) (io.ReadSeekCloser, error)
}
