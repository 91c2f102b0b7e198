package registry

import (
	"context"
	"fmt"
	"os"
)

// Source supplies the registry document text. The real ingestion collaborator
// (bucket download, scraper, PDF text extraction) lives outside the core; a
// file-backed source is enough to run the service against an exported
// document.
type Source interface {
	FetchDocument(ctx context.Context) (string, error)
}

// FileSource reads the registry document from local disk.
type FileSource struct {
	Path string
}

func (f FileSource) FetchDocument(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("read registry document %s: %w", f.Path, err)
	}
	return string(data), nil
}
