// Package archive keeps a copy of every raw statement upload.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"spendwise/internal/ports"
)

const uploadTimeout = 2 * time.Minute

// GCS writes uploads to a Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	now    func() time.Time
	newID  func() string
}

var _ ports.Archiver = (*GCS)(nil)

// NewGCS uses Application Default Credentials unless opts say otherwise.
func NewGCS(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCS, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("missing bucket name")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{
		client: client,
		bucket: bucket,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}, nil
}

// Archive streams r to uploads/<user>/<yyyy-mm-dd>/<uuid>-<filename> and
// returns its gs:// URI.
func (g *GCS) Archive(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	name := objectName(userID, filename, g.now(), g.newID())

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "text/csv"
	// Statements are small; upload in a single request.
	w.ChunkSize = 0

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy upload to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	uri := fmt.Sprintf("gs://%s/%s", g.bucket, name)
	slog.InfoContext(ctx, "Archived raw upload", "user_id", userID, "location", uri)
	return uri, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

func objectName(userID, filename string, at time.Time, id string) string {
	return path.Join("uploads", cleanSegment(userID, "anonymous"), at.UTC().Format("2006-01-02"),
		id+"-"+cleanSegment(path.Base(strings.ReplaceAll(filename, "\\", "/")), "upload.csv"))
}

// cleanSegment keeps object names to one path segment of safe characters.
func cleanSegment(s, fallback string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return fallback
	}
	return out
}

// Noop discards uploads. Used when no bucket is configured.
type Noop struct{}

var _ ports.Archiver = Noop{}

func (Noop) Archive(context.Context, string, string, io.Reader) (string, error) {
	return "", nil
}
