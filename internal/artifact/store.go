package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"print-pricing/internal/config"
	"print-pricing/internal/gcp"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ErrNotFound is returned by Get for a missing artifact.
var ErrNotFound = errors.New("artifact not found")

// Store persists crawl artifacts between the crawl and register runs.
type Store interface {
	Put(ctx context.Context, loc Location, body []byte) error
	Get(ctx context.Context, loc Location) ([]byte, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Close() error
}

// NewStore picks the store from configuration.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.ArtifactStore {
	case config.StoreGCS:
		return NewGCSStore(ctx, gcp.ClientOptions(cfg.GoogleCredentials)...)
	case config.StoreLocal:
		return NewLocalStore(cfg.ArtifactLocalDir), nil
	}
	return nil, fmt.Errorf("unknown artifact store %q", cfg.ArtifactStore)
}

// LocalStore keeps artifacts under <dir>/<bucket>/<key>.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) path(bucket, key string) (string, error) {
	clean := filepath.Clean(filepath.Join(s.dir, bucket, filepath.FromSlash(key)))
	root := filepath.Clean(s.dir)
	if clean != root && !strings.HasPrefix(clean, root+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact key %q escapes store root", key)
	}
	return clean, nil
}

func (s *LocalStore) Put(_ context.Context, loc Location, body []byte) error {
	p, err := s.path(loc.Bucket, loc.Key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (s *LocalStore) Get(_ context.Context, loc Location) ([]byte, error) {
	p, err := s.path(loc.Bucket, loc.Key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	return b, err
}

func (s *LocalStore) List(_ context.Context, bucket, prefix string) ([]string, error) {
	root, err := s.path(bucket, "")
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func (s *LocalStore) Close() error { return nil }

// GCSStore keeps artifacts in Cloud Storage.
type GCSStore struct {
	client *storage.Client
}

func NewGCSStore(ctx context.Context, opts ...option.ClientOption) (*GCSStore, error) {
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

func (s *GCSStore) Put(ctx context.Context, loc Location, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	w := s.client.Bucket(loc.Bucket).Object(loc.Key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, loc Location) ([]byte, error) {
	r, err := s.client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", loc, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

// Latest returns the newest artifact key for a product prefix under subdir.
func Latest(ctx context.Context, store Store, bucket, subdir, prefix string) (string, error) {
	keys, err := store.List(ctx, bucket, Key(subdir, prefix+"_"))
	if err != nil {
		return "", err
	}
	var best string
	var bestTime time.Time
	for _, k := range keys {
		ts, err := Timestamp(k)
		if err != nil {
			continue
		}
		if best == "" || ts.After(bestTime) {
			best, bestTime = k, ts
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: no artifact with prefix %s", ErrNotFound, prefix)
	}
	return best, nil
}
