package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/hupe1980/geoknn/blobstore"
	"github.com/hupe1980/geoknn/codec"
)

// ManifestName is the blob name of a dataset manifest relative to the dataset prefix.
const ManifestName = "_catalog.json"

// ManifestVersion is the current manifest layout version.
const ManifestVersion = 1

// Manifest is the persisted form of a dataset catalog.
type Manifest struct {
	Version   int       `json:"version"`
	Dataset   string    `json:"dataset"`
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
}

// BlobCatalog stores each dataset's entries as a manifest blob at
// "<dataset>/_catalog.json". The first line of the blob names the codec
// used for the rest, so manifests stay readable if the default codec changes.
type BlobCatalog struct {
	store blobstore.BlobStore
	codec codec.Codec
}

var _ Catalog = (*BlobCatalog)(nil)

// NewBlobCatalog creates a catalog in store. A nil codec selects codec.Default.
func NewBlobCatalog(store blobstore.BlobStore, c codec.Codec) *BlobCatalog {
	if c == nil {
		c = codec.Default
	}
	return &BlobCatalog{store: store, codec: c}
}

// ManifestPath returns the blob name of dataset's manifest.
func ManifestPath(dataset string) string {
	return path.Join(dataset, ManifestName)
}

// IsManifest reports whether a blob name refers to a manifest.
func IsManifest(name string) bool {
	return path.Base(name) == ManifestName
}

// Put writes the manifest for dataset.
func (c *BlobCatalog) Put(ctx context.Context, dataset string, entries []Entry) error {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })

	payload, err := c.codec.Marshal(Manifest{
		Version:   ManifestVersion,
		Dataset:   dataset,
		CreatedAt: time.Now().UTC(),
		Entries:   sorted,
	})
	if err != nil {
		return fmt.Errorf("catalog: encode manifest: %w", err)
	}

	buf := make([]byte, 0, len(c.codec.Name())+1+len(payload))
	buf = append(buf, c.codec.Name()...)
	buf = append(buf, '\n')
	buf = append(buf, payload...)

	if err := c.store.Put(ctx, ManifestPath(dataset), buf); err != nil {
		return fmt.Errorf("catalog: write manifest: %w", err)
	}
	return nil
}

// Get reads the manifest for dataset.
func (c *BlobCatalog) Get(ctx context.Context, dataset string) ([]Entry, error) {
	m, err := c.Manifest(ctx, dataset)
	if err != nil {
		return nil, err
	}
	return m.Entries, nil
}

// Manifest reads the full manifest for dataset.
func (c *BlobCatalog) Manifest(ctx context.Context, dataset string) (*Manifest, error) {
	b, err := c.store.Open(ctx, ManifestPath(dataset))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dataset)
		}
		return nil, fmt.Errorf("catalog: open manifest: %w", err)
	}
	defer b.Close()

	data, err := blobstore.ReadAll(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("catalog: read manifest: %w", err)
	}

	name, payload, ok := bytes.Cut(data, []byte{'\n'})
	if !ok {
		return nil, fmt.Errorf("catalog: manifest %s has no codec header", dataset)
	}
	dec, ok := codec.ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("catalog: manifest %s uses unknown codec %q", dataset, name)
	}

	var m Manifest
	if err := dec.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("catalog: decode manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("catalog: unsupported manifest version %d", m.Version)
	}
	return &m, nil
}
