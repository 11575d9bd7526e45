package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xelth-com/poslabel/internal/label"
)

// BundleVersion is the backup format version written by this build.
const BundleVersion = 1

// ErrMalformedBundle is returned by ParseBundle for unusable backup files.
var ErrMalformedBundle = errors.New("malformed backup file")

// Bundle is a full backup of templates and settings.
type Bundle struct {
	Version   int                        `json:"version"`
	CreatedAt time.Time                  `json:"createdAt"`
	Templates []label.Template           `json:"templates"`
	Settings  map[string]json.RawMessage `json:"settings"`
}

// Snapshot copies every settings document in repo.
func Snapshot(ctx context.Context, repo Repository) (map[string]json.RawMessage, error) {
	keys, err := repo.Keys(ctx)
	if err != nil {
		return nil, err
	}
	docs := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		v, err := repo.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		docs[k] = v
	}
	return docs, nil
}

// RestoreSettings writes every document of a bundle back into repo.
func RestoreSettings(ctx context.Context, repo Repository, docs map[string]json.RawMessage) error {
	for k, v := range docs {
		if err := repo.Put(ctx, k, v); err != nil {
			return fmt.Errorf("restore %q: %w", k, err)
		}
	}
	return nil
}

// ParseBundle decodes and validates a backup file without touching any state.
func ParseBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBundle, err)
	}
	if b.Version < 1 || b.Version > BundleVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedBundle, b.Version)
	}
	for i := range b.Templates {
		if err := b.Templates[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: template %d: %v", ErrMalformedBundle, i, err)
		}
	}
	for k, v := range b.Settings {
		if !json.Valid(v) {
			return nil, fmt.Errorf("%w: settings %q", ErrMalformedBundle, k)
		}
	}
	return &b, nil
}
