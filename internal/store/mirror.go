package store

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
)

// PublishFunc receives every document written through a MirroredStore
type PublishFunc func(key Key, body []byte)

// MirroredStore writes to a primary store and copies every document to a
// public-read directory. 미러 실패는 경고만 남기고 쓰기를 실패시키지 않는다.
type MirroredStore struct {
	Store
	publicDir string
	hooks     []PublishFunc
	log       zerolog.Logger
}

// NewMirroredStore wraps primary; publicDir may be empty to disable the copy
func NewMirroredStore(primary Store, publicDir string, log zerolog.Logger) *MirroredStore {
	return &MirroredStore{
		Store:     primary,
		publicDir: publicDir,
		log:       log.With().Str("component", "store.mirror").Logger(),
	}
}

// OnPublish registers a hook called after each successful write
func (m *MirroredStore) OnPublish(fn PublishFunc) {
	m.hooks = append(m.hooks, fn)
}

// Put writes to the primary store, then mirrors and publishes
func (m *MirroredStore) Put(ctx context.Context, key Key, doc interface{}) error {
	if err := m.Store.Put(ctx, key, doc); err != nil {
		return err
	}

	body, err := Encode(doc)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key.Path()).Msg("mirror encode failed")
		return nil
	}

	if m.publicDir != "" {
		dst := filepath.Join(m.publicDir, filepath.FromSlash(key.Path()))
		if err := writeAtomic(dst, body); err != nil {
			m.log.Warn().Err(err).Str("path", dst).Msg("mirror write failed")
		} else {
			m.log.Debug().Str("path", dst).Msg("mirrored")
		}
	}

	for _, fn := range m.hooks {
		fn(key, body)
	}
	return nil
}
