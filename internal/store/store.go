// Package store persists named JSON records over a pluggable backend.
package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"minigit/internal/config"
	"minigit/internal/logging"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Content encodings used by Contents.
const (
	EncodingText   = "text"
	EncodingBinary = "binary"
	EncodingZstd   = "zstd"
)

// Contents is the persisted form of a captured file body.
type Contents struct {
	Encoding string `json:"encoding"`
	Text     string `json:"contents,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

// Options configures Store behavior
type Options struct {
	Compress        bool // zstd-pack contents at or above CompressMinSize
	CompressMinSize int
	CacheSize       int // Number of raw records to cache
	Logger          *logging.Logger
}

// Store encodes and decodes named records. Writes are plain overwrites; there
// is no temp-file-and-rename step, so an interrupted save can leave a partial store.
type Store struct {
	backend Backend
	cache   *lru.Cache[string, []byte]
	codec   *compressionManager
	opts    Options
	logger  *logging.Logger
}

func New(backend Backend, opts Options) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	codec, err := newCompressionManager(opts.CompressMinSize)
	if err != nil {
		return nil, fmt.Errorf("creating compression: %w", err)
	}

	return &Store{
		backend: backend,
		cache:   cache,
		codec:   codec,
		opts:    opts,
		logger:  opts.Logger,
	}, nil
}

// Open builds the store rooted at dir using the configured backend.
// The badger backend lives in dir/db.
func Open(dir string, cfg *config.Config, logger *logging.Logger) (*Store, error) {
	var backend Backend
	switch cfg.Store.Backend {
	case config.BackendDir:
		backend = NewDirBackend(dir)
	case config.BackendBadger:
		b, err := OpenBadger(filepath.Join(dir, "db"))
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	s, err := New(backend, Options{
		Compress:        cfg.Store.Compress,
		CompressMinSize: cfg.Store.CompressMinSize,
		CacheSize:       cfg.Store.CacheSize,
		Logger:          logger,
	})
	if err != nil {
		backend.Close()
		return nil, err
	}
	return s, nil
}

// Encode writes v as the JSON record name, replacing any previous value.
func (s *Store) Encode(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}

	if err := s.backend.Put(name, data); err != nil {
		return err
	}
	s.cache.Add(name, data)

	s.logger.Debug("record written", zap.String("record", name), zap.Int("bytes", len(data)))
	return nil
}

// Decode reads the JSON record name into v.
func (s *Store) Decode(name string, v any) error {
	data, ok := s.cache.Get(name)
	if !ok {
		var err error
		data, err = s.backend.Get(name)
		if err != nil {
			return err
		}
		s.cache.Add(name, data)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", name, err)
	}
	return nil
}

func (s *Store) Exists(name string) (bool, error) {
	if s.cache.Contains(name) {
		return true, nil
	}
	return s.backend.Exists(name)
}

func (s *Store) List(prefix string) ([]string, error) {
	return s.backend.List(prefix)
}

// PackContents prepares a file body for a record named name.
func (s *Store) PackContents(name string, data []byte) Contents {
	if s.opts.Compress && s.codec.shouldCompress(name, len(data)) {
		return Contents{Encoding: EncodingZstd, Data: s.codec.compress(data)}
	}
	if utf8.Valid(data) {
		return Contents{Encoding: EncodingText, Text: string(data)}
	}
	return Contents{Encoding: EncodingBinary, Data: data}
}

// UnpackContents reverses PackContents. Compressed records are readable
// whether or not compression is currently enabled.
func (s *Store) UnpackContents(c Contents) ([]byte, error) {
	switch c.Encoding {
	case EncodingText, "":
		return []byte(c.Text), nil
	case EncodingBinary:
		if c.Data == nil {
			return []byte{}, nil
		}
		return c.Data, nil
	case EncodingZstd:
		return s.codec.decompress(c.Data)
	default:
		return nil, fmt.Errorf("unknown content encoding %q", c.Encoding)
	}
}

func (s *Store) Close() error {
	s.codec.close()
	return s.backend.Close()
}
