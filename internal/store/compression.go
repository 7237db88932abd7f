package store

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// skipExtensions are formats that are already compressed.
var skipExtensions = []string{
	".zip", ".gz", ".zst", ".xz", ".bz2",
	".png", ".jpg", ".jpeg", ".gif", ".webp",
	".mp3", ".mp4", ".avi", ".mkv",
	".pdf", ".docx", ".xlsx",
}

// compressionManager handles zstd packing of snapshot contents
type compressionManager struct {
	minSize int
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

func newCompressionManager(minSize int) (*compressionManager, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating decoder: %w", err)
	}

	return &compressionManager{
		minSize: minSize,
		enc:     enc,
		dec:     dec,
	}, nil
}

// shouldCompress determines if content should be compressed
func (cm *compressionManager) shouldCompress(name string, size int) bool {
	if size == 0 || size < cm.minSize {
		return false
	}

	ext := strings.ToLower(path.Ext(name))
	for _, skipExt := range skipExtensions {
		if ext == skipExt {
			return false
		}
	}

	return true
}

func (cm *compressionManager) compress(content []byte) []byte {
	return cm.enc.EncodeAll(content, make([]byte, 0, len(content)/2))
}

func (cm *compressionManager) decompress(content []byte) ([]byte, error) {
	if len(content) < len(zstdMagic) || !bytes.Equal(content[:len(zstdMagic)], zstdMagic) {
		return nil, fmt.Errorf("content is not zstd compressed")
	}
	out, err := cm.dec.DecodeAll(content, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing content: %w", err)
	}
	return out, nil
}

func (cm *compressionManager) close() {
	cm.enc.Close()
	cm.dec.Close()
}
