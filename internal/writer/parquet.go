package writer

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
)

func resolveCodec(name string) (compress.Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snappy":
		return &parquet.Snappy, nil
	case "gzip":
		return &parquet.Gzip, nil
	case "brotli":
		return &parquet.Brotli, nil
	case "zstd":
		return &parquet.Zstd, nil
	case "none", "uncompressed":
		return &parquet.Uncompressed, nil
	default:
		return nil, fmt.Errorf("unsupported parquet compression %q", name)
	}
}

func writeParquet[T any](path string, rows []T, compression string) error {
	codec, err := resolveCodec(compression)
	if err != nil {
		return err
	}
	if err := parquet.WriteFile(path, rows, parquet.Compression(codec)); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}
