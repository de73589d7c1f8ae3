package emitter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Sidecar encodings
const (
	EncodingGzip = "gzip"
	EncodingZstd = "zstd"
	EncodingLZ4  = "lz4"
)

var sidecarSuffix = map[string]string{
	EncodingGzip: ".gz",
	EncodingZstd: ".zst",
	EncodingLZ4:  ".lz4",
}

// textExtensions are the asset extensions worth precompressing
var textExtensions = map[string]bool{
	"js": true, "mjs": true, "css": true, "html": true, "htm": true,
	"svg": true, "json": true, "map": true, "txt": true, "xml": true,
	"md": true, "csv": true, "wasm": true,
}

// zstd.Encoder is safe for concurrent use, so one instance serves every build.
var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		panic("emitter: zstd encoder initialization failed: " + err.Error())
	}
}

// compress attaches sidecars to the artifacts that qualify
func (e *Emitter) compress(artifacts []Artifact) error {
	if len(e.opts.Compress) == 0 {
		return nil
	}
	for i := range artifacts {
		a := &artifacts[i]
		if !e.wantsSidecar(a) {
			continue
		}
		for _, enc := range e.opts.Compress {
			data, err := Compress(enc, a.Content)
			if err != nil {
				return errors.Wrapf(err, errors.ErrInternal, "compress %s", a.OutputPath).
					WithDetail("encoding", enc)
			}
			a.Sidecars = append(a.Sidecars, Sidecar{
				Encoding:   enc,
				OutputPath: a.OutputPath + sidecarSuffix[enc],
				SizeBytes:  int64(len(data)),
				Content:    data,
			})
		}
	}
	return nil
}

func (e *Emitter) wantsSidecar(a *Artifact) bool {
	if len(a.Content) < e.opts.CompressMinSize {
		return false
	}
	if a.Kind == KindChunk {
		return true
	}
	dot := strings.LastIndex(a.OutputPath, ".")
	return dot >= 0 && textExtensions[strings.ToLower(a.OutputPath[dot+1:])]
}

// Compress encodes data with the named encoding
func Compress(encoding string, data []byte) ([]byte, error) {
	switch encoding {
	case EncodingGzip:
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		return finish(&buf, w, data)
	case EncodingZstd:
		return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case EncodingLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if err := w.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
			return nil, err
		}
		return finish(&buf, w, data)
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}

func finish(buf *bytes.Buffer, w io.WriteCloser, data []byte) ([]byte, error) {
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
