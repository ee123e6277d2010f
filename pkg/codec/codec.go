// Package codec converts raw attachment payloads between textual and binary
// representations based on content type and the requested target format.
// Large payloads are processed in ordered chunks so a single attachment
// never has to be buffered twice in memory.
package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gsbingo17/tms-migrate/pkg/logger"
)

// Format is the target representation for converted content.
type Format string

// Supported target formats. The empty Format leaves content untouched.
const (
	FormatJSON     Format = "JSON"
	FormatXML      Format = "XML"
	FormatHTML     Format = "HTML"
	FormatMarkdown Format = "MARKDOWN"
)

// Options controls a single conversion.
type Options struct {
	Format             Format
	ExportImages       bool
	PreserveFormatting bool
}

// Default processing limits
const (
	DefaultChunkSize   = 4096
	DefaultMemoryLimit = 64 * 1024 * 1024 // 64 MB
)

// chunkFunc transforms one chunk. index is the zero-based chunk position
// inside the payload.
type chunkFunc func(chunk []byte, index int, opts Options) []byte

// Codec performs content-type-aware payload conversion.
type Codec struct {
	chunkSize   int
	memoryLimit int64
	log         *logger.Logger
}

// New creates a codec with the given limits, falling back to defaults for
// non-positive values.
func New(chunkSize int, memoryLimit int64, log *logger.Logger) *Codec {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if memoryLimit <= 0 {
		memoryLimit = DefaultMemoryLimit
	}
	return &Codec{
		chunkSize:   chunkSize,
		memoryLimit: memoryLimit,
		log:         log,
	}
}

// Convert transforms payload according to its content type and the selected
// format. The second return value reports whether the payload was processed:
// images are skipped entirely when ExportImages is off, and skipped payloads
// keep their original name and content type.
func (c *Codec) Convert(payload []byte, contentType string, opts Options) ([]byte, bool, error) {
	if int64(len(payload)) > c.memoryLimit {
		return nil, false, fmt.Errorf("payload of %d bytes exceeds memory limit of %d bytes", len(payload), c.memoryLimit)
	}

	switch {
	case strings.HasPrefix(contentType, "image/"):
		if !opts.ExportImages {
			c.log.Debugf("Skipping image payload (%d bytes): image export is disabled", len(payload))
			return payload, false, nil
		}
		return c.processChunks(payload, opts, c.imageChunk), true, nil

	case strings.HasPrefix(contentType, "text/"):
		return c.processChunks(payload, opts, textChunk), true, nil

	default:
		// application/pdf, application/zip and unrecognized types are
		// relocated byte-for-byte; this codec does not parse them.
		c.log.Debugf("Passing through %s payload (%d bytes)", contentType, len(payload))
		return payload, true, nil
	}
}

// processChunks runs fn over the payload in ordered chunks of chunkSize and
// concatenates the outputs. Chunks of one payload are strictly sequential:
// downstream consumers rely on the byte order of the concatenated result, so
// this loop must never be parallelized.
func (c *Codec) processChunks(payload []byte, opts Options, fn chunkFunc) []byte {
	if len(payload) <= c.chunkSize {
		return fn(payload, 0, opts)
	}

	var out bytes.Buffer
	index := 0
	for offset := 0; offset < len(payload); index++ {
		end := offset + c.chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		out.Write(fn(payload[offset:end], index, opts))
		offset = end
	}
	c.log.Debugf("Processed payload in %d chunks of up to %d bytes", index, c.chunkSize)
	return out.Bytes()
}

// imageChunk processes image payloads. Only the first chunk carries the
// header and undergoes format-specific handling; the remaining chunks pass
// through untouched to preserve the binary integrity of the image body.
func (c *Codec) imageChunk(chunk []byte, index int, _ Options) []byte {
	if index > 0 {
		return chunk
	}
	if kind := sniffImage(chunk); kind != "" {
		c.log.Debugf("Detected %s image header", kind)
	}
	return chunk
}

// textChunk applies the target-format wrapping to every chunk of a text
// payload.
func textChunk(chunk []byte, _ int, opts Options) []byte {
	switch opts.Format {
	case FormatXML:
		out := make([]byte, 0, len(chunk)+len("<content></content>"))
		out = append(out, "<content>"...)
		out = append(out, chunk...)
		return append(out, "</content>"...)
	case FormatHTML:
		out := make([]byte, 0, len(chunk)+len("<div></div>"))
		out = append(out, "<div>"...)
		out = append(out, chunk...)
		return append(out, "</div>"...)
	case FormatMarkdown:
		out := make([]byte, 0, len(chunk)+len("# Content\n\n"))
		out = append(out, "# Content\n\n"...)
		return append(out, chunk...)
	default:
		return chunk
	}
}

// sniffImage identifies common image headers by magic number.
func sniffImage(chunk []byte) string {
	switch {
	case len(chunk) >= 8 && bytes.HasPrefix(chunk, []byte("\x89PNG\r\n\x1a\n")):
		return "PNG"
	case len(chunk) >= 3 && bytes.HasPrefix(chunk, []byte("\xff\xd8\xff")):
		return "JPEG"
	case len(chunk) >= 6 && (bytes.HasPrefix(chunk, []byte("GIF87a")) || bytes.HasPrefix(chunk, []byte("GIF89a"))):
		return "GIF"
	}
	return ""
}
