// Package compression wraps the codecs used for cached post payloads.
package compression

// Compressor is a symmetric byte codec. Implementations must be safe for
// concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}
