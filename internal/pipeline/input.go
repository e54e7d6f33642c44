package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// DecodeInput returns data unchanged unless it is an xz stream, in which
// case it returns the decompressed bytes.
func DecodeInput(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, xzMagic) {
		return data, nil
	}
	xr, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xz stream: %w", err)
	}
	out, err := io.ReadAll(xr)
	if err != nil {
		return nil, fmt.Errorf("decompress xz: %w", err)
	}
	return out, nil
}

// ReadInput reads a filing from disk, decompressing .xz files.
func ReadInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeInput(data)
}

// InputName strips a compression suffix from a filename.
func InputName(name string) string {
	return strings.TrimSuffix(name, ".xz")
}
