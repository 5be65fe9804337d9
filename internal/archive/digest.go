package archive

import (
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"
)

// Digest returns the sha256 digest of the file at path.
func Digest(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	d, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return d, nil
}
