package item

import (
	"io"
	"os"

	"golang.org/x/crypto/blake2b"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// HashFile returns the blake2b-256 digest of the file at path, used as
// the merge key for identical-content File items (spec.md §4.2
// "Insertion"). blake2b is already part of the build's dependency
// surface for other content-addressing needs and is faster than SHA-256
// on typical build hosts without SIMD-accelerated SHA extensions.
func HashFile(path string) ([32]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [32]byte{}, cmerrors.ErrIOFailure.WithCause(err).WithMessagef("opening %s for hashing", path)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return [32]byte{}, cmerrors.ErrInternal.WithCause(err)
	}
	if _, err := io.Copy(h, f); err != nil {
		return [32]byte{}, cmerrors.ErrIOFailure.WithCause(err).WithMessagef("hashing %s", path)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}
