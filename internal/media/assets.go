package media

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/ahmetk3436/companion/internal/apperr"
	"github.com/pkg/errors"
)

// Asset is a generated file persisted under the assets directory.
type Asset struct {
	Filename string
	Path     string // on disk
	URL      string // public, relative to the site root
	Size     int
}

// AssetStore writes generated media as {kind}_{32 hex chars}.{ext}. The hex
// part is 16 bytes from crypto/rand.
type AssetStore struct {
	dir    string
	prefix string
}

func NewAssetStore(dir, publicPrefix string) *AssetStore {
	return &AssetStore{dir: dir, prefix: publicPrefix}
}

func (s *AssetStore) Dir() string { return s.dir }

// EnsureDir creates the assets directory when it is missing.
func (s *AssetStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return apperr.Wrap(apperr.Filesystem, errors.Wrap(err, "create generated assets directory"))
	}
	return nil
}

// Save writes data and returns its public URL. The file is written under a
// temporary name and renamed into place, so the URL never refers to a partial
// file.
func (s *AssetStore) Save(kind, ext string, data []byte) (*Asset, error) {
	if err := s.EnsureDir(); err != nil {
		return nil, err
	}

	name, err := RandomFilename(kind, ext)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.dir, ".partial-*")
	if err != nil {
		return nil, apperr.Wrap(apperr.Filesystem, errors.Wrap(err, "create temp file"))
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpName)
		return nil, apperr.Wrap(apperr.Filesystem, errors.Wrap(werr, "write generated file"))
	}

	final := filepath.Join(s.dir, name)
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return nil, apperr.Wrap(apperr.Filesystem, errors.Wrap(err, "chmod generated file"))
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return nil, apperr.Wrap(apperr.Filesystem, errors.Wrap(err, "move generated file into place"))
	}

	return &Asset{
		Filename: name,
		Path:     final,
		URL:      path.Join(s.prefix, name),
		Size:     len(data),
	}, nil
}

// RandomFilename returns {kind}_{32 lowercase hex chars}.{ext}.
func RandomFilename(kind, ext string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "read random bytes")
	}
	return fmt.Sprintf("%s_%s.%s", kind, hex.EncodeToString(b), ext), nil
}
