// Package seed installs the built-in character catalog.
package seed

import (
	"context"
	_ "embed"
	"log/slog"
	"os"

	"github.com/ahmetk3436/companion/internal/media"
	"github.com/ahmetk3436/companion/internal/store"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed characters.yaml
var defaultCatalog []byte

// Defaults returns the built-in catalog.
func Defaults() ([]store.CreateInput, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML list of characters in the create-input shape.
func Parse(data []byte) ([]store.CreateInput, error) {
	var inputs []store.CreateInput
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return nil, errors.Wrap(err, "parse seed catalog")
	}
	if len(inputs) == 0 {
		return nil, errors.New("seed catalog is empty")
	}
	return inputs, nil
}

// Load reads a catalog from path, or the built-in one when path is empty.
func Load(path string) ([]store.CreateInput, error) {
	if path == "" {
		return Defaults()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read seed catalog %s", path)
	}
	return Parse(data)
}

// Run makes sure the generated-assets directory exists, then replaces every
// stored character with inputs.
func Run(ctx context.Context, characters *store.CharacterStore, assets *media.AssetStore, inputs []store.CreateInput) error {
	if err := assets.EnsureDir(); err != nil {
		return err
	}

	slog.Info("Seeding characters", "count", len(inputs))
	if err := characters.Seed(ctx, inputs); err != nil {
		return err
	}
	for _, in := range inputs {
		slog.Debug("Created character", "name", in.Name)
	}
	return nil
}
