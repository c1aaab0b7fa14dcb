package geofile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// VersionedPath returns path unchanged when nothing exists there,
// otherwise the first free variant with a _v002, _v003, … suffix before
// the extension. Probing is a plain existence check per candidate; there
// is no locking, so concurrent writers to the same path can race.
func VersionedPath(path string) (string, error) {
	free, err := pathFree(path)
	if err != nil {
		return "", err
	}
	if free {
		return path, nil
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for v := 2; ; v++ {
		cand := fmt.Sprintf("%s_v%03d%s", base, v, ext)
		free, err := pathFree(cand)
		if err != nil {
			return "", err
		}
		if free {
			return cand, nil
		}
	}
}

func pathFree(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	return false, fmt.Errorf("probe %s: %w", path, err)
}

// WriteLayer persists a layer as GeoJSON with a named-CRS member. A layer
// without a CRS is rejected; coordinates with no declared reference system
// are not writable output. With version true the path is diverted to an
// unused versioned variant first. Returns the path actually written.
func WriteLayer(l *Layer, path string, version bool) (string, error) {
	if err := l.RequireCRS(); err != nil {
		return "", err
	}

	final := path
	if version {
		var err error
		final, err = VersionedPath(path)
		if err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	fc := fileCollection{Type: "FeatureCollection", CRS: &crsMember{Type: "name"}, Features: l.Features}
	fc.CRS.Properties.Name = l.CRS
	if fc.Features == nil {
		fc.Features = []*geojson.Feature{}
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		return "", fmt.Errorf("encode layer: %w", err)
	}
	if err := os.WriteFile(final, raw, 0o644); err != nil {
		return "", fmt.Errorf("write layer %s: %w", final, err)
	}
	return final, nil
}
