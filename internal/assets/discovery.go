package assets

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// Kind selects the reader used for an asset
type Kind string

const (
	KindKeyValues Kind = "keyvalues"
	KindBSP       Kind = "bsp"
)

// Asset is a file found under an import root
type Asset struct {
	Path string // absolute or root-joined path
	Rel  string // slash-separated path relative to the root
	Kind Kind
	Size int64
}

// KindForFilename determines the reader from the file extension. Everything
// that is not a map is read as KeyValues text.
func KindForFilename(filename string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bsp":
		return KindBSP
	default:
		return KindKeyValues
	}
}

// Discover walks root and returns the files whose extension is listed,
// sorted by relative path
func Discover(root string, extensions []string) ([]Asset, error) {
	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var found []Asset
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !wanted[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}

		found = append(found, Asset{
			Path: path,
			Rel:  filepath.ToSlash(rel),
			Kind: KindForFilename(path),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Rel < found[j].Rel
	})

	slog.Debug("Discovered assets", "root", root, "count", len(found))
	return found, nil
}
