package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IndexFootprint is the on-disk size of an index location.
type IndexFootprint struct {
	Bytes int64 `json:"bytes"`
	Files int   `json:"files"`
}

// MeasureIndex returns the size of the files under each path. A path may be a
// file or a directory; directories are walked recursively and only files with
// one of the given extensions are counted (all files when exts is empty).
// Missing paths contribute nothing.
func MeasureIndex(exts []string, paths ...string) (IndexFootprint, error) {
	var fp IndexFootprint
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return IndexFootprint{}, err
		}
		if !info.IsDir() {
			fp.Bytes += info.Size()
			fp.Files++
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !hasExt(path, exts) {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			fp.Bytes += fi.Size()
			fp.Files++
			return nil
		})
		if err != nil {
			return IndexFootprint{}, err
		}
	}
	return fp, nil
}

func hasExt(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range exts {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
