package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileInfo describes one file under the output tree.
type FileInfo struct {
	Path    string    `json:"path"` // relative to the output root
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// ListRecent walks the output tree and returns up to limit files,
// newest first. limit <= 0 returns everything.
func (s *Store) ListRecent(limit int) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			rel = path
		}
		files = append(files, FileInfo{Path: rel, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].ModTime.After(files[j].ModTime) })
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// Stats summarizes the output tree for status reporting.
type Stats struct {
	Days      int   `json:"days"`
	Files     int   `json:"files"`
	TotalSize int64 `json:"total_size"`
}

// Stats walks the tree and counts days, files and bytes.
func (s *Store) Stats() (Stats, error) {
	days, err := s.Days()
	if err != nil {
		return Stats{}, err
	}

	files, err := s.ListRecent(0)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Days: len(days), Files: len(files)}
	for _, f := range files {
		st.TotalSize += f.Size
	}
	return st, nil
}
