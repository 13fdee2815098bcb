package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openkraft/encmend/internal/domain"
)

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".svn":         true,
	".idea":        true,
	"target":       true,
	"build":        true,
}

// FileScanner implements domain.FileScanner by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan returns every regular file under root whose extension matches ext
// (case-insensitive), in lexical walk order. Excluded paths may be
// directory names or absolute directory paths.
func (s *FileScanner) Scan(root, ext string, excludePaths ...string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRootNotFound, root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrRootNotFound, root)
	}

	// Merge extra excludes with built-in skip dirs.
	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		if p == "" {
			continue
		}
		if filepath.IsAbs(p) {
			extraSkip[filepath.Clean(p)] = true
			continue
		}
		extraSkip[strings.TrimSuffix(p, "/")] = true
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if skipDirs[d.Name()] || extraSkip[d.Name()] || extraSkip[path] {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return files, nil
}
