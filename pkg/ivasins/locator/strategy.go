package locator

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MotoresDirName is the directory name every search strategy looks for.
const MotoresDirName = "motores"

// Strategy is one way of finding the motores directory.
type Strategy interface {
	Name() string
	Find() (string, bool)
}

// OverrideStrategy uses an explicitly configured directory.
// The environment variable wins over Fallback; the result must be an existing directory.
type OverrideStrategy struct {
	Env      string
	Fallback string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func (s OverrideStrategy) Name() string { return "override" }

func (s OverrideStrategy) Find() (string, bool) {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	custom := ""
	if s.Env != "" {
		custom = strings.TrimSpace(getenv(s.Env))
	}
	if custom == "" {
		custom = strings.TrimSpace(s.Fallback)
	}
	if custom == "" {
		return "", false
	}
	abs, err := filepath.Abs(custom)
	if err != nil {
		return "", false
	}
	if !isDir(abs) {
		return "", false
	}
	return abs, true
}

// UpwardStrategy checks Root and its ancestors for a child named motores.
// Depth is the number of directories checked, Root included.
type UpwardStrategy struct {
	Root  string
	Depth int
}

func (s UpwardStrategy) Name() string { return "upward:" + s.Root }

func (s UpwardStrategy) Find() (string, bool) {
	if s.Root == "" {
		return "", false
	}
	dir := filepath.Clean(s.Root)
	for i := 0; i < s.Depth; i++ {
		candidate := filepath.Join(dir, MotoresDirName)
		if isDir(candidate) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// DownwardStrategy walks at most Depth levels below Root in lexical order and
// returns the first directory named motores, ignoring case.
type DownwardStrategy struct {
	Root  string
	Depth int
}

func (s DownwardStrategy) Name() string { return "downward:" + s.Root }

func (s DownwardStrategy) Find() (string, bool) {
	if s.Root == "" {
		return "", false
	}
	root := filepath.Clean(s.Root)
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.EqualFold(d.Name(), MotoresDirName) {
			found = path
			return fs.SkipAll
		}
		if depthBelow(root, path) >= s.Depth {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil || found == "" {
		return "", false
	}
	return found, true
}

// depthBelow returns how many path elements path lies below root.
func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
