// fs.go holds the helpers for discovering template files on disk.  The key
// export is CollectTemplates, which returns every file under a directory
// whose extension is in the allowed set, plus the registry name derived from
// its path.
package registry

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are used by RegisterDir when none are given.
var DefaultExtensions = []string{".html", ".hbs"}

// TemplateFile is one discovered source.
type TemplateFile struct {
	Name string // slash path relative to root, extension stripped
	Path string // path as passed to os.Stat / os.ReadFile
}

// CollectTemplates walks rootDir recursively and returns template files
// sorted by name.  Names use forward slashes on every OS, so
// "<root>/blog/post.html" is registered as "blog/post".
//
// When two files map to the same name (index.html and index.hbs) the first
// extension listed in exts wins.
func CollectTemplates(rootDir string, exts ...string) ([]TemplateFile, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	rank := make(map[string]int, len(exts))
	for i, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if _, dup := rank[e]; !dup {
			rank[e] = i
		}
	}

	type found struct {
		TemplateFile
		rank int
	}
	byName := map[string]found{}

	err := filepath.WalkDir(rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil { // propagate filesystem errors immediately
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		r, ok := rank[ext]
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(rootDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		name := strings.TrimSuffix(rel, path.Ext(rel))

		if prev, dup := byName[name]; dup && prev.rank <= r {
			return nil
		}
		byName[name] = found{TemplateFile{Name: name, Path: p}, r}
		return nil
	})
	if err != nil {
		return nil, err
	}

	files := make([]TemplateFile, 0, len(byName))
	for _, f := range byName {
		files = append(files, f.TemplateFile)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
