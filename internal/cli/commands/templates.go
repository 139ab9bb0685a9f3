package commands

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

//go:embed all:templates
var templateFS embed.FS

// copyTemplate copies an embedded template directory to the target path and
// returns the files written. Existing files are kept unless force is set.
func copyTemplate(templateName, targetDir string, force bool) ([]string, error) {
	root := path.Join("templates", templateName)
	var written []string

	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath := p[len(root):]
		if relPath == "" {
			return nil
		}
		targetPath := filepath.Join(targetDir, filepath.FromSlash(relPath[1:]))

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0750)
		}

		if !force {
			if _, err := os.Stat(targetPath); err == nil {
				return nil // Skip existing files
			}
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(targetPath, content, 0600); err != nil {
			return err
		}
		written = append(written, targetPath)
		return nil
	})

	return written, err
}
