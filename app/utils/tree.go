package utils

import (
	"os"
	"path/filepath"

	"github.com/xlab/treeprint"
)

// BuildTree renders dir as an ASCII tree, skipping noise directories.
func BuildTree(dir string, tree treeprint.Tree, skipDirs map[string]bool) (string, error) {
	if tree == nil {
		tree = treeprint.New()
		tree.SetValue(filepath.Base(dir))
	}
	if skipDirs == nil {
		skipDirs = map[string]bool{
			".git":      true,
			".idea":     true,
			".vscode":   true,
			"output":    true,
			"logs":      true,
			".DS_Store": true,
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if skipDirs[entry.Name()] {
				continue
			}
			branch := tree.AddBranch(entry.Name())
			_, err = BuildTree(filepath.Join(dir, entry.Name()), branch, skipDirs)
			if err != nil {
				return "", err
			}
		} else {
			tree.AddNode(entry.Name())
		}
	}
	return tree.String(), nil
}
