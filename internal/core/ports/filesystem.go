package ports

// FileSystem abstracts the file operations of the recipe flows.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// CopyFile copies the file name from srcDir into dstDir.
	// It reports false without error when the source does not exist.
	CopyFile(name, srcDir, dstDir string) (bool, error)

	// ExportSources copies the files of root matching patterns into dst and
	// returns their paths relative to root, sorted.
	ExportSources(root string, patterns []string, dst string) ([]string, error)

	// Exists reports whether path exists.
	Exists(path string) bool

	// RemoveAll deletes path and everything below it.
	RemoveAll(path string) error
}
