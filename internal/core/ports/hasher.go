package ports

// Hasher computes content hashes.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashFiles computes a single hash over the names and contents of files below root.
	HashFiles(root string, files []string) (string, error)
}
