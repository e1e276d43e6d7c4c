package domain

// ArtifactType is the media type of packages pushed to an OCI registry.
const ArtifactType = "application/vnd.trai.kiln.package.v1"

// UploadTarget is the registry location a package is pushed to.
type UploadTarget struct {
	Registry   string
	Repository string
	PlainHTTP  bool
	Insecure   bool
}

// UploadResult describes a pushed package.
type UploadResult struct {
	Reference string
	Digest    string
}

// UploadTag returns the registry tag for a package binary: <version>-<package id>.
func UploadTag(record *PackageRecord) string {
	return record.Reference.Version + "-" + record.PackageID
}
