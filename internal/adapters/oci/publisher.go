// Package oci publishes cached packages as OCI artifacts.
package oci

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

// ConfigMediaType is the media type of the package record attached as manifest config.
const ConfigMediaType = "application/vnd.trai.kiln.package.config.v1+json"

// TargetFunc opens the destination repository of an upload.
type TargetFunc func(ctx context.Context, target domain.UploadTarget) (oras.Target, error)

// Publisher implements ports.Publisher with ORAS.
type Publisher struct {
	openTarget TargetFunc
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher creates a Publisher pushing to remote registries.
func NewPublisher() *Publisher {
	return &Publisher{openTarget: openRemote}
}

// NewPublisherWithTarget creates a Publisher pushing into the targets opened by fn.
func NewPublisherWithTarget(fn TargetFunc) *Publisher {
	return &Publisher{openTarget: fn}
}

// Push packs the package folder of record as a single gzip layer and copies it to target.
func (p *Publisher) Push(ctx context.Context, record *domain.PackageRecord, target domain.UploadTarget) (*domain.UploadResult, error) {
	tag := domain.UploadTag(record)
	host := stripProtocol(target.Registry)
	refString := host + "/" + target.Repository + ":" + tag

	if _, err := reference.ParseNormalizedNamed(refString); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrInvalidRegistryReference, err), "parse reference"),
			"reference", refString)
	}

	fail := func(err error, msg string) error {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrUploadFailed, err), msg), "reference", refString)
	}

	store, err := file.New(record.PackageFolder)
	if err != nil {
		return nil, fail(err, "create file store")
	}
	defer func() { _ = store.Close() }()

	store.TarReproducible = true

	layerDesc, err := store.Add(ctx, record.Reference.Name, ociv1.MediaTypeImageLayerGzip, record.PackageFolder)
	if err != nil {
		return nil, fail(err, "add package folder")
	}

	config, err := json.Marshal(record)
	if err != nil {
		return nil, fail(err, "marshal package record")
	}
	configDesc, err := oras.PushBytes(ctx, store, ConfigMediaType, config)
	if err != nil {
		return nil, fail(err, "push package record")
	}

	manifestDesc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, domain.ArtifactType, oras.PackManifestOptions{
		Layers:              []ociv1.Descriptor{layerDesc},
		ConfigDescriptor:    &configDesc,
		ManifestAnnotations: annotations(record),
	})
	if err != nil {
		return nil, fail(err, "pack manifest")
	}

	if err := store.Tag(ctx, manifestDesc, tag); err != nil {
		return nil, fail(err, "tag manifest")
	}

	dst, err := p.openTarget(ctx, domain.UploadTarget{
		Registry:   host,
		Repository: target.Repository,
		PlainHTTP:  target.PlainHTTP,
		Insecure:   target.Insecure,
	})
	if err != nil {
		return nil, fail(err, "open repository")
	}

	desc, err := oras.Copy(ctx, store, tag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, fail(err, "copy to registry")
	}

	return &domain.UploadResult{
		Reference: refString,
		Digest:    desc.Digest.String(),
	}, nil
}

// annotations describe the package; the creation time comes from the record
// so repeated uploads of one binary produce the same manifest. The title is
// left to the layer: the file store treats a title as a file name and the
// package folder is already stored under the package name.
func annotations(record *domain.PackageRecord) map[string]string {
	a := map[string]string{
		ociv1.AnnotationVersion: record.Reference.Version,
		ociv1.AnnotationCreated: record.CreatedAt.UTC().Format(time.RFC3339),
	}
	if record.Commit != "" {
		a[ociv1.AnnotationRevision] = record.Commit
	}
	if record.Description != "" {
		a[ociv1.AnnotationDescription] = record.Description
	}
	return a
}

func openRemote(_ context.Context, target domain.UploadTarget) (oras.Target, error) {
	repo, err := remote.NewRepository(target.Registry + "/" + target.Repository)
	if err != nil {
		return nil, err
	}
	repo.PlainHTTP = target.PlainHTTP
	repo.Client = newAuthClient(target.PlainHTTP, target.Insecure)
	return repo, nil
}

// stripProtocol removes an http:// or https:// prefix from a registry URL.
func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return strings.TrimSuffix(registry, "/")
}

// newAuthClient creates a client using Docker credentials, optionally skipping TLS verification.
func newAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
	}

	return &auth.Client{
		Client:     &http.Client{Transport: transport},
		Cache:      auth.NewCache(),
		Credential: credentials.Credential(credStore),
	}
}
