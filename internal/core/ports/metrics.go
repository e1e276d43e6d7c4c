package ports

import "time"

// Metrics records run statistics.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// ObserveStage records the duration and outcome of a flow stage.
	ObserveStage(flow, stage string, d time.Duration, err error)

	// PackageCreated counts a package added to the cache by kind ("built" or "imported").
	PackageCreated(kind string)

	// TestSkipped counts test stages skipped because the host cannot run the binaries.
	TestSkipped()

	// Flush writes collected metrics to their destination.
	Flush() error
}
