package plansync

// ProgressType indicates the kind of progress event.
type ProgressType int

const (
	// ProgressCatalogBuilt fires when a retailer's plan list has been enumerated.
	ProgressCatalogBuilt ProgressType = iota
	// ProgressRetailerDone fires when a retailer's downloads are finished.
	ProgressRetailerDone
	// ProgressRetailerFailed fires when a retailer is abandoned after an error.
	ProgressRetailerFailed
	// ProgressTick fires periodically while plans are being downloaded.
	ProgressTick
)

// ProgressEvent reports progress during a sync run.
type ProgressEvent struct {
	Type     ProgressType
	Brand    string
	Plans    int // catalog size for ProgressCatalogBuilt
	Index    int // 1-based retailer position
	Of       int // number of retailers
	Counters CounterSnapshot
	Err      error
}

// ProgressFunc is called as a run proceeds. It must not block.
type ProgressFunc func(ProgressEvent)
