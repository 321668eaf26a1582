package build

import (
	"context"
	"fmt"

	"github.com/PumbleCorp/invader/hek"
	"github.com/PumbleCorp/invader/internal/metrics"
	"github.com/PumbleCorp/invader/internal/obslog"
	"github.com/PumbleCorp/invader/resourcemap"
	"github.com/PumbleCorp/invader/tagio"
)

// CompiledTag is a tag that has passed through pre-compile: its payload
// is in engine layout, its references are resolved to tag ids where
// possible, and it owns whatever asset blobs (bitmap pixel data, sound
// samples, raw model geometry) must be appended to the final image.
type CompiledTag struct {
	Path    string
	Class   hek.TagClass
	ID      hek.TagID
	Indexed bool

	// ResourceIndex is the resource-map entry index once Indexed is true.
	ResourceIndex uint32

	Payload        []byte
	ReferenceSlots []uint32
	References     []hek.TagReference
	AssetBlobs     [][]byte
	AssetSlots     []uint32

	// VirtualAddress is assigned during layout (C7 step 1).
	VirtualAddress uint32
}

// Workload owns every compiled tag for one build, the global model
// vertex/index accumulators, optional resource maps, and accumulated
// diagnostics. It is created fresh by CompileMap and never reused across
// builds.
type Workload struct {
	Params Params
	loader *tagio.Loader
	log    obslog.Helper

	Tags          []*CompiledTag
	ScenarioIndex int
	CacheFileType hek.CacheFileType

	ModelVertices []byte
	ModelIndices  []byte
	modelDedup    map[uint64][]dedupCandidate

	resources map[resourcemap.Type]*resourcemap.Map
	bspIndex  []int // scenario-local BSP ordinal -> tag index

	IndexStats IndexStats

	sink reportSink
}

type dedupCandidate struct {
	start int
	data  []byte
}

// NewWorkload constructs an empty workload for params, ready for Resolve.
func NewWorkload(p Params, log obslog.Helper) *Workload {
	if log == nil {
		log = obslog.Discard()
	}
	return &Workload{
		Params:     p,
		loader:     tagio.NewLoader(p.TagRoots),
		log:        log,
		modelDedup: make(map[uint64][]dedupCandidate),
		resources:  make(map[resourcemap.Type]*resourcemap.Map),
	}
}

// CompileMap runs the full pipeline end to end: resolve, pre-compile,
// index, assemble, compress. It returns the finished cache file bytes,
// every non-fatal diagnostic collected along the way, and an error if a
// fatal diagnostic was raised or I/O failed. Each stage runs under its
// own span and timer; ctx carries cancellation and whatever tracer/baggage
// the caller has set up.
func CompileMap(ctx context.Context, p Params, log obslog.Helper) ([]byte, []Report, error) {
	w := NewWorkload(p, log)
	defer w.closeResources()

	if err := w.openResourceMapsIfNeeded(); err != nil {
		return nil, w.sink.reports, err
	}

	if err := stage(ctx, "resolve", func(context.Context) error { return w.Resolve() }); err != nil {
		return nil, w.sink.reports, err
	}
	metrics.TagsLoaded.Add(float64(len(w.Tags)))

	if err := stage(ctx, "precompile", func(context.Context) error { return w.PreCompileAll() }); err != nil {
		return nil, w.sink.reports, err
	}

	if err := stage(ctx, "fix_scenario_geometry", func(context.Context) error { return w.FixScenarioGeometry() }); err != nil {
		return nil, w.sink.reports, err
	}

	patched, broken := w.ResolveRelocations()
	w.log.Debugf("resolved %d tag references, %d broken", patched, broken)

	var stats IndexStats
	if err := stage(ctx, "index", func(context.Context) error {
		var indexErr error
		stats, indexErr = w.IndexResources()
		return indexErr
	}); err != nil {
		return nil, w.sink.reports, err
	}
	w.IndexStats = stats
	w.log.Infof("indexed %d tags (%d partial, %d potential, %d bytes freed)",
		stats.Indexed, stats.Partial, stats.Potential, stats.BytesFreed)
	metrics.TagsIndexed.WithLabelValues("full").Add(float64(stats.Indexed))
	metrics.TagsIndexed.WithLabelValues("partial").Add(float64(stats.Partial))
	metrics.TagsIndexed.WithLabelValues("potential").Add(float64(stats.Potential))

	var image []byte
	if err := stage(ctx, "assemble", func(context.Context) error {
		var assembleErr error
		image, assembleErr = w.Assemble()
		return assembleErr
	}); err != nil {
		return nil, w.sink.reports, err
	}
	metrics.CacheFileBytes.Observe(float64(len(image)))

	var out []byte
	if err := stage(ctx, "compress", func(context.Context) error {
		var compressErr error
		out, compressErr = w.Compress(image)
		return compressErr
	}); err != nil {
		return nil, w.sink.reports, err
	}

	return out, w.sink.reports, nil
}

func (w *Workload) openResourceMapsIfNeeded() error {
	if !w.Params.usesExternalResources() || w.Params.MapsDirectory == "" {
		return nil
	}
	for _, kind := range []struct {
		t    resourcemap.Type
		file string
	}{
		{resourcemap.TypeBitmaps, "bitmaps.map"},
		{resourcemap.TypeSounds, "sounds.map"},
		{resourcemap.TypeLoc, "loc.map"},
	} {
		path := fmt.Sprintf("%s/%s", w.Params.MapsDirectory, kind.file)
		m, err := resourcemap.Open(path, kind.t)
		if err != nil {
			w.sink.warn(KindResourceMapUnreadable, "", "%s: %v", path, err)
			continue
		}
		w.resources[kind.t] = m
	}
	return nil
}

func (w *Workload) closeResources() {
	for _, m := range w.resources {
		_ = m.Close()
	}
}

// tagIndex returns the compiled tag index for slot idx as allocated by
// the loader, growing Tags as needed so indices always line up with
// loader slots.
func (w *Workload) tagIndex(loaderIdx int) *CompiledTag {
	for len(w.Tags) <= loaderIdx {
		w.Tags = append(w.Tags, nil)
	}
	return w.Tags[loaderIdx]
}
