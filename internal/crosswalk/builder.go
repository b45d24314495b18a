// Package crosswalk computes area-overlap-based mappings between county sets
// from different census years.
package crosswalk

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/edu-demography/county-cli/internal/geometry"
	"github.com/edu-demography/county-cli/internal/model"
)

// shareEpsilon absorbs floating-point noise when comparing overlap shares
// against the threshold and against each other.
const shareEpsilon = 1e-9

// Options configures one crosswalk run.
type Options struct {
	SourceYear       int     // year whose counties are mapped from
	TargetYear       int     // year whose counties are mapped onto
	OverlapThreshold float64 // minimum overlap percentage in (0, 100]
	Workers          int     // parallel intersection workers; <=0 means NumCPU
}

// Validate checks years and threshold. Violations are ErrConfiguration.
func (o Options) Validate() error {
	if !model.ValidCensusYear(o.SourceYear) {
		return eris.Wrapf(model.ErrConfiguration, "crosswalk: source year %d not in %v", o.SourceYear, model.CensusYears)
	}
	if !model.ValidCensusYear(o.TargetYear) {
		return eris.Wrapf(model.ErrConfiguration, "crosswalk: target year %d not in %v", o.TargetYear, model.CensusYears)
	}
	if o.OverlapThreshold <= 0 || o.OverlapThreshold > 100 {
		return eris.Wrapf(model.ErrConfiguration, "crosswalk: overlap threshold %.2f outside (0, 100]", o.OverlapThreshold)
	}
	return nil
}

// Stats summarizes one run.
type Stats struct {
	SourceCounties   int
	TargetCounties   int
	CandidatePairs   int
	OverlapPairs     int
	FallbackCounties int
	ExcludedCounties int
	Duration         time.Duration
}

// Result is the full outcome of a run: the mapping table plus every county
// that had to be excluded and why.
type Result struct {
	Entries  []model.CrosswalkEntry
	Warnings []model.CountyWarning
	Stats    Stats
}

// overlap is one surviving candidate pair for a single source county.
type overlap struct {
	targetIdx int
	share     float64
}

// perSource holds one worker's output for one source county. Workers write
// disjoint slots, so the merge needs no synchronization.
type perSource struct {
	entries    []model.CrosswalkEntry
	warning    *model.CountyWarning
	candidates int
	overlaps   int
	fallback   bool
}

// Build maps every source-year county onto one or more target-year counties
// by spatial overlap share. Targets at or above the threshold are retained;
// a source county with no qualifying target keeps its single best-overlap
// target instead, so every source county with any overlap appears in the
// output. Output ordering is deterministic regardless of worker scheduling.
func Build(ctx context.Context, source, target []model.CountyPolygon, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(source) == 0 {
		return nil, eris.Wrap(model.ErrDataLoad, "crosswalk: empty source county set")
	}
	if len(target) == 0 {
		return nil, eris.Wrap(model.ErrDataLoad, "crosswalk: empty target county set")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	log := zap.L().With(
		zap.String("component", "crosswalk.builder"),
		zap.Int("source_year", opts.SourceYear),
		zap.Int("target_year", opts.TargetYear),
	)
	start := time.Now()

	// Prepare target geometries and build the spatial index once; both are
	// read-only for the rest of the run.
	var warnings []model.CountyWarning
	prepared := make([]preparedCounty, 0, len(target))
	for i := range target {
		p, err := geometry.Repair(geometry.ToPolyclip(target[i].Geometry))
		if err != nil {
			warnings = append(warnings, repairWarning(target[i], err))
			continue
		}
		prepared = append(prepared, preparedCounty{county: target[i], poly: p, area: geometry.Area(p)})
	}
	if len(prepared) == 0 {
		return nil, eris.Wrap(model.ErrDataLoad, "crosswalk: no usable target geometries")
	}

	index, err := buildIndex(prepared)
	if err != nil {
		return nil, err
	}

	// Fan out the intersection pass across source counties.
	results := make([]perSource, len(source))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range source {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = intersectOne(source[i], prepared, index, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "crosswalk: intersection pass")
	}

	// Merge partial results in source order, then sort deterministically.
	res := &Result{
		Stats: Stats{
			SourceCounties: len(source),
			TargetCounties: len(target),
		},
	}
	res.Warnings = warnings
	for i := range results {
		ps := &results[i]
		res.Stats.CandidatePairs += ps.candidates
		res.Stats.OverlapPairs += ps.overlaps
		if ps.fallback {
			res.Stats.FallbackCounties++
		}
		if ps.warning != nil {
			res.Warnings = append(res.Warnings, *ps.warning)
		}
		res.Entries = append(res.Entries, ps.entries...)
	}
	res.Stats.ExcludedCounties = len(res.Warnings)

	sort.Slice(res.Entries, func(a, b int) bool {
		ea, eb := &res.Entries[a], &res.Entries[b]
		if ea.SourceStateCode != eb.SourceStateCode {
			return ea.SourceStateCode < eb.SourceStateCode
		}
		if ea.SourceCountyCode != eb.SourceCountyCode {
			return ea.SourceCountyCode < eb.SourceCountyCode
		}
		if ea.OverlapShare != eb.OverlapShare {
			return ea.OverlapShare > eb.OverlapShare
		}
		if ea.TargetStateCode != eb.TargetStateCode {
			return ea.TargetStateCode < eb.TargetStateCode
		}
		return ea.TargetCountyCode < eb.TargetCountyCode
	})

	res.Stats.Duration = time.Since(start)
	log.Info("crosswalk built",
		zap.Int("entries", len(res.Entries)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int("fallback_counties", res.Stats.FallbackCounties),
		zap.Duration("duration", res.Stats.Duration),
	)
	return res, nil
}

// intersectOne computes the retained crosswalk rows for a single source
// county against the shared read-only target index.
func intersectOne(src model.CountyPolygon, targets []preparedCounty, index *rtreego.Rtree, opts Options) perSource {
	var ps perSource

	poly, err := geometry.Repair(geometry.ToPolyclip(src.Geometry))
	if err != nil {
		w := repairWarning(src, err)
		ps.warning = &w
		return ps
	}
	srcArea := geometry.Area(poly)
	if srcArea <= geometry.AreaTolerance {
		w := repairWarning(src, eris.New("zero area after repair"))
		ps.warning = &w
		return ps
	}

	rect, err := rectFor(poly)
	if err != nil {
		w := repairWarning(src, err)
		ps.warning = &w
		return ps
	}

	var overlaps []overlap
	for _, hit := range index.SearchIntersect(rect) {
		ps.candidates++
		tgt := &targets[hit.(*targetItem).idx]
		ia := geometry.IntersectionArea(poly, tgt.poly)
		if ia <= geometry.AreaTolerance {
			continue
		}
		share := ia / srcArea
		if share > 1 {
			share = 1
		}
		overlaps = append(overlaps, overlap{targetIdx: hit.(*targetItem).idx, share: share})
	}
	ps.overlaps = len(overlaps)

	if len(overlaps) == 0 {
		ps.warning = &model.CountyWarning{
			Kind:    model.WarnCoverageGap,
			Year:    src.Year,
			GISJoin: src.GISJoin,
			Name:    src.Name,
			Reason:  "no spatial overlap with any target-year county",
		}
		return ps
	}

	retained := retain(overlaps, targets, opts.OverlapThreshold/100)
	ps.fallback = len(retained) == 1 && retained[0].share < opts.OverlapThreshold/100-shareEpsilon

	// Deterministic per-county order: share descending, then target id.
	sort.Slice(retained, func(a, b int) bool {
		if retained[a].share != retained[b].share {
			return retained[a].share > retained[b].share
		}
		return targets[retained[a].targetIdx].county.Less(targets[retained[b].targetIdx].county)
	})

	for _, ov := range retained {
		ps.entries = append(ps.entries, newEntry(src, targets[ov.targetIdx].county, ov.share))
	}
	return ps
}

// retain keeps every overlap at or above the threshold. When none qualifies
// it keeps exactly the best overlap; an exact tie resolves to the target with
// the lexicographically smallest (state, county) code, so repeated runs agree
// across platforms.
func retain(overlaps []overlap, targets []preparedCounty, threshold float64) []overlap {
	var kept []overlap
	for _, ov := range overlaps {
		if ov.share >= threshold-shareEpsilon {
			kept = append(kept, ov)
		}
	}
	if len(kept) > 0 {
		return kept
	}

	best := overlaps[0]
	for _, ov := range overlaps[1:] {
		switch {
		case ov.share > best.share+shareEpsilon:
			best = ov
		case ov.share >= best.share-shareEpsilon &&
			targets[ov.targetIdx].county.Less(targets[best.targetIdx].county):
			best = ov
		}
	}
	return []overlap{best}
}

func newEntry(src, tgt model.CountyPolygon, share float64) model.CrosswalkEntry {
	return model.CrosswalkEntry{
		SourceYear:       src.Year,
		SourceGISJoin:    src.GISJoin,
		SourceStateCode:  src.StateCode,
		SourceCountyCode: src.CountyCode,
		SourceName:       src.Name,
		SourceStateName:  src.StateName,
		TargetYear:       tgt.Year,
		TargetGISJoin:    tgt.GISJoin,
		TargetStateCode:  tgt.StateCode,
		TargetCountyCode: tgt.CountyCode,
		TargetName:       tgt.Name,
		TargetStateName:  tgt.StateName,
		OverlapShare:     share,
	}
}

func repairWarning(c model.CountyPolygon, err error) model.CountyWarning {
	return model.CountyWarning{
		Kind:    model.WarnGeometryRepairFailure,
		Year:    c.Year,
		GISJoin: c.GISJoin,
		Name:    c.Name,
		Reason:  err.Error(),
	}
}
