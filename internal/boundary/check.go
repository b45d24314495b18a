// Package boundary summarizes how county boundaries changed between two
// census years, built on the crosswalk overlap machinery.
package boundary

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/edu-demography/county-cli/internal/crosswalk"
	"github.com/edu-demography/county-cli/internal/model"
)

// Classification of a source-year county relative to the comparison year.
const (
	ClassUnchanged = "unchanged" // single target, share >= 0.99
	ClassSplit     = "split"     // two or more qualifying targets
	ClassModified  = "modified"  // single dominant target below 0.99
)

// unchangedShare is the best-overlap share above which a county is treated
// as geographically unchanged.
const unchangedShare = 0.99

// CountyChange describes one source-year county's relationship to the
// comparison year's boundaries.
type CountyChange struct {
	GISJoin     string
	StateCode   string
	CountyCode  string
	Name        string
	StateName   string
	BestShare   float64
	TargetCount int
	Class       string
}

// Summary aggregates boundary changes between two years.
type Summary struct {
	YearA, YearB  int
	Counties      int
	Unchanged     int
	Modified      int
	Split         int
	CoverageGaps  int
	Excluded      int
	MeanBestShare float64
	Changes       []CountyChange
}

// Check compares the yearA county set against yearB and classifies every
// yearA county as unchanged, modified, or split.
func Check(ctx context.Context, a, b []model.CountyPolygon, opts crosswalk.Options) (*Summary, error) {
	res, err := crosswalk.Build(ctx, a, b, opts)
	if err != nil {
		return nil, err
	}

	// Group entries by source county; Build emits them ordered by source,
	// best share first.
	bySource := make(map[string][]model.CrosswalkEntry, len(a))
	var order []string
	for _, e := range res.Entries {
		key := e.SourceStateCode + "-" + e.SourceCountyCode
		if _, seen := bySource[key]; !seen {
			order = append(order, key)
		}
		bySource[key] = append(bySource[key], e)
	}
	sort.Strings(order)

	s := &Summary{
		YearA:    opts.SourceYear,
		YearB:    opts.TargetYear,
		Counties: res.Stats.SourceCounties,
	}
	for _, w := range res.Warnings {
		if w.Kind == model.WarnCoverageGap {
			s.CoverageGaps++
		} else {
			s.Excluded++
		}
	}

	var shareSum float64
	for _, key := range order {
		entries := bySource[key]
		best := entries[0]
		change := CountyChange{
			GISJoin:     best.SourceGISJoin,
			StateCode:   best.SourceStateCode,
			CountyCode:  best.SourceCountyCode,
			Name:        best.SourceName,
			StateName:   best.SourceStateName,
			BestShare:   best.OverlapShare,
			TargetCount: len(entries),
		}
		switch {
		case len(entries) >= 2:
			change.Class = ClassSplit
			s.Split++
		case best.OverlapShare >= unchangedShare:
			change.Class = ClassUnchanged
			s.Unchanged++
		default:
			change.Class = ClassModified
			s.Modified++
		}
		shareSum += best.OverlapShare
		s.Changes = append(s.Changes, change)
	}
	if len(s.Changes) > 0 {
		s.MeanBestShare = shareSum / float64(len(s.Changes))
	}

	zap.L().Info("boundary change check complete",
		zap.Int("year_a", s.YearA),
		zap.Int("year_b", s.YearB),
		zap.Int("unchanged", s.Unchanged),
		zap.Int("modified", s.Modified),
		zap.Int("split", s.Split),
		zap.Int("coverage_gaps", s.CoverageGaps),
	)
	return s, nil
}
