package crosswalk

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/edu-demography/county-cli/internal/model"
)

// crosswalkColumns defines the ordered output columns.
var crosswalkColumns = []string{
	"source_year",
	"source_gisjoin",
	"source_state_icpsr",
	"source_county_icpsr",
	"source_county_name",
	"source_state_name",
	"target_year",
	"target_gisjoin",
	"target_state_icpsr",
	"target_county_icpsr",
	"target_county_name",
	"target_state_name",
	"overlap_share",
}

// OutputName returns the conventional crosswalk file name for a year pair, so
// downstream linking code can find it without configuration.
func OutputName(sourceYear, targetYear int) string {
	return fmt.Sprintf("county_crosswalk_%d_to_%d.csv", sourceYear, targetYear)
}

// entryRow renders one entry with a fixed float format so identical inputs
// produce byte-identical files.
func entryRow(e *model.CrosswalkEntry) []string {
	return []string{
		strconv.Itoa(e.SourceYear),
		e.SourceGISJoin,
		e.SourceStateCode,
		e.SourceCountyCode,
		e.SourceName,
		e.SourceStateName,
		strconv.Itoa(e.TargetYear),
		e.TargetGISJoin,
		e.TargetStateCode,
		e.TargetCountyCode,
		e.TargetName,
		e.TargetStateName,
		strconv.FormatFloat(e.OverlapShare, 'f', 6, 64),
	}
}

// WriteCSV writes the crosswalk table to path. The file is written to a
// temporary name and renamed into place, so a failed run leaves no partial
// table behind.
func WriteCSV(entries []model.CrosswalkEntry, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".crosswalk-*")
	if err != nil {
		return eris.Wrap(err, "crosswalk export: create temp file")
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(crosswalkColumns); err != nil {
		return eris.Wrap(err, "crosswalk export: write header")
	}
	for i := range entries {
		if err := w.Write(entryRow(&entries[i])); err != nil {
			return eris.Wrap(err, "crosswalk export: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "crosswalk export: flush")
	}

	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "crosswalk export: close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrap(err, "crosswalk export: rename into place")
	}
	return nil
}

// WriteXLSX writes the crosswalk table as a single-sheet workbook for
// collaborators who review the mapping by hand.
func WriteXLSX(entries []model.CrosswalkEntry, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("crosswalk")
	if err != nil {
		return eris.Wrap(err, "crosswalk export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range crosswalkColumns {
		header.AddCell().Value = col
	}

	for i := range entries {
		row := sheet.AddRow()
		for _, v := range entryRow(&entries[i]) {
			row.AddCell().Value = v
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "crosswalk export: save workbook")
	}
	return nil
}
