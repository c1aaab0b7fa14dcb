// Package xlsx loads UNGRD disaster-report spreadsheets into domain
// records.
package xlsx

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/madremonte/hotspot-data-etl/internal/domain"
)

// EventColumns names the spreadsheet columns an UNGRD export stores its
// fields under. EventType is optional; leave it empty when the export has
// no event-type column.
type EventColumns struct {
	Department   string
	Municipality string
	Date         string
	EventType    string
}

// DefaultEventColumns are the column headers UNGRD exports ship with.
func DefaultEventColumns() EventColumns {
	return EventColumns{
		Department:   "DEPARTAMENTO",
		Municipality: "MUNICIPIO",
		Date:         "FECHA",
		EventType:    "EVENTO",
	}
}

// LoadStats counts what ReadEvents saw.
type LoadStats struct {
	Rows      int
	NullDates int
}

// ReadEvents reads the first sheet of an UNGRD spreadsheet. The first row
// is the header; header names are trimmed before validation. Rows with
// unparseable dates are retained with a nil date and counted. Downstream
// matching treats them as unmatchable, but they are never dropped here.
func ReadEvents(path string, cols EventColumns) ([]domain.DisasterEvent, LoadStats, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, LoadStats{}, fmt.Errorf("read events %s: %w", path, err)
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open events %s: %w", path, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, LoadStats{}, fmt.Errorf("events %s: workbook has no sheets", path)
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, LoadStats{}, fmt.Errorf("events %s: sheet %s is empty", path, sheets[0])
	}

	idx, err := headerIndex(rows[0], cols)
	if err != nil {
		return nil, LoadStats{}, err
	}

	var stats LoadStats
	events := make([]domain.DisasterEvent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		e := domain.DisasterEvent{
			Department:   cell(row, idx.department),
			Municipality: cell(row, idx.municipality),
			EventType:    domain.Normalize(cell(row, idx.eventType)),
		}
		e.DepartmentKey = domain.Normalize(e.Department)
		e.MunicipalityKey = domain.Normalize(e.Municipality)
		e.EventDate = domain.ParseDayFirst(cell(row, idx.date))
		if e.EventDate == nil {
			stats.NullDates++
		}
		events = append(events, e)
	}
	stats.Rows = len(events)
	return events, stats, nil
}

type columnIndex struct {
	department   int
	municipality int
	date         int
	eventType    int
}

func headerIndex(header []string, cols EventColumns) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.TrimSpace(name)] = i
	}

	idx := columnIndex{eventType: -1}
	var missing []string
	lookup := func(name string) int {
		i, ok := pos[strings.TrimSpace(name)]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	idx.department = lookup(cols.Department)
	idx.municipality = lookup(cols.Municipality)
	idx.date = lookup(cols.Date)
	if cols.EventType != "" {
		if i, ok := pos[strings.TrimSpace(cols.EventType)]; ok {
			idx.eventType = i
		}
	}

	if len(missing) > 0 {
		return idx, &domain.MissingFieldError{Source: "UNGRD spreadsheet", Fields: missing}
	}
	return idx, nil
}

// cell returns a trimmed cell value, tolerating the ragged rows GetRows
// produces when trailing cells are empty.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
