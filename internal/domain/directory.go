package domain

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DirectoryURL lists every SNOTEL station, grouped by state.
const DirectoryURL = "https://wcc.sc.egov.usda.gov/nwcc/yearcount?network=sntl&state=&counttype=statelist"

// directoryTableIndex selects the data table. The first table on the page is
// page chrome.
const directoryTableIndex = 1

// stationFieldCount is the number of positional cells bound to a StationRecord.
const stationFieldCount = 10

// ExtractStations parses the directory page and returns one StationRecord per
// <tr> of the second <table>, in document order. Cells are bound by position;
// a row without <td> cells (such as a <th> header row) yields an empty record.
func ExtractStations(html string) ([]StationRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse directory document: %w", ErrParse, err)
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		return nil, fmt.Errorf("%w: directory page has no table", ErrParse)
	}
	if tables.Length() <= directoryTableIndex {
		return nil, fmt.Errorf("%w: directory page has %d table(s), want at least %d",
			ErrParse, tables.Length(), directoryTableIndex+1)
	}

	rows := tables.Eq(directoryTableIndex).Find("tr")
	records := make([]StationRecord, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		records = append(records, recordFromRow(row))
	})
	return records, nil
}

func recordFromRow(row *goquery.Selection) StationRecord {
	var fields [stationFieldCount]string
	row.Find("td").EachWithBreak(func(i int, cell *goquery.Selection) bool {
		if i >= stationFieldCount {
			return false
		}
		fields[i] = cell.Text()
		return true
	})

	return StationRecord{
		Network:  fields[0],
		State:    fields[1],
		SiteName: fields[2],
		TS:       fields[3],
		Start:    fields[4],
		Lat:      fields[5],
		Lon:      fields[6],
		Elev:     fields[7],
		County:   fields[8],
		HUC:      fields[9],
	}
}
