package domain

import (
	"fmt"
	"strings"
)

// StationRecord is one row of the NWCC station directory table. Fields are
// bound by cell position, not by header text.
type StationRecord struct {
	Network  string `json:"ntwk"`
	State    string `json:"state"`
	SiteName string `json:"site_name"` // e.g. "Berthoud Summit (335)"
	TS       string `json:"ts"`
	Start    string `json:"start"`
	Lat      string `json:"lat"`
	Lon      string `json:"lon"`
	Elev     string `json:"elev"`
	County   string `json:"county"`
	HUC      string `json:"huc"`
}

// StationID is the numeric station identifier embedded in a site name.
// It may be empty when the site name carries no digits.
type StationID string

// SelectStation returns the record at the zero-based index.
func SelectStation(records []StationRecord, index int) (StationRecord, error) {
	if index < 0 || index >= len(records) {
		return StationRecord{}, fmt.Errorf("%w: station index %d out of range [0, %d)", ErrIndex, index, len(records))
	}
	return records[index], nil
}

// DeriveStationID keeps only the ASCII decimal digits of the record's site
// name, in their original order.
func DeriveStationID(record StationRecord) StationID {
	return StationID(digitsOnly(record.SiteName))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
