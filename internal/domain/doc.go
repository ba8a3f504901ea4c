// Package domain models NRCS SNOTEL station directory and daily report data.
//
// # Data Sources
//
// The station directory is the NWCC "yearcount" page at [DirectoryURL]. It is
// an HTML page whose first <table> is layout chrome and whose second <table>
// lists one station per row. Daily observations come from the NRCS report
// generator, which serves a CSV for a single station when asked for the
// "view_csv" rendering (see [BuildReportURL]).
//
// # Directory Conventions
//
// Rows are read positionally. Cell order is fixed by the page:
//
//	0 ntwk       network code, "SNTL"
//	1 state      two-letter state code, "CO"
//	2 site_name  "Berthoud Summit (335)"
//	3 ts         timestamp
//	4 start      first year-month of record, "1978-October"
//	5 lat        latitude
//	6 lon        longitude
//	7 elev       elevation in feet
//	8 county     county name
//	9 huc        hydrologic unit code
//
// The header row uses <th> cells, so it extracts as an all-empty record and
// still counts toward station indexes. The station id is every digit of the
// site name taken in order ("Berthoud Summit (335)" → "335"). HUC and other
// numbers never appear in the site name cell.
//
// # Report Conventions
//
// The CSV opens with a preamble of lines starting with "#" describing the
// station and the requested elements, followed by a header line and one row
// per day. The requested range "-1,0" yields yesterday and today. Empty cells
// mean the sensor reported nothing for that day; they are kept empty in the
// canonical table and become nil measurements in [Observation].
//
// Header text depends on the requested elements, so [ReportColumns] and
// [CanonicalColumns] change together.
//
// # ID Generation
//
// Observation IDs are deterministic SHA-256 hashes of station_id|date. The
// report for a given day is fetched twice (as today, then as yesterday), and
// the shared ID lets downstream consumers upsert the later, corrected values.
package domain
