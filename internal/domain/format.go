package domain

// Output formats for rendered tables and station listings.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f string) bool {
	switch f {
	case FormatTable, FormatCSV, FormatJSON:
		return true
	}
	return false
}
