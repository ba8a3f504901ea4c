package domain

import (
	"fmt"
	"strings"
)

// reportBaseURL is the daily, start-of-period CSV endpoint of the NRCS report
// generator.
const reportBaseURL = "https://wcc.sc.egov.usda.gov/reportGenerator/view_csv/customSingleStationReport/daily/start_of_period"

// reportPeriod requests yesterday and today.
const reportPeriod = "-1,0"

// ReportColumns are the report generator elements requested for every
// station. The generator always prepends a Date column, so the CSV carries
// len(ReportColumns)+1 columns. Keep in lockstep with CanonicalColumns.
var ReportColumns = []string{
	"name",
	"stationId",
	"state.code",
	"network.code",
	"elevation",
	"latitude",
	"longitude",
	"county.name",
	"WTEQ::value",
	"WTEQ::pctOfMedian_1991",
	"SNWD::value",
	"TMAX::value",
	"TMIN::value",
	"TOBS::value",
	"SNDN::value",
}

// BuildReportURL formats the CSV report URL for a SNOTEL station. Values are
// substituted verbatim; an empty id produces a URL the server will reject.
func BuildReportURL(stationID StationID, stateCode string) string {
	return fmt.Sprintf(`%s/%s:%s:SNTL%%7Cid=""|name/%s/%s?fitToScreen=false`,
		reportBaseURL, stationID, stateCode, reportPeriod, strings.Join(ReportColumns, ","))
}
