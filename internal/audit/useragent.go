package audit

import (
	"strings"

	"github.com/mssola/useragent"
)

// DescribeClient renders a User-Agent header as a short human-readable
// description for the audit trail, e.g. "Chrome on Mac OS X 10.15.7".
// Raw UA strings churn across minor versions; the parsed form stays
// readable in event listings.
func DescribeClient(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Client"
	}

	ua := useragent.New(raw)

	name, _ := ua.Browser()
	if name == "" {
		name = "Unknown Browser"
	}

	os := ua.OSInfo().FullName
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}

	return name + " on " + os
}
