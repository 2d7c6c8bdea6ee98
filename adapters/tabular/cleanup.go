package tabular

import (
	"regexp"
	"strings"
)

var (
	sampleFilePattern = regexp.MustCompile(`(?i)\.mzml|\.mzxml`)
	peakAreaSuffix    = " Peak area"
)

// IsSampleFileColumn reports whether a header names an mzML/mzXML file.
func IsSampleFileColumn(name string) bool {
	return sampleFilePattern.MatchString(name)
}

// CleanSampleName strips file extensions and the mzmine " Peak area" suffix.
func CleanSampleName(name string) string {
	name = sampleFilePattern.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, peakAreaSuffix, "")
	return strings.TrimSpace(name)
}

// CleanQuantTable keeps the sample file columns plus the columns in keep and
// normalizes the sample column names.
func CleanQuantTable(t *Table, keep ...string) *Table {
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}

	var columns []string
	for _, h := range t.Header {
		if kept[h] || IsSampleFileColumn(h) {
			columns = append(columns, h)
		}
	}
	selected, _ := t.Select(columns)
	return selected.Rename(func(h string) string {
		if kept[h] {
			return h
		}
		return CleanSampleName(h)
	})
}

// cleanAttribute normalizes a metadata value: trimmed, inner spaces as
// underscores, upper case.
func cleanAttribute(v string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v), " ", "_"))
}
