package reconcile

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts is tried in order against the separator-normalized
// input. Non-padded reference values keep parsing lenient: "2-1-2006"
// accepts both "4-3-2020" and "04-03-2020".
var dateLayouts = []string{
	"2-1-2006",
	"2-1-06",
	"2006-1-2",
	"2-Jan-2006",
	"2-January-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan-2-2006",
	"January-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-06",
	"2-January-06",
	"2 Jan 06",
	"2 January 06",
}

// monthNames maps month-name substrings to their two-digit numbers for
// the manual scan. Abbreviations come first so they win over the full
// names they prefix.
var monthNames = []struct {
	name string
	num  string
}{
	{"jan", "01"}, {"feb", "02"}, {"mar", "03"}, {"apr", "04"},
	{"may", "05"}, {"jun", "06"}, {"jul", "07"}, {"aug", "08"},
	{"sep", "09"}, {"oct", "10"}, {"nov", "11"}, {"dec", "12"},
	{"january", "01"}, {"february", "02"}, {"march", "03"},
	{"april", "04"}, {"june", "06"}, {"july", "07"}, {"august", "08"},
	{"september", "09"}, {"october", "10"}, {"november", "11"},
	{"december", "12"},
}

// NormalizeDate converts raw to canonical YYYY.MM.DD form. It is a
// lossy best-effort normalizer: when neither the layout list nor the
// month-name scan can make sense of the input, the input comes back
// unchanged rather than as an error.
func NormalizeDate(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "/", "-")
	cleaned = strings.ReplaceAll(cleaned, ".", "-")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006.01.02")
		}
	}

	if out, ok := scanMonthName(cleaned); ok {
		return out
	}

	return raw
}

// scanMonthName handles shapes the layout list misses by locating a
// month-name substring and reading day and year positionally: after
// splitting on whitespace, hyphens, commas and slashes, the day is the
// first token and the year the third. Two-digit years at most 50 map
// to 20xx, the rest to 19xx.
func scanMonthName(cleaned string) (string, bool) {
	lowered := strings.ToLower(cleaned)
	for _, month := range monthNames {
		if !strings.Contains(lowered, month.name) {
			continue
		}

		replacer := strings.NewReplacer(",", " ", "-", " ", "/", " ")
		parts := strings.Fields(replacer.Replace(cleaned))
		if len(parts) < 3 {
			continue
		}

		day := parts[0]
		if len(day) < 2 {
			day = "0" + day
		}
		year := parts[2]
		if len(year) == 2 {
			n, err := strconv.Atoi(year)
			if err != nil {
				return "", false
			}
			if n <= 50 {
				year = "20" + year
			} else {
				year = "19" + year
			}
		}
		return year + "." + month.num + "." + day, true
	}
	return "", false
}
