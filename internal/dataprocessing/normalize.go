package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// nonNumericRe strips currency markers and labels, keeping only the
	// characters that can carry numeric meaning in Indonesian budget cells.
	nonNumericRe = regexp.MustCompile(`[^\d.,\-]`)

	// trailingDecimalRe matches a dot followed by one to three digits at the
	// end of the string. Combined with a single-dot check it separates a
	// decimal point ("105.66") from thousands grouping ("1.000.000").
	trailingDecimalRe = regexp.MustCompile(`\.\d{1,3}$`)

	// residualRe removes whatever survives separator handling but cannot be
	// part of a float literal.
	residualRe = regexp.MustCompile(`[^\d.\-]`)

	// numericContentRe keeps the characters considered when sniffing whether
	// a column holds amounts.
	numericContentRe = regexp.MustCompile(`[^\d.,\-()]`)

	digitRe = regexp.MustCompile(`\d`)
)

// NormalizeNumber converts raw budget cell text into a float64. It accepts
// the formats found in regional budget spreadsheets: "Rp" prefixes, dot
// thousands separators, comma decimal separators, accounting-style
// parentheses for negatives, and plain machine numbers.
//
// The parse is total: any input that cannot be read as a number yields 0.0
// rather than an error, so one malformed cell never aborts a run.
//
// Separator disambiguation: when both "." and "," appear, dots are thousands
// grouping and the comma is the decimal point. When only dots appear, a lone
// dot followed by one to three trailing digits reads as a decimal point
// ("105.66"); every other dot pattern reads as thousands grouping
// ("3.102.745.428.958"). A single trailing three-digit group is therefore
// ambiguous with a thousands group and resolves to a decimal; callers that
// care should supply unambiguous input.
//
// Examples:
//
//	NormalizeNumber("Rp 1.234.567,89") // 1234567.89
//	NormalizeNumber("(1.000.000)")     // -1000000.0
//	NormalizeNumber("105.66")          // 105.66
//	NormalizeNumber("-")               // 0.0
func NormalizeNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	// Accounting negatives: (1.000) means -1.000.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}

	s = nonNumericRe.ReplaceAllString(s, "")

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	if hasDot && hasComma {
		// 1.234.567,89 → dots group thousands, comma is the decimal point.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		if hasDot && !(strings.Count(s, ".") == 1 && trailingDecimalRe.MatchString(s)) {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}

	s = residualRe.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// looksNumeric reports whether a cell's text plausibly holds an amount. It
// keeps digits, separators, a sign and accounting parentheses, then requires
// at least one digit to survive. Used by the column resolver to sniff amount
// columns when headers carry no recognizable keyword.
func looksNumeric(raw string) bool {
	s := numericContentRe.ReplaceAllString(strings.TrimSpace(raw), "")
	return digitRe.MatchString(s)
}
