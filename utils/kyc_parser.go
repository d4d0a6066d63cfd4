package utils

import (
	"regexp"
	"strings"

	"github.com/Arkaprabha13/KYC/dto"
)

// labelPatterns maps record fields to the labels they appear under on a KYC
// form. The value is taken from the remainder of the matching line, or the
// following line when the label stands alone.
var labelPatterns = []struct {
	field string
	re    *regexp.Regexp
}{
	{"society_name", regexp.MustCompile(`(?i)^society(?:\s+name)?\b[\s:.-]*(.*)$`)},
	{"control_number", regexp.MustCompile(`(?i)^control\s*(?:no|number)\b[\s:.-]*(.*)$`)},
	{"father_husband_name", regexp.MustCompile(`(?i)^(?:father|husband)[a-z'/ ]*name\b[\s:.-]*(.*)$`)},
	{"name", regexp.MustCompile(`(?i)^name(?:\s+of\s+(?:member|applicant))?\s*[:.-]\s*(.*)$`)},
	{"designation", regexp.MustCompile(`(?i)^designation\b[\s:.-]*(.*)$`)},
	{"bill_unit_number", regexp.MustCompile(`(?i)^bill\s*unit\s*(?:no|number)?\b[\s:.-]*(.*)$`)},
	{"department", regexp.MustCompile(`(?i)^department\b[\s:.-]*(.*)$`)},
	{"sr_number", regexp.MustCompile(`(?i)^s\.?\s*r\.?\s*(?:no|number)\b[\s:.-]*(.*)$`)},
	{"office_address", regexp.MustCompile(`(?i)^office\s+address\b[\s:.-]*(.*)$`)},
	{"residential_address", regexp.MustCompile(`(?i)^(?:residential|home)\s+address\b[\s:.-]*(.*)$`)},
	{"date_of_birth", regexp.MustCompile(`(?i)^(?:date\s+of\s+birth|d\.?o\.?b)\b[\s:.-]*(.*)$`)},
	{"date_of_appointment", regexp.MustCompile(`(?i)^date\s+of\s+appointment\b[\s:.-]*(.*)$`)},
	{"mobile_number", regexp.MustCompile(`(?i)^(?:mobile|phone)\s*(?:no|number)?\b[\s:.-]*(.*)$`)},
	{"bank_name", regexp.MustCompile(`(?i)^(?:bank\s+name|name\s+of\s+bank)\b[\s:.-]*(.*)$`)},
	{"branch_name", regexp.MustCompile(`(?i)^branch\s+name\b[\s:.-]*(.*)$`)},
	{"branch_code", regexp.MustCompile(`(?i)^branch\s+code\b[\s:.-]*(.*)$`)},
	{"account_number", regexp.MustCompile(`(?i)^(?:bank\s+)?a(?:/c|ccount)\s*(?:no|number)?\b[\s:.-]*(.*)$`)},
	{"nominee_name", regexp.MustCompile(`(?i)^nominee(?:\s+name)?\b[\s:.-]*(.*)$`)},
	{"nominee_relation", regexp.MustCompile(`(?i)^(?:nominee\s+)?relation(?:ship)?\b[\s:.-]*(.*)$`)},
}

// Standalone value patterns for fields with a fixed format.
var (
	panRegex    = regexp.MustCompile(`[A-Z]{5}[0-9]{4}[A-Z]`)
	aadharRegex = regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`)
	ifscRegex   = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)
	mobileRegex = regexp.MustCompile(`\b[6-9]\d{9}\b`)
	dateRegex   = regexp.MustCompile(`(0?[1-9]|[12][0-9]|3[01])[/-](0?[1-9]|1[0-2])[/-][0-9]{4}`)
)

// ParseKYCForm extracts structured record fields from OCR text of a KYC
// form. Only fields it can locate are populated; everything else stays null.
func ParseKYCForm(ocrText string) *dto.KYCRecord {
	record := &dto.KYCRecord{}
	lines := cleanLines(ocrText)

	for i, line := range lines {
		for _, lp := range labelPatterns {
			if _, ok := record.Get(lp.field); ok {
				continue
			}
			matches := lp.re.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			value := strings.TrimSpace(matches[1])
			if value == "" && i+1 < len(lines) {
				value = strings.TrimSpace(lines[i+1])
			}
			if value != "" {
				record.Set(lp.field, value)
			}
		}
	}

	upper := strings.ToUpper(ocrText)
	if pan := panRegex.FindString(upper); pan != "" {
		record.Set("pan_number", pan)
	}
	if aadhar := aadharRegex.FindString(ocrText); aadhar != "" {
		record.Set("aadhar_number", strings.ReplaceAll(aadhar, " ", ""))
	}
	if ifsc := ifscRegex.FindString(upper); ifsc != "" {
		record.Set("ifsc_code", ifsc)
	}
	if _, ok := record.Get("mobile_number"); !ok {
		if mobile := mobileRegex.FindString(ocrText); mobile != "" {
			record.Set("mobile_number", mobile)
		}
	}
	if _, ok := record.Get("date_of_birth"); !ok {
		if dob := dateRegex.FindString(ocrText); dob != "" {
			record.Set("date_of_birth", dob)
		}
	}

	return record
}

// FieldCoverage returns the fraction of extracted form fields (metadata
// columns excluded) populated on the record.
func FieldCoverage(record *dto.KYCRecord) float64 {
	total := 0
	populated := 0
	for _, f := range dto.FieldNames() {
		if f == dto.ConfidenceScoreField || f == dto.ModelUsedField {
			continue
		}
		total++
		if _, ok := record.Get(f); ok {
			populated++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(populated) / float64(total)
}

func cleanLines(t string) []string {
	lines := strings.Split(t, "\n")
	out := []string{}

	for _, l := range lines {
		l = strings.TrimSpace(l)
		if len(l) < 3 {
			continue
		}
		out = append(out, l)
	}
	return out
}
