package sec

import (
	"regexp"
	"strings"
)

// EDGAR XML bodies are not always well-formed the same way twice: element
// names arrive with an optional namespace prefix, and a known set of long
// names is sometimes emitted split across whitespace. normalizeXML collapses
// both so one decoder handles every vintage.

// splitNames maps the broken spellings seen in the wild onto their canonical
// element names.
var splitNames = map[string]string{
	"reporting Owner":   "reportingOwner",
	"issuer Name":       "issuerName",
	"invstOr Sec":       "invstOrSec",
	"deriv Holding":     "derivHolding",
	"notional Amt":      "notionalAmt",
	"shares Or PrnAmt":  "sharesOrPrnAmt",
	"voting Authority":  "votingAuthority",
	"info Table":        "infoTable",
	"security Title":    "securityTitle",
	"transaction Date":  "transactionDate",
	"conversion Or ExercisePrice": "conversionOrExercisePrice",
}

var nsPrefixRe = regexp.MustCompile(`(</?)[A-Za-z0-9_]+:`)

// normalizeXML strips namespace prefixes from element names and rejoins the
// known split names.
func normalizeXML(body string) string {
	body = nsPrefixRe.ReplaceAllString(body, "$1")
	for broken, fixed := range splitNames {
		if strings.Contains(body, broken) {
			body = strings.ReplaceAll(body, broken, fixed)
		}
	}
	return body
}

// xmlBody cuts the first XML document out of a full EDGAR submission text.
// Modern filings wrap it in <XML>...</XML>; raw XML passes through.
func xmlBody(document string) string {
	if i := strings.Index(document, "<XML>"); i >= 0 {
		if j := strings.Index(document[i:], "</XML>"); j >= 0 {
			return strings.TrimSpace(document[i+len("<XML>") : i+j])
		}
	}
	if i := strings.Index(document, "<?xml"); i >= 0 {
		return document[i:]
	}
	return document
}
