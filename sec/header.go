package sec

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

// EDGAR headers come in two envelopes with the same line grammar inside.
var headerEnvelopes = []*regexp.Regexp{
	regexp.MustCompile(`(?s)<SEC-HEADER>(.*?)</SEC-HEADER>`),
	regexp.MustCompile(`(?s)<IMS-HEADER>(.*?)</IMS-HEADER>`),
}

// Role markers in the order EDGAR emits them. The header is segmented by
// scanning for these and cutting on the sorted indices.
var roleMarkers = []string{
	"FILER:",
	"FILED BY:",
	"SUBJECT COMPANY:",
	"REPORTING-OWNER:",
	"ISSUER:",
}

var headerFieldRe = regexp.MustCompile(`(?m)^\s*([A-Z][A-Z0-9 /.-]*?):\s*(.*?)\s*$`)

// ParseHeader extracts the submission metadata and entity role blocks from a
// raw EDGAR document. Parsing is idempotent: the same document always yields
// structurally equal results.
func ParseHeader(document string) (*models.Filing, error) {
	var header string
	for _, re := range headerEnvelopes {
		if m := re.FindStringSubmatch(document); m != nil {
			header = m[1]
			break
		}
	}
	if header == "" {
		return nil, fault.New(fault.SourceSchemaChanged, sourceName, "parse_header",
			"document carries no SEC-HEADER or IMS-HEADER envelope")
	}

	// Top section: everything before the first role marker.
	cut := len(header)
	var roles []roleAt
	for _, marker := range roleMarkers {
		offset := 0
		for {
			i := strings.Index(header[offset:], marker)
			if i < 0 {
				break
			}
			at := offset + i
			roles = append(roles, roleAt{role: marker, at: at})
			if at < cut {
				cut = at
			}
			offset = at + len(marker)
		}
	}

	top := headerFields(header[:cut])

	f := &models.Filing{
		AccessionNumber:   top["ACCESSION NUMBER"],
		FormType:          top["CONFORMED SUBMISSION TYPE"],
		DateFiled:         headerDate(top["FILED AS OF DATE"]),
		DateOfPeriod:      headerDate(top["CONFORMED PERIOD OF REPORT"]),
		EffectivenessDate: headerDate(top["EFFECTIVENESS DATE"]),
	}
	f.IsAmendment = strings.HasSuffix(f.FormType, "/A")
	if n, err := strconv.Atoi(top["PUBLIC DOCUMENT COUNT"]); err == nil {
		f.DocumentCount = n
	}
	if f.AccessionNumber == "" || f.FormType == "" {
		return nil, fault.New(fault.SourceSchemaChanged, sourceName, "parse_header",
			"header is missing the accession number or submission type")
	}

	// Segment the role blocks on ascending marker positions.
	sort.Slice(roles, func(i, j int) bool { return roles[i].at < roles[j].at })
	for i, r := range roles {
		end := len(header)
		if i+1 < len(roles) {
			end = roles[i+1].at
		}
		entity := parseEntity(header[r.at+len(r.role) : end])
		switch r.role {
		case "FILER:":
			f.Filer = entity
		case "FILED BY:":
			f.FiledBy = entity
		case "SUBJECT COMPANY:":
			f.SubjectCompany = entity
		case "REPORTING-OWNER:":
			f.ReportingOwner = entity
		case "ISSUER:":
			f.Issuer = entity
		}
	}

	f.DocumentBody = document
	return f, nil
}

// roleAt records where a role marker starts inside the header.
type roleAt struct {
	role string
	at   int
}

// headerFields reads KEY: value lines into a map. Repeated keys keep the
// first occurrence.
func headerFields(block string) map[string]string {
	out := make(map[string]string)
	for _, m := range headerFieldRe.FindAllStringSubmatch(block, -1) {
		key := strings.TrimSpace(m[1])
		if _, seen := out[key]; !seen {
			out[key] = strings.TrimSpace(m[2])
		}
	}
	return out
}

var sicRe = regexp.MustCompile(`^(.*?)\s*\[(\d+)\]$`)

// parseEntity reads one role block into an Entity. Address sub-blocks are
// separated by their own markers inside the block.
func parseEntity(block string) *models.Entity {
	business, mail := addressBlocks(block)
	fields := headerFields(block)

	e := &models.Entity{
		CIK:           fields["CENTRAL INDEX KEY"],
		IRSNumber:     fields["IRS NUMBER"],
		StateOfIncorp: fields["STATE OF INCORPORATION"],
		State:         fields["STATE"],
		FileNumber:    fields["SEC FILE NUMBER"],
		FilmNumber:    fields["FILM NUMBER"],
	}
	if e.Name = fields["COMPANY CONFORMED NAME"]; e.Name == "" {
		e.Name = fields["CONFORMED NAME"]
	}

	if sic := fields["STANDARD INDUSTRIAL CLASSIFICATION"]; sic != "" {
		if m := sicRe.FindStringSubmatch(sic); m != nil {
			e.SIC = &models.SICCode{Name: strings.TrimSpace(m[1]), Code: m[2]}
		} else {
			e.SIC = &models.SICCode{Name: sic}
		}
	}
	if fye := fields["FISCAL YEAR END"]; len(fye) == 4 {
		month, errM := strconv.Atoi(fye[:2])
		day, errD := strconv.Atoi(fye[2:])
		if errM == nil && errD == nil {
			e.FiscalYearEnd = &models.FiscalYearEnd{Month: month, Day: day}
		}
	}
	e.BusinessAddress = business
	e.MailAddress = mail
	e.FormerNames = formerNames(block)
	return e
}

// addressBlocks splits the BUSINESS ADDRESS and MAIL ADDRESS sub-blocks.
func addressBlocks(block string) (business, mail *models.Address) {
	bi := strings.Index(block, "BUSINESS ADDRESS:")
	mi := strings.Index(block, "MAIL ADDRESS:")

	slice := func(from, until int) string {
		if from < 0 {
			return ""
		}
		if until < 0 || until < from {
			until = len(block)
		}
		return block[from:until]
	}

	if bi >= 0 {
		end := len(block)
		if mi > bi {
			end = mi
		}
		business = parseAddress(slice(bi, end))
	}
	if mi >= 0 {
		end := len(block)
		if bi > mi {
			end = bi
		}
		mail = parseAddress(slice(mi, end))
	}
	return business, mail
}

func parseAddress(block string) *models.Address {
	fields := headerFields(block)
	a := &models.Address{
		Street1: fields["STREET 1"],
		Street2: fields["STREET 2"],
		City:    fields["CITY"],
		State:   fields["STATE"],
		Zip:     fields["ZIP"],
		Phone:   fields["BUSINESS PHONE"],
	}
	if *a == (models.Address{}) {
		return nil
	}
	return a
}

var formerNameRe = regexp.MustCompile(
	`FORMER CONFORMED NAME:\s*(.*?)\s*\n\s*DATE OF NAME CHANGE:\s*(\d{8})`)

func formerNames(block string) []models.FormerName {
	var out []models.FormerName
	for _, m := range formerNameRe.FindAllStringSubmatch(block, -1) {
		out = append(out, models.FormerName{
			Name:        strings.TrimSpace(m[1]),
			DateChanged: headerDate(m[2]),
		})
	}
	return out
}

// headerDate converts an EDGAR yyyymmdd token to ISO; empty or malformed
// tokens yield "".
func headerDate(tok string) string {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return ""
	}
	t, err := time.Parse("20060102", tok)
	if err != nil {
		return ""
	}
	return t.Format(models.ISODate)
}
