package parse

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/quantfetch/quantfetch/pkg/fault"
)

// XLSX decodes one sheet of an .xlsx workbook into rows of string cells.
// An empty sheet name selects the first sheet. Legacy binary .xls workbooks
// are not supported and fail with NotImplemented.
func XLSX(b []byte, sheet string) ([][]string, error) {
	if looksLikeLegacyXLS(b) {
		return nil, fault.New(fault.NotImplemented, "parse", "xlsx",
			"legacy binary .xls workbooks are not supported")
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fault.Wrap(fault.Parse, "parse", "xlsx", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		if strings.Contains(err.Error(), "doesn't exist") {
			return nil, fault.Newf(fault.SourceSchemaChanged, "parse", "xlsx",
				"sheet %q not found", sheet)
		}
		return nil, fault.Wrap(fault.Parse, "parse", "xlsx", err)
	}
	return rows, nil
}

// looksLikeLegacyXLS sniffs the OLE2 compound-file magic of pre-2007 Excel.
func looksLikeLegacyXLS(b []byte) bool {
	magic := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	return len(b) >= len(magic) && bytes.Equal(b[:len(magic)], magic)
}
