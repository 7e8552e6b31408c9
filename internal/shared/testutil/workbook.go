package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a test workbook; Rows[0] is the header row
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// Workbook builds an in-memory xlsx file from sheets and returns its bytes
func Workbook(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.Name))
		} else {
			_, err := f.NewSheet(s.Name)
			require.NoError(t, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.Name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// TotalsHeader is the header row of a totals-mode sheet
func TotalsHeader() []interface{} {
	return []interface{}{"Risk Group", "Stress PnL", "Date"}
}

// TotalsSheet builds a sheet holding a single "Total" row
func TotalsSheet(name string, pnl float64, date string) Sheet {
	return Sheet{Name: name, Rows: [][]interface{}{
		TotalsHeader(),
		{"Equity", pnl / 2, date},
		{"Total", pnl, date},
	}}
}

// DetailRow places risk group, tag, Stress PnL and date in columns A, B, R and U
func DetailRow(riskGroup, tag string, pnl interface{}, date interface{}) []interface{} {
	row := make([]interface{}, 21)
	row[0] = riskGroup
	row[1] = tag
	row[17] = pnl
	row[20] = date
	return row
}

// DetailHeader is the header row of a detail-mode sheet
func DetailHeader() []interface{} {
	return DetailRow("Risk Group", "Tag", "Stress PnL", "Date")
}

// StressWorkbook is the three-sheet totals workbook used across packages:
// FUND1_BASE -50, FUND1_SEVERE -200, FUND2_BASE -30, all dated 2024-01-31.
func StressWorkbook(t testing.TB) []byte {
	return Workbook(t,
		TotalsSheet("FUND1_BASE", -50, "2024-01-31"),
		TotalsSheet("FUND1_SEVERE", -200, "2024-01-31"),
		TotalsSheet("FUND2_BASE", -30, "2024-01-31"),
	)
}
