package domain

import "time"

// WorkbookSummary describes an ingested workbook held by the service
type WorkbookSummary struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Mode          IngestMode      `json:"mode"`
	Fingerprint   string          `json:"fingerprint"`
	SheetsTotal   int             `json:"sheets_total"`
	SheetsParsed  int             `json:"sheets_parsed"`
	SheetsSkipped []string        `json:"sheets_skipped"`
	Rows          int             `json:"rows"`
	LoadedAt      time.Time       `json:"loaded_at"`
	Domain        SelectionDomain `json:"domain"`
}
