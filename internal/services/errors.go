package services

import "errors"

// Workbook service errors
var (
	ErrWorkbookNotFound  = errors.New("workbook not found")
	ErrEmptyUpload       = errors.New("uploaded workbook is empty")
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
	ErrNoExportDirectory = errors.New("no export directory configured")
)
