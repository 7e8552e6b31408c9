package dataprocessing

import "strings"

// SheetNameDelimiter separates portfolio from scenario in a sheet name
const SheetNameDelimiter = "_"

// SplitSheetName splits "<Portfolio>_<Scenario>" on the first underscore.
// The scenario keeps any further underscores. ok is false when the name
// has no underscore; such sheets are not part of the dataset.
func SplitSheetName(name string) (portfolio, scenario string, ok bool) {
	portfolio, scenario, ok = strings.Cut(name, SheetNameDelimiter)
	return portfolio, scenario, ok
}
