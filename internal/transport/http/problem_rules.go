package http

import (
	"net/http"

	apierrors "github.com/giuliam-97/Stress-Test/internal/errors"
	"github.com/giuliam-97/Stress-Test/internal/exporter"
	"github.com/giuliam-97/Stress-Test/internal/services"
)

// ProblemRules maps the sentinel errors of the service and export layers to
// problem responses. Ingestion failures arrive as AppError and need no rule.
func ProblemRules() []apierrors.Rule {
	return []apierrors.Rule{
		{Target: services.ErrWorkbookNotFound, Status: http.StatusNotFound, Type: apierrors.TypeWorkbookNotFound, Title: "Workbook Not Found"},
		{Target: services.ErrEmptyUpload, Status: http.StatusBadRequest, Type: apierrors.TypeValidation, Title: "Empty Upload"},
		{Target: services.ErrUnsupportedFormat, Status: http.StatusUnsupportedMediaType, Type: apierrors.TypeUnsupportedFormat, Title: "Unsupported Workbook Format"},
		{Target: exporter.ErrNothingToExport, Status: http.StatusUnprocessableEntity, Type: apierrors.TypeExport, Title: "Nothing To Export"},
	}
}
