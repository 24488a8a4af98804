package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"vnquote/internal/domain/models"
	"vnquote/pkg/util"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// maxRangeDays bounds a request's date span to five years.
const maxRangeDays = 365 * 5

// ValidateDownloadRequest applies defaults and checks a request against the
// download business rules. Pure function of its input: the returned copy
// carries the upper-cased symbol and canonical source, while dates keep
// their submitted form. Mixed date formats across the two fields are
// tolerated; each field is parsed independently.
func ValidateDownloadRequest(req *models.DownloadRequest) (*models.DownloadRequest, error) {
	out := *req
	if err := defaults.Set(&out); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := validate.Struct(&out); err != nil {
		return nil, mapFieldError(err)
	}
	out.Symbol = strings.ToUpper(strings.TrimSpace(out.Symbol))
	if len(out.Symbol) < 3 {
		return nil, NewValidationError(KindInvalidSymbol, "symbol", "symbol must be at least 3 characters")
	}

	start, ok := util.ParseFlexibleDate(out.StartDate)
	if !ok {
		return nil, NewValidationError(KindInvalidDateFormat, "start_date", "date must be in DD-MM-YYYY or YYYY-MM-DD format")
	}
	end, ok := util.ParseFlexibleDate(out.EndDate)
	if !ok {
		return nil, NewValidationError(KindInvalidDateFormat, "end_date", "date must be in DD-MM-YYYY or YYYY-MM-DD format")
	}
	if end.Before(start) {
		return nil, NewValidationError(KindEndBeforeStart, "end_date", "end date must be after start date")
	}
	if int(end.Sub(start).Hours()/24) > maxRangeDays {
		return nil, NewValidationError(KindRangeTooLarge, "end_date", "date range cannot exceed 5 years")
	}

	src, ok := canonicalSource(out.Source)
	if !ok {
		return nil, NewValidationError(KindUnknownSource, "source",
			fmt.Sprintf("source must be one of: %s", strings.Join(models.AllSources(), ", "))).
			WithParam("options", models.AllSources())
	}
	out.Source = src

	return &out, nil
}

// canonicalSource resolves a case-insensitive source name to canonical form.
func canonicalSource(s string) (string, bool) {
	for _, known := range models.AllSources() {
		if strings.EqualFold(s, known) {
			return known, true
		}
	}
	return "", false
}

func mapFieldError(err error) error {
	var ferrs validator.ValidationErrors
	if !errors.As(err, &ferrs) || len(ferrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}
	fe := ferrs[0]
	switch fe.StructField() {
	case "Symbol":
		return NewValidationError(KindInvalidSymbol, "symbol", "symbol must be at least 3 characters")
	case "StartDate":
		return NewValidationError(KindInvalidDateFormat, "start_date", "start_date is required")
	case "EndDate":
		return NewValidationError(KindInvalidDateFormat, "end_date", "end_date is required")
	case "Interval":
		return NewValidationError(KindInvalidInterval, "interval",
			fmt.Sprintf("interval must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", ")))
	default:
		return NewValidationError(KindInvalidSymbol, strings.ToLower(fe.StructField()), fe.Error())
	}
}
