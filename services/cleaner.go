package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"pledge-insights/models"
	"pledge-insights/utils"
)

// ErrNoRecords is returned when a dataset has no usable households.
var ErrNoRecords = errors.New("no valid household records")

var (
	// zipRegexp accepts a 5-digit code with an optional +4 suffix
	zipRegexp = regexp.MustCompile(`^\d{5}(?:-?\d{4})?$`)
	// currencyNoise strips symbols and separators from amounts like "$1,800.00"
	currencyNoise = strings.NewReplacer("$", "", ",", "", " ", "", "USD", "", "usd", "")

	// maxAge bounds ages before integer conversion; validation then applies
	// the real 0..130 range.
	maxAge = decimal.NewFromInt(1000)
	// maxAmount is the largest value a NUMERIC(12,2) column holds.
	maxAmount = decimal.RequireFromString("9999999999.99")
)

// Cleaner turns ImportRows into validated RawRecords. Rows that fail
// validation are dropped and reported; the engine never sees them.
type Cleaner struct {
	logger   *utils.Logger
	validate *validator.Validate
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	v := validator.New()
	if err := v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		return zipRegexp.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("cleaner: register zipcode validation: %v", err))
	}
	return &Cleaner{logger: logger, validate: v}
}

// Clean parses and validates rows, returning the accepted records in input
// order together with one issue per rejected row.
func (c *Cleaner) Clean(rows []models.ImportRow) ([]models.RawRecord, []models.ImportIssue) {
	records := make([]models.RawRecord, 0, len(rows))
	var issues []models.ImportIssue

	for _, row := range rows {
		rec, err := c.parseRow(row)
		if err == nil {
			err = c.validateRecord(rec)
		}
		if err != nil {
			c.logger.Warn("[cleaner] Dropping line %d: %v", row.Line, err)
			issues = append(issues, models.ImportIssue{Line: row.Line, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d households (dropped %d)",
		len(rows), len(records), len(issues))
	return records, issues
}

func (c *Cleaner) parseRow(row models.ImportRow) (models.RawRecord, error) {
	age, err := parseAge(row.Age)
	if err != nil {
		return models.RawRecord{}, err
	}
	current, err := parseAmount(row.PledgeCurrent)
	if err != nil {
		return models.RawRecord{}, fmt.Errorf("current pledge: %w", err)
	}
	prior, err := parseAmount(row.PledgePrior)
	if err != nil {
		return models.RawRecord{}, fmt.Errorf("prior pledge: %w", err)
	}
	return models.RawRecord{
		Age:           age,
		PledgeCurrent: current,
		PledgePrior:   prior,
		Zip:           strings.TrimSpace(row.Zip),
	}, nil
}

func (c *Cleaner) validateRecord(rec models.RawRecord) error {
	err := c.validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "zipcode":
		return fmt.Sprintf("%s %q is not a 5-digit or ZIP+4 code", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// parseAge accepts whole numbers, tolerating a trailing ".0" from spreadsheets.
func parseAge(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errors.New("age is missing")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("age %q is not a number", raw)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("age %q is not a whole number", raw)
	}
	if d.Abs().GreaterThan(maxAge) {
		return 0, fmt.Errorf("age %q is out of range", raw)
	}
	return int(d.IntPart()), nil
}

// parseAmount reads a currency cell and rounds it to cents. An empty cell
// means no pledge.
func parseAmount(raw string) (float64, error) {
	s := currencyNoise.Replace(strings.TrimSpace(raw))
	if s == "" || s == "-" {
		return 0, nil
	}
	// Accounting notation: (1,200) is negative.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.Trim(s, "()")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an amount", raw)
	}
	d = d.Round(2)
	if d.Abs().GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%q exceeds the largest storable amount", raw)
	}
	return d.InexactFloat64(), nil
}
