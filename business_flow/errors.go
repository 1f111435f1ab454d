// Package businessflow contains the use cases of the pricing service: price
// estimation, dataset exploration and dataset imports.
package businessflow

import (
	"errors"
	"fmt"

	"github.com/amirphl/getaround-pricing/pricing"
)

// Business flow error constants
var (
	// Exploration errors
	ErrUnknownBrand       = errors.New("unknown brand")
	ErrNegativeMileage    = errors.New("mileage must be non-negative")
	ErrUnsupportedColumn  = errors.New("unsupported column")
	ErrDatasetNotImported = errors.New("dataset has not been imported")

	// Dataset import errors
	ErrImportInProgress     = errors.New("dataset import already in progress")
	ErrDatasetSourceEmpty   = errors.New("dataset source is empty")
	ErrDatasetSourceFailed  = errors.New("failed to load dataset source")
	ErrDatasetSourceInvalid = errors.New("dataset source is not an http(s) URL")
	ErrDatasetEmpty         = errors.New("dataset contains no rows")

	// Pricing errors
	ErrPredictionNotFound = errors.New("prediction not found")

	ErrCacheNotAvailable = errors.New("cache not available")
)

// BusinessError wraps an error with a stable code for API responses
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUnknownBrand(err error) bool {
	return errors.Is(err, ErrUnknownBrand)
}

func IsNegativeMileage(err error) bool {
	return errors.Is(err, ErrNegativeMileage)
}

func IsUnsupportedColumn(err error) bool {
	return errors.Is(err, ErrUnsupportedColumn)
}

func IsDatasetNotImported(err error) bool {
	return errors.Is(err, ErrDatasetNotImported)
}

func IsImportInProgress(err error) bool {
	return errors.Is(err, ErrImportInProgress)
}

func IsDatasetSourceEmpty(err error) bool {
	return errors.Is(err, ErrDatasetSourceEmpty)
}

func IsDatasetSourceInvalid(err error) bool {
	return errors.Is(err, ErrDatasetSourceInvalid)
}

func IsDatasetSourceFailed(err error) bool {
	return errors.Is(err, ErrDatasetSourceFailed)
}

func IsDatasetEmpty(err error) bool {
	return errors.Is(err, ErrDatasetEmpty)
}

func IsPredictionNotFound(err error) bool {
	return errors.Is(err, ErrPredictionNotFound)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

// IsPricingValidationError reports a rejected car description
func IsPricingValidationError(err error) bool {
	return pricing.IsValidationError(err)
}

// IsModelUnavailable reports missing or unloadable pricing artifacts
func IsModelUnavailable(err error) bool {
	return pricing.IsModelUnavailable(err)
}

// IsInferenceError reports a failure while encoding or applying the model
func IsInferenceError(err error) bool {
	return pricing.IsInferenceError(err)
}

// joinCause keeps both a sentinel and the underlying error reachable through errors.Is/As
func joinCause(sentinel, cause error) error {
	return errors.Join(sentinel, cause)
}
