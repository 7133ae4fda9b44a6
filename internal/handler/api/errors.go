package api

import (
	"context"
	"errors"

	"FinSignal/internal/domain/models"
	xhttp "FinSignal/pkg/http"
)

// toAppError maps domain errors onto HTTP statuses. Unknown errors stay
// unmapped and render as 500.
func toAppError(err error) error {
	var ve *models.ValidationError
	var de *models.DataUnavailableError
	switch {
	case errors.As(err, &ve):
		return xhttp.ValidationFailed(ve.Field, ve.Message).WithError(err)
	case errors.Is(err, models.ErrSignalNotFound):
		return xhttp.NotFoundError("signal not found").WithError(err)
	case errors.Is(err, models.ErrGenerationInFlight):
		return xhttp.ConflictError("signal generation already in progress").WithError(err)
	case errors.As(err, &de):
		return xhttp.ServiceUnavailableError(de.Source+" unavailable").WithParam("source", de.Source).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.ServiceUnavailableError("request timed out").WithError(err)
	}
	return err
}
