package services

import (
	"fmt"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
)

var allowedTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled},
}

// NextStatus decides whether moving from current to requested changes anything. Requesting
// the current status is a no-op; cancelled, completed and no-show accept no other target.
func NextStatus(current, requested models.AppointmentStatus) (bool, error) {
	if requested == current || requested == current.Public() {
		return false, nil
	}
	for _, allowed := range allowedTransitions[current] {
		if allowed == requested {
			return true, nil
		}
	}
	return false, &AppError{
		Type:    ErrorTypeConflict,
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot change appointment status from %s to %s", current.Public(), requested),
	}
}

func parseRequestedStatus(value string) (models.AppointmentStatus, error) {
	status, ok := models.ParseAppointmentStatus(value)
	if !ok {
		return "", NewValidationError(CodeValidation, fmt.Sprintf("unknown appointment status %q", value))
	}
	return status, nil
}
