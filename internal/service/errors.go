package service

import (
	"errors"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/domain"
)

// Notifier fans an event out to realtime clients.
type Notifier interface {
	Broadcast(event string, data any)
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(string, any) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// storeErr maps repository errors onto the API taxonomy.
func storeErr(what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return apperr.NotFound(what)
	case errors.Is(err, domain.ErrDuplicate):
		return apperr.Conflict(what + " already exists")
	default:
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return ae
		}
		return apperr.Internal("Database error", err)
	}
}
