package entities

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrEventNotFound         = errors.New("event not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingNotPending     = errors.New("booking is not pending")
	ErrPriceUndefined        = errors.New("price is not defined for this event")
	ErrInsufficientInventory = errors.New("not enough seats available")
	ErrGateway               = errors.New("payment gateway unavailable")
	ErrPersistence           = errors.New("could not persist booking")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
)

// PermanentError marks failures that retrying will not fix.
// The message router moves them to the poison queue.
type PermanentError struct {
	Err error
}

func NewPermanentError(err error) PermanentError {
	return PermanentError{Err: err}
}

func (p PermanentError) Error() string {
	return p.Err.Error()
}

func (p PermanentError) Unwrap() error {
	return p.Err
}

func (p PermanentError) IsPermanent() bool {
	return true
}

func IsPermanent(err error) bool {
	var permanent interface{ IsPermanent() bool }
	return errors.As(err, &permanent) && permanent.IsPermanent()
}
