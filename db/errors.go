package db

import (
	"errors"

	"github.com/lib/pq"
)

const (
	postgresUniqueValueViolationErrorCode     = "23505"
	postgresForeignKeyViolationErrorCode      = "23503"
	postgresInvalidTextRepresentationErrorCode = "22P02"
)

func isErrorUniqueViolation(err error) bool {
	var psqlErr *pq.Error
	return errors.As(err, &psqlErr) && psqlErr.Code == postgresUniqueValueViolationErrorCode
}

func isErrorForeignKeyViolation(err error) bool {
	var psqlErr *pq.Error
	return errors.As(err, &psqlErr) && psqlErr.Code == postgresForeignKeyViolationErrorCode
}

// isErrorInvalidText reports malformed input such as a non-UUID id.
func isErrorInvalidText(err error) bool {
	var psqlErr *pq.Error
	return errors.As(err, &psqlErr) && psqlErr.Code == postgresInvalidTextRepresentationErrorCode
}
