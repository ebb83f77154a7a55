package services

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotInList        = errors.New("not in list")
	ErrSelfFollow       = errors.New("cannot subscribe to yourself")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidReference = errors.New("referenced object does not exist")
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool { return pqCode(err) == "23505" }

func isForeignKeyViolation(err error) bool { return pqCode(err) == "23503" }

// escapeLike escapes LIKE wildcards so s matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
