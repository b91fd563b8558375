package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"bazarpos/internal/apierror"

	"gorm.io/gorm"
)

// dbError classifies a repository error. Errors that are already classified
// pass through unchanged.
func dbError(detail string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apierror.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierror.Wrap(apierror.KindNotFound, detail, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierror.Wrap(apierror.KindConflict, detail, err)
	case isConnectionError(err):
		return apierror.Wrap(apierror.KindConnection, "No se pudo conectar a la base de datos", err)
	default:
		return apierror.Wrap(apierror.KindPersistence, detail, err)
	}
}

// commitError classifies a failed step of a commit transaction. Anything not
// already classified is a persistence failure, whatever the driver reported.
func commitError(detail string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apierror.As(err); ok {
		return err
	}
	return apierror.Wrap(apierror.KindPersistence, detail, err)
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
