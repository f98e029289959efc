package usecase

import (
	"context"
	"errors"
	"net/http"

	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/pkg/apperror"
	"pcd-jobs-backend/pkg/logger"
	"pcd-jobs-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// pageBounds normalises page/pageSize into limit and offset.
func pageBounds(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}

// storeError turns a repository error into an AppError. AppErrors raised
// by the repository (conflicts) pass through unchanged.
func storeError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(notFoundMsg)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err)
}

// integrityFault logs a broken data invariant and reports it as internal.
func integrityFault(ctx context.Context, err error, args ...any) error {
	logger.Log.ErrorContext(ctx, "Data integrity fault", append(args, "error", err)...)
	return apperror.Internal(err)
}

func validateInput(v *validator.Validate, in any) error {
	if err := v.Struct(in); err != nil {
		return apperror.New(http.StatusBadRequest, apperror.KindValidation, validation.Message(err), err)
	}
	return nil
}

// notify hands an event to the notifier after commit. In production the
// notifier is a notification.Dispatcher, which only enqueues. Failures are
// logged only.
func notify(ctx context.Context, n domain.Notifier, event domain.Event) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, event); err != nil {
		logger.Log.WarnContext(ctx, "Failed to deliver notification",
			"event", event.Type, "posting_id", event.PostingID, "error", err)
	}
}
