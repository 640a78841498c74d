package service

import (
	"errors"
	"fmt"

	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/internal/repository"
)

// Error classes. Every error a service returns matches exactly one of these
// with errors.Is, or none when it is an unexpected internal failure.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConflict          = errors.New("conflict")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

var (
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrTaskNotFound      = fmt.Errorf("task %w", ErrNotFound)
	ErrBoostTypeNotFound = fmt.Errorf("boost type %w", ErrNotFound)
	ErrTaskNotStarted    = fmt.Errorf("task progress %w", ErrNotFound)

	ErrInvalidAmount     = fmt.Errorf("%w: %w", ErrInvalidArgument, model.ErrInvalidAmount)
	ErrNegativeProgress  = fmt.Errorf("%w: %w", ErrInvalidArgument, model.ErrNegativeProgress)
	ErrInvalidTask       = fmt.Errorf("%w: %w", ErrInvalidArgument, model.ErrInvalidRequiredAmount)
	ErrNotExternalTask   = fmt.Errorf("%w: %w", ErrInvalidArgument, model.ErrNotExternalTask)
	ErrMissingTelegramID = fmt.Errorf("%w: telegram id is required", ErrInvalidArgument)
	ErrMissingTitle      = fmt.Errorf("%w: title is required", ErrInvalidArgument)
	ErrMissingName       = fmt.Errorf("%w: name is required", ErrInvalidArgument)
	ErrInvalidMultiplier = fmt.Errorf("%w: multiplier must be positive", ErrInvalidArgument)
	ErrInvalidDuration   = fmt.Errorf("%w: duration must be at least one hour", ErrInvalidArgument)
	ErrInvalidPrice      = fmt.Errorf("%w: price must not be negative", ErrInvalidArgument)
	ErrInvalidPoints     = fmt.Errorf("%w: points must not be negative", ErrInvalidArgument)
	ErrEmptyUpdate       = fmt.Errorf("%w: nothing to update", ErrInvalidArgument)
)

// storeError translates repository and model failures into the service
// taxonomy. notFound is returned for repository.ErrNotFound.
func storeError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrReferenced):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repository.ErrStoreUnavailable):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	case errors.Is(err, model.ErrInvalidAmount):
		return ErrInvalidAmount
	case errors.Is(err, model.ErrNegativeProgress):
		return ErrNegativeProgress
	case errors.Is(err, model.ErrInvalidRequiredAmount):
		return ErrInvalidTask
	case errors.Is(err, model.ErrNotExternalTask):
		return ErrNotExternalTask
	case errors.Is(err, model.ErrInvalidTaskType):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}
