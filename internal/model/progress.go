package model

import "time"

type ProgressMode int

const (
	// ProgressSet replaces the stored progress with an absolute value.
	ProgressSet ProgressMode = iota
	// ProgressIncrement adds to the stored progress.
	ProgressIncrement
	// ProgressComplete moves progress straight to the target. Only external tasks accept it.
	ProgressComplete
)

type ProgressUpdate struct {
	Mode   ProgressMode
	Amount int64
}

func (u ProgressUpdate) Validate() error {
	switch u.Mode {
	case ProgressSet:
		if u.Amount < 0 {
			return ErrNegativeProgress
		}
	case ProgressIncrement:
		if u.Amount <= 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

type ProgressResult struct {
	UserTask *UserTask
	Task     *Task
	// Changed reports whether the stored row was written.
	Changed bool
	// Completed reports whether this call finished the task and issued its reward.
	Completed bool
}

// Advance computes the row that follows current after applying u.
// A completed row is terminal and comes back unchanged. Progress is clamped
// to task.RequiredAmount; reaching it completes the row at now.
func Advance(task *Task, current UserTask, u ProgressUpdate, now time.Time) (UserTask, bool, error) {
	if err := u.Validate(); err != nil {
		return current, false, err
	}
	if task.RequiredAmount < 1 {
		return current, false, ErrInvalidRequiredAmount
	}
	if u.Mode == ProgressComplete && task.Kind() != TaskKindExternal {
		return current, false, ErrNotExternalTask
	}

	if current.IsCompleted {
		return current, false, nil
	}

	required := task.RequiredAmount
	var progress int64
	switch u.Mode {
	case ProgressSet:
		progress = min(u.Amount, required)
	case ProgressIncrement:
		if u.Amount >= required-current.Progress {
			progress = required
		} else {
			progress = current.Progress + u.Amount
		}
	case ProgressComplete:
		progress = required
	}

	next := current
	next.Progress = progress
	if progress >= required {
		completedAt := now
		next.Progress = required
		next.IsCompleted = true
		next.CompletedAt = &completedAt
		return next, true, nil
	}

	return next, false, nil
}
