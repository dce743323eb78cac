package domain

// ProgressManager abstracts progress reporting so analysis code never
// depends on a concrete progress bar implementation.
type ProgressManager interface {
	// StartTask begins tracking a task with a known total
	StartTask(description string, total int) TaskProgress

	// IsInteractive returns true if progress is rendered to a terminal
	IsInteractive() bool

	// Close cleans up any rendering state
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	// Increment advances the task by n units
	Increment(n int)

	// Complete marks the task finished
	Complete()
}
