package service

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/crosslint/crosslint/domain"
)

// ProgressManagerImpl renders interactive progress bars on stderr
type ProgressManagerImpl struct {
	writer io.Writer
	tasks  []*progressbar.ProgressBar
}

// NewProgressManager creates a progress manager; progress is disabled for
// non-interactive environments (CI, piped stderr, JSON output).
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && IsInteractiveEnvironment() {
		return &ProgressManagerImpl{writer: os.Stderr}
	}
	return &NoOpProgressManager{}
}

// StartTask creates a new progress task with a description and total count
func (pm *ProgressManagerImpl) StartTask(description string, total int) domain.TaskProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(pm.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(18),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
	)
	pm.tasks = append(pm.tasks, bar)
	return &taskProgress{bar: bar}
}

// IsInteractive returns true if progress bars are rendered
func (pm *ProgressManagerImpl) IsInteractive() bool {
	return true
}

// Close finishes all outstanding bars
func (pm *ProgressManagerImpl) Close() {
	for _, bar := range pm.tasks {
		_ = bar.Finish()
	}
	pm.tasks = nil
}

type taskProgress struct {
	bar *progressbar.ProgressBar
}

func (t *taskProgress) Increment(n int) {
	_ = t.bar.Add(n)
}

func (t *taskProgress) Complete() {
	_ = t.bar.Finish()
}

// NoOpProgressManager silently discards progress updates
type NoOpProgressManager struct{}

func (NoOpProgressManager) StartTask(string, int) domain.TaskProgress { return noOpTask{} }
func (NoOpProgressManager) IsInteractive() bool                      { return false }
func (NoOpProgressManager) Close()                                   {}

type noOpTask struct{}

func (noOpTask) Increment(int) {}
func (noOpTask) Complete()     {}

// IsInteractiveEnvironment reports whether stderr is attached to a
// terminal and no CI environment is detected.
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
