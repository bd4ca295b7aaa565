package output

import "apply-agent/internal/domain/entity"

// RunRecorder persists the run record, one entry per applied decision.
type RunRecorder interface {
	Record(entry entity.RunEntry) error
	SaveScreenshot(name string, shot *entity.Screenshot) (string, error)
	Dir() string
	Close() error
}
