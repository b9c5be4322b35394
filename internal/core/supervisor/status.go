package supervisor

import "fmt"

// Status is the process-wide lifecycle state
type Status int32

const (
	StatusStarting Status = iota
	StatusRunning
	StatusStopping
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// Lifecycle notice types published on the bus
const (
	NoticeSpawned         = "entity.spawned"
	NoticeTerminated      = "entity.terminated"
	NoticeComponentFailed = "component.failed"
	NoticeStatusChanged   = "status.changed"
)
