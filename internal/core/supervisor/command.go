package supervisor

import (
	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/event"
)

type commandKind uint8

const (
	cmdSpawn commandKind = iota
	cmdBroadcast
	cmdScoped
	cmdStatus
)

type spawnResult struct {
	e   *entity.Entity
	err error
}

type command struct {
	kind   commandKind
	spawn  SpawnParams
	reply  chan spawnResult
	event  event.Event
	target entity.ID
	other  entity.ID
	pair   bool
	status Status
}

// enqueue appends cmd and wakes the loop
func (s *System) enqueue(cmd command) {
	s.cmdMu.Lock()
	s.cmds = append(s.cmds, cmd)
	s.cmdMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *System) takeCommands() []command {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	cmds := s.cmds
	s.cmds = nil
	return cmds
}
