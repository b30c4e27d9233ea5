package scheduler

import (
	"maps"

	"go.trai.ch/pyrun/internal/core/domain"
)

// GetTargetStatusMap returns a copy of the internal target status map.
// This is exported for testing purposes only.
func (s *Scheduler) GetTargetStatusMap() map[domain.InternedString]TargetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.targetStatus)
}
