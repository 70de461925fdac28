package coordination

import (
	"sync"

	"github.com/openmesh-labs/agora/internal/aggregate"
	"github.com/openmesh-labs/agora/internal/comms"
	"github.com/openmesh-labs/agora/internal/dispatch"
	"github.com/openmesh-labs/agora/internal/pattern"
	"github.com/openmesh-labs/agora/internal/task"
)

// stores holds the coordinator's mutex-guarded maps: the named strategy
// registries plus the task and result stores.
type stores struct {
	mu           sync.RWMutex
	channels     map[string]comms.Channel
	distributors map[string]dispatch.Distributor
	aggregators  map[string]aggregate.Aggregator
	patterns     map[string]pattern.Pattern
	tasks        map[string]*task.Task
	results      map[string]*task.Result
}

func newStores() *stores {
	return &stores{
		channels:     make(map[string]comms.Channel),
		distributors: make(map[string]dispatch.Distributor),
		aggregators:  make(map[string]aggregate.Aggregator),
		patterns:     make(map[string]pattern.Pattern),
		tasks:        make(map[string]*task.Task),
		results:      make(map[string]*task.Result),
	}
}

func (s *stores) putChannel(name string, ch comms.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[name] = ch
}

func (s *stores) getChannel(name string) (comms.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channels[name]
	return ch, ok
}

func (s *stores) putDistributor(name string, d dispatch.Distributor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distributors[name] = d
}

func (s *stores) getDistributor(name string) (dispatch.Distributor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.distributors[name]
	return d, ok
}

func (s *stores) putAggregator(name string, a aggregate.Aggregator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregators[name] = a
}

func (s *stores) getAggregator(name string) (aggregate.Aggregator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.aggregators[name]
	return a, ok
}

func (s *stores) putPattern(name string, p pattern.Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[name] = p
}

func (s *stores) getPattern(name string) (pattern.Pattern, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patterns[name]
	return p, ok
}

func (s *stores) putTask(t *task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

func (s *stores) getTask(id string) (*task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// tasksWhere lists stored tasks matching the predicate.
func (s *stores) tasksWhere(match func(*task.Task) bool) []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*task.Task
	for _, t := range s.tasks {
		if match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *stores) putResult(taskID string, r *task.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[taskID] = r
}

func (s *stores) getResult(taskID string) (*task.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[taskID]
	return r, ok
}
