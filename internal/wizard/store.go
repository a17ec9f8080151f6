package wizard

import "sync"

// Store hands out one Machine per session key. Machines live for the process
// lifetime; there is no persistence across restarts.
type Store struct {
	mu       sync.Mutex
	machines map[string]*Machine
	factory  func(key string) *Machine
}

func NewStore(factory func(key string) *Machine) *Store {
	return &Store{
		machines: make(map[string]*Machine),
		factory:  factory,
	}
}

func (s *Store) Get(key string) *Machine {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.machines[key]; ok {
		return m
	}
	m := s.factory(key)
	s.machines[key] = m
	return m
}

// Reset replaces the session's machine with a fresh one, dropping its state
// and history.
func (s *Store) Reset(key string) *Machine {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.factory(key)
	s.machines[key] = m
	return m
}
