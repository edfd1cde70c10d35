package tui

import "sync"

// Status receives the controller's notifications and navigation so the view
// can show them on its status line. Controller calls arrive from tea.Cmd
// goroutines.
type Status struct {
	mu    sync.Mutex
	text  string
	isErr bool
	route string

	lastErr string
}

func (s *Status) Success(msg string) {
	s.set(msg, false)
}

func (s *Status) Error(msg string) {
	s.set(msg, true)
}

func (s *Status) Navigate(route string) {
	s.mu.Lock()
	s.route = route
	s.mu.Unlock()
}

func (s *Status) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text, s.isErr
}

// LastError is the most recent error message, even if a success message
// was shown after it.
func (s *Status) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Status) Route() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.route
}

func (s *Status) set(msg string, isErr bool) {
	s.mu.Lock()
	s.text = msg
	s.isErr = isErr
	if isErr {
		s.lastErr = msg
	}
	s.mu.Unlock()
}
