package engine

import "sync"

// Settings is the mutable per-page settings block. The adapter flips
// these according to its debug flag right after controller bootstrap.
type Settings struct {
	mu           sync.Mutex
	devTools     bool
	contextMenus bool
}

// NewSettings returns settings with the production defaults: developer
// tooling off, default context menus on.
func NewSettings() *Settings {
	return &Settings{contextMenus: true}
}

// SetDevToolsEnabled toggles developer tooling for the page.
func (s *Settings) SetDevToolsEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devTools = enabled
}

// DevToolsEnabled reports whether developer tooling is on.
func (s *Settings) DevToolsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devTools
}

// SetDefaultContextMenusEnabled toggles the built-in context menus.
func (s *Settings) SetDefaultContextMenusEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contextMenus = enabled
}

// DefaultContextMenusEnabled reports whether built-in context menus are
// on.
func (s *Settings) DefaultContextMenusEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contextMenus
}
