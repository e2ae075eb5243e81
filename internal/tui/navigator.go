package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Navigator delivers store redirects to a running program. Redirects that arrive before
// a program is attached are replayed on Attach.
type Navigator struct {
	mu      sync.Mutex
	program *tea.Program
	pending []string
}

// Attach binds the navigator to p.
func (n *Navigator) Attach(p *tea.Program) {
	n.mu.Lock()
	n.program = p
	pending := n.pending
	n.pending = nil
	n.mu.Unlock()

	for _, path := range pending {
		p.Send(RedirectMsg{Path: path})
	}
}

// Redirect implements store.Navigator.
func (n *Navigator) Redirect(path string) {
	n.mu.Lock()
	p := n.program
	if p == nil {
		n.pending = append(n.pending, path)
	}
	n.mu.Unlock()

	if p != nil {
		// Send blocks until the program reads the message; never block the caller's request.
		go p.Send(RedirectMsg{Path: path})
	}
}
