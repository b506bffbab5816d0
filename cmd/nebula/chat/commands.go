package chat

import (
	"context"

	"nebula/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Network calls run as tea.Cmds: each resolves to exactly one typed message
// on the event loop, so the model is only ever mutated from Update.

// bootstrapCmd verifies any persisted token once at startup.
func (m Model) bootstrapCmd() tea.Cmd {
	store, backend, cfg, logger := m.store, m.backend, m.cfg, m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer cancel()

		sess := session.Bootstrap(ctx, store, backend, logger)
		return bootDoneMsg{sess: sess}
	}
}

// loginCmd exchanges credentials for a token.
func (m Model) loginCmd(email, password string) tea.Cmd {
	backend, cfg := m.backend, m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer cancel()

		result, err := backend.Login(ctx, email, password)
		return loginDoneMsg{result: result, err: err}
	}
}

// signupCmd registers a new account.
func (m Model) signupCmd(email, password string) tea.Cmd {
	backend, cfg := m.backend, m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer cancel()

		err := backend.CreateUser(ctx, email, password, cfg.SignupDatabase, cfg.SignupCollection)
		return signupDoneMsg{err: err}
	}
}

// sendMessageCmd submits one chat message under the given sequence number.
func (m Model) sendMessageCmd(seq int, token, text string) tea.Cmd {
	backend, cfg := m.backend, m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer cancel()

		reply, err := backend.SendMessage(ctx, token, text)
		return chatReplyMsg{seq: seq, reply: reply, err: err}
	}
}
