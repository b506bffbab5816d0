package chat

import (
	"fmt"
	"net/http"
	"strings"

	"nebula/internal/api"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bootDoneMsg:
		return m.handleBootDone(msg)

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case signupDoneMsg:
		return m.handleSignupDone(msg)

	case chatReplyMsg:
		return m.handleChatReply(msg)

	case tea.KeyMsg:
		// Global keybindings first.
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		}

		if m.booting {
			// Input is hidden until the bootstrapper reports back.
			return m, nil
		}

		switch m.viewMode {
		case ChatView:
			return m.updateChatView(msg)
		default:
			return m.updateAuthView(msg)
		}
	}

	return m, nil
}

// handleBootDone clears the loading flag (exactly once) and picks the
// initial view from the bootstrap verdict.
func (m Model) handleBootDone(msg bootDoneMsg) (tea.Model, tea.Cmd) {
	if !m.booting {
		return m, nil
	}
	m.booting = false

	if msg.sess.Authenticated() {
		m.logger.Debug("bootstrap restored session", zap.String("email", msg.sess.User.Email))
		m.enterChatView()
	} else {
		m.enterLoginView("")
	}
	return m, nil
}

// =============================================================================
// AUTH VIEWS (login / signup)
// =============================================================================

func (m Model) updateAuthView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.cycleAuthFocus()
		return m, nil

	case tea.KeyCtrlS:
		// Toggle between login and signup, keeping the typed email.
		if m.formBusy {
			return m, nil
		}
		if m.viewMode == LoginView {
			m.viewMode = SignupView
		} else {
			m.viewMode = LoginView
		}
		m.formError = ""
		m.password.SetValue("")
		return m, nil

	case tea.KeyEnter:
		if m.focus == fieldEmail {
			m.cycleAuthFocus()
			return m, nil
		}
		return m.submitAuthForm()
	}

	if m.formBusy {
		// Inputs are frozen while a request is in flight.
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == fieldEmail {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) cycleAuthFocus() {
	if m.focus == fieldEmail {
		m.focus = fieldPassword
		m.email.Blur()
		m.password.Focus()
	} else {
		m.focus = fieldEmail
		m.password.Blur()
		m.email.Focus()
	}
}

func (m Model) submitAuthForm() (tea.Model, tea.Cmd) {
	if m.formBusy {
		return m, nil
	}

	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.formError = "Email and password are required."
		return m, nil
	}

	m.formError = ""
	m.formBusy = true
	if m.viewMode == SignupView {
		return m, m.signupCmd(email, password)
	}
	return m, m.loginCmd(email, password)
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	// Discard results that arrive after the form was abandoned.
	if m.viewMode != LoginView || !m.formBusy {
		return m, nil
	}
	m.formBusy = false

	if msg.err != nil {
		m.logger.Warn("login failed", zap.Error(msg.err))
		m.formError = loginErrorMessage(msg.err)
		return m, nil
	}

	if err := m.store.Login(msg.result.Token, msg.result.User); err != nil {
		// The HTTP call succeeded but the account data was unusable; the
		// session stays unauthenticated, so this is a failed login.
		m.logger.Error("login returned unusable account data", zap.Error(err))
		m.formError = "Login failed. Please check credentials or try again."
		return m, nil
	}

	m.enterChatView()
	return m, nil
}

// loginErrorMessage maps a login failure to the line shown on the form.
// Backend details naming the credential problem are shown verbatim;
// everything else collapses to a generic message.
func loginErrorMessage(err error) string {
	if api.StatusOf(err) != 0 {
		if detail := err.Error(); strings.HasPrefix(detail, "Incorrect") {
			return detail
		}
		return "Login failed. Please check credentials or try again."
	}
	return "An error occurred connecting to the server. Please try again."
}

func (m Model) handleSignupDone(msg signupDoneMsg) (tea.Model, tea.Cmd) {
	if m.viewMode != SignupView || !m.formBusy {
		return m, nil
	}
	m.formBusy = false

	if msg.err != nil {
		m.logger.Warn("signup failed", zap.Error(msg.err))
		if api.StatusOf(msg.err) != 0 {
			m.formError = fmt.Sprintf("Signup failed: %s", msg.err.Error())
		} else {
			m.formError = "An error occurred connecting to the server. Please try again."
		}
		return m, nil
	}

	m.enterChatView()
	return m, nil
}

// =============================================================================
// CHAT VIEW
// =============================================================================

func (m Model) updateChatView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyCtrlL:
		// User-initiated logout.
		m.forceLogout("")
		return m, nil

	case tea.KeyEnter:
		return m.submitMessage()

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.sending {
		// Composer is disabled while a reply is pending.
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// submitMessage runs the idle → sending transition: reject blank input,
// require a token, append the user entry optimistically, fire the request.
func (m Model) submitMessage() (tea.Model, tea.Cmd) {
	if m.sending {
		return m, nil
	}

	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		return m, nil
	}

	token := m.store.Token()
	if token == "" {
		// No credential: forced logout without touching the network.
		m.forceLogout("Your session has expired. Please log in again.")
		return m, nil
	}

	m.textarea.Reset()
	m.appendEntry(Entry{Text: text, IsUser: true})
	m.sending = true
	m.sendSeq++

	return m, m.sendMessageCmd(m.sendSeq, token, text)
}

func (m Model) handleChatReply(msg chatReplyMsg) (tea.Model, tea.Cmd) {
	// Replies for abandoned submissions (logout, re-login, newer send) must
	// not mutate state.
	if msg.seq != m.sendSeq || m.viewMode != ChatView {
		return m, nil
	}
	m.sending = false

	if msg.err != nil {
		if api.StatusOf(msg.err) == http.StatusUnauthorized {
			// Authentication failure is the only error with a global side
			// effect: clear the session and route to login. No bot entry.
			m.forceLogout("Your session has expired. Please log in again.")
			return m, nil
		}

		m.logger.Warn("chat request failed", zap.Error(msg.err))
		m.appendEntry(Entry{
			Text:    fmt.Sprintf("Error: %s. Please try again.", msg.err.Error()),
			IsError: true,
		})

		// Some backends signal a dead token without a 401; the error text
		// heuristic catches those.
		if api.IsAuthFailure(msg.err) {
			m.forceLogout("Your session has expired. Please log in again.")
		}
		return m, nil
	}

	m.appendEntry(Entry{
		Text:      msg.reply.Response,
		Category:  msg.reply.Category,
		Sentiment: msg.reply.Sentiment,
	})
	return m, nil
}
