// Package chat provides the interactive TUI for the Nebula support client:
// login and signup forms, the chat transcript, and the session lifecycle
// that ties them together.
package chat

import (
	"fmt"
	"strings"
	"time"

	"nebula/cmd/nebula/ui"
	"nebula/internal/config"
	"nebula/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

// New builds the TUI model. The store and backend are injected so every view
// shares the single session owner.
func New(store *session.Store, backend Backend, cfg config.Config, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	styles := ui.NewStyles(ui.ThemeByName(cfg.Theme))

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Prompt = ""
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Prompt = ""

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		email:    email,
		password: password,
		textarea: ta,
		spinner:  sp,
		styles:   styles,
		viewMode: LoginView,
		booting:  true,
		store:    store,
		backend:  backend,
		cfg:      cfg,
		logger:   logger,
	}
}

// Init starts the spinner and kicks off the one-shot session bootstrap.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.bootstrapCmd())
}

// enterChatView switches to the transcript, focusing the composer.
func (m *Model) enterChatView() {
	m.viewMode = ChatView
	m.formError = ""
	m.formBusy = false
	m.email.Blur()
	m.password.Blur()
	m.textarea.Focus()
	m.refreshViewport()
}

// enterLoginView routes back to the login form, resetting its inputs.
func (m *Model) enterLoginView(notice string) {
	m.viewMode = LoginView
	m.formError = notice
	m.formBusy = false
	m.password.SetValue("")
	m.password.Blur()
	m.email.Focus()
	m.focus = fieldEmail
}

// forceLogout clears the session and routes to login. The transcript is
// scoped to the authenticated session, so it goes too.
func (m *Model) forceLogout(notice string) {
	m.logger.Info("forcing logout", zap.String("notice", notice))
	m.store.Logout()
	m.transcript = nil
	m.sending = false
	m.sendSeq++ // invalidates any in-flight reply
	m.textarea.Blur()
	m.enterLoginView(notice)
}

// appendEntry adds a transcript entry and scrolls to it.
func (m *Model) appendEntry(e Entry) {
	e.Time = time.Now()
	m.transcript = append(m.transcript, e)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// resize lays out components for a new terminal size and (re)builds the
// markdown renderer at the matching word-wrap width.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	if width <= 0 || height <= 0 {
		return
	}

	chatWidth := width - 4
	if chatWidth < 20 {
		chatWidth = 20
	}

	inputHeight := m.textarea.Height() + 2
	vpHeight := height - inputHeight - 6
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = newViewport(chatWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(chatWidth)
	m.email.Width = min(chatWidth-4, 48)
	m.password.Width = min(chatWidth-4, 48)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(chatWidth-4),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.refreshViewport()
}

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// safeRenderMarkdown renders markdown with panic recovery.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return strings.TrimRight(rendered, "\n") + "\n"
		}
	}
	return content
}

// welcomeLine greets the user when the transcript is empty.
func (m Model) welcomeLine() string {
	name := "there"
	if sess := m.store.Session(); sess.User != nil {
		name = sess.User.Email
	}
	return fmt.Sprintf("👋 Hi %s! How can I help you today?", name)
}
