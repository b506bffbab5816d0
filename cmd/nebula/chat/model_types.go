package chat

import (
	"context"
	"time"

	"nebula/cmd/nebula/ui"
	"nebula/internal/api"
	"nebula/internal/config"
	"nebula/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

// ViewMode determines which view is active.
type ViewMode int

const (
	LoginView ViewMode = iota
	SignupView
	ChatView
)

// authField indexes the focused input on the auth forms.
type authField int

const (
	fieldEmail authField = iota
	fieldPassword
)

// Entry is one line of the transcript. User-authored entries never carry
// category or sentiment; only error entries set IsError.
type Entry struct {
	Text      string
	IsUser    bool
	Category  string
	Sentiment string
	IsError   bool
	Time      time.Time
}

// Backend is the slice of the API client the TUI depends on. Satisfied by
// *api.Client; faked in tests.
type Backend interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	VerifyToken(ctx context.Context, token string) (map[string]any, error)
	SendMessage(ctx context.Context, token, text string) (api.ChatReply, error)
	CreateUser(ctx context.Context, email, password, database, collection string) error
}

// Model is the bubbletea model for the interactive support client.
type Model struct {
	// UI components
	viewport  viewport.Model
	textarea  textarea.Model
	email     textinput.Model
	password  textinput.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	viewMode ViewMode

	// Boot state: true until the session bootstrapper reports back.
	booting bool

	// Chat state
	transcript []Entry
	sending    bool
	// sendSeq tags each submission; replies carrying a stale sequence are
	// discarded instead of mutating state for an abandoned request.
	sendSeq int

	// Auth form state
	focus     authField
	formError string
	formBusy  bool

	// Dependencies
	store   *session.Store
	backend Backend
	cfg     config.Config
	logger  *zap.Logger

	width  int
	height int
	ready  bool
}

// Messages for tea updates.
type (
	// bootDoneMsg carries the bootstrapper's verdict on the persisted token.
	bootDoneMsg struct {
		sess session.Session
	}

	// loginDoneMsg carries the outcome of a login submission.
	loginDoneMsg struct {
		result api.LoginResult
		err    error
	}

	// signupDoneMsg carries the outcome of a signup submission.
	signupDoneMsg struct {
		err error
	}

	// chatReplyMsg carries the bot's reply (or failure) for submission seq.
	chatReplyMsg struct {
		seq   int
		reply api.ChatReply
		err   error
	}
)
