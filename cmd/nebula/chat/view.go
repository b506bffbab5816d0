// This file contains view rendering for the TUI: boot screen, auth forms,
// and the chat transcript.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.booting {
		return m.renderBootScreen()
	}

	switch m.viewMode {
	case ChatView:
		return m.renderChat()
	default:
		return m.renderAuthForm()
	}
}

// =============================================================================
// BOOT SCREEN
// =============================================================================

func (m Model) renderBootScreen() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.styles.Header.Render(" Nebula Support "),
		"\n",
		m.spinner.View(),
		"\n",
		m.styles.Muted.Render("Verifying session..."),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// =============================================================================
// AUTH FORMS
// =============================================================================

func (m Model) renderAuthForm() string {
	title := "Login to Customer Support"
	action := "Login"
	switchHint := "ctrl+s: sign up instead"
	if m.viewMode == SignupView {
		title = "Create an Account"
		action = "Sign up"
		switchHint = "ctrl+s: back to login"
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(title) + "\n\n")

	if m.formError != "" {
		sb.WriteString(m.styles.Error.Render(m.formError) + "\n\n")
	}

	sb.WriteString(m.styles.Label.Render("Email") + "\n")
	sb.WriteString(m.styles.Input.Render(m.email.View()) + "\n\n")
	sb.WriteString(m.styles.Label.Render("Password") + "\n")
	sb.WriteString(m.styles.Input.Render(m.password.View()) + "\n\n")

	if m.formBusy {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
			m.spinner.View(), " ", m.styles.Muted.Render(action+" in progress...")))
	} else {
		sb.WriteString(m.styles.Badge.Render(" "+action+" ") +
			m.styles.Muted.Render("  press enter on the password field"))
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Muted.Render("tab: switch field • " + switchHint + " • esc: quit"))

	form := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Border).
		Padding(1, 3).
		Render(sb.String())

	header := m.styles.Header.Render(" Nebula Support ")
	body := lipgloss.JoinVertical(lipgloss.Center, header, "\n", form)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// =============================================================================
// CHAT VIEW
// =============================================================================

func (m Model) renderChat() string {
	header := m.renderHeader()
	chatView := m.styles.Content.Render(m.viewport.View())
	inputArea := m.styles.Input.Render(m.textarea.View())
	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" Nebula Support ")

	var who string
	if sess := m.store.Session(); sess.User != nil {
		who = m.styles.Muted.Render("Logged in as: " + sess.User.Email)
	}

	var status string
	if m.sending {
		status = lipgloss.JoinHorizontal(lipgloss.Center,
			m.spinner.View(), " ", m.styles.Badge.Render("Thinking..."))
	} else {
		status = m.styles.Success.Render("Ready")
	}

	headerLine := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status, "  ", who)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderFooter() string {
	timestamp := time.Now().Format("15:04")
	help := fmt.Sprintf("%s | enter: send | ctrl+l: logout | esc: quit", timestamp)
	return lipgloss.NewStyle().MarginTop(1).Render(m.styles.Muted.Render(help))
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 && !m.sending {
		return m.styles.Muted.Render(m.welcomeLine())
	}

	var sb strings.Builder
	for _, entry := range m.transcript {
		switch {
		case entry.IsUser:
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserMessage.Render(entry.Text))
			sb.WriteString("\n")

		case entry.IsError:
			sb.WriteString(m.styles.Error.MarginTop(1).Render("⚠ Error") + "\n")
			sb.WriteString(m.styles.ErrorEntry.Render(entry.Text))
			sb.WriteString("\n")

		default:
			botStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(botStyle.Render("Support Bot") + "\n")
			sb.WriteString(m.styles.BotMessage.Render(m.safeRenderMarkdown(entry.Text)))
			sb.WriteString("\n")
			if entry.Category != "" {
				sb.WriteString(m.styles.Meta.Render("Category: "+entry.Category) + "\n")
			}
			if entry.Sentiment != "" {
				sb.WriteString(m.styles.Meta.Render("Sentiment: "+entry.Sentiment) + "\n")
			}
		}
	}

	if m.sending {
		sb.WriteString(m.styles.Muted.MarginTop(1).Render("Support Bot is typing..."))
		sb.WriteString("\n")
	}

	return sb.String()
}
