package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"nebula/cmd/nebula/chat"
	"nebula/internal/api"
	"nebula/internal/config"
	"nebula/internal/logging"
	"nebula/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool
	apiURL  string
	timeout time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nebula",
	Short: "Nebula - customer support chat client",
	Long: `Nebula is a terminal client for the Nebula customer support service.

It signs in with email and password, keeps the session token between runs,
and chats with the support bot. Bot replies carry the detected category and
sentiment of your message.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive TUI owns the terminal, so it logs to a file instead.
		if cmd.CalledAs() == "nebula" {
			return nil
		}

		var err error
		logger, err = logging.NewCLI(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// loginCmd exchanges credentials for a session token and stores it.
var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in and store the session token",
	Long: `Authenticates against the backend and stores the session token in the
config directory. The password is read from the --password flag, the
NEBULA_PASSWORD environment variable, or standard input.

Example:
  nebula login you@example.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd clears the stored session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session token",
	RunE:  runLogout,
}

// signupCmd registers a new account.
var signupCmd = &cobra.Command{
	Use:   "signup [email]",
	Short: "Create a new account",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSignup,
}

// sendCmd runs a one-shot chat round trip.
var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message to the support bot and print the reply",
	Long: `Sends a single message using the stored session and prints the bot's
reply along with the detected category and sentiment.

Example:
  nebula send "Where is my order?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

// whoamiCmd prints the current session state.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user, verifying the stored token",
	RunE:  runWhoami,
}

// healthCmd probes the backend.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	RunE:  runHealth,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (or set NEBULA_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (default from config)")

	loginCmd.Flags().String("password", "", "Password (or set NEBULA_PASSWORD)")
	signupCmd.Flags().String("password", "", "Password (or set NEBULA_PASSWORD)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and layers the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}
	if timeout > 0 {
		cfg.TimeoutSeconds = int(timeout / time.Second)
	}
	return cfg, nil
}

// openStore opens the file-backed session store in the config directory.
func openStore() (*session.Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	creds, err := session.OpenCredentials("file", dir)
	if err != nil {
		return nil, err
	}
	return session.NewStore(creds), nil
}

func newClient(cfg config.Config) *api.Client {
	l := logger
	if l == nil {
		l = logging.Nop()
	}
	return api.New(cfg.BaseURL,
		api.WithLogger(l),
		api.WithTimeout(cfg.Timeout()),
	)
}

// runInteractiveChat starts the interactive chat interface.
func runInteractiveChat() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	fileLogger, err := logging.NewFile(dir, verbose)
	if err != nil {
		fileLogger = logging.Nop()
	}
	defer func() { _ = fileLogger.Sync() }()

	client := newClient(cfg)
	model := chat.New(store, client, cfg, fileLogger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}

	email, password, err := credentialsFromInput(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	result, err := newClient(cfg).Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := store.Login(result.Token, result.User); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	sess := store.Session()
	fmt.Printf("Logged in as %s\n", sess.User.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	store.Logout()
	fmt.Println("Logged out.")
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	email, password, err := credentialsFromInput(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	client := newClient(cfg)
	if err := client.CreateUser(ctx, email, password, cfg.SignupDatabase, cfg.SignupCollection); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	fmt.Printf("Account created for %s. Run 'nebula login' to sign in.\n", email)
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}

	token := store.Token()
	if token == "" {
		return fmt.Errorf("not logged in; run 'nebula login' first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	reply, err := newClient(cfg).SendMessage(ctx, token, strings.Join(args, " "))
	if err != nil {
		if api.IsAuthFailure(err) {
			store.Logout()
			return fmt.Errorf("session expired; run 'nebula login' again")
		}
		return err
	}

	fmt.Println(reply.Response)
	if reply.Category != "" {
		fmt.Printf("Category: %s\n", reply.Category)
	}
	if reply.Sentiment != "" {
		fmt.Printf("Sentiment: %s\n", reply.Sentiment)
	}
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	sess := session.Bootstrap(ctx, store, newClient(cfg), logger)
	if !sess.Authenticated() {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("Logged in as %s (id %s)\n", sess.User.Email, sess.User.ID)
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	if err := newClient(cfg).Health(ctx); err != nil {
		return err
	}
	fmt.Printf("Backend at %s is healthy.\n", cfg.BaseURL)
	return nil
}

// credentialsFromInput resolves the email from the positional argument and
// the password from the flag, environment, or standard input.
func credentialsFromInput(cmd *cobra.Command, args []string) (string, string, error) {
	var email string
	if len(args) > 0 {
		email = strings.TrimSpace(args[0])
	}
	if email == "" {
		fmt.Print("Email: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", "", err
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return "", "", fmt.Errorf("email is required")
	}

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("NEBULA_PASSWORD")
	}
	if password == "" {
		fmt.Print("Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", "", err
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}

	return email, password, nil
}
