// Package cli implements assistantctl, a command line client for the
// assistant webhook.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/config"
	"github.com/lalithlochan/officebell/internal/observ"
	"github.com/lalithlochan/officebell/internal/webhook"
)

// ErrCallFailed is returned after the result has been printed when the
// assistant did not succeed, so the process exits non-zero.
var ErrCallFailed = errors.New("assistant call failed")

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Verbose    bool

	SessionID string
	FirstTime bool
	Employee  webhook.EmployeeDetails
}

// NewRootCommand creates the assistantctl root command. Flag defaults come
// from the same environment the gateway reads.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	defaults := webhook.DefaultConfig("")
	if cfg, err := config.Load(); err == nil {
		defaults = cfg.Webhook()
	}

	cmd := &cobra.Command{
		Use:   "assistantctl",
		Short: "Talk to the workplace assistant webhook",
		Long: `Send onboarding, text, voice and quick-action interactions to the
assistant webhook and print the call result as JSON.

Example:
  assistantctl ask "book Orion tomorrow at 10" --name "Ada Lovelace" --employee-id E-1`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.Endpoint, "endpoint", defaults.Endpoint, "assistant webhook URL")
	f.StringVar(&opts.Token, "token", defaults.AuthToken, "bearer token")
	f.DurationVar(&opts.Timeout, "timeout", defaults.Timeout, "per-attempt timeout")
	f.IntVar(&opts.Retries, "retries", defaults.MaxRetryAttempts, "maximum attempts")
	f.DurationVar(&opts.RetryDelay, "retry-delay", defaults.RetryDelay, "delay between attempts")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "log attempts to stderr")

	f.StringVar(&opts.SessionID, "session", "", "session id (a new one is generated when empty)")
	f.BoolVar(&opts.FirstTime, "first-time", false, "mark the employee as a first-time user")
	f.StringVar(&opts.Employee.FullName, "name", "", "employee full name")
	f.StringVar(&opts.Employee.EmployeeID, "employee-id", "", "employee id")
	f.StringVar(&opts.Employee.DateOfJoining, "joined", "", "date of joining (YYYY-MM-DD)")
	f.StringVar(&opts.Employee.WorkHours, "work-hours", "09:00-18:00", "work hours")
	f.StringVar(&opts.Employee.WorkMode, "work-mode", "hybrid", "work mode")
	f.StringVar(&opts.Employee.Department, "department", "", "department")
	f.StringVar(&opts.Employee.PhoneNumber, "phone", "", "phone number")
	f.StringVar(&opts.Employee.Location, "location", "", "office location")
	f.BoolVar(&opts.Employee.WFHEligibility, "wfh", false, "eligible to work from home")

	cmd.AddCommand(newOnboardCommand(opts))
	cmd.AddCommand(newAskCommand(opts))
	cmd.AddCommand(newVoiceCommand(opts))
	cmd.AddCommand(newQuickActionCommand(opts))

	return cmd
}

func (o *RootOptions) webhookConfig() webhook.Config {
	return webhook.Config{
		Endpoint:         o.Endpoint,
		Timeout:          o.Timeout,
		MaxRetryAttempts: o.Retries,
		RetryDelay:       o.RetryDelay,
		AuthToken:        o.Token,
	}
}

func (o *RootOptions) session() *webhook.Session {
	s := webhook.NewSession(o.Employee, o.FirstTime)
	if o.SessionID != "" {
		s = webhook.ResumeSession(o.SessionID, o.Employee, o.FirstTime)
	}
	return s
}

func (o *RootOptions) logger() (*zap.Logger, error) {
	if !o.Verbose {
		return zap.NewNop(), nil
	}
	return observ.NewLogger("development", "debug")
}

// send runs one call and prints its result.
func send(cmd *cobra.Command, opts *RootOptions, build func(*webhook.Session) webhook.Payload) error {
	if opts.Endpoint == "" {
		return errors.New("no endpoint: set --endpoint or ASSISTANT_WEBHOOK_URL")
	}

	logger, err := opts.logger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	client := webhook.NewClient(logger, &http.Client{})
	s := opts.session()
	result := s.Send(cmd.Context(), client, build(s), opts.webhookConfig())

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{SessionID: s.ID(), CallResult: result}); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if !result.Success {
		return ErrCallFailed
	}
	return nil
}

type output struct {
	SessionID string `json:"session_id"`
	webhook.CallResult
}
