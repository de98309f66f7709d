package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lalithlochan/officebell/internal/webhook"
)

func newOnboardCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "onboard",
		Short: "Start the onboarding conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return send(cmd, opts, (*webhook.Session).Onboarding)
		},
	}
}

func newAskCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <text>...",
		Short: "Send a typed message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return send(cmd, opts, func(s *webhook.Session) webhook.Payload {
				return s.TextResponse(text)
			})
		},
	}
}

func newVoiceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "voice <transcript>...",
		Short: "Send a voice command transcript",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript := strings.Join(args, " ")
			return send(cmd, opts, func(s *webhook.Session) webhook.Payload {
				return s.VoiceCommand(transcript)
			})
		},
	}
}

func newQuickActionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quick-action <action>",
		Short: "Trigger a quick action such as book_room or check_in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(cmd, opts, func(s *webhook.Session) webhook.Payload {
				return s.QuickAction(args[0])
			})
		},
	}
}
