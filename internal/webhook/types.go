package webhook

import "time"

// InteractionType tells the assistant what kind of turn a payload is.
type InteractionType string

const (
	InteractionOnboarding   InteractionType = "onboarding"
	InteractionVoiceCommand InteractionType = "voice_command"
	InteractionTextResponse InteractionType = "text_response"
	InteractionQuickAction  InteractionType = "quick_action"
)

// EmployeeDetails is the profile block sent with every interaction.
// DateOfJoining is formatted YYYY-MM-DD.
type EmployeeDetails struct {
	FullName       string `json:"full_name"`
	EmployeeID     string `json:"employee_id"`
	DateOfJoining  string `json:"date_of_joining"`
	WorkHours      string `json:"work_hours"`
	WorkMode       string `json:"work_mode"`
	Department     string `json:"department"`
	PhoneNumber    string `json:"phone_number"`
	Location       string `json:"location"`
	WFHEligibility bool   `json:"wfh_eligibility"`
}

// Payload is the request body posted to the assistant endpoint.
type Payload struct {
	FirstTimeUser   bool            `json:"first_time_user"`
	IsAudio         bool            `json:"isAudio"`
	InteractionType InteractionType `json:"interaction_type"`
	SessionID       string          `json:"sessionId"`
	UserInput       string          `json:"user_input,omitempty"`
	EmployeeDetails EmployeeDetails `json:"employee_details"`
}

// Response is the assistant's reply.
type Response struct {
	Success            bool     `json:"success"`
	Message            string   `json:"message,omitempty"`
	Error              string   `json:"error,omitempty"`
	Timestamp          string   `json:"timestamp,omitempty"`
	OnboardingMessages []string `json:"onboarding_messages,omitempty"`
	QuickActions       []string `json:"quick_actions,omitempty"`
	NextSteps          []string `json:"next_steps,omitempty"`
}

// FailureKind classifies why an attempt did not succeed.
type FailureKind string

const (
	FailureNone        FailureKind = "none"
	FailureTimeout     FailureKind = "timeout"
	FailureTransport   FailureKind = "transport"
	FailureApplication FailureKind = "application"
)

// CallResult is returned by Client.Call whatever the outcome.
type CallResult struct {
	Success  bool          `json:"success"`
	Response *Response     `json:"response,omitempty"`
	Error    string        `json:"error,omitempty"`
	Failure  FailureKind   `json:"failure"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
}
