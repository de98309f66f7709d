package webhook

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Session keeps one conversational session id stable across calls and
// builds payloads for it. A new session starts with Reset.
type Session struct {
	mu            sync.Mutex
	id            string
	firstTimeUser bool
	employee      EmployeeDetails
}

// NewSession starts a session for employee.
func NewSession(employee EmployeeDetails, firstTimeUser bool) *Session {
	return &Session{
		id:            uuid.NewString(),
		firstTimeUser: firstTimeUser,
		employee:      employee,
	}
}

// ResumeSession continues an existing session id, e.g. one handed back
// by a client between requests.
func ResumeSession(id string, employee EmployeeDetails, firstTimeUser bool) *Session {
	return &Session{
		id:            id,
		firstTimeUser: firstTimeUser,
		employee:      employee,
	}
}

// ID returns the current session id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Reset starts a new session id. The first-time flag is cleared.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.NewString()
	s.firstTimeUser = false
}

func (s *Session) payload(kind InteractionType, input string, audio bool) Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Payload{
		FirstTimeUser:   s.firstTimeUser,
		IsAudio:         audio,
		InteractionType: kind,
		SessionID:       s.id,
		UserInput:       input,
		EmployeeDetails: s.employee,
	}
}

func (s *Session) Onboarding() Payload {
	return s.payload(InteractionOnboarding, "", false)
}

func (s *Session) VoiceCommand(transcript string) Payload {
	return s.payload(InteractionVoiceCommand, transcript, true)
}

func (s *Session) TextResponse(text string) Payload {
	return s.payload(InteractionTextResponse, text, false)
}

func (s *Session) QuickAction(action string) Payload {
	return s.payload(InteractionQuickAction, action, false)
}

// Send calls the assistant with p. A successful onboarding call marks the
// user as no longer first time.
func (s *Session) Send(ctx context.Context, c *Client, p Payload, cfg Config) CallResult {
	res := c.Call(ctx, p, cfg)
	if res.Success && p.InteractionType == InteractionOnboarding {
		s.mu.Lock()
		s.firstTimeUser = false
		s.mu.Unlock()
	}
	return res
}
