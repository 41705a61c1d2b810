// Package notification delivers clinic messages to patients over email
// and SMS. Channel choice is driven by the patient's recorded contact
// consent; delivery outcomes are returned to the caller, which owns
// their persistence (the reminder dispatcher writes them to history).
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Channel is a delivery channel. The values match the contact method
// strings stored on patient records.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one rendered message bound to a channel and address.
type Message struct {
	Channel Channel
	To      string
	Subject string
	Body    string
}

// EmailSender delivers one email message.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers one SMS message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Recipient is a patient's reachable addresses plus the channels they
// consented to. A channel missing from Consent is never used, even
// when an address exists.
type Recipient struct {
	Email   string
	Phone   string
	Consent []Channel
}

// Address returns the recipient's address for the channel, and whether
// the channel is usable: consented to and non-empty.
func (r Recipient) Address(ch Channel) (string, bool) {
	consented := false
	for _, c := range r.Consent {
		if c == ch {
			consented = true
			break
		}
	}
	if !consented {
		return "", false
	}
	switch ch {
	case ChannelEmail:
		return r.Email, r.Email != ""
	case ChannelSMS:
		return r.Phone, r.Phone != ""
	}
	return "", false
}

// Outcome is the result of one delivery attempt on one channel.
type Outcome struct {
	Channel Channel
	To      string
	Err     error
}

// Fill substitutes {{key}} placeholders in s with the values in data.
// Keys absent from data are left in place.
func Fill(s string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Manager routes messages to the configured channel senders.
type Manager struct {
	email EmailSender
	sms   SMSSender
}

func NewManager(email EmailSender, sms SMSSender) *Manager {
	return &Manager{email: email, sms: sms}
}

// Send delivers one message on its channel.
func (m *Manager) Send(ctx context.Context, msg Message) error {
	switch msg.Channel {
	case ChannelEmail:
		return m.email.SendEmail(ctx, msg.To, msg.Subject, msg.Body)
	case ChannelSMS:
		return m.sms.SendSMS(ctx, msg.To, msg.Body)
	}
	return fmt.Errorf("unsupported channel %q", msg.Channel)
}

// Deliver fans one rendered message out to every requested channel the
// recipient consented to and has an address for. Unusable channels are
// skipped silently and produce no outcome; an attempted channel always
// does, failed or not.
func (m *Manager) Deliver(ctx context.Context, rcpt Recipient, channels []Channel, subject, body string) []Outcome {
	var outcomes []Outcome
	for _, ch := range channels {
		to, ok := rcpt.Address(ch)
		if !ok {
			continue
		}
		err := m.Send(ctx, Message{Channel: ch, To: to, Subject: subject, Body: body})
		outcomes = append(outcomes, Outcome{Channel: ch, To: to, Err: err})
	}
	return outcomes
}

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// MockEmailSender records SendEmail calls; set Fail to make them error.
type MockEmailSender struct {
	mu    sync.Mutex
	calls []Message
	Fail  string
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Message{Channel: ChannelEmail, To: to, Subject: subject, Body: body})
	if m.Fail != "" {
		return errors.New(m.Fail)
	}
	return nil
}

// Calls returns a copy of the recorded messages.
func (m *MockEmailSender) Calls() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockSMSSender records SendSMS calls; set Fail to make them error.
type MockSMSSender struct {
	mu    sync.Mutex
	calls []Message
	Fail  string
}

func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Message{Channel: ChannelSMS, To: to, Body: body})
	if m.Fail != "" {
		return errors.New(m.Fail)
	}
	return nil
}

// Calls returns a copy of the recorded messages.
func (m *MockSMSSender) Calls() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.calls))
	copy(out, m.calls)
	return out
}
