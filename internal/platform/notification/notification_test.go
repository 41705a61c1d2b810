package notification

import (
	"context"
	"testing"
)

func TestFill(t *testing.T) {
	got := Fill("Dear {{patient}}, see you at {{time}}. {{missing}}", map[string]string{
		"patient": "Ann Lee",
		"time":    "9:00am",
	})
	want := "Dear Ann Lee, see you at 9:00am. {{missing}}"
	if got != want {
		t.Errorf("Fill: got %q, want %q", got, want)
	}
}

func TestRecipientAddress(t *testing.T) {
	r := Recipient{
		Email:   "ann@example.com",
		Phone:   "+15550100",
		Consent: []Channel{ChannelEmail},
	}

	to, ok := r.Address(ChannelEmail)
	if !ok || to != "ann@example.com" {
		t.Errorf("email address: got %q, %v", to, ok)
	}

	// Phone exists but the patient never consented to SMS.
	if _, ok := r.Address(ChannelSMS); ok {
		t.Error("SMS should be unusable without consent")
	}

	// Consent without an address is equally unusable.
	empty := Recipient{Consent: []Channel{ChannelEmail, ChannelSMS}}
	if _, ok := empty.Address(ChannelEmail); ok {
		t.Error("email should be unusable without an address")
	}
}

func TestManagerSend_RoutesByChannel(t *testing.T) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	m := NewManager(email, sms)

	if err := m.Send(context.Background(), Message{
		Channel: ChannelEmail, To: "ann@example.com", Subject: "Reminder", Body: "See you soon.",
	}); err != nil {
		t.Fatalf("send email: %v", err)
	}
	if err := m.Send(context.Background(), Message{
		Channel: ChannelSMS, To: "+15550100", Body: "See you soon.",
	}); err != nil {
		t.Fatalf("send sms: %v", err)
	}

	if calls := email.Calls(); len(calls) != 1 || calls[0].To != "ann@example.com" {
		t.Errorf("email calls: %+v", calls)
	}
	if calls := sms.Calls(); len(calls) != 1 || calls[0].To != "+15550100" {
		t.Errorf("sms calls: %+v", calls)
	}

	if err := m.Send(context.Background(), Message{Channel: "fax", To: "x"}); err == nil {
		t.Error("unknown channel should error")
	}
}

func TestDeliver_SkipsUnusableChannels(t *testing.T) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	m := NewManager(email, sms)

	rcpt := Recipient{
		Email:   "ann@example.com",
		Phone:   "+15550100",
		Consent: []Channel{ChannelEmail},
	}
	outcomes := m.Deliver(context.Background(), rcpt, []Channel{ChannelEmail, ChannelSMS}, "Reminder", "See you soon.")

	// SMS was requested but not consented to: no attempt, no outcome.
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].Channel != ChannelEmail || outcomes[0].To != "ann@example.com" || outcomes[0].Err != nil {
		t.Errorf("outcome: %+v", outcomes[0])
	}
	if len(sms.Calls()) != 0 {
		t.Errorf("sms should not have been attempted: %+v", sms.Calls())
	}
}

func TestDeliver_ReportsFailures(t *testing.T) {
	email := &MockEmailSender{Fail: "smtp unreachable"}
	sms := &MockSMSSender{}
	m := NewManager(email, sms)

	rcpt := Recipient{
		Email:   "ann@example.com",
		Phone:   "+15550100",
		Consent: []Channel{ChannelEmail, ChannelSMS},
	}
	outcomes := m.Deliver(context.Background(), rcpt, []Channel{ChannelEmail, ChannelSMS}, "Reminder", "See you soon.")

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Err == nil || outcomes[0].Err.Error() != "smtp unreachable" {
		t.Errorf("email outcome should carry the failure: %+v", outcomes[0])
	}
	// One channel failing never stops the next.
	if outcomes[1].Channel != ChannelSMS || outcomes[1].Err != nil {
		t.Errorf("sms outcome: %+v", outcomes[1])
	}
}
