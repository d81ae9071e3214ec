package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/neomorfeo/nettap/internal/adapter/notify"
	"github.com/neomorfeo/nettap/internal/domain"
)

func testLead() domain.Lead {
	lead := domain.NewLead("lead-1", domain.SourceComparison, domain.TariffSnapshot{
		TariffID:     "tariff-1",
		TariffName:   "Fiber Premium",
		ISPName:      "CityNet",
		SpeedMbps:    100,
		PriceMonthly: 45,
	})
	lead.FullName = "Aysel Mammadova"
	lead.Phone = "+994501234567"
	return lead
}

type fakeSMS struct {
	sent []notify.SMS
	err  error
}

func (f *fakeSMS) Name() string { return "fake-sms" }

func (f *fakeSMS) SendSMS(_ context.Context, msg notify.SMS) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeEmail struct {
	sent []notify.Email
	err  error
}

func (f *fakeEmail) Name() string { return "fake-email" }

func (f *fakeEmail) SendEmail(_ context.Context, msg notify.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type delivery struct {
	channel string
	kind    notify.Kind
	failed  bool
}

type recorder struct{ got []delivery }

func (r *recorder) RecordDelivery(channel string, kind notify.Kind, err error) {
	r.got = append(r.got, delivery{channel: channel, kind: kind, failed: err != nil})
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRender_Texts(t *testing.T) {
	lead := testLead()

	tests := []struct {
		name  string
		event notify.Event
		want  string
	}{
		{"created", notify.LeadCreated(lead), "Thank you for your interest! We received your request for Fiber Premium (CityNet). We'll contact you soon. - NetTap"},
		{"assigned", notify.LeadAssigned(lead, "Baku Online"), "Your internet request has been assigned to Baku Online. They will contact you shortly. - NetTap"},
		{"contacted", notify.StatusUpdated(lead, domain.StatusNew, domain.StatusContacted), "We have contacted you regarding your internet request. - NetTap"},
		{"qualified", notify.StatusUpdated(lead, domain.StatusContacted, domain.StatusQualified), "Good news! You qualify for Fiber Premium. We'll proceed with installation. - NetTap"},
		{"converted", notify.StatusUpdated(lead, domain.StatusInProgress, domain.StatusConverted), "Congratulations! Your internet service is now active. Welcome to CityNet! - NetTap"},
		{"cancelled", notify.StatusUpdated(lead, domain.StatusNew, domain.StatusCancelled), "Your internet request has been cancelled. Feel free to submit a new request anytime. - NetTap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := notify.Render(tt.event)
			if !ok {
				t.Fatal("expected a message")
			}
			if msg.SMS != tt.want {
				t.Errorf("sms = %q, want %q", msg.SMS, tt.want)
			}
			if msg.EmailSubject == "" || msg.EmailBody == "" {
				t.Error("expected email subject and body")
			}
		})
	}
}

func TestRender_SilentStatuses(t *testing.T) {
	for _, to := range []domain.Status{domain.StatusNew, domain.StatusAssignedToISP} {
		if _, ok := notify.Render(notify.StatusUpdated(testLead(), domain.StatusQualified, to)); ok {
			t.Errorf("status %s should not notify", to)
		}
	}
}

func TestRender_CreatedEmailListsTariff(t *testing.T) {
	msg, _ := notify.Render(notify.LeadCreated(testLead()))
	for _, want := range []string{"Dear Aysel Mammadova", "- Tariff: Fiber Premium", "- Speed: 100 Mbps", "45.00 AZN/month"} {
		if !strings.Contains(msg.EmailBody, want) {
			t.Errorf("email body missing %q:\n%s", want, msg.EmailBody)
		}
	}
}

func TestDispatch_SMSOnlyWithoutEmail(t *testing.T) {
	sms, email, rec := &fakeSMS{}, &fakeEmail{}, &recorder{}
	d := notify.NewDispatcher(sms, email, rec, discard())

	if err := d.Dispatch(context.Background(), notify.LeadCreated(testLead())); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(sms.sent) != 1 || sms.sent[0].To != "+994501234567" {
		t.Fatalf("sms sent = %+v", sms.sent)
	}
	if len(email.sent) != 0 {
		t.Errorf("email sent without address: %+v", email.sent)
	}
	if len(rec.got) != 1 || rec.got[0] != (delivery{notify.ChannelSMS, notify.KindCreated, false}) {
		t.Errorf("recorded = %+v", rec.got)
	}
}

func TestDispatch_SendsEmailWhenPresent(t *testing.T) {
	lead := testLead()
	lead.Email = "aysel@example.com"
	sms, email := &fakeSMS{}, &fakeEmail{}
	d := notify.NewDispatcher(sms, email, nil, discard())

	if err := d.Dispatch(context.Background(), notify.LeadCreated(lead)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(email.sent) != 1 {
		t.Fatalf("email sent = %d, want 1", len(email.sent))
	}
	if got := email.sent[0]; got.To != "aysel@example.com" || got.ToName != "Aysel Mammadova" {
		t.Errorf("email = %+v", got)
	}
}

func TestDispatch_ReturnsDeliveryFailures(t *testing.T) {
	lead := testLead()
	lead.Email = "aysel@example.com"
	boom := errors.New("gateway down")
	sms, email, rec := &fakeSMS{err: boom}, &fakeEmail{}, &recorder{}
	d := notify.NewDispatcher(sms, email, rec, discard())

	err := d.Dispatch(context.Background(), notify.LeadAssigned(lead, "CityNet"))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(email.sent) != 1 {
		t.Error("email should still be attempted after sms failure")
	}
	if len(rec.got) != 2 || !rec.got[0].failed || rec.got[1].failed {
		t.Errorf("recorded = %+v", rec.got)
	}
}

func TestDispatch_SilentEventSendsNothing(t *testing.T) {
	sms := &fakeSMS{}
	d := notify.NewDispatcher(sms, &fakeEmail{}, nil, discard())

	event := notify.StatusUpdated(testLead(), domain.StatusQualified, domain.StatusAssignedToISP)
	if err := d.Dispatch(context.Background(), event); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(sms.sent) != 0 {
		t.Errorf("sms sent = %+v", sms.sent)
	}
}

func TestLogSMSProvider_ValidatesE164(t *testing.T) {
	var buf bytes.Buffer
	p := notify.NewLogSMSProvider(slog.New(slog.NewJSONHandler(&buf, nil)), "")

	if err := p.SendSMS(context.Background(), notify.SMS{To: "0501234567", Body: "hi"}); !errors.Is(err, notify.ErrInvalidRecipient) {
		t.Errorf("err = %v, want ErrInvalidRecipient", err)
	}
	if buf.Len() != 0 {
		t.Errorf("rejected sms was logged: %s", buf.String())
	}

	body := strings.Repeat("x", 80)
	if err := p.SendSMS(context.Background(), notify.SMS{To: "+994501234567", Body: body}); err != nil {
		t.Fatalf("SendSMS: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log line: %v", err)
	}
	if entry["message"] != strings.Repeat("x", 50)+"..." {
		t.Errorf("message preview = %v", entry["message"])
	}
	if entry["from"] != "NetTap" {
		t.Errorf("from = %v", entry["from"])
	}
}

func TestSendGridProvider_PostsMail(t *testing.T) {
	var gotPath, gotAuth string
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := notify.NewSendGridProvider("SG.test", "noreply@nettap.az", "NetTap").WithHost(srv.URL)
	err := p.SendEmail(context.Background(), notify.Email{To: "aysel@example.com", Subject: "Hello", Body: "text"})
	if err != nil {
		t.Fatalf("SendEmail: %v", err)
	}
	if gotPath != "/v3/mail/send" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer SG.test" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if payload["subject"] != "Hello" {
		t.Errorf("subject = %v", payload["subject"])
	}
}

func TestSendGridProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := notify.NewSendGridProvider("SG.bad", "noreply@nettap.az", "NetTap").WithHost(srv.URL)
	err := p.SendEmail(context.Background(), notify.Email{To: "aysel@example.com", Subject: "Hello", Body: "text"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("err = %v, want status 401 error", err)
	}
}
