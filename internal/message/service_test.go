package message

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hxabcd/sms-code-sync/internal/domain"
	"github.com/hxabcd/sms-code-sync/internal/extract"
	"github.com/hxabcd/sms-code-sync/internal/profile"
)

type captureBroadcaster struct {
	published []domain.CodeRecord
}

func (c *captureBroadcaster) Publish(rec domain.CodeRecord) {
	c.published = append(c.published, rec)
}

func newTestService(t *testing.T) (*Service, *captureBroadcaster) {
	t.Helper()
	extractor, err := extract.New(extract.Config{
		CodePattern:   `\d{4,8}`,
		SenderPattern: `[\[【](.*?)[\]】]`,
		MailProviders: []string{"com.google.android.gm"},
	})
	if err != nil {
		t.Fatalf("extract.New failed: %v", err)
	}

	b := &captureBroadcaster{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewService(logger, extractor, b)
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s, b
}

func TestProcess(t *testing.T) {
	s, b := newTestService(t)
	p := profile.New("bank", "JBSWY3DPEHPK3PXP", 180, 3)

	rec, err := s.Process(p, Data{
		Message:  "【TestBank】Your verification code is 123456.",
		Provider: "com.android.mms",
		Title:    "10086",
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if rec.Code != "123456" {
		t.Errorf("Code = %q, want %q", rec.Code, "123456")
	}
	if rec.Sender != "TestBank" {
		t.Errorf("Sender = %q, want %q", rec.Sender, "TestBank")
	}
	if rec.Provider != "com.android.mms" {
		t.Errorf("Provider = %q, want %q", rec.Provider, "com.android.mms")
	}
	if rec.Profile != "bank" {
		t.Errorf("Profile = %q, want %q", rec.Profile, "bank")
	}
	if rec.Timestamp != 1700000000 {
		t.Errorf("Timestamp = %d, want %d", rec.Timestamp, 1700000000)
	}

	history := p.History()
	if len(history) != 1 || history[0] != rec {
		t.Errorf("history = %v, want exactly the processed record", history)
	}

	if len(b.published) != 1 || b.published[0] != rec {
		t.Errorf("published = %v, want exactly one broadcast of the record", b.published)
	}
}

func TestProcess_NoCodeFound(t *testing.T) {
	s, b := newTestService(t)
	p := profile.New("bank", "JBSWY3DPEHPK3PXP", 180, 3)

	_, err := s.Process(p, Data{Message: "no digits here"})
	if !errors.Is(err, domain.ErrNoCodeFound) {
		t.Fatalf("err = %v, want ErrNoCodeFound", err)
	}

	if got := len(p.History()); got != 0 {
		t.Errorf("history length = %d, want 0 (failed ingestion must not store)", got)
	}
	if got := len(b.published); got != 0 {
		t.Errorf("published = %d events, want 0 (failed ingestion must not broadcast)", got)
	}
}

func TestProcess_Defaults(t *testing.T) {
	s, _ := newTestService(t)
	p := profile.New("bank", "JBSWY3DPEHPK3PXP", 180, 3)

	rec, err := s.Process(p, Data{Message: "code 4321"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if rec.Provider != "unknown" {
		t.Errorf("Provider = %q, want %q", rec.Provider, "unknown")
	}
	// Default title is non-numeric, so it is taken as the sender verbatim.
	if rec.Sender != "unknown" {
		t.Errorf("Sender = %q, want %q", rec.Sender, "unknown")
	}
}

func TestProcess_UnknownSenderStillStored(t *testing.T) {
	s, b := newTestService(t)
	p := profile.New("bank", "JBSWY3DPEHPK3PXP", 180, 3)

	rec, err := s.Process(p, Data{
		Message:  "Your code is 123456",
		Provider: "com.android.mms",
		Title:    "10086",
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if rec.Sender != "" {
		t.Errorf("Sender = %q, want empty (no bracket convention in body)", rec.Sender)
	}
	if len(p.History()) != 1 || len(b.published) != 1 {
		t.Error("record with unknown sender must still be stored and broadcast")
	}
}
