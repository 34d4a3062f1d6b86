package message

import (
	"log/slog"
	"time"

	"github.com/hxabcd/sms-code-sync/internal/domain"
	"github.com/hxabcd/sms-code-sync/internal/extract"
	"github.com/hxabcd/sms-code-sync/internal/profile"
)

// unknownField stands in for an omitted provider or title.
const unknownField = "unknown"

// Broadcaster publishes a record to all live stream listeners.
type Broadcaster interface {
	Publish(rec domain.CodeRecord)
}

// Data is one incoming forwarded message. Message is required; Provider
// and Title default to "unknown" when empty.
type Data struct {
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Title    string `json:"title"`
}

// Service runs the ingestion pipeline for incoming messages: extraction,
// profile history update, and broadcast.
type Service struct {
	logger      *slog.Logger
	extractor   *extract.Extractor
	broadcaster Broadcaster

	now func() time.Time
}

// NewService creates a message ingestion service.
func NewService(logger *slog.Logger, extractor *extract.Extractor, broadcaster Broadcaster) *Service {
	return &Service{
		logger:      logger,
		extractor:   extractor,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// Process extracts a code and sender from data, records the result in the
// profile's history, and publishes it to stream listeners. When no code is
// found the message is discarded: nothing is stored and nothing is
// broadcast, and ErrNoCodeFound is returned. A message whose sender cannot
// be determined is still valid.
func (s *Service) Process(p *profile.Profile, data Data) (domain.CodeRecord, error) {
	if data.Provider == "" {
		data.Provider = unknownField
	}
	if data.Title == "" {
		data.Title = unknownField
	}

	code := s.extractor.Code(data.Message)
	if code == "" {
		return domain.CodeRecord{}, domain.ErrNoCodeFound
	}

	rec := domain.CodeRecord{
		Code:      code,
		Sender:    s.extractor.Sender(data.Message, data.Provider, data.Title),
		Provider:  data.Provider,
		Timestamp: s.now().Unix(),
		Profile:   p.Name(),
	}

	p.RecordCode(rec)
	s.broadcaster.Publish(rec)

	s.logger.Info("message processed",
		"profile", p.Name(),
		"sender", rec.Sender,
		"provider", rec.Provider,
	)

	return rec, nil
}
