package extract

import "testing"

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(Config{
		CodePattern:   `\d{4,8}`,
		SenderPattern: `[\[【](.*?)[\]】]`,
		MailProviders: []string{"com.google.android.gm"},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func TestCode(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"six digit code", "【TestBank】Your verification code is 123456.", "123456"},
		{"four digit code", "Code: 1234", "1234"},
		{"eight digit code", "Use 12345678 to log in", "12345678"},
		{"first match wins", "123456 then 654321", "123456"},
		{"too short", "PIN 123", ""},
		{"no digits", "hello there", ""},
		{"empty message", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Code(tt.message); got != tt.want {
				t.Errorf("Code(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestSender(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name     string
		message  string
		provider string
		title    string
		want     string
	}{
		{
			name:     "numeric title, bracketed sender in body",
			message:  "【TestBank】Your code is 123456",
			provider: "com.android.mms",
			title:    "10086",
			want:     "TestBank",
		},
		{
			name:     "numeric title, ascii brackets",
			message:  "[PayApp] code 9876",
			provider: "com.android.mms",
			title:    "95188",
			want:     "PayApp",
		},
		{
			name:     "non-numeric title wins over body brackets",
			message:  "【SomeBank】code 123456",
			provider: "com.android.mms",
			title:    "PayApp",
			want:     "PayApp",
		},
		{
			name:     "allowlisted provider keeps numeric title",
			message:  "【SomeBank】code 123456",
			provider: "com.google.android.gm",
			title:    "10086",
			want:     "10086",
		},
		{
			name:     "numeric title, no brackets in body",
			message:  "Your code is 123456",
			provider: "com.android.mms",
			title:    "10086",
			want:     "",
		},
		{
			name:     "empty title treated as non-numeric",
			message:  "【SomeBank】code 123456",
			provider: "com.android.mms",
			title:    "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Sender(tt.message, tt.provider, tt.title); got != tt.want {
				t.Errorf("Sender(%q, %q, %q) = %q, want %q",
					tt.message, tt.provider, tt.title, got, tt.want)
			}
		})
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	if _, err := New(Config{CodePattern: `(`, SenderPattern: `x`}); err == nil {
		t.Error("New should fail on an invalid code pattern")
	}
	if _, err := New(Config{CodePattern: `x`, SenderPattern: `(`}); err == nil {
		t.Error("New should fail on an invalid sender pattern")
	}
}
