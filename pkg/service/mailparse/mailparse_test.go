package mailparse_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
	"github.com/inboxpulse/inboxpulse/pkg/service/mailparse"
)

func rawMessage(id string, headers string) *model.RawMessage {
	return &model.RawMessage{
		ID:               types.MessageID(id),
		RawHeaderPayload: []byte(headers + "\r\n"),
	}
}

func TestExtract(t *testing.T) {
	t.Run("full header set", func(t *testing.T) {
		raw := rawMessage("cache-1",
			"Message-ID: <abc@mail.example.com>\r\n"+
				"Subject: Quarterly Planning\r\n"+
				"From: Jane Doe <jane@example.com>\r\n"+
				"To: Bob <bob@example.com>, carol@example.com\r\n"+
				"Cc: dave@example.com\r\n"+
				"Date: Mon, 10 Mar 2025 09:30:00 +0000\r\n"+
				"In-Reply-To: <root@mail.example.com>\r\n"+
				"References: <root@mail.example.com> <mid@mail.example.com>\r\n")
		raw.ThreadIDHint = "provider-thread-9"

		msg, err := mailparse.Extract(raw)
		gt.NoError(t, err).Required()

		gt.Value(t, msg.ID).Equal(types.MessageID("abc@mail.example.com"))
		gt.Value(t, msg.ThreadIDHint).Equal("provider-thread-9")
		gt.Value(t, msg.Subject).Equal("Quarterly Planning")
		gt.Value(t, msg.From).Equal("jane@example.com")
		gt.Value(t, msg.FromName).Equal("Jane Doe")
		gt.Array(t, msg.To).Length(2)
		gt.Array(t, msg.Cc).Length(1)
		gt.Value(t, msg.InReplyTo).Equal(types.MessageID("root@mail.example.com"))
		gt.Array(t, msg.References).Length(2)
	})

	t.Run("internal timestamp takes precedence over Date header", func(t *testing.T) {
		internal := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)
		raw := rawMessage("cache-2",
			"From: jane@example.com\r\n"+
				"Date: Mon, 10 Mar 2025 09:30:00 +0000\r\n")
		raw.InternalTimestamp = internal

		msg, err := mailparse.Extract(raw)
		gt.NoError(t, err).Required()
		gt.Value(t, msg.Timestamp).Equal(internal)
	})

	t.Run("falls back to Date header", func(t *testing.T) {
		raw := rawMessage("cache-3",
			"From: jane@example.com\r\n"+
				"Date: Mon, 10 Mar 2025 09:30:00 +0000\r\n")

		msg, err := mailparse.Extract(raw)
		gt.NoError(t, err).Required()
		gt.Value(t, msg.Timestamp.UTC()).Equal(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC))
	})

	t.Run("cache ID used when Message-ID header is absent", func(t *testing.T) {
		raw := rawMessage("cache-4",
			"From: jane@example.com\r\n"+
				"Date: Mon, 10 Mar 2025 09:30:00 +0000\r\n")

		msg, err := mailparse.Extract(raw)
		gt.NoError(t, err).Required()
		gt.Value(t, msg.ID).Equal(types.MessageID("cache-4"))
	})

	t.Run("missing sender is a per-record error", func(t *testing.T) {
		raw := rawMessage("cache-5", "Subject: orphan\r\nDate: Mon, 10 Mar 2025 09:30:00 +0000\r\n")

		_, err := mailparse.Extract(raw)
		gt.Error(t, err).Is(mailparse.ErrMissingSender)
	})

	t.Run("empty payload is a per-record error", func(t *testing.T) {
		_, err := mailparse.Extract(&model.RawMessage{ID: "cache-6"})
		gt.Error(t, err).Is(mailparse.ErrEmptyPayload)
	})
}

func TestParseAddress(t *testing.T) {
	cases := []struct {
		title    string
		input    string
		wantName string
		wantAddr string
	}{
		{
			title:    "display name form",
			input:    "Jane Doe <jane@Example.com>",
			wantName: "Jane Doe",
			wantAddr: "jane@Example.com",
		},
		{
			title:    "bare address",
			input:    "jane@example.com",
			wantName: "",
			wantAddr: "jane@example.com",
		},
		{
			title:    "malformed keeps raw string",
			input:    "Undisclosed Recipients",
			wantName: "",
			wantAddr: "Undisclosed Recipients",
		},
		{
			title:    "salvages bracketed address",
			input:    `"Ops;Alerts" <ops alert@example.com>`,
			wantName: "Ops;Alerts",
			wantAddr: "ops alert@example.com",
		},
		{
			title:    "empty input",
			input:    "   ",
			wantName: "",
			wantAddr: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			name, addr := mailparse.ParseAddress(tc.input)
			gt.Value(t, name).Equal(tc.wantName)
			gt.Value(t, addr).Equal(tc.wantAddr)
		})
	}
}
