package mailparse

import (
	"bufio"
	"bytes"
	netmail "net/mail"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
	"github.com/m-mizutani/goerr/v2"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// Sentinel errors for header extraction
var (
	ErrEmptyPayload    = goerr.New("message has no header payload")
	ErrMalformedHeader = goerr.New("malformed message header")
	ErrMissingSender   = goerr.New("message has no parseable From header")
)

// Extract is the single parsing boundary between raw cached payloads and the
// typed message record every downstream stage operates on. Header lookup is
// case-insensitive per RFC 5322.
//
// The returned message is identified by its Message-ID header when present,
// since In-Reply-To and References point at Message-IDs; the cache record ID
// is the fallback for providers that strip it.
func Extract(raw *model.RawMessage) (*model.Message, error) {
	if raw == nil || len(raw.RawHeaderPayload) == 0 {
		return nil, goerr.Wrap(ErrEmptyPayload, "cannot extract headers")
	}

	th, err := textproto.ReadHeader(bufio.NewReader(bytes.NewReader(raw.RawHeaderPayload)))
	if err != nil {
		return nil, goerr.Wrap(ErrMalformedHeader, "failed to read header block",
			goerr.V("message_id", raw.ID), goerr.V("cause", err.Error()))
	}
	header := mail.Header{Header: message.Header{Header: th}}

	msg := &model.Message{
		ID:           types.MessageID(raw.ID),
		ThreadIDHint: raw.ThreadIDHint,
		Timestamp:    raw.InternalTimestamp,
	}

	if ids, err := header.MsgIDList("Message-Id"); err == nil && len(ids) > 0 {
		msg.ID = types.MessageID(ids[0])
	}

	if subject, err := header.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = strings.TrimSpace(th.Get("Subject"))
	}

	name, addr := senderOf(header, th)
	if addr == "" {
		return nil, goerr.Wrap(ErrMissingSender, "cannot identify sender",
			goerr.V("message_id", raw.ID))
	}
	msg.From = addr
	msg.FromName = name

	msg.To = addressesOf(header, th, "To")
	msg.Cc = addressesOf(header, th, "Cc")

	if msg.Timestamp.IsZero() {
		date, err := header.Date()
		if err != nil {
			return nil, goerr.Wrap(ErrMalformedHeader, "message has no usable timestamp",
				goerr.V("message_id", raw.ID))
		}
		msg.Timestamp = date
	}

	if ids, err := header.MsgIDList("In-Reply-To"); err == nil && len(ids) > 0 {
		msg.InReplyTo = types.MessageID(ids[0])
	}
	if ids, err := header.MsgIDList("References"); err == nil {
		msg.References = make([]types.MessageID, 0, len(ids))
		for _, id := range ids {
			msg.References = append(msg.References, types.MessageID(id))
		}
	}

	return msg, nil
}

// senderOf extracts the From display name and address, tolerating headers
// that net/mail rejects.
func senderOf(header mail.Header, th textproto.Header) (string, string) {
	if addrs, err := header.AddressList("From"); err == nil && len(addrs) > 0 {
		return addrs[0].Name, addrs[0].Address
	}
	// Best effort: keep the raw header value so the interaction signal is
	// not lost on malformed senders.
	raw := strings.TrimSpace(th.Get("From"))
	if raw == "" {
		return "", ""
	}
	name, addr := ParseAddress(raw)
	return name, addr
}

// addressesOf extracts a recipient address list, falling back to a comma
// split on malformed headers.
func addressesOf(header mail.Header, th textproto.Header, key string) []string {
	if addrs, err := header.AddressList(key); err == nil {
		result := make([]string, 0, len(addrs))
		for _, a := range addrs {
			result = append(result, a.Address)
		}
		return result
	}

	raw := strings.TrimSpace(th.Get(key))
	if raw == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(raw, ",") {
		_, addr := ParseAddress(part)
		if addr != "" {
			result = append(result, addr)
		}
	}
	return result
}

// ParseAddress splits a raw `"Display Name <addr@example.com>"` or
// bare-address string into name and address. Malformed input (no parseable
// address) returns the trimmed raw string as the address so callers can
// record it as a best-effort identity.
func ParseAddress(raw string) (name string, addr string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ""
	}

	parsed, err := netmail.ParseAddress(trimmed)
	if err == nil {
		return parsed.Name, parsed.Address
	}

	// Angle brackets without a valid RFC address: salvage the bracketed part.
	if open := strings.LastIndex(trimmed, "<"); open >= 0 {
		if end := strings.Index(trimmed[open:], ">"); end > 1 {
			return strings.Trim(strings.TrimSpace(trimmed[:open]), `"`),
				strings.TrimSpace(trimmed[open+1 : open+end])
		}
	}

	return "", trimmed
}
