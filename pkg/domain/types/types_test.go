package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

func TestContactKey(t *testing.T) {
	t.Run("canonicalizes raw address", func(t *testing.T) {
		key := types.NewContactKey("  Jane@Example.COM ")
		gt.Value(t, key).Equal(types.ContactKey("jane@example.com"))
		gt.NoError(t, key.Validate())
		gt.Bool(t, key.IsAddress()).True()
	})

	t.Run("keeps malformed address as raw key", func(t *testing.T) {
		key := types.NewContactKey("Undisclosed Recipients")
		gt.NoError(t, key.Validate())
		gt.Bool(t, key.IsAddress()).False()
	})

	t.Run("rejects uncanonical key", func(t *testing.T) {
		key := types.ContactKey("Jane@example.com")
		gt.Value(t, key.Validate()).NotNil()
	})

	t.Run("rejects empty key", func(t *testing.T) {
		gt.Value(t, types.ContactKey("").Validate()).NotNil()
	})
}

func TestEventCategory(t *testing.T) {
	t.Run("valid categories", func(t *testing.T) {
		for _, c := range types.AllEventCategories() {
			gt.Bool(t, c.IsValid()).True()
		}
	})

	t.Run("invalid category", func(t *testing.T) {
		gt.Bool(t, types.EventCategory("phone_call").IsValid()).False()
	})

	t.Run("parse round trip", func(t *testing.T) {
		c, err := types.ParseEventCategory("meeting")
		gt.NoError(t, err).Required()
		gt.Value(t, c).Equal(types.EventCategoryMeeting)

		_, err = types.ParseEventCategory("unknown")
		gt.Value(t, err).NotNil()
	})
}

func TestRunMode(t *testing.T) {
	t.Run("valid modes", func(t *testing.T) {
		for _, m := range types.AllRunModes() {
			gt.Bool(t, m.IsValid()).True()
		}
	})

	t.Run("parse rejects unknown mode", func(t *testing.T) {
		_, err := types.ParseRunMode("PARTIAL")
		gt.Value(t, err).NotNil()
	})
}

func TestThreadID(t *testing.T) {
	t.Run("derived from seed message", func(t *testing.T) {
		id := types.NewThreadID(types.MessageID("msg-001"))
		gt.NoError(t, id.Validate())
		gt.Value(t, id.String()).Equal("msg-001")
	})

	t.Run("empty IDs are invalid", func(t *testing.T) {
		gt.Value(t, types.UserID("").Validate()).NotNil()
		gt.Value(t, types.MessageID("").Validate()).NotNil()
		gt.Value(t, types.ThreadID("").Validate()).NotNil()
	})
}
