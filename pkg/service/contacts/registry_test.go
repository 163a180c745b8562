package contacts_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
	"github.com/inboxpulse/inboxpulse/pkg/repository/memory"
	"github.com/inboxpulse/inboxpulse/pkg/service/contacts"
)

const testUserID = types.UserID("user-001")

func TestRegistryAdd(t *testing.T) {
	t.Run("same address in different forms dedupes to one contact", func(t *testing.T) {
		repo := memory.New()
		reg := contacts.New(repo.Contact())

		reg.Add("Jane Doe <jane@Example.com>")
		reg.Add("jane@example.com")

		gt.Number(t, reg.Count()).Equal(1)
		c := reg.Get("jane@example.com")
		gt.Value(t, c).NotNil()
		gt.Number(t, c.InteractionCount).Equal(2)
		gt.Value(t, c.DisplayName).Equal("Jane Doe")
	})

	t.Run("name backfills a previously unknown contact", func(t *testing.T) {
		repo := memory.New()
		reg := contacts.New(repo.Contact())

		reg.Add("jane@example.com")
		gt.Value(t, reg.Get("jane@example.com").DisplayName).Equal("")

		reg.Add("Jane Doe <jane@example.com>")
		gt.Value(t, reg.Get("jane@example.com").DisplayName).Equal("Jane Doe")
	})

	t.Run("malformed address is recorded under its raw string", func(t *testing.T) {
		repo := memory.New()
		reg := contacts.New(repo.Contact())

		reg.Add("Undisclosed Recipients")
		gt.Number(t, reg.Count()).Equal(1)

		c := reg.Get("undisclosed recipients")
		gt.Value(t, c).NotNil()
		gt.Bool(t, c.Email.IsAddress()).False()
	})

	t.Run("empty input is ignored", func(t *testing.T) {
		repo := memory.New()
		reg := contacts.New(repo.Contact())

		reg.Add("")
		reg.AddAddress("  ", "")
		gt.Number(t, reg.Count()).Equal(0)
	})
}

func TestRegistryPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("save and reload keeps counts accumulating", func(t *testing.T) {
		repo := memory.New()

		first := contacts.New(repo.Contact())
		first.Add("Jane Doe <jane@example.com>")
		first.Add("bob@example.com")
		gt.NoError(t, first.SaveAll(ctx, testUserID)).Required()

		second := contacts.New(repo.Contact())
		gt.NoError(t, second.Load(ctx, testUserID)).Required()
		gt.Number(t, second.Count()).Equal(2)

		second.Add("jane@example.com")
		gt.Number(t, second.Get("jane@example.com").InteractionCount).Equal(2)
		gt.NoError(t, second.SaveAll(ctx, testUserID)).Required()

		stored, err := repo.Contact().Get(ctx, testUserID, "jane@example.com")
		gt.NoError(t, err).Required()
		gt.Number(t, stored.InteractionCount).Equal(2)
		gt.Value(t, stored.DisplayName).Equal("Jane Doe")
	})

	t.Run("save with empty registry is a no-op", func(t *testing.T) {
		repo := memory.New()
		reg := contacts.New(repo.Contact())
		gt.NoError(t, reg.SaveAll(ctx, testUserID))
	})

	t.Run("contacts are isolated per user", func(t *testing.T) {
		repo := memory.New()

		reg := contacts.New(repo.Contact())
		reg.Add("jane@example.com")
		gt.NoError(t, reg.SaveAll(ctx, testUserID)).Required()

		other := contacts.New(repo.Contact())
		gt.NoError(t, other.Load(ctx, types.UserID("user-002"))).Required()
		gt.Number(t, other.Count()).Equal(0)
	})
}

func TestRegistryAll(t *testing.T) {
	repo := memory.New()
	reg := contacts.New(repo.Contact())

	reg.Add("carol@example.com")
	reg.Add("alice@example.com")
	reg.Add("bob@example.com")

	all := reg.All()
	gt.Array(t, all).Length(3)
	gt.Value(t, all[0].Email).Equal(types.ContactKey("alice@example.com"))
	gt.Value(t, all[2].Email).Equal(types.ContactKey("carol@example.com"))
}
