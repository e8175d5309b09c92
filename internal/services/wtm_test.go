package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whentomeet/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWTMFixture() (*fakeWTMRepo, *fakeUserRepo, domain.WTMService) {
	wtmRepo := newFakeWTMRepo()
	userRepo := newFakeUserRepo()
	svc := NewWTMService(wtmRepo, userRepo, nil, testLogger())
	return wtmRepo, userRepo, svc
}

var testDates = []time.Time{
	time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
	time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
}

// memberState reports which of the three event-side lists holds the user,
// or "none". It fails the test if the user is in more than one list.
func memberState(t *testing.T, w *domain.WTM, userID string) string {
	t.Helper()
	var states []string
	if contains(w.Invited, userID) {
		states = append(states, "invited")
	}
	if contains(w.Accepted, userID) {
		states = append(states, "accepted")
	}
	if contains(w.Rejected, userID) {
		states = append(states, "rejected")
	}
	require.LessOrEqual(t, len(states), 1, "user %s is in multiple lists: %v", userID, states)
	if len(states) == 0 {
		return "none"
	}
	return states[0]
}

func ownerMessageTexts(u *domain.User) []string {
	out := make([]string, 0, len(u.Messages))
	for _, m := range u.Messages {
		out = append(out, m.Text)
	}
	return out
}

func countCompletion(u *domain.User, name string) int {
	n := 0
	for _, m := range u.Messages {
		if m.Text == "All guests have responded to your WTM: "+name {
			n++
		}
	}
	return n
}

func TestWTMService_Create(t *testing.T) {
	_, userRepo, svc := newWTMFixture()
	alice := userRepo.add("alice")
	bob := userRepo.add("bob")

	w, err := svc.Create(context.Background(), alice.ID, "Team dinner", testDates, "18:00", "22:00",
		[]string{"bob", "bob", "alice", "ghost"})
	require.NoError(t, err)

	assert.NotEmpty(t, w.ID)
	assert.GreaterOrEqual(t, w.Identifier, 0)
	assert.Less(t, w.Identifier, 100000)
	assert.Equal(t, []string{bob.ID}, w.Invited, "duplicates, the owner, and unknown usernames are skipped")
	assert.Empty(t, w.Accepted)
	assert.Empty(t, w.Rejected)

	assert.Contains(t, alice.OwnedWTMs, w.ID)
	assert.Contains(t, bob.InvitedWTMs, w.ID)
	require.Len(t, bob.Messages, 1)
	assert.Equal(t, "You have been invited to Team dinner. Click to accept/decline", bob.Messages[0].Text)
	assert.Equal(t, w.Identifier, bob.Messages[0].EventID)
}

func TestWTMService_Create_RedrawsIdentifierOnCollision(t *testing.T) {
	wtmRepo, userRepo, svc := newWTMFixture()
	alice := userRepo.add("alice")
	wtmRepo.dupFirst = 3

	w, err := svc.Create(context.Background(), alice.ID, "Retry", testDates, "09:00", "17:00", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, w.ID)
}

func TestWTMService_Create_GivesUpAfterRepeatedCollisions(t *testing.T) {
	wtmRepo, userRepo, svc := newWTMFixture()
	alice := userRepo.add("alice")
	wtmRepo.dupFirst = identifierAttempts

	_, err := svc.Create(context.Background(), alice.ID, "Retry", testDates, "09:00", "17:00", nil)
	require.ErrorIs(t, err, domain.ErrDuplicateIdentifier)
}

func TestWTMService_Invite(t *testing.T) {
	_, userRepo, svc := newWTMFixture()
	alice := userRepo.add("alice")
	bob := userRepo.add("bob")
	carol := userRepo.add("carol")
	ctx := context.Background()

	w, err := svc.Create(ctx, alice.ID, "Standup", testDates, "09:00", "10:00", nil)
	require.NoError(t, err)

	t.Run("non-owner cannot invite", func(t *testing.T) {
		assert.ErrorIs(t, svc.Invite(ctx, w.Identifier, bob.ID, "carol"), domain.ErrForbidden)
	})

	t.Run("owner cannot invite themselves", func(t *testing.T) {
		assert.ErrorIs(t, svc.Invite(ctx, w.Identifier, alice.ID, "alice"), domain.ErrSelfInvite)
	})

	t.Run("unknown event", func(t *testing.T) {
		assert.ErrorIs(t, svc.Invite(ctx, (w.Identifier+1)%100000, alice.ID, "bob"), domain.ErrNotFound)
	})

	t.Run("invite moves user to invited on both sides", func(t *testing.T) {
		require.NoError(t, svc.Invite(ctx, w.Identifier, alice.ID, "bob"))
		assert.Equal(t, "invited", memberState(t, w, bob.ID))
		assert.Contains(t, bob.InvitedWTMs, w.ID)
		require.Len(t, bob.Messages, 1)
	})

	t.Run("double invite is a soft conflict with state unchanged", func(t *testing.T) {
		err := svc.Invite(ctx, w.Identifier, alice.ID, "bob")
		assert.ErrorIs(t, err, domain.ErrAlreadyInvited)
		assert.True(t, domain.IsTransitionError(err))
		assert.Equal(t, "invited", memberState(t, w, bob.ID))
		assert.Len(t, bob.Messages, 1, "no duplicate inbox message")
	})

	t.Run("inviting an accepted guest is rejected", func(t *testing.T) {
		require.NoError(t, svc.Accept(ctx, w.Identifier, bob.ID))
		assert.ErrorIs(t, svc.Invite(ctx, w.Identifier, alice.ID, "bob"), domain.ErrAlreadyAccepted)
	})

	t.Run("re-invite clears a rejection", func(t *testing.T) {
		require.NoError(t, svc.Invite(ctx, w.Identifier, alice.ID, "carol"))
		require.NoError(t, svc.Decline(ctx, w.Identifier, carol.ID))
		assert.Equal(t, "rejected", memberState(t, w, carol.ID))

		require.NoError(t, svc.Invite(ctx, w.Identifier, alice.ID, "carol"))
		assert.Equal(t, "invited", memberState(t, w, carol.ID))
	})
}

func TestWTMService_AcceptDeclineLeave(t *testing.T) {
	_, userRepo, svc := newWTMFixture()
	alice := userRepo.add("alice")
	bob := userRepo.add("bob")
	ctx := context.Background()

	w, err := svc.Create(ctx, alice.ID, "Lunch", testDates, "12:00", "13:00", []string{"bob"})
	require.NoError(t, err)

	t.Run("owner cannot accept their own event", func(t *testing.T) {
		assert.ErrorIs(t, svc.Accept(ctx, w.Identifier, alice.ID), domain.ErrForbidden)
	})

	t.Run("accept moves invited to accepted on both sides", func(t *testing.T) {
		require.NoError(t, svc.Accept(ctx, w.Identifier, bob.ID))
		assert.Equal(t, "accepted", memberState(t, w, bob.ID))
		assert.NotContains(t, bob.InvitedWTMs, w.ID)
		assert.Contains(t, bob.ParticipantWTMs, w.ID)
		assert.Contains(t, ownerMessageTexts(alice), "bob has joined your WTM Lunch")
	})

	t.Run("accept twice is not invited", func(t *testing.T) {
		assert.ErrorIs(t, svc.Accept(ctx, w.Identifier, bob.ID), domain.ErrNotInvited)
	})

	t.Run("leave returns an accepted guest to none", func(t *testing.T) {
		require.NoError(t, svc.Leave(ctx, w.Identifier, bob.ID))
		assert.Equal(t, "none", memberState(t, w, bob.ID))
		assert.NotContains(t, bob.ParticipantWTMs, w.ID)
		assert.Contains(t, ownerMessageTexts(alice), "bob has left your WTM Lunch")
	})

	t.Run("leave twice is a soft conflict", func(t *testing.T) {
		assert.ErrorIs(t, svc.Leave(ctx, w.Identifier, bob.ID), domain.ErrAlreadyLeft)
	})

	t.Run("a left guest can be invited again", func(t *testing.T) {
		require.NoError(t, svc.Invite(ctx, w.Identifier, alice.ID, "bob"))
		assert.Equal(t, "invited", memberState(t, w, bob.ID))
	})

	t.Run("decline moves invited to rejected and notifies the owner", func(t *testing.T) {
		require.NoError(t, svc.Decline(ctx, w.Identifier, bob.ID))
		assert.Equal(t, "rejected", memberState(t, w, bob.ID))
		assert.NotContains(t, bob.InvitedWTMs, w.ID)
		assert.Contains(t, ownerMessageTexts(alice), "bob has declined your WTM invite for Lunch")
	})

	t.Run("a rejected guest cannot accept without a re-invite", func(t *testing.T) {
		assert.ErrorIs(t, svc.Accept(ctx, w.Identifier, bob.ID), domain.ErrAlreadyRejected)
		assert.Equal(t, "rejected", memberState(t, w, bob.ID))
	})
}

func TestWTMService_Respond(t *testing.T) {
	_, userRepo, svc := newWTMFixture()
	alice := userRepo.add("alice")
	bob := userRepo.add("bob")
	ctx := context.Background()

	w, err := svc.Create(ctx, alice.ID, "Poll", testDates, "10:00", "16:00", []string{"bob"})
	require.NoError(t, err)

	first := []domain.ResponseTime{{Day: testDates[0], TimeRange: []string{"10:00-12:00"}}}
	second := []domain.ResponseTime{{Day: testDates[1], TimeRange: []string{"14:00-16:00"}}}

	got, err := svc.Respond(ctx, w.Identifier, bob.ID, first)
	require.NoError(t, err)
	require.Len(t, got.Responses, 1)
	assert.Equal(t, bob.ID, got.Responses[0].Responder)
	assert.Equal(t, first, got.Responses[0].Times)

	// Re-submission replaces the previous response instead of stacking.
	got, err = svc.Respond(ctx, w.Identifier, bob.ID, second)
	require.NoError(t, err)
	require.Len(t, got.Responses, 1)
	assert.Equal(t, second, got.Responses[0].Times)

	got, err = svc.Respond(ctx, w.Identifier, alice.ID, first)
	require.NoError(t, err)
	assert.Len(t, got.Responses, 2)

	_, err = svc.Respond(ctx, (w.Identifier+1)%100000, bob.ID, first)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWTMService_CompletionNotification(t *testing.T) {
	times := []domain.ResponseTime{{Day: testDates[0], TimeRange: []string{"10:00-11:00"}}}

	t.Run("fires when the last response arrives after everyone accepted", func(t *testing.T) {
		_, userRepo, svc := newWTMFixture()
		alice := userRepo.add("alice")
		bob := userRepo.add("bob")
		ctx := context.Background()

		w, err := svc.Create(ctx, alice.ID, "Poll", testDates, "10:00", "16:00", []string{"bob"})
		require.NoError(t, err)

		require.NoError(t, svc.Accept(ctx, w.Identifier, bob.ID))
		assert.Equal(t, 0, countCompletion(alice, "Poll"), "not complete before any response")

		_, err = svc.Respond(ctx, w.Identifier, alice.ID, times)
		require.NoError(t, err)
		assert.Equal(t, 0, countCompletion(alice, "Poll"), "one response for one guest plus owner is not complete")

		_, err = svc.Respond(ctx, w.Identifier, bob.ID, times)
		require.NoError(t, err)
		assert.Equal(t, 1, countCompletion(alice, "Poll"))
	})

	t.Run("fires when the last invitee accepts having already responded", func(t *testing.T) {
		_, userRepo, svc := newWTMFixture()
		alice := userRepo.add("alice")
		bob := userRepo.add("bob")
		ctx := context.Background()

		w, err := svc.Create(ctx, alice.ID, "Poll", testDates, "10:00", "16:00", []string{"bob"})
		require.NoError(t, err)

		_, err = svc.Respond(ctx, w.Identifier, alice.ID, times)
		require.NoError(t, err)
		_, err = svc.Respond(ctx, w.Identifier, bob.ID, times)
		require.NoError(t, err)
		assert.Equal(t, 0, countCompletion(alice, "Poll"), "still an invitation pending")

		require.NoError(t, svc.Accept(ctx, w.Identifier, bob.ID))
		assert.Equal(t, 1, countCompletion(alice, "Poll"))
	})

	t.Run("fires when the last invitee declines", func(t *testing.T) {
		_, userRepo, svc := newWTMFixture()
		alice := userRepo.add("alice")
		bob := userRepo.add("bob")
		ctx := context.Background()

		w, err := svc.Create(ctx, alice.ID, "Poll", testDates, "10:00", "16:00", []string{"bob"})
		require.NoError(t, err)

		_, err = svc.Respond(ctx, w.Identifier, alice.ID, times)
		require.NoError(t, err)
		require.NoError(t, svc.Decline(ctx, w.Identifier, bob.ID))
		assert.Equal(t, 1, countCompletion(alice, "Poll"))
	})

	t.Run("does not fire for a zero-invitee poll with no responses", func(t *testing.T) {
		_, userRepo, svc := newWTMFixture()
		alice := userRepo.add("alice")
		bob := userRepo.add("bob")
		ctx := context.Background()

		w, err := svc.Create(ctx, alice.ID, "Poll", testDates, "10:00", "16:00", []string{"bob"})
		require.NoError(t, err)

		// Declining before the owner has responded empties the invited list with
		// zero responses on record: 0 != 0+1, so nothing fires.
		require.NoError(t, svc.Decline(ctx, w.Identifier, bob.ID))
		assert.Equal(t, 0, countCompletion(alice, "Poll"))
	})
}

func TestWTMService_Delete(t *testing.T) {
	wtmRepo, userRepo, svc := newWTMFixture()
	alice := userRepo.add("alice")
	bob := userRepo.add("bob")
	carol := userRepo.add("carol")
	ctx := context.Background()

	w, err := svc.Create(ctx, alice.ID, "Offsite", testDates, "09:00", "18:00", []string{"bob", "carol"})
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, w.Identifier, bob.ID))

	t.Run("non-owner delete is indistinguishable from missing", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, w.Identifier, bob.ID), domain.ErrNotFound)
	})

	t.Run("owner delete cascades and notifies every member", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, w.Identifier, alice.ID))

		_, err := wtmRepo.GetByIdentifier(ctx, w.Identifier)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.NotContains(t, alice.OwnedWTMs, w.ID)
		assert.NotContains(t, bob.ParticipantWTMs, w.ID)
		assert.NotContains(t, carol.InvitedWTMs, w.ID)
		assert.Contains(t, ownerMessageTexts(bob), "The WTM Offsite has been deleted.")
		assert.Contains(t, ownerMessageTexts(carol), "The WTM Offsite has been deleted.")
	})

	t.Run("delete after delete is not found", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, w.Identifier, alice.ID), domain.ErrNotFound)
	})
}

func TestWTMService_Remind(t *testing.T) {
	_, userRepo, svc := newWTMFixture()
	alice := userRepo.add("alice")
	bob := userRepo.add("bob")
	carol := userRepo.add("carol")
	ctx := context.Background()

	w, err := svc.Create(ctx, alice.ID, "Quarterly", testDates, "09:00", "12:00", []string{"bob", "carol"})
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, w.Identifier, bob.ID))

	t.Run("non-owner remind is not found", func(t *testing.T) {
		assert.ErrorIs(t, svc.Remind(ctx, w.Identifier, bob.ID), domain.ErrNotFound)
	})

	t.Run("reminder reaches invited and accepted members", func(t *testing.T) {
		require.NoError(t, svc.Remind(ctx, w.Identifier, alice.ID))
		want := "alice has sent you a reminder to update/finalize your availability poll for the WTM: Quarterly"
		assert.Contains(t, ownerMessageTexts(bob), want)
		assert.Contains(t, ownerMessageTexts(carol), want)
		for _, m := range alice.Messages {
			assert.False(t, strings.Contains(m.Text, "reminder"), "the owner does not remind themselves")
		}
	})
}

func TestWTMService_MembersAndRetrieve(t *testing.T) {
	_, userRepo, svc := newWTMFixture()
	alice := userRepo.add("alice")
	bob := userRepo.add("bob")
	carol := userRepo.add("carol")
	dave := userRepo.add("dave")
	ctx := context.Background()

	w, err := svc.Create(ctx, alice.ID, "Mixed", testDates, "08:00", "20:00", []string{"bob", "carol", "dave"})
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, w.Identifier, bob.ID))
	require.NoError(t, svc.Decline(ctx, w.Identifier, carol.ID))

	members, err := svc.Members(ctx, w.Identifier)
	require.NoError(t, err)
	assert.Equal(t, []string{"dave"}, members.Invited)
	assert.Equal(t, []string{"bob"}, members.Accepted)
	assert.Equal(t, []string{"carol"}, members.Rejected)
	assert.Contains(t, dave.InvitedWTMs, w.ID, "pending invitee keeps the user-side mirror")

	times := []domain.ResponseTime{{Day: testDates[0], TimeRange: []string{"08:00-10:00"}}}
	_, err = svc.Respond(ctx, w.Identifier, bob.ID, times)
	require.NoError(t, err)

	info, err := svc.Retrieve(ctx, w.Identifier, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mixed", info.Name)
	assert.Equal(t, "alice", info.Owner)
	assert.False(t, info.IsOwner)
	require.Len(t, info.Responses, 1)
	assert.Equal(t, "bob", info.Responses[0].Responder)
	assert.Equal(t, "bob", info.PersonalResponse.Responder)
	assert.Equal(t, times, info.PersonalResponse.Times)

	ownerView, err := svc.Retrieve(ctx, w.Identifier, alice.ID)
	require.NoError(t, err)
	assert.True(t, ownerView.IsOwner)
	assert.Empty(t, ownerView.PersonalResponse.Responder)
}

// The canonical two-user walkthrough: invite, accept, respond on both ends,
// and a final leave, checking state and notifications at each step.
func TestWTMService_AliceAndBobScenario(t *testing.T) {
	_, userRepo, svc := newWTMFixture()
	alice := userRepo.add("alice")
	bob := userRepo.add("bob")
	ctx := context.Background()

	w, err := svc.Create(ctx, alice.ID, "Coffee", testDates, "15:00", "17:00", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Invite(ctx, w.Identifier, alice.ID, "bob"))
	assert.Equal(t, "invited", memberState(t, w, bob.ID))

	require.NoError(t, svc.Accept(ctx, w.Identifier, bob.ID))
	assert.Equal(t, "accepted", memberState(t, w, bob.ID))

	times := []domain.ResponseTime{{Day: testDates[0], TimeRange: []string{"15:00-16:00"}}}
	_, err = svc.Respond(ctx, w.Identifier, alice.ID, times)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, w.Identifier, bob.ID, times)
	require.NoError(t, err)
	assert.Equal(t, 1, countCompletion(alice, "Coffee"))

	require.NoError(t, svc.Leave(ctx, w.Identifier, bob.ID))
	assert.Equal(t, "none", memberState(t, w, bob.ID))
	assert.NotContains(t, bob.ParticipantWTMs, w.ID)

	// Completion fired exactly once over the whole scenario.
	assert.Equal(t, 1, countCompletion(alice, "Coffee"))
}
