package study

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDeck(n int) []Card {
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, Card{
			ID:    fmt.Sprintf("card-%d", i),
			Front: fmt.Sprintf("Q%d", i),
			Back:  fmt.Sprintf("A%d", i),
		})
	}
	return cards
}

func TestNewSession_EmptyDeck(t *testing.T) {
	_, err := NewSession(1, 1, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)

	_, err = NewSession(1, 1, []Card{})
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestNewSession_ShuffleIsPermutation(t *testing.T) {
	deck := makeDeck(20)
	session, err := NewSession(1, 1, deck)
	require.NoError(t, err)

	want := make([]string, 0, len(deck))
	for _, card := range deck {
		want = append(want, card.ID)
	}
	got := make([]string, 0, len(session.cards))
	for _, card := range session.cards {
		got = append(got, card.ID)
	}

	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
}

func TestNewSession_ShuffleVariesAcrossSessions(t *testing.T) {
	deck := makeDeck(10)

	orderOf := func(s *Session) string {
		ids := ""
		for _, card := range s.cards {
			ids += card.ID + ","
		}
		return ids
	}

	first, err := NewSession(1, 1, deck)
	require.NoError(t, err)

	// A single pair of identical orders is possible; across many trials at
	// least one must differ for a 10-card deck
	varied := false
	for i := 0; i < 50; i++ {
		next, err := NewSession(1, 1, deck)
		require.NoError(t, err)
		if orderOf(next) != orderOf(first) {
			varied = true
			break
		}
	}
	assert.True(t, varied, "50 shuffles of a 10-card deck never changed order")
}

func TestSession_FullRunTotals(t *testing.T) {
	const n = 7
	session, err := NewSession(1, 1, makeDeck(n))
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		_, err := session.Reveal()
		require.NoError(t, err)
		// Alternate correct and incorrect judgments
		require.NoError(t, session.Judge(i%2 == 0))
	}

	assert.True(t, session.Completed())
	assert.Equal(t, n, session.TotalAnswered())
	assert.Equal(t, n, session.CorrectAnswers()+len(session.CardErrors()))
	assert.Equal(t, 4, session.CorrectAnswers())
	assert.Len(t, session.CardErrors(), 3)
}

func TestSession_TransitionContract(t *testing.T) {
	session, err := NewSession(1, 1, makeDeck(2))
	require.NoError(t, err)

	// Judging before revealing is invalid
	assert.ErrorIs(t, session.Judge(true), ErrNotRevealed)

	_, err = session.Reveal()
	require.NoError(t, err)

	// Revealing twice is invalid
	_, err = session.Reveal()
	assert.ErrorIs(t, err, ErrAlreadyRevealed)

	require.NoError(t, session.Judge(true))
	_, err = session.Reveal()
	require.NoError(t, err)
	require.NoError(t, session.Judge(false))

	// Everything is invalid once completed
	assert.True(t, session.Completed())
	_, err = session.Reveal()
	assert.ErrorIs(t, err, ErrCompleted)
	assert.ErrorIs(t, session.Judge(true), ErrCompleted)
	_, err = session.Current()
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestSession_CurrentHidesBackUntilReveal(t *testing.T) {
	session, err := NewSession(1, 1, makeDeck(1))
	require.NoError(t, err)

	card, err := session.Current()
	require.NoError(t, err)
	assert.Empty(t, card.Back)
	assert.NotEmpty(t, card.Front)

	revealed, err := session.Reveal()
	require.NoError(t, err)
	assert.NotEmpty(t, revealed.Back)

	card, err = session.Current()
	require.NoError(t, err)
	assert.Equal(t, revealed.Back, card.Back)
}

func TestSession_TwoCardScenario(t *testing.T) {
	// First card judged correct, second incorrect
	session, err := NewSession(1, 1, []Card{
		{ID: "q1", Front: "Q1", Back: "A1"},
		{ID: "q2", Front: "Q2", Back: "A2"},
	})
	require.NoError(t, err)

	first, err := session.Reveal()
	require.NoError(t, err)
	require.NoError(t, session.Judge(true))

	second, err := session.Reveal()
	require.NoError(t, err)
	require.NoError(t, session.Judge(false))

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, session.Completed())
	assert.Equal(t, 1, session.CorrectAnswers())
	assert.Equal(t, 2, session.TotalAnswered())
	assert.Equal(t, []string{second.ID}, session.CardErrors())
}

func TestSession_MissedCardAppearsOncePerSession(t *testing.T) {
	session, err := NewSession(1, 1, makeDeck(3))
	require.NoError(t, err)

	for !session.Completed() {
		_, err := session.Reveal()
		require.NoError(t, err)
		require.NoError(t, session.Judge(false))
	}

	errors := session.CardErrors()
	seen := map[string]bool{}
	for _, id := range errors {
		assert.False(t, seen[id], "card %s recorded twice in one session", id)
		seen[id] = true
	}
	assert.Len(t, errors, 3)
}

func TestManager_StartGetRemove(t *testing.T) {
	manager := NewManager()

	token, session, err := manager.Start(1, 2, makeDeck(3))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, ok := manager.Get(token)
	require.True(t, ok)
	assert.Same(t, session, got)

	manager.Remove(token)
	_, ok = manager.Get(token)
	assert.False(t, ok)
}

func TestManager_EmptyDeckRejected(t *testing.T) {
	manager := NewManager()
	_, _, err := manager.Start(1, 2, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestManager_IndependentSessions(t *testing.T) {
	manager := NewManager()
	deck := makeDeck(4)

	tokenA, sessionA, err := manager.Start(1, 2, deck)
	require.NoError(t, err)
	tokenB, sessionB, err := manager.Start(1, 2, deck)
	require.NoError(t, err)

	require.NotEqual(t, tokenA, tokenB)

	_, err = sessionA.Reveal()
	require.NoError(t, err)
	require.NoError(t, sessionA.Judge(false))

	// B is untouched by A's progress
	assert.Equal(t, 0, sessionB.TotalAnswered())
	assert.Equal(t, AwaitingReveal, sessionB.State())
}
