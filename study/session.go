package study

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// Card is the slice of a flashcard a session needs to drive the loop.
// ID is the card's public identifier.
type Card struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// State of the sequencer for the current card.
type State int

const (
	AwaitingReveal State = iota
	AwaitingJudgment
	Completed
)

var (
	ErrEmptyDeck       = errors.New("study: class has no cards")
	ErrAlreadyRevealed = errors.New("study: answer already revealed")
	ErrNotRevealed     = errors.New("study: answer not revealed yet")
	ErrCompleted       = errors.New("study: session already completed")
)

// Session is one pass over a shuffled deck. The deck order is fixed at
// construction; a new session over the same class gets an independent
// shuffle. Correctness is self-graded: the caller reveals the back of the
// current card and then asserts correct or incorrect, we never compare
// answer text.
type Session struct {
	UserID  uint
	ClassID uint

	mu        sync.Mutex
	startedAt time.Time
	cards     []Card
	index     int
	state     State

	correctAnswers int
	totalAnswered  int
	cardErrors     []string
}

// NewSession shuffles cards into a fresh session. An empty deck is rejected
// here, before any state machine exists.
func NewSession(userID, classID uint, cards []Card) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyDeck
	}

	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return &Session{
		UserID:    userID,
		ClassID:   classID,
		startedAt: time.Now(),
		cards:     shuffled,
		state:     AwaitingReveal,
	}, nil
}

// Current returns the card being studied. The back is blanked until the
// card has been revealed.
func (s *Session) Current() (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Completed {
		return Card{}, ErrCompleted
	}
	card := s.cards[s.index]
	if s.state == AwaitingReveal {
		card.Back = ""
	}
	return card, nil
}

// Reveal flips the current card and returns it with its back visible.
func (s *Session) Reveal() (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Completed:
		return Card{}, ErrCompleted
	case AwaitingJudgment:
		return Card{}, ErrAlreadyRevealed
	}

	s.state = AwaitingJudgment
	return s.cards[s.index], nil
}

// Judge records the user's correctness call for the revealed card and
// advances to the next card, or completes the session on the last one.
func (s *Session) Judge(correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Completed:
		return ErrCompleted
	case AwaitingReveal:
		return ErrNotRevealed
	}

	current := s.cards[s.index]
	s.totalAnswered++
	if correct {
		s.correctAnswers++
	} else {
		// Each card is shown once per session, so a card ID can appear
		// here at most once
		s.cardErrors = append(s.cardErrors, current.ID)
	}

	if s.index < len(s.cards)-1 {
		s.index++
		s.state = AwaitingReveal
	} else {
		s.state = Completed
	}
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Completed() bool {
	return s.State() == Completed
}

// Index is the zero-based position of the current card.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Size is the deck size fixed at session start.
func (s *Session) Size() int {
	return len(s.cards)
}

func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

func (s *Session) CorrectAnswers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correctAnswers
}

func (s *Session) TotalAnswered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalAnswered
}

// CardErrors returns the IDs of cards judged incorrect, in the order they
// were missed.
func (s *Session) CardErrors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.cardErrors))
	copy(out, s.cardErrors)
	return out
}
