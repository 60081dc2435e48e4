package services

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eatzone/internal/clock"
	"eatzone/internal/domain"
)

const (
	GreetingText     = "Halo! Ada yang bisa saya bantu?"
	ConfirmationText = "Ya, makanan tersedia. Anda bisa memesan sekarang!"
	TimeoutText      = "Maaf, makanan sedang tidak tersedia saat ini."
	AutoReplyText    = "Silakan tanyakan ketersediaan menu yang ingin Anda pesan."
)

// Rand is the random source behind the simulated seller.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand draws from the runtime's concurrency-safe generator.
func DefaultRand() Rand { return globalRand{} }

type NegotiationConfig struct {
	ReplyDelay      time.Duration
	TimeoutDelay    time.Duration
	AutoReplyDelay  time.Duration
	AffirmativeRate float64
	Keywords        []string
}

func DefaultNegotiationConfig() NegotiationConfig {
	return NegotiationConfig{
		ReplyDelay:      2 * time.Second,
		TimeoutDelay:    5 * time.Second,
		AutoReplyDelay:  time.Second,
		AffirmativeRate: 0.7,
		Keywords:        []string{"tersedia", "ready", "ada"},
	}
}

// IsAvailabilityQuery reports whether text asks the seller about stock.
func IsAvailabilityQuery(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// Negotiation is one buyer/seller chat. An availability question starts a
// race between a possible confirmation and a timeout; whichever resolves
// first clears the awaiting flag and the loser produces nothing.
type Negotiation struct {
	mu       sync.Mutex
	sellerID string
	clock    clock.Clock
	rand     Rand
	cfg      NegotiationConfig
	onChange func()

	messages []domain.ChatMessage
	awaiting bool
	closed   bool

	// round identifies the current availability race; callbacks from an
	// older round are ignored.
	round        int
	replyTimer   clock.Timer
	timeoutTimer clock.Timer
	autoReplies  map[string]clock.Timer
}

func NewNegotiation(sellerID string, clk clock.Clock, rnd Rand, cfg NegotiationConfig, onChange func()) *Negotiation {
	if rnd == nil {
		rnd = DefaultRand()
	}
	n := &Negotiation{
		sellerID:    sellerID,
		clock:       clk,
		rand:        rnd,
		cfg:         cfg,
		onChange:    onChange,
		autoReplies: make(map[string]clock.Timer),
	}
	n.messages = append(n.messages, domain.ChatMessage{
		ID:        newMessageID(),
		Sender:    domain.SenderSeller,
		Text:      GreetingText,
		Timestamp: clk.Now().Add(-time.Minute),
	})
	return n
}

func (n *Negotiation) SellerID() string {
	return n.sellerID
}

func (n *Negotiation) Messages() []domain.ChatMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.ChatMessage(nil), n.messages...)
}

func (n *Negotiation) Awaiting() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.awaiting
}

// Send appends the buyer's message and schedules the simulated reply.
func (n *Negotiation) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrChatClosed
	}
	n.messages = append(n.messages, domain.ChatMessage{
		ID:        newMessageID(),
		Sender:    domain.SenderBuyer,
		Text:      text,
		Timestamp: n.clock.Now(),
	})

	if IsAvailabilityQuery(text, n.cfg.Keywords) {
		n.startRace()
	} else {
		id := uuid.NewString()
		n.autoReplies[id] = n.clock.AfterFunc(n.cfg.AutoReplyDelay, func() { n.autoReply(id) })
	}
	n.mu.Unlock()

	n.changed()
	return nil
}

// Close stops every pending timer. Late callbacks become no-ops.
func (n *Negotiation) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	n.stopRace()
	for id, t := range n.autoReplies {
		t.Stop()
		delete(n.autoReplies, id)
	}
}

// startRace must be called with n.mu held. A newer question supersedes
// any race still in flight.
func (n *Negotiation) startRace() {
	n.stopRace()
	n.round++
	round := n.round
	n.awaiting = true

	affirmative := n.rand.Float64() > 1-n.cfg.AffirmativeRate
	n.replyTimer = n.clock.AfterFunc(n.cfg.ReplyDelay, func() { n.confirm(round, affirmative) })
	n.timeoutTimer = n.clock.AfterFunc(n.cfg.TimeoutDelay, func() { n.expire(round) })
}

func (n *Negotiation) stopRace() {
	if n.replyTimer != nil {
		n.replyTimer.Stop()
		n.replyTimer = nil
	}
	if n.timeoutTimer != nil {
		n.timeoutTimer.Stop()
		n.timeoutTimer = nil
	}
}

func (n *Negotiation) confirm(round int, affirmative bool) {
	n.mu.Lock()
	if n.closed || round != n.round || !n.awaiting {
		n.mu.Unlock()
		return
	}
	n.replyTimer = nil
	if !affirmative {
		// the seller stays silent and the timeout decides
		n.mu.Unlock()
		return
	}
	n.appendSeller(ConfirmationText, domain.MessageConfirmation)
	n.awaiting = false
	if n.timeoutTimer != nil {
		n.timeoutTimer.Stop()
		n.timeoutTimer = nil
	}
	n.mu.Unlock()

	n.changed()
}

func (n *Negotiation) expire(round int) {
	n.mu.Lock()
	if n.closed || round != n.round || !n.awaiting {
		n.mu.Unlock()
		return
	}
	n.timeoutTimer = nil
	n.appendSeller(TimeoutText, domain.MessageTimeout)
	n.awaiting = false
	n.mu.Unlock()

	n.changed()
}

func (n *Negotiation) autoReply(id string) {
	n.mu.Lock()
	if _, ok := n.autoReplies[id]; !ok || n.closed {
		n.mu.Unlock()
		return
	}
	delete(n.autoReplies, id)
	n.appendSeller(AutoReplyText, "")
	n.mu.Unlock()

	n.changed()
}

func (n *Negotiation) appendSeller(text string, kind domain.MessageKind) {
	n.messages = append(n.messages, domain.ChatMessage{
		ID:        newMessageID(),
		Sender:    domain.SenderSeller,
		Text:      text,
		Timestamp: n.clock.Now(),
		Kind:      kind,
	})
}

func (n *Negotiation) changed() {
	if n.onChange != nil {
		n.onChange()
	}
}

func newMessageID() string {
	return "msg-" + uuid.NewString()
}
