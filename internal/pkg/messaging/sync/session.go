package sync

import (
	"context"
	"errors"
	"fmt"
	"path"
	stdsync "sync"
	"time"

	messaging "github.com/pranishuprety/Respondrr/internal/pkg/messaging/domain"
)

// AttachmentBucket is where message files live in the blob store.
const AttachmentBucket = "attachments"

// DefaultPollInterval is the reconciliation period. Push events give low
// latency between ticks; the poll heals whatever push dropped.
const DefaultPollInterval = 2 * time.Second

var (
	// ErrSend means the message row write failed; nothing was appended.
	ErrSend = errors.New("sync: message send failed")

	// ErrAttachment means the row was written but the blob upload or the
	// attachment row insert failed. The message stays in the view and will
	// show without realized attachments after the next poll. Not repaired.
	ErrAttachment = errors.New("sync: attachment not realized")
)

// OutgoingFile is a file selected for a send.
type OutgoingFile struct {
	FileName string
	MimeType string
	Data     []byte
}

// Session merges the two delivery paths of one conversation into a single
// duplicate-free, append-ordered view. One Session per open conversation;
// create on open, Close on the way out, never share across conversations.
//
// The poll pass is authoritative: it replaces the whole view with the
// store's ordered list. Push events only provide low-latency appearance of
// rows the next poll would deliver anyway, so a pushed message may shift
// position once reconciled.
type Session struct {
	conversationID string
	senderID       string
	store          Store
	blobs          BlobStore // may be nil when sends never carry files
	feed           Feed
	onUpdate       Subscriber
	pollInterval   time.Duration

	mu          stdsync.Mutex
	opened      bool
	view        []messaging.Message
	seen        map[string]struct{}
	cancel      context.CancelFunc
	unsubscribe func()
}

// Option tweaks a Session.
type Option func(*Session)

// WithPollInterval overrides the reconciliation period.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// NewSession wires a session for one conversation. onUpdate receives a view
// snapshot after every change and must not block.
func NewSession(conversationID, senderID string, store Store, blobs BlobStore, feed Feed, onUpdate Subscriber, opts ...Option) *Session {
	s := &Session{
		conversationID: conversationID,
		senderID:       senderID,
		store:          store,
		blobs:          blobs,
		feed:           feed,
		onUpdate:       onUpdate,
		pollInterval:   DefaultPollInterval,
		seen:           make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open begins push delivery and starts the poll loop. Idempotent: a second
// Open on a live session is a no-op, so repeated mounts cannot stack timers
// or subscriptions. An initial reconciliation runs synchronously so the
// caller sees the current history on return.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.opened {
		s.mu.Unlock()
		return nil
	}
	s.opened = true
	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	if s.feed != nil {
		unsub, err := s.feed.Subscribe(s.conversationID, s.OnPush)
		if err != nil {
			s.Close()
			return fmt.Errorf("sync: subscribe: %w", err)
		}
		s.mu.Lock()
		s.unsubscribe = unsub
		s.mu.Unlock()
	}

	// First authoritative load; a transient failure here is healed by the
	// next tick.
	_ = s.PollTick(ctx)

	go s.pollLoop(loopCtx)
	return nil
}

// OnPush consumes one insert notification. Events for other conversations
// and duplicate ids are dropped silently; everything else is appended in
// receipt order.
func (s *Session) OnPush(ev Event) {
	if ev.ConversationID != s.conversationID || ev.Message.ID == "" {
		return
	}

	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return
	}
	if _, dup := s.seen[ev.Message.ID]; dup {
		s.mu.Unlock()
		return
	}
	s.seen[ev.Message.ID] = struct{}{}
	s.view = append(s.view, ev.Message)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// PollTick runs one reconciliation pass: the store's current ordered list
// replaces the view entirely, healing push gaps and fixing ordering.
func (s *Session) PollTick(ctx context.Context) error {
	msgs, err := s.store.ListMessages(ctx, s.conversationID)
	if err != nil {
		return fmt.Errorf("sync: poll: %w", err)
	}

	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return nil
	}
	s.view = msgs
	s.seen = make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		s.seen[m.ID] = struct{}{}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Send writes the message row synchronously and appends it to the view
// before returning, so the sender sees their message with zero added
// latency. When a file is attached, the blob upload and attachment row
// follow the row write; a failure there returns the created message
// together with a wrapped ErrAttachment: the row stands, the attachment
// was never realized.
//
// Sends may overlap; each resolves independently.
func (s *Session) Send(ctx context.Context, body string, file *OutgoingFile) (*messaging.Message, error) {
	msgType := messaging.MessageTypeText
	if file != nil {
		msgType = messaging.MessageTypeMixed
	}
	var bodyPtr *string
	if body != "" {
		bodyPtr = &body
	}

	candidate := messaging.Message{
		ConversationID: s.conversationID,
		SenderID:       s.senderID,
		Body:           bodyPtr,
		MsgType:        msgType,
	}
	if file != nil {
		// Declared so validation sees the pending file; realized only after
		// the upload succeeds.
		candidate.Attachments = []messaging.Attachment{{
			Bucket:   AttachmentBucket,
			FileName: file.FileName,
			MimeType: file.MimeType,
		}}
	}
	msg, err := messaging.NewMessage(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSend, err)
	}
	msg.Attachments = nil

	id, err := s.store.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSend, err)
	}
	msg.ID = id

	s.appendLocal(*msg)

	if file != nil {
		if err := s.realizeAttachment(ctx, msg, file); err != nil {
			return msg, err
		}
	}

	// Watermark update is best-effort; the next successful send advances it.
	_ = s.store.TouchConversation(ctx, s.conversationID, msg.CreatedAt)

	return msg, nil
}

// Close stops the poll timer and drops the push subscription. Callers must
// guarantee Close runs on every exit path; it is safe to call repeatedly.
func (s *Session) Close() {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return
	}
	s.opened = false
	cancel := s.cancel
	unsub := s.unsubscribe
	s.cancel = nil
	s.unsubscribe = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsub != nil {
		unsub()
	}
}

// View returns a snapshot of the current merged view.
func (s *Session) View() []messaging.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Transient poll errors are retried by the next tick.
			_ = s.PollTick(ctx)
		}
	}
}

func (s *Session) appendLocal(msg messaging.Message) {
	s.mu.Lock()
	if _, dup := s.seen[msg.ID]; dup {
		s.mu.Unlock()
		return
	}
	s.seen[msg.ID] = struct{}{}
	s.view = append(s.view, msg)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Session) realizeAttachment(ctx context.Context, msg *messaging.Message, file *OutgoingFile) error {
	if s.blobs == nil {
		return fmt.Errorf("%w: no blob store configured", ErrAttachment)
	}

	objectPath := path.Join(s.conversationID, msg.ID, file.FileName)
	if err := s.blobs.Upload(ctx, AttachmentBucket, objectPath, file.Data); err != nil {
		return fmt.Errorf("%w: upload: %v", ErrAttachment, err)
	}

	att, err := messaging.NewAttachment(messaging.Attachment{
		MessageID:  msg.ID,
		Bucket:     AttachmentBucket,
		ObjectPath: objectPath,
		FileName:   file.FileName,
		MimeType:   file.MimeType,
		SizeBytes:  int64(len(file.Data)),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAttachment, err)
	}

	attID, err := s.store.SaveAttachment(ctx, *att)
	if err != nil {
		return fmt.Errorf("%w: attachment row: %v", ErrAttachment, err)
	}
	att.ID = attID
	msg.Attachments = append(msg.Attachments, *att)

	// Reflect the realized attachment on the optimistic row.
	s.mu.Lock()
	for i := range s.view {
		if s.view[i].ID == msg.ID {
			s.view[i].Attachments = msg.Attachments
			break
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snapshot)

	return nil
}

func (s *Session) snapshotLocked() []messaging.Message {
	out := make([]messaging.Message, len(s.view))
	copy(out, s.view)
	return out
}

func (s *Session) notify(snapshot []messaging.Message) {
	if s.onUpdate != nil {
		s.onUpdate(snapshot)
	}
}
