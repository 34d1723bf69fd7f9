package discord

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
)

const opsQueueSize = 64

// channelSender is the part of *discordgo.Session the ops log needs
type channelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// OpsLog posts operational notices to a Discord channel in the background.
// Notices are dropped when the queue is full, so callers never block on it.
// A nil *OpsLog discards everything.
type OpsLog struct {
	sender    channelSender
	channelID string

	mu     sync.Mutex
	closed bool
	queue  chan string
	done   chan struct{}
}

// NewOpsLog starts an ops log for channelID. It returns nil if channelID is empty.
func NewOpsLog(sender channelSender, channelID string) *OpsLog {
	if channelID == "" || sender == nil {
		return nil
	}
	o := &OpsLog{
		sender:    sender,
		channelID: channelID,
		queue:     make(chan string, opsQueueSize),
		done:      make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *OpsLog) run() {
	defer close(o.done)
	for msg := range o.queue {
		if _, err := o.sender.ChannelMessageSend(o.channelID, msg); err != nil {
			slog.Warn("Failed to post ops notice", "channel", o.channelID, "error", err)
		}
	}
}

// Notify queues an informational notice
func (o *OpsLog) Notify(format string, args ...any) {
	o.enqueue("📝 " + fmt.Sprintf(format, args...))
}

// Warn queues a warning notice
func (o *OpsLog) Warn(format string, args ...any) {
	o.enqueue("⚠️ " + fmt.Sprintf(format, args...))
}

func (o *OpsLog) enqueue(msg string) {
	if o == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	select {
	case o.queue <- msg:
	default:
		slog.Debug("Ops queue full, dropping notice", "notice", msg)
	}
}

// Close stops accepting notices and waits for queued ones to be sent
func (o *OpsLog) Close() {
	if o == nil {
		return
	}
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()

	<-o.done
}
