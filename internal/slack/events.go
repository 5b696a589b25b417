package slack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/chroniclebot/chronicle/internal/logger"
	"github.com/chroniclebot/chronicle/internal/metrics"
	"github.com/chroniclebot/chronicle/internal/stats"
	syncsvc "github.com/chroniclebot/chronicle/internal/sync"
	"github.com/chroniclebot/chronicle/internal/worker"
)

const messageFetchTimeout = 10 * time.Second

const helpText = "Commands: `status` (show sync configs for this channel), `sync now` (run a pass immediately), `help`."

// EventSource consumes Slack Socket Mode events and feeds matched reactions
// into the worker pool. It also answers mention commands.
type EventSource struct {
	client   *Client
	matcher  *syncsvc.Matcher
	executor *syncsvc.Executor
	service  *syncsvc.Service
	pool     *worker.Pool
	stats    *stats.Collector
}

// NewEventSource creates the Socket Mode event source
func NewEventSource(
	client *Client,
	matcher *syncsvc.Matcher,
	executor *syncsvc.Executor,
	service *syncsvc.Service,
	pool *worker.Pool,
	collector *stats.Collector,
) *EventSource {
	return &EventSource{
		client:   client,
		matcher:  matcher,
		executor: executor,
		service:  service,
		pool:     pool,
		stats:    collector,
	}
}

// Run connects to Slack over Socket Mode and dispatches events until the
// context is cancelled.
func (s *EventSource) Run(ctx context.Context) error {
	sock := socketmode.New(s.client.API())

	go func() {
		if err := sock.RunContext(ctx); err != nil && ctx.Err() == nil {
			logger.FromContext(ctx).Error("socket mode connection ended", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-sock.Events:
			if !ok {
				return nil
			}
			switch evt.Type {
			case socketmode.EventTypeConnecting:
				logger.FromContext(ctx).Info("connecting to Slack")
			case socketmode.EventTypeConnected:
				logger.FromContext(ctx).Info("connected to Slack")
			case socketmode.EventTypeConnectionError:
				logger.FromContext(ctx).Warn("Slack connection error", "data", evt.Data)
			case socketmode.EventTypeEventsAPI:
				apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				if evt.Request != nil {
					sock.Ack(*evt.Request)
				}
				s.dispatch(ctx, apiEvent)
			}
		}
	}
}

func (s *EventSource) dispatch(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	ctx = logger.WithRequestID(ctx, logger.GenerateRequestID())

	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.ReactionAddedEvent:
		metrics.RecordSlackEvent("reaction_added")
		s.handleReaction(ctx, ev)
	case *slackevents.AppMentionEvent:
		metrics.RecordSlackEvent("app_mention")
		s.handleMention(ctx, ev)
	case *slackevents.MessageEvent:
		// Plain messages only feed the observation counter
		metrics.RecordSlackEvent("message")
		s.stats.RecordEventObserved()
	}
}

func (s *EventSource) handleReaction(ctx context.Context, ev *slackevents.ReactionAddedEvent) {
	if ev.Item.Type != "message" {
		return
	}
	s.stats.RecordEventObserved()

	log := logger.FromContext(ctx).With(
		"channel_id", ev.Item.Channel,
		"message_ts", ev.Item.Timestamp,
		"reaction", ev.Reaction,
	)

	configs := s.matcher.Match(ctx, ev.Item.Channel, ev.Reaction)
	if len(configs) == 0 {
		return
	}
	s.stats.RecordReactionMatched()
	log.Info("reaction matched configs", "configs", len(configs))

	fctx, cancel := context.WithTimeout(ctx, messageFetchTimeout)
	defer cancel()
	msg, err := s.client.MessageAt(fctx, ev.Item.Channel, ev.Item.Timestamp)
	if err != nil {
		log.Warn("failed to fetch reacted message", "error", err)
		return
	}

	for _, cfg := range configs {
		s.pool.Enqueue(syncsvc.NewJob(s.executor, cfg, msg))
	}
	metrics.SetWorkerQueueDepth(s.pool.QueueDepth())
}

func (s *EventSource) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) {
	log := logger.FromContext(ctx).With("channel_id", ev.Channel)

	reply := func(text string) {
		rctx, cancel := context.WithTimeout(ctx, messageFetchTimeout)
		defer cancel()
		if err := s.client.PostThreadReply(rctx, ev.Channel, ev.TimeStamp, text); err != nil {
			log.Warn("failed to reply to mention", "error", err)
		}
	}

	switch ParseMentionCommand(ev.Text) {
	case CommandStatus:
		text, err := s.service.ChannelStatus(ctx, ev.Channel)
		if err != nil {
			log.Error("status command failed", "error", err)
			reply("Could not load status, try again later.")
			return
		}
		snap := s.stats.Snapshot()
		reply(fmt.Sprintf("%s\nUptime %s | %d synced | %d failed",
			text, snap.Uptime.Round(time.Second), snap.SyncSuccesses, snap.SyncFailures))

	case CommandSyncNow:
		results, err := s.service.RunChannelNow(ctx, ev.Channel)
		if err != nil {
			log.Error("sync now command failed", "error", err)
			reply("Sync failed, try again later.")
			return
		}
		if len(results) == 0 {
			reply("No active sync configs for this channel.")
			return
		}
		var synced, failed int
		for _, r := range results {
			synced += r.Synced
			failed += r.Failed
		}
		reply(fmt.Sprintf("Pass complete: %d synced, %d failed across %d config(s).",
			synced, failed, len(results)))

	default:
		reply(helpText)
	}
}

// Command is a recognized mention command.
type Command string

const (
	CommandStatus  Command = "status"
	CommandSyncNow Command = "sync now"
	CommandHelp    Command = "help"
)

// ParseMentionCommand extracts the command from a mention's text. Unknown
// input maps to help.
func ParseMentionCommand(text string) Command {
	// Strip mention tokens like <@U123ABC>
	for {
		start := strings.Index(text, "<@")
		if start < 0 {
			break
		}
		end := strings.Index(text[start:], ">")
		if end < 0 {
			break
		}
		text = text[:start] + text[start+end+1:]
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(normalized, "status"):
		return CommandStatus
	case strings.Contains(normalized, "sync") && strings.Contains(normalized, "now"):
		return CommandSyncNow
	default:
		return CommandHelp
	}
}
