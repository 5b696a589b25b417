package slack

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	slackapi "github.com/slack-go/slack"

	"github.com/chroniclebot/chronicle/internal/domain"
)

// Metadata cache sizing. Author and channel names change rarely; a short TTL
// keeps renames from going stale for long while sparing the rate-limit budget
// during reconciliation passes.
const (
	metadataCacheSize = 512
	metadataCacheTTL  = 10 * time.Minute
)

// Client wraps the Slack Web API as the pipeline's chat surface and maps
// upstream failures to domain error classes. User and channel lookups are
// cached; failures are not.
type Client struct {
	api      *slackapi.Client
	users    *expirable.LRU[string, domain.Author]
	channels *expirable.LRU[string, domain.Channel]
}

// NewClient creates a Slack client. The app token enables Socket Mode.
func NewClient(botToken, appToken string) *Client {
	return newClient(slackapi.New(botToken, slackapi.OptionAppLevelToken(appToken)))
}

func newClient(api *slackapi.Client) *Client {
	return &Client{
		api:      api,
		users:    expirable.NewLRU[string, domain.Author](metadataCacheSize, nil, metadataCacheTTL),
		channels: expirable.NewLRU[string, domain.Channel](metadataCacheSize, nil, metadataCacheTTL),
	}
}

// API exposes the underlying client for the Socket Mode event source
func (c *Client) API() *slackapi.Client {
	return c.api
}

// AuthTest verifies the bot token and returns the bot's own user ID
func (c *Client) AuthTest(ctx context.Context) (string, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", classify(err)
	}
	return resp.UserID, nil
}

// MessageAt fetches the single message at a timestamp in a channel
func (c *Client) MessageAt(ctx context.Context, channelID, messageTS string) (*domain.MessageSnapshot, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slackapi.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    messageTS,
		Limit:     1,
		Inclusive: true,
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Messages) == 0 || resp.Messages[0].Timestamp != messageTS {
		return nil, fmt.Errorf("%w: message %s in %s", domain.ErrNotFound, messageTS, channelID)
	}
	return snapshotFromMessage(channelID, resp.Messages[0]), nil
}

// History fetches up to limit messages newer than oldest, oldest first
func (c *Client) History(ctx context.Context, channelID string, oldest time.Time, limit int) ([]domain.MessageSnapshot, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slackapi.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    slackTS(oldest),
		Limit:     limit,
	})
	if err != nil {
		return nil, classify(err)
	}

	// Slack returns newest first; reverse so passes process in arrival order
	snapshots := make([]domain.MessageSnapshot, 0, len(resp.Messages))
	for i := len(resp.Messages) - 1; i >= 0; i-- {
		snapshots = append(snapshots, *snapshotFromMessage(channelID, resp.Messages[i]))
	}
	return snapshots, nil
}

// Author resolves a user's display metadata, serving repeat lookups from the
// cache
func (c *Client) Author(ctx context.Context, userID string) (domain.Author, error) {
	if author, ok := c.users.Get(userID); ok {
		return author, nil
	}
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return domain.Author{}, classify(err)
	}
	name := user.Profile.DisplayName
	if name == "" {
		name = user.RealName
	}
	if name == "" {
		name = user.Name
	}
	author := domain.Author{ID: user.ID, Name: name, IsBot: user.IsBot}
	c.users.Add(userID, author)
	return author, nil
}

// Channel resolves a channel's display metadata, serving repeat lookups from
// the cache
func (c *Client) Channel(ctx context.Context, channelID string) (domain.Channel, error) {
	if channel, ok := c.channels.Get(channelID); ok {
		return channel, nil
	}
	info, err := c.api.GetConversationInfoContext(ctx, &slackapi.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return domain.Channel{}, classify(err)
	}
	channel := domain.Channel{ID: info.ID, Name: info.Name}
	c.channels.Add(channelID, channel)
	return channel, nil
}

// PostMessage posts a top-level channel message
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slackapi.MsgOptionText(text, false))
	if err != nil {
		return classify(err)
	}
	return nil
}

// PostThreadReply posts a reply in the thread rooted at threadTS
func (c *Client) PostThreadReply(ctx context.Context, channelID, threadTS, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID,
		slackapi.MsgOptionText(text, false),
		slackapi.MsgOptionTS(threadTS),
	)
	if err != nil {
		return classify(err)
	}
	return nil
}

func snapshotFromMessage(channelID string, m slackapi.Message) *domain.MessageSnapshot {
	reactions := make([]domain.Reaction, 0, len(m.Reactions))
	for _, r := range m.Reactions {
		reactions = append(reactions, domain.Reaction{Name: r.Name, Count: r.Count})
	}
	return &domain.MessageSnapshot{
		ChannelID:   channelID,
		Timestamp:   m.Timestamp,
		ClientMsgID: m.ClientMsgID,
		AuthorID:    m.User,
		AuthorIsBot: m.BotID != "" || m.SubType == "bot_message",
		Text:        m.Text,
		ThreadTS:    m.ThreadTimestamp,
		Reactions:   reactions,
	}
}

// slackTS renders a time as a Slack message timestamp
func slackTS(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

// classify maps Slack API failures to domain error classes. The Web API
// reports most failures as bare error strings, so classification matches on
// the documented error codes.
func classify(err error) error {
	var rateErr *slackapi.RateLimitedError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: retry after %s", domain.ErrRateLimited, rateErr.RetryAfter)
	}

	switch err.Error() {
	case "channel_not_found", "message_not_found", "user_not_found", "thread_not_found":
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case "invalid_auth", "not_authed", "account_inactive", "token_revoked", "token_expired", "missing_scope", "not_in_channel":
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	case "ratelimited", "rate_limited":
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	case "invalid_arguments", "invalid_ts_latest", "invalid_ts_oldest":
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
	}
	return err
}
