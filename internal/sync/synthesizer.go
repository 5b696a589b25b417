package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/chroniclebot/chronicle/internal/domain"
)

// Document store paragraph blocks reject text above this length, so message
// bodies are chunked.
const maxBlockTextLen = 2000

// Base tags stamped on every synthesized page, ahead of config tags.
var baseTags = []string{"slack", "autonomous-sync"}

// Synthesize renders a message snapshot into a provider-neutral document
// payload using the config's page template. Pure: same inputs, same payload.
func Synthesize(cfg *domain.SyncConfig, msg *domain.MessageSnapshot, author domain.Author, channel domain.Channel, now time.Time) *domain.DocumentPayload {
	doc := &domain.DocumentPayload{
		Title: renderTitle(cfg.PageTemplate.TitleFormat, author.Name, channel.Name, now),
		Tags:  buildTags(cfg.Tags, channel.Name),
	}

	if cfg.PageTemplate.IncludeMetadata {
		doc.Properties = map[string]string{
			"Source":  "Slack",
			"Author":  author.Name,
			"Channel": "#" + channel.Name,
		}
		doc.Blocks = append(doc.Blocks,
			domain.DocumentBlock{Type: domain.BlockParagraph, Text: "Author: " + author.Name, Bold: true},
			domain.DocumentBlock{Type: domain.BlockParagraph, Text: "Channel: #" + channel.Name},
			domain.DocumentBlock{Type: domain.BlockParagraph, Text: "Synced: " + now.Format(time.RFC1123)},
			domain.DocumentBlock{Type: domain.BlockDivider},
		)
	}

	if strings.TrimSpace(msg.Text) == "" {
		doc.Blocks = append(doc.Blocks,
			domain.DocumentBlock{Type: domain.BlockParagraph, Text: "(no message text)", Italic: true})
	} else {
		for _, chunk := range chunkText(msg.Text, maxBlockTextLen) {
			doc.Blocks = append(doc.Blocks,
				domain.DocumentBlock{Type: domain.BlockParagraph, Text: chunk})
		}
	}

	if cfg.PageTemplate.IncludeReactions && len(msg.Reactions) > 0 {
		doc.Blocks = append(doc.Blocks,
			domain.DocumentBlock{Type: domain.BlockDivider},
			domain.DocumentBlock{Type: domain.BlockParagraph, Text: reactionSummary(msg.Reactions), Italic: true})
	}

	return doc
}

// renderTitle substitutes {author}, {channel} and {date} placeholders.
func renderTitle(format, authorName, channelName string, now time.Time) string {
	if format == "" {
		format = domain.DefaultTitleFormat
	}
	title := strings.ReplaceAll(format, "{author}", authorName)
	title = strings.ReplaceAll(title, "{channel}", channelName)
	title = strings.ReplaceAll(title, "{date}", now.Format("2006-01-02"))
	return title
}

// buildTags merges the base tags, channel tag and config tags, dropping
// duplicates while preserving order.
func buildTags(configTags []string, channelName string) []string {
	tags := make([]string, 0, len(baseTags)+1+len(configTags))
	seen := make(map[string]bool)
	for _, t := range baseTags {
		tags = appendTag(tags, seen, t)
	}
	if channelName != "" {
		tags = appendTag(tags, seen, channelName)
	}
	for _, t := range configTags {
		tags = appendTag(tags, seen, t)
	}
	return tags
}

func appendTag(tags []string, seen map[string]bool, tag string) []string {
	if tag == "" || seen[tag] {
		return tags
	}
	seen[tag] = true
	return append(tags, tag)
}

func reactionSummary(reactions []domain.Reaction) string {
	parts := make([]string, 0, len(reactions))
	for _, r := range reactions {
		parts = append(parts, fmt.Sprintf(":%s: x%d", r.Name, r.Count))
	}
	return "Reactions: " + strings.Join(parts, ", ")
}

// chunkText splits s into pieces of at most max runes, on rune boundaries.
func chunkText(s string, max int) []string {
	runes := []rune(s)
	if len(runes) <= max {
		return []string{s}
	}
	var chunks []string
	for start := 0; start < len(runes); start += max {
		end := start + max
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
