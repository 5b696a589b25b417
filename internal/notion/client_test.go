package notion

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chroniclebot/chronicle/internal/domain"
)

func samplePayload() *domain.DocumentPayload {
	return &domain.DocumentPayload{
		Title: "Slack: Ada - 2026-08-31",
		Tags:  []string{"slack", "autonomous-sync", "general"},
		Properties: map[string]string{
			"Source": "Slack",
		},
		Blocks: []domain.DocumentBlock{
			{Type: domain.BlockParagraph, Text: "Author: Ada", Bold: true},
			{Type: domain.BlockDivider},
			{Type: domain.BlockParagraph, Text: "message body"},
			{Type: domain.BlockParagraph, Text: "(no message text)", Italic: true},
		},
	}
}

func TestBuildProperties(t *testing.T) {
	props := buildProperties(samplePayload())

	title, ok := props[titleProperty].(notionapi.TitleProperty)
	require.True(t, ok)
	require.Len(t, title.Title, 1)
	assert.Equal(t, "Slack: Ada - 2026-08-31", title.Title[0].Text.Content)

	tags, ok := props["Tags"].(notionapi.MultiSelectProperty)
	require.True(t, ok)
	require.Len(t, tags.MultiSelect, 3)
	assert.Equal(t, "slack", tags.MultiSelect[0].Name)

	source, ok := props["Source"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "Slack", source.RichText[0].Text.Content)
}

func TestBuildProperties_NoTags(t *testing.T) {
	doc := samplePayload()
	doc.Tags = nil
	props := buildProperties(doc)

	_, ok := props["Tags"]
	assert.False(t, ok)
}

func TestBuildBlocks(t *testing.T) {
	blocks := buildBlocks(samplePayload().Blocks)
	require.Len(t, blocks, 4)

	para, ok := blocks[0].(notionapi.ParagraphBlock)
	require.True(t, ok)
	assert.Equal(t, notionapi.BlockTypeParagraph, para.Type)
	assert.Equal(t, "Author: Ada", para.Paragraph.RichText[0].Text.Content)
	require.NotNil(t, para.Paragraph.RichText[0].Annotations)
	assert.True(t, para.Paragraph.RichText[0].Annotations.Bold)

	_, ok = blocks[1].(notionapi.DividerBlock)
	assert.True(t, ok)

	plain, ok := blocks[2].(notionapi.ParagraphBlock)
	require.True(t, ok)
	assert.Nil(t, plain.Paragraph.RichText[0].Annotations)

	italic, ok := blocks[3].(notionapi.ParagraphBlock)
	require.True(t, ok)
	require.NotNil(t, italic.Paragraph.RichText[0].Annotations)
	assert.True(t, italic.Paragraph.RichText[0].Annotations.Italic)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, domain.ErrUnauthorized},
		{"not found", http.StatusNotFound, domain.ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, domain.ErrRateLimited},
		{"bad request", http.StatusBadRequest, domain.ErrInvalidInput},
		{"server error", http.StatusBadGateway, domain.ErrConnectivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(&notionapi.Error{Status: tt.status, Message: "nope"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClassify_UnknownErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	assert.Equal(t, boom, classify(boom))
	assert.Equal(t, domain.ErrorCodeUnknown, domain.CodeOf(classify(boom)))
}
