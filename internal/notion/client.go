package notion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jomei/notionapi"

	"github.com/chroniclebot/chronicle/internal/domain"
)

// titleProperty is the canonical title property name on Notion databases
const titleProperty = "Name"

// Client wraps the Notion API as a document store. It maps provider-neutral
// document payloads to Notion pages and upstream failures to domain error
// classes.
type Client struct {
	api *notionapi.Client
}

// NewClient creates a Notion client from an integration token
func NewClient(apiKey string) *Client {
	return &Client{api: notionapi.NewClient(notionapi.Token(apiKey))}
}

// Ping verifies the integration token by fetching the bot user
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.User.Me(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// CreatePage creates one page in the target database from the payload
func (c *Client) CreatePage(ctx context.Context, databaseID string, doc *domain.DocumentPayload) (domain.DocumentRef, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: buildProperties(doc),
		Children:   buildBlocks(doc.Blocks),
	}

	page, err := c.api.Page.Create(ctx, req)
	if err != nil {
		return domain.DocumentRef{}, fmt.Errorf("create page: %w", classify(err))
	}
	return domain.DocumentRef{PageID: string(page.ID), URL: page.URL}, nil
}

func buildProperties(doc *domain.DocumentPayload) notionapi.Properties {
	props := notionapi.Properties{
		titleProperty: notionapi.TitleProperty{Title: richText(doc.Title, nil)},
	}

	if len(doc.Tags) > 0 {
		options := make([]notionapi.Option, 0, len(doc.Tags))
		for _, tag := range doc.Tags {
			options = append(options, notionapi.Option{Name: tag})
		}
		props["Tags"] = notionapi.MultiSelectProperty{MultiSelect: options}
	}

	for name, value := range doc.Properties {
		props[name] = notionapi.RichTextProperty{RichText: richText(value, nil)}
	}
	return props
}

func buildBlocks(blocks []domain.DocumentBlock) []notionapi.Block {
	out := make([]notionapi.Block, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case domain.BlockDivider:
			out = append(out, notionapi.DividerBlock{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeDivider,
				},
				Divider: notionapi.Divider{},
			})
		default:
			var annotations *notionapi.Annotations
			if b.Bold || b.Italic {
				annotations = &notionapi.Annotations{Bold: b.Bold, Italic: b.Italic}
			}
			out = append(out, notionapi.ParagraphBlock{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeParagraph,
				},
				Paragraph: notionapi.Paragraph{RichText: richText(b.Text, annotations)},
			})
		}
	}
	return out
}

func richText(content string, annotations *notionapi.Annotations) []notionapi.RichText {
	return []notionapi.RichText{{
		Text:        &notionapi.Text{Content: content},
		Annotations: annotations,
	}}
}

// classify maps Notion API failures to domain error classes so the retry
// policy and history rows see stable codes.
func classify(err error) error {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", domain.ErrUnauthorized, apiErr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, apiErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", domain.ErrRateLimited, apiErr.Message)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, apiErr.Message)
		}
		if apiErr.Status >= http.StatusInternalServerError {
			return fmt.Errorf("%w: notion %d: %s", domain.ErrConnectivity, apiErr.Status, apiErr.Message)
		}
		return err
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
