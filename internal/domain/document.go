package domain

// BlockType enumerates the content block kinds a synthesized document uses.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockDivider   BlockType = "divider"
)

// DocumentBlock is one content block of a synthesized document.
type DocumentBlock struct {
	Type   BlockType `json:"type"`
	Text   string    `json:"text,omitempty"`
	Bold   bool      `json:"bold,omitempty"`
	Italic bool      `json:"italic,omitempty"`
}

// DocumentPayload is the provider-neutral page a synthesizer produces from a
// message. The document client maps it to the store's wire format.
type DocumentPayload struct {
	Title      string            `json:"title"`
	Tags       []string          `json:"tags"`
	Properties map[string]string `json:"properties,omitempty"`
	Blocks     []DocumentBlock   `json:"blocks"`
}
