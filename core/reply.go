package core

// Image references a generated image (equation render, chart, artwork)
// attached to a reply. ParentID links the image to the message that produced
// it so transports can thread attachments correctly.
type Image struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	ParentID string `json:"parent_id,omitempty"`
}

// Reply is the per-turn output handed back to the chat transport.
type Reply struct {
	Content string  `json:"content"`
	Images  []Image `json:"images,omitempty"`
}

// TextReply builds a text-only reply.
func TextReply(content string) Reply { return Reply{Content: content} }
