package bus

// MediaKind identifies the kind of a media item carried by a message.
type MediaKind string

const (
	MediaPhoto     MediaKind = "photo"
	MediaVideo     MediaKind = "video"
	MediaVideoNote MediaKind = "video_note"
	MediaAnimation MediaKind = "animation"
	MediaAudio     MediaKind = "audio"
	MediaVoice     MediaKind = "voice"
	MediaDocument  MediaKind = "document"
)

// MediaRef is a reference to a single downloadable media item. The
// referenced bytes are fetched later by the channel's media fetcher;
// the ref itself is cheap to copy around.
type MediaRef struct {
	Kind     MediaKind `json:"kind"`
	FileID   string    `json:"file_id"`
	UniqueID string    `json:"unique_id,omitempty"`
	FileName string    `json:"file_name,omitempty"` // original filename, if the platform provides one
	MimeType string    `json:"mime_type,omitempty"`
	FileSize int64     `json:"file_size,omitempty"`
}

// InboundMessage represents a message received from a channel.
// Immutable once published to the bus.
type InboundMessage struct {
	Channel   string            `json:"channel"`
	SenderID  string            `json:"sender_id"`
	ChatID    string            `json:"chat_id"`
	MessageID string            `json:"message_id"`
	Content   string            `json:"content,omitempty"`
	Media     []MediaRef        `json:"media,omitempty"`
	GroupID   string            `json:"group_id,omitempty"` // media-group (album) correlation ID
	Payload   []byte            `json:"payload,omitempty"`  // raw platform message JSON, archived verbatim
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// OutboundMessage represents a message to be sent back to a channel.
type OutboundMessage struct {
	Channel   string `json:"channel"`
	ChatID    string `json:"chat_id"`
	ReplyToID string `json:"reply_to_id,omitempty"` // message to address the reply to
	Content   string `json:"content"`
}
