package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/tgvault/internal/bus"
	"github.com/nextlevelbuilder/tgvault/internal/channels"
)

// handleMessage converts one Telegram message into an InboundMessage
// and offers it to the bounded queue. A full queue drops the message
// with a warning; ingestion never blocks on the consumer.
func (c *Channel) handleMessage(message *telego.Message) {
	// Skip service messages (member added/removed, title changed, etc.).
	// They carry no text and no media worth archiving.
	if isServiceMessage(message) {
		slog.Debug("telegram service message skipped",
			"chat_id", message.Chat.ID,
			"new_members", len(message.NewChatMembers),
			"left_member", message.LeftChatMember != nil,
		)
		return
	}

	user := message.From
	if user == nil {
		return
	}

	userID := fmt.Sprintf("%d", user.ID)
	senderID := userID
	if user.Username != "" {
		senderID = fmt.Sprintf("%s|%s", userID, user.Username)
	}

	if !c.IsAllowed(userID) && !c.IsAllowed(senderID) {
		slog.Debug("telegram message rejected by allowlist",
			"user_id", userID, "username", user.Username,
		)
		return
	}

	if !c.flood.Allow(userID) {
		slog.Warn("telegram sender rate limited", "user_id", userID)
		return
	}

	content := message.Text
	if message.Caption != "" {
		if content != "" {
			content += "\n"
		}
		content += message.Caption
	}

	media := extractMedia(message)

	slog.Debug("telegram message received",
		"chat_id", message.Chat.ID,
		"message_id", message.MessageID,
		"sender_id", senderID,
		"media", len(media),
		"group_id", message.MediaGroupID,
		"text_preview", channels.Truncate(content, 60),
	)

	// Raw message retained for the archive payload column.
	payload, err := json.Marshal(message)
	if err != nil {
		slog.Warn("failed to encode telegram message payload", "error", err)
		payload = nil
	}

	msg := bus.InboundMessage{
		Channel:   c.Name(),
		SenderID:  senderID,
		ChatID:    fmt.Sprintf("%d", message.Chat.ID),
		MessageID: fmt.Sprintf("%d", message.MessageID),
		Content:   content,
		Media:     media,
		GroupID:   message.MediaGroupID,
		Payload:   payload,
		Metadata: map[string]string{
			"chat_type": string(message.Chat.Type),
			"username":  user.Username,
		},
	}

	if err := c.Bus().TryPublishInbound(msg); err != nil {
		if errors.Is(err, bus.ErrQueueFull) {
			slog.Warn("inbound queue full, dropping message",
				"chat_id", msg.ChatID, "message_id", msg.MessageID,
			)
			return
		}
		slog.Error("failed to publish inbound message", "error", err)
	}
}

// isServiceMessage returns true if the Telegram message is a service/system message
// (member added/removed, title changed, pinned, etc.) rather than a user-sent message.
// Service messages have no text, caption, or media content.
func isServiceMessage(msg *telego.Message) bool {
	// Has text or caption → user message
	if msg.Text != "" || msg.Caption != "" {
		return false
	}

	// Has media → user message (photo, audio, video, document, sticker, etc.)
	if msg.Photo != nil || msg.Audio != nil || msg.Video != nil ||
		msg.Document != nil || msg.Voice != nil || msg.VideoNote != nil ||
		msg.Sticker != nil || msg.Animation != nil || msg.Contact != nil ||
		msg.Location != nil || msg.Venue != nil || msg.Poll != nil {
		return false
	}

	// No user content — likely a service message (new_chat_members, left_chat_member,
	// new_chat_title, new_chat_photo, pinned_message, etc.)
	return true
}

// extractMedia maps the message's media attachments to MediaRefs.
// For photos Telegram offers several resolutions; the largest one wins.
func extractMedia(m *telego.Message) []bus.MediaRef {
	var refs []bus.MediaRef

	if len(m.Photo) > 0 {
		photo := m.Photo[len(m.Photo)-1]
		refs = append(refs, bus.MediaRef{
			Kind:     bus.MediaPhoto,
			FileID:   photo.FileID,
			UniqueID: photo.FileUniqueID,
			MimeType: "image/jpeg",
			FileSize: int64(photo.FileSize),
		})
	}
	if m.Video != nil {
		refs = append(refs, bus.MediaRef{
			Kind:     bus.MediaVideo,
			FileID:   m.Video.FileID,
			UniqueID: m.Video.FileUniqueID,
			FileName: m.Video.FileName,
			MimeType: m.Video.MimeType,
			FileSize: int64(m.Video.FileSize),
		})
	}
	if m.VideoNote != nil {
		refs = append(refs, bus.MediaRef{
			Kind:     bus.MediaVideoNote,
			FileID:   m.VideoNote.FileID,
			UniqueID: m.VideoNote.FileUniqueID,
			MimeType: "video/mp4",
			FileSize: int64(m.VideoNote.FileSize),
		})
	}
	if m.Animation != nil {
		refs = append(refs, bus.MediaRef{
			Kind:     bus.MediaAnimation,
			FileID:   m.Animation.FileID,
			UniqueID: m.Animation.FileUniqueID,
			FileName: m.Animation.FileName,
			MimeType: m.Animation.MimeType,
			FileSize: int64(m.Animation.FileSize),
		})
	}
	if m.Audio != nil {
		refs = append(refs, bus.MediaRef{
			Kind:     bus.MediaAudio,
			FileID:   m.Audio.FileID,
			UniqueID: m.Audio.FileUniqueID,
			FileName: m.Audio.FileName,
			MimeType: m.Audio.MimeType,
			FileSize: int64(m.Audio.FileSize),
		})
	}
	if m.Voice != nil {
		refs = append(refs, bus.MediaRef{
			Kind:     bus.MediaVoice,
			FileID:   m.Voice.FileID,
			UniqueID: m.Voice.FileUniqueID,
			MimeType: m.Voice.MimeType,
			FileSize: int64(m.Voice.FileSize),
		})
	}
	if m.Document != nil {
		refs = append(refs, bus.MediaRef{
			Kind:     bus.MediaDocument,
			FileID:   m.Document.FileID,
			UniqueID: m.Document.FileUniqueID,
			FileName: m.Document.FileName,
			MimeType: m.Document.MimeType,
			FileSize: int64(m.Document.FileSize),
		})
	}

	return refs
}
