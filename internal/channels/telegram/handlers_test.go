package telegram

import (
	"testing"

	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/tgvault/internal/bus"
)

func TestExtractMediaPhotoPicksLargest(t *testing.T) {
	msg := &telego.Message{
		Photo: []telego.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "medium", Width: 320, Height: 320},
			{FileID: "large", Width: 1280, Height: 1280},
		},
	}

	refs := extractMedia(msg)
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1", len(refs))
	}
	if refs[0].Kind != bus.MediaPhoto {
		t.Errorf("kind = %s, want photo", refs[0].Kind)
	}
	if refs[0].FileID != "large" {
		t.Errorf("file_id = %s, want large (highest resolution)", refs[0].FileID)
	}
}

func TestExtractMediaKinds(t *testing.T) {
	tests := []struct {
		name string
		msg  *telego.Message
		want bus.MediaKind
	}{
		{"video", &telego.Message{Video: &telego.Video{FileID: "v", FileName: "clip.mp4", MimeType: "video/mp4"}}, bus.MediaVideo},
		{"video note", &telego.Message{VideoNote: &telego.VideoNote{FileID: "vn"}}, bus.MediaVideoNote},
		{"animation", &telego.Message{Animation: &telego.Animation{FileID: "a"}}, bus.MediaAnimation},
		{"audio", &telego.Message{Audio: &telego.Audio{FileID: "au"}}, bus.MediaAudio},
		{"voice", &telego.Message{Voice: &telego.Voice{FileID: "vo"}}, bus.MediaVoice},
		{"document", &telego.Message{Document: &telego.Document{FileID: "d", FileName: "x.pdf"}}, bus.MediaDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := extractMedia(tt.msg)
			if len(refs) != 1 {
				t.Fatalf("got %d refs, want 1", len(refs))
			}
			if refs[0].Kind != tt.want {
				t.Errorf("kind = %s, want %s", refs[0].Kind, tt.want)
			}
		})
	}
}

func TestExtractMediaEmpty(t *testing.T) {
	if refs := extractMedia(&telego.Message{Text: "just text"}); len(refs) != 0 {
		t.Fatalf("got %d refs for text-only message, want 0", len(refs))
	}
}

func TestIsServiceMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  *telego.Message
		want bool
	}{
		{"plain text", &telego.Message{Text: "hi"}, false},
		{"photo", &telego.Message{Photo: []telego.PhotoSize{{FileID: "p"}}}, false},
		{"voice note", &telego.Message{Voice: &telego.Voice{FileID: "v"}}, false},
		{"captioned video", &telego.Message{Caption: "look", Video: &telego.Video{FileID: "x"}}, false},
		{"member joined", &telego.Message{NewChatMembers: []telego.User{{ID: 1}}}, true},
		{"member left", &telego.Message{LeftChatMember: &telego.User{ID: 1}}, true},
		{"title changed", &telego.Message{NewChatTitle: "new"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isServiceMessage(tt.msg); got != tt.want {
				t.Errorf("isServiceMessage = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMediaFileName(t *testing.T) {
	tests := []struct {
		name       string
		ref        bus.MediaRef
		remotePath string
		want       string
	}{
		{"photo deterministic", bus.MediaRef{Kind: bus.MediaPhoto, FileID: "AbC"}, "photos/file_1.jpg", "photo_AbC.jpg"},
		{"document keeps name", bus.MediaRef{Kind: bus.MediaDocument, FileID: "d1", FileName: "report.pdf"}, "documents/file_2.pdf", "d1_report.pdf"},
		{"voice falls back to remote ext", bus.MediaRef{Kind: bus.MediaVoice, FileID: "v1"}, "voice/file_3.oga", "voice_v1.oga"},
		{"no extension anywhere", bus.MediaRef{Kind: bus.MediaVideoNote, FileID: "n1"}, "video_notes/file_4", "video_note_n1.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mediaFileName(tt.ref, tt.remotePath); got != tt.want {
				t.Errorf("mediaFileName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseChatID(t *testing.T) {
	if id, err := parseChatID("-100123"); err != nil || id != -100123 {
		t.Errorf("parseChatID(-100123) = %d, %v", id, err)
	}
	if _, err := parseChatID("abc"); err == nil {
		t.Errorf("parseChatID(abc) succeeded")
	}
}
