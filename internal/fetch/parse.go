package fetch

import (
	"encoding/base64"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/spark-rms/spark/internal/types"
)

// maxContentLength caps how much email body is kept per item
const maxContentLength = 500

// Item is one notification email normalized into activity fields
type Item struct {
	NativeID  string
	Platform  types.Platform
	Type      types.ActivityType
	Subject   string
	Content   string
	URL       string
	Timestamp time.Time
}

var (
	linkedinURLPattern = regexp.MustCompile(`https://www\.linkedin\.com/[^\s"']+`)
	facebookURLPattern = regexp.MustCompile(`https://www\.facebook\.com/[^\s"']+`)
)

// parseMessage normalizes one notification email into an Item
func parseMessage(platform types.Platform, message *gmail.Message) Item {
	subject := header(message, "Subject")
	body := extractBody(message)

	item := Item{
		NativeID:  message.Id,
		Platform:  platform,
		Subject:   subject,
		Content:   truncate(body, maxContentLength),
		Timestamp: messageTime(message),
	}

	switch platform {
	case types.PlatformLinkedIn:
		item.Type = detectLinkedInType(subject, body)
		item.URL = linkedinURLPattern.FindString(body)
	case types.PlatformFacebook:
		item.Type = detectFacebookType(subject, body)
		item.URL = facebookURLPattern.FindString(body)
	default:
		item.Type = types.ActivityOther
	}
	return item
}

// detectLinkedInType classifies a LinkedIn notification by its subject line,
// falling back to the body for comment notifications which sometimes carry
// the phrase only there.
func detectLinkedInType(subject, body string) types.ActivityType {
	switch {
	case strings.Contains(subject, "commented on") || strings.Contains(body, "commented on"):
		return types.ActivityComment
	case strings.Contains(subject, "mentioned you in"):
		return types.ActivityMention
	case strings.Contains(subject, "liked"):
		return types.ActivityLike
	case strings.Contains(subject, "You have a new connection"):
		return types.ActivityConnection
	default:
		return types.ActivityPost
	}
}

func detectFacebookType(subject, body string) types.ActivityType {
	switch {
	case strings.Contains(subject, "commented on") || strings.Contains(body, "commented on"):
		return types.ActivityComment
	case strings.Contains(subject, "mentioned you"):
		return types.ActivityMention
	case strings.Contains(subject, "reacted to"):
		return types.ActivityLike
	default:
		return types.ActivityPost
	}
}

// header returns a message header value, case-insensitively
func header(message *gmail.Message, name string) string {
	if message.Payload == nil {
		return ""
	}
	for _, h := range message.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBody walks the MIME tree depth-first and returns the first
// decodable body part. Falls back to the snippet when the payload carries
// no inline body.
func extractBody(message *gmail.Message) string {
	if message.Payload == nil {
		return message.Snippet
	}
	if len(message.Payload.Parts) > 0 {
		if body := extractPartBody(message.Payload.Parts); body != "" {
			return body
		}
	}
	if message.Payload.Body != nil && message.Payload.Body.Data != "" {
		if decoded := decodeBody(message.Payload.Body.Data); decoded != "" {
			return decoded
		}
	}
	return message.Snippet
}

func extractPartBody(parts []*gmail.MessagePart) string {
	for _, part := range parts {
		if len(part.Parts) > 0 {
			if body := extractPartBody(part.Parts); body != "" {
				return body
			}
		}
		if part.Body != nil && part.Body.Data != "" {
			if decoded := decodeBody(part.Body.Data); decoded != "" {
				return decoded
			}
		}
	}
	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}

// messageTime converts the Gmail internal date (unix millis) to a
// time.Time, falling back to now when it is missing.
func messageTime(message *gmail.Message) time.Time {
	if message.InternalDate <= 0 {
		return time.Now()
	}
	return time.UnixMilli(message.InternalDate)
}

// truncate cuts s to at most n bytes on a rune boundary, appending an
// ellipsis when anything was dropped.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
