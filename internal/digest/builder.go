// Package digest compiles a user's recent important activities into an
// outreach digest email.
package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/spark-rms/spark/internal/types"
)

// Builder creates digest emails from flagged activities
type Builder struct {
	maxItems int
	template *template.Template
}

// New creates a new digest builder
func New(maxItems int) (*Builder, error) {
	tmpl, err := template.New("digest").Parse(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &Builder{
		maxItems: maxItems,
		template: tmpl,
	}, nil
}

// Digest represents a compiled digest ready for sending
type Digest struct {
	Subject     string
	HTMLBody    string
	PlainBody   string
	ActivityIDs []string
	CreatedAt   time.Time
}

// DigestData is the template data structure
type DigestData struct {
	Title string
	Date  string
	Items []ItemData
	Stats StatsData
}

// ItemData represents one important activity in the digest template
type ItemData struct {
	Platform        string
	Content         string
	Reason          string
	SuggestedAction string
	URL             string
	Importance      int
	When            string
}

// StatsData contains digest statistics
type StatsData struct {
	TotalIncluded int
}

// Build creates a digest from flagged activities. Activities without an
// importance score are skipped.
func (b *Builder) Build(activities []types.Activity) (*Digest, error) {
	var flagged []types.Activity
	for _, a := range activities {
		if a.Importance != nil {
			flagged = append(flagged, a)
		}
	}
	if len(flagged) == 0 {
		return nil, fmt.Errorf("no important activities to include in digest")
	}

	// Highest importance first
	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].Importance.Score > flagged[j].Importance.Score
	})

	if len(flagged) > b.maxItems {
		flagged = flagged[:b.maxItems]
	}

	now := time.Now()
	data := DigestData{
		Title: "Your Network Updates",
		Date:  now.Format("Monday, January 2"),
		Items: make([]ItemData, len(flagged)),
		Stats: StatsData{
			TotalIncluded: len(flagged),
		},
	}

	activityIDs := make([]string, len(flagged))
	for i, a := range flagged {
		data.Items[i] = ItemData{
			Platform:        string(a.Platform),
			Content:         truncate(a.Content, 280),
			Reason:          a.Importance.Reason,
			SuggestedAction: a.Importance.SuggestedAction,
			URL:             a.URL,
			Importance:      a.Importance.Score,
			When:            a.Timestamp.Format("Jan 2"),
		}
		activityIDs[i] = a.ID
	}

	var htmlBuf bytes.Buffer
	if err := b.template.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &Digest{
		Subject:     fmt.Sprintf("Network Updates - %s", now.Format("Jan 2")),
		HTMLBody:    htmlBuf.String(),
		PlainBody:   buildPlainText(data),
		ActivityIDs: activityIDs,
		CreatedAt:   now,
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return strings.ToValidUTF8(s[:maxLen-3], "") + "..."
}

func buildPlainText(data DigestData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s\n%s\n\n", data.Title, data.Date))

	for i, item := range data.Items {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, item.Platform, item.Reason))
		buf.WriteString(fmt.Sprintf("   %s\n", item.SuggestedAction))
		if item.URL != "" {
			buf.WriteString(fmt.Sprintf("   %s\n", item.URL))
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .container { background: white; border-radius: 8px; padding: 20px; }
        h1 { color: #e25822; margin-bottom: 5px; }
        .date { color: #666; margin-bottom: 20px; }
        .item { border-bottom: 1px solid #eee; padding: 15px 0; }
        .item:last-child { border-bottom: none; }
        .platform { display: inline-block; background: #fdf0e8; color: #e25822; padding: 2px 8px; border-radius: 12px; font-size: 12px; text-transform: capitalize; }
        .when { color: #666; font-size: 13px; margin-left: 8px; }
        .content { margin: 10px 0; line-height: 1.4; }
        .reason { color: #e25822; font-weight: bold; margin: 8px 0; }
        .action { color: #333; margin: 5px 0; }
        .link { color: #e25822; text-decoration: none; }
        .footer { margin-top: 20px; padding-top: 15px; border-top: 1px solid #eee; color: #999; font-size: 12px; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div class="date">{{.Date}}</div>

        {{range .Items}}
        <div class="item">
            <span class="platform">{{.Platform}}</span><span class="when">{{.When}}</span>
            <div class="content">{{.Content}}</div>
            <div class="reason">{{.Reason}}</div>
            <div class="action">Suggested: {{.SuggestedAction}}</div>
            {{if .URL}}<a href="{{.URL}}" class="link">View activity →</a>{{end}}
        </div>
        {{end}}

        <div class="footer">
            Included {{.Stats.TotalIncluded}} updates · Generated by spark
        </div>
    </div>
</body>
</html>`
