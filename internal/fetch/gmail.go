// Package fetch pulls platform notification emails out of a user's Gmail
// inbox. LinkedIn and Facebook both deliver activity notifications over
// email, which keeps ingestion inside the gmail.readonly scope instead of
// per-platform APIs.
package fetch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/spark-rms/spark/internal/config"
	"github.com/spark-rms/spark/internal/types"
)

const maxResults = 50

// senderQueries map each supported platform to the Gmail sender that
// delivers its notifications.
var senderQueries = map[types.Platform]string{
	types.PlatformLinkedIn: "from:notifications-noreply@linkedin.com",
	types.PlatformFacebook: "from:facebookmail.com",
}

// GmailFetcher fetches notification emails through the Gmail API
type GmailFetcher struct {
	conf *oauth2.Config
}

// NewGmailFetcher creates a fetcher from the configured OAuth client
func NewGmailFetcher(cfg config.GoogleConfig) *GmailFetcher {
	return &GmailFetcher{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{"https://www.googleapis.com/auth/gmail.readonly"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Refresh exchanges a refresh token for a fresh access token
func (f *GmailFetcher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := f.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return token, nil
}

// FetchSince returns the platform's notification emails received after
// since, newest batches first, capped at maxResults messages.
func (f *GmailFetcher) FetchSince(ctx context.Context, token *oauth2.Token, platform types.Platform, since time.Time) ([]Item, error) {
	sender, ok := senderQueries[platform]
	if !ok {
		return nil, fmt.Errorf("no notification sender known for platform %s", platform)
	}

	client := f.conf.Client(ctx, token)
	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	query := fmt.Sprintf("%s after:%s", sender, since.Format("2006/01/02"))
	response, err := service.Users.Messages.List("me").Q(query).MaxResults(maxResults).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if response == nil || response.Messages == nil {
		return nil, nil
	}

	var items []Item
	for _, ref := range response.Messages {
		message, err := service.Users.Messages.Get("me", ref.Id).Format("full").Do()
		if err != nil {
			return items, fmt.Errorf("failed to fetch message %s: %w", ref.Id, err)
		}
		items = append(items, parseMessage(platform, message))
	}
	return items, nil
}
