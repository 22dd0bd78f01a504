package notifier

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/owg-schedule/internal/schedule"
)

// MaxTweets caps the tweets posted for a single run.
const MaxTweets = 10

const tweetLimit = 280

type statusUpdater interface {
	Update(status string, params *twitter.StatusUpdateParams) (*twitter.Tweet, *http.Response, error)
}

// TwitterNotifier posts schedule changes to Twitter
type TwitterNotifier struct {
	statuses statusUpdater
	delay    time.Duration
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{statuses: client.Statuses, delay: 2 * time.Second}, nil
}

// Notify posts one tweet per change, up to MaxTweets.
func (n *TwitterNotifier) Notify(ctx context.Context, summary *Summary) error {
	tweets := Tweets(summary)
	for i, tweet := range tweets {
		if _, _, err := n.statuses.Update(tweet, nil); err != nil {
			return fmt.Errorf("failed to post tweet %d of run %s: %w", i+1, summary.RunID, err)
		}

		// Rate limiting: wait between tweets
		if i < len(tweets)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.delay):
			}
		}
	}

	return nil
}

// Tweets renders the changes of a run, new events first.
func Tweets(summary *Summary) []string {
	if !summary.HasChanges() {
		return nil
	}
	var tweets []string
	for _, ev := range summary.Changes.NewEvents {
		tweets = append(tweets, formatTweet(ev))
	}
	for _, ch := range summary.Changes.StatusChanges {
		tweets = append(tweets, formatStatusTweet(ch))
	}
	if len(tweets) > MaxTweets {
		tweets = tweets[:MaxTweets]
	}
	return tweets
}

// formatTweet formats a newly scheduled event as a tweet
func formatTweet(ev schedule.DatedEvent) string {
	var b strings.Builder
	b.WriteString("❄️ New on the Milano Cortina 2026 schedule\n\n")
	fmt.Fprintf(&b, "🏅 %s - %s\n", ev.Event.Sport, ev.Event.Event)
	fmt.Fprintf(&b, "📅 %s %s\n", ev.Date, ev.Event.Time)
	if ev.Event.Venue != "" {
		fmt.Fprintf(&b, "📍 %s\n", ev.Event.Venue)
	}
	if ev.Event.Teams != "" {
		fmt.Fprintf(&b, "🆚 %s\n", ev.Event.Teams)
	}
	b.WriteString("\n#MilanoCortina2026 #Olympics")
	return truncate(b.String())
}

func formatStatusTweet(ch schedule.StatusChange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏱️ %s: %s\n\n", ch.Event.Status, ch.Event.Event)
	fmt.Fprintf(&b, "🏅 %s\n", ch.Event.Sport)
	fmt.Fprintf(&b, "📅 %s %s\n", ch.Date, ch.Event.Time)
	if ch.Event.Teams != "" {
		fmt.Fprintf(&b, "🆚 %s\n", ch.Event.Teams)
	}
	b.WriteString("\n#MilanoCortina2026")
	return truncate(b.String())
}

func truncate(tweet string) string {
	// Twitter limit is 280 characters
	if len(tweet) > tweetLimit {
		tweet = tweet[:tweetLimit-3]
		// Avoid cutting a multi-byte rune in half
		for len(tweet) > 0 && !utf8.ValidString(tweet) {
			tweet = tweet[:len(tweet)-1]
		}
		tweet += "..."
	}
	return tweet
}
