package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DryRunNotifier prints what would be tweeted without actually posting
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to out, or stdout when out is nil.
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the tweets that would be posted
func (n *DryRunNotifier) Notify(ctx context.Context, summary *Summary) error {
	tweets := Tweets(summary)
	if len(tweets) == 0 {
		fmt.Fprintf(n.out, "No schedule changes in run %s\n", summary.RunID)
		return nil
	}
	for i, tweet := range tweets {
		fmt.Fprintf(n.out, "--- Tweet %d/%d ---\n", i+1, len(tweets))
		fmt.Fprintln(n.out, tweet)
		fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", len(tweet))
	}
	return nil
}
