// Package share formats an allocation as postable text and builds the
// social intent URL for it. It works from an existing allocation so the
// shared stakes always match the displayed ones.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yourusername/flat-stake/internal/allocator"
	"github.com/yourusername/flat-stake/internal/display"
	"github.com/yourusername/flat-stake/internal/input"
	"github.com/yourusername/flat-stake/internal/metrics"
	"github.com/yourusername/flat-stake/internal/models"
)

// Options configures the share text
type Options struct {
	Title     string
	IntentURL string
	PageURL   string
	Hashtags  []string
}

// Post is a ready-to-publish share
type Post struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Sharer composes share posts
type Sharer struct {
	opts      Options
	intent    *url.URL
	formatter *display.Formatter
}

// New creates a sharer. The intent URL must be absolute.
func New(opts Options, formatter *display.Formatter) (*Sharer, error) {
	intent, err := url.Parse(opts.IntentURL)
	if err != nil {
		return nil, fmt.Errorf("invalid intent url: %w", err)
	}
	if !intent.IsAbs() {
		return nil, fmt.Errorf("intent url must be absolute: %s", opts.IntentURL)
	}
	if formatter == nil {
		formatter = display.Default()
	}

	return &Sharer{opts: opts, intent: intent, formatter: formatter}, nil
}

// Text renders the share text: one line per staked outcome followed by the
// minimum expected profit.
func (s *Sharer) Text(result *allocator.Allocation) (string, error) {
	if result == nil {
		return "", models.ErrNoResult
	}

	var b strings.Builder
	if s.opts.Title != "" {
		b.WriteString(s.opts.Title)
		b.WriteString("\n")
	}
	for _, stake := range result.Stakes {
		if stake.Stake <= 0 {
			continue
		}
		fmt.Fprintf(&b, "#%d %sx %s\n", stake.Label, input.FormatOdds(stake.Odds), s.formatter.Number(stake.Stake))
	}
	fmt.Fprintf(&b, "Min expected profit: %s", s.formatter.Profit(result.Summary.ExpectedProfit))
	return b.String(), nil
}

// Compose builds the share text and the intent URL carrying it
func (s *Sharer) Compose(result *allocator.Allocation) (Post, error) {
	text, err := s.Text(result)
	if err != nil {
		return Post{}, err
	}

	intent := *s.intent
	query := intent.Query()
	query.Set("text", text)
	if len(s.opts.Hashtags) > 0 {
		query.Set("hashtags", strings.Join(s.opts.Hashtags, ","))
	}
	if s.opts.PageURL != "" {
		query.Set("url", s.opts.PageURL)
	}
	intent.RawQuery = query.Encode()

	metrics.RecordShare()
	return Post{Text: text, URL: intent.String()}, nil
}
