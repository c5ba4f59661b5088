// Package report renders crawl batches and trending topics into the
// text and HTML reports written to the output tree and sent to push
// channels.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/trendradar/trendradar/internal/analyzer"
	"github.com/trendradar/trendradar/internal/crawler"
)

var reSpace = regexp.MustCompile(`\s+`)

// Renderer formats batches for the configured timezone.
type Renderer struct {
	location  *time.Location
	converter *md.Converter
}

// NewRenderer builds a renderer rendering timestamps in location.
func NewRenderer(location *time.Location) *Renderer {
	if location == nil {
		location = time.Local
	}

	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:    "atx",
		EmDelimiter:     "*",
		StrongDelimiter: "**",
	})

	return &Renderer{location: location, converter: converter}
}

// PlainDesc converts an item description that may be an HTML fragment
// into plain markdown text on a single line.
func (r *Renderer) PlainDesc(desc string) string {
	if desc == "" {
		return ""
	}
	if !strings.ContainsAny(desc, "<>") {
		return strings.TrimSpace(desc)
	}

	text, err := r.converter.ConvertString(desc)
	if err != nil {
		return strings.TrimSpace(desc)
	}
	return strings.TrimSpace(reSpace.ReplaceAllString(text, " "))
}

// Text renders the full plain-text report.
func (r *Renderer) Text(batch *crawler.Batch, topics []analyzer.Topic) string {
	var b strings.Builder

	at := batch.CrawledAt.In(r.location)
	fmt.Fprintf(&b, "TrendRadar report %s\n", at.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "platforms: %d  items: %d", len(batch.Platforms), batch.TotalItems())
	if len(batch.Failed) > 0 {
		fmt.Fprintf(&b, "  failed: %s", strings.Join(batch.Failed, ", "))
	}
	b.WriteString("\n\n")

	if len(topics) > 0 {
		b.WriteString("== trending topics ==\n")
		for i, topic := range topics {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, topic.Label, topic.Count)
			for _, item := range topic.Items {
				fmt.Fprintf(&b, "   [%s #%d] %s\n", item.Platform, item.Rank, item.Title)
			}
		}
		b.WriteString("\n")
	}

	for _, platform := range batch.Platforms {
		fmt.Fprintf(&b, "== %s ==\n", platform.Name)
		if platform.Error != "" {
			fmt.Fprintf(&b, "fetch failed: %s\n\n", platform.Error)
			continue
		}
		for _, item := range platform.Items {
			fmt.Fprintf(&b, "%2d. %s", item.Rank, item.Title)
			if item.Extra != "" {
				fmt.Fprintf(&b, " (%s)", item.Extra)
			}
			b.WriteString("\n")
			if desc := r.PlainDesc(item.Desc); desc != "" {
				fmt.Fprintf(&b, "    %s\n", desc)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Summary renders the short push-channel message: header plus the top
// topics, falling back to per-platform headline counts when no word
// groups matched.
func (r *Renderer) Summary(batch *crawler.Batch, topics []analyzer.Topic, topN int) string {
	var b strings.Builder

	at := batch.CrawledAt.In(r.location)
	fmt.Fprintf(&b, "TrendRadar %s\n", at.Format("01-02 15:04"))

	topics = analyzer.TopN(topics, topN)
	if len(topics) > 0 {
		for i, topic := range topics {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, topic.Label, topic.Count)
			for j, item := range topic.Items {
				if j >= 3 {
					fmt.Fprintf(&b, "   ... %d more\n", len(topic.Items)-j)
					break
				}
				fmt.Fprintf(&b, "   %s\n", item.Title)
			}
		}
	} else {
		for _, platform := range batch.Platforms {
			if platform.Error != "" {
				fmt.Fprintf(&b, "%s: fetch failed\n", platform.Name)
				continue
			}
			fmt.Fprintf(&b, "%s: %d items\n", platform.Name, len(platform.Items))
		}
	}

	if len(batch.Failed) > 0 {
		fmt.Fprintf(&b, "failed platforms: %s\n", strings.Join(batch.Failed, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// SplitMessage chops a message into chunks of at most maxRunes runes,
// preferring line boundaries. maxRunes <= 0 returns the message as is.
func SplitMessage(message string, maxRunes int) []string {
	if maxRunes <= 0 || len([]rune(message)) <= maxRunes {
		return []string{message}
	}

	var (
		chunks  []string
		current strings.Builder
		count   int
	)
	for _, line := range strings.Split(message, "\n") {
		lineRunes := len([]rune(line)) + 1
		if count > 0 && count+lineRunes > maxRunes {
			chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
			current.Reset()
			count = 0
		}
		// A single line longer than the limit is split hard.
		for len([]rune(line)) > maxRunes {
			runes := []rune(line)
			chunks = append(chunks, string(runes[:maxRunes]))
			line = string(runes[maxRunes:])
		}
		current.WriteString(line)
		current.WriteString("\n")
		count += len([]rune(line)) + 1
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
	}
	return chunks
}
