package bot

import (
	"context"
	"fmt"
	"strings"
)

const maxSearchResults = 5

// handleSearch queries the search provider with everything after the
// "/search " prefix and replies with a numbered result list.
func (b *Bot) handleSearch(ctx context.Context, chatID int64, text string) error {
	query := strings.Replace(text, searchPrefix, "", 1)

	results, err := b.search.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return b.sender.SendText(ctx, chatID, msgNoResults)
	}

	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	var sb strings.Builder
	sb.WriteString("Top search results:\n")
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s - %s", i+1, r.Title, r.Link)
	}
	return b.sender.SendTextChunked(ctx, chatID, sb.String())
}
