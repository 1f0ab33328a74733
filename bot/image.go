package bot

import (
	"context"
	"strings"

	"github.com/mirelhq/babelbot/llm"
)

// handleImage downloads the photo and asks the vision model for a
// description. Image exchanges are not persisted.
func (b *Bot) handleImage(ctx context.Context, ev Event) error {
	data, err := b.media.DownloadFile(ctx, ev.Photo.FileID)
	if err != nil {
		b.logger.Warn("image_download_failed", "chat_id", ev.ChatID, "error", err.Error())
		return b.sender.SendText(ctx, ev.ChatID, msgDownloadFailed)
	}

	res, err := b.llm.DescribeImage(ctx, llm.ImageRequest{
		Model: b.visionModel,
		Data:  data,
	})
	if err != nil {
		return b.sender.SendText(ctx, ev.ChatID, "Error processing image: "+err.Error())
	}

	description := strings.TrimSpace(res.Text)
	if description == "" {
		description = msgNoDescription
	}
	return b.sender.SendTextChunked(ctx, ev.ChatID, description)
}
