package bot

import "strings"

// Event is one inbound chat event, already normalized away from the
// transport's update shape.
type Event struct {
	ChatID    int64
	MessageID int64
	FirstName string
	Username  string
	Text      string
	Contact   *Contact
	Photo     *Photo
}

type Contact struct {
	PhoneNumber string
}

type Photo struct {
	FileID string
}

// splitCommand returns the leading word and the remainder of a message.
func splitCommand(text string) (cmd string, rest string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}
	i := strings.IndexAny(text, " \n\t")
	if i == -1 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i:])
}

// normalizeSlashCommand lowercases a command word and strips "@BotName"
// suffixes so "/start@SomeBot" routes like "/start".
func normalizeSlashCommand(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" || !strings.HasPrefix(cmd, "/") {
		return ""
	}
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}
