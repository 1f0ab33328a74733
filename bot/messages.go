package bot

// User-visible reply texts.
const (
	msgWelcome              = "Welcome! Please share your phone number."
	msgWelcomeBack          = "Welcome back! How can I assist you?"
	msgPhoneSaved           = "Phone number saved successfully! How can I assist you?"
	msgAIFallback           = "Sorry, I couldn't process that."
	msgDownloadFailed       = "Failed to download image. Please try again."
	msgNoDescription        = "Could not generate description."
	msgNoResults            = "No results found."
	msgTranslateUnavailable = "Translation unavailable."
	msgNudge                = "Are you still there? Let me know if you need further assistance!"

	contactButtonLabel = "Share Phone"

	searchPrefix    = "/search "
	translatePrefix = "/translate "
)
