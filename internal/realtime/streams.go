package realtime

// Named realtime streams used across the platform.
const (
	StreamNotifications = "notifications"
	StreamPipeline      = "pipeline.board"
)
