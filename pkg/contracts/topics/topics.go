package topics

const (
	// PlayEvents carrega todo o ciclo de vida de uma play (posted, graded, deleted)
	PlayEvents    = "play_events"
	PlayEventsDLQ = "play_events_dlq"
)
