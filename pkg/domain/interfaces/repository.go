package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Thread() ThreadRepository
	Contact() ContactRepository
	Timeline() TimelineRepository
	Metrics() MetricsRepository
	MessageCache() MessageCache
	Calendar() CalendarSource

	Close() error
}
