package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventQueryChanged     EventType = "QueryChanged"
	EventSearchStarted    EventType = "SearchStarted"
	EventResultsPublished EventType = "ResultsPublished"
	EventPassSuperseded   EventType = "PassSuperseded"
	EventPipelineReset    EventType = "PipelineReset"
	EventObserversChanged EventType = "ObserversChanged"
	EventConfigLoaded     EventType = "ConfigLoaded"
	EventConfigSaved      EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SnapshotEvent is implemented by events that carry a pipeline snapshot
type SnapshotEvent interface {
	DomainEvent
	State() SearchSnapshot
}

// QueryChangedEvent is emitted as soon as the query text changes
type QueryChangedEvent struct {
	Snapshot SearchSnapshot
}

func (e QueryChangedEvent) Type() EventType { return EventQueryChanged }
func (e QueryChangedEvent) State() SearchSnapshot { return e.Snapshot }

// SearchStartedEvent is emitted when the debounce window elapses and a filter pass begins
type SearchStartedEvent struct {
	Snapshot SearchSnapshot
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }
func (e SearchStartedEvent) State() SearchSnapshot { return e.Snapshot }

// ResultsPublishedEvent is emitted when the latest pass settles
type ResultsPublishedEvent struct {
	Snapshot SearchSnapshot
}

func (e ResultsPublishedEvent) Type() EventType { return EventResultsPublished }
func (e ResultsPublishedEvent) State() SearchSnapshot { return e.Snapshot }

// PipelineResetEvent is emitted when the pipeline returns to its initial state
type PipelineResetEvent struct {
	Snapshot SearchSnapshot
}

func (e PipelineResetEvent) Type() EventType { return EventPipelineReset }
func (e PipelineResetEvent) State() SearchSnapshot { return e.Snapshot }

// PassSupersededEvent is emitted when a stale pass completes and is discarded
type PassSupersededEvent struct {
	Query      string
	Generation uint64
}

func (e PassSupersededEvent) Type() EventType { return EventPassSuperseded }

// ObserversChangedEvent is emitted when an observer attaches or detaches
type ObserversChangedEvent struct {
	Count int
}

func (e ObserversChangedEvent) Type() EventType { return EventObserversChanged }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path        string
	CatalogSize int
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
