package events

import (
	"time"

	"ideaweaver/domain/core/valueobjects"
)

// SourceService identifies this service on the event bus
const SourceService = "ideaweaver"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Idea Events

// IdeaCaptured is raised when a new idea is captured into a profile.
// The autolink Lambda consumes this event to wire the idea into the graph.
type IdeaCaptured struct {
	BaseEvent
	NodeID    valueobjects.NodeID    `json:"node_id"`
	ProfileID valueobjects.ProfileID `json:"profile_id"`
	Text      string                 `json:"text"`
	Tags      []string               `json:"tags"`
	HasVector bool                   `json:"has_vector"`
}

// NewIdeaCaptured creates an IdeaCaptured event
func NewIdeaCaptured(nodeID valueobjects.NodeID, profileID valueobjects.ProfileID, text string, tags []string, hasVector bool, timestamp time.Time) IdeaCaptured {
	return IdeaCaptured{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "idea.captured",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:    nodeID,
		ProfileID: profileID,
		Text:      text,
		Tags:      tags,
		HasVector: hasVector,
	}
}

// IdeaDeleted is raised when an idea is removed from a profile
type IdeaDeleted struct {
	BaseEvent
	NodeID    valueobjects.NodeID    `json:"node_id"`
	ProfileID valueobjects.ProfileID `json:"profile_id"`
}

// NewIdeaDeleted creates an IdeaDeleted event
func NewIdeaDeleted(nodeID valueobjects.NodeID, profileID valueobjects.ProfileID, timestamp time.Time) IdeaDeleted {
	return IdeaDeleted{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "idea.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:    nodeID,
		ProfileID: profileID,
	}
}

// Edge Events

// LinkedEdge is the per-edge payload inside an EdgesLinked event
type LinkedEdge struct {
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id"`
	Weight   float64 `json:"weight"`
}

// EdgesLinked is raised after autolink commits a batch of edges for an anchor idea
type EdgesLinked struct {
	BaseEvent
	AnchorID   valueobjects.NodeID    `json:"anchor_id"`
	ProfileID  valueobjects.ProfileID `json:"profile_id"`
	Edges      []LinkedEdge           `json:"edges"`
	Provenance string                 `json:"provenance"`
}

// NewEdgesLinked creates an EdgesLinked event
func NewEdgesLinked(anchorID valueobjects.NodeID, profileID valueobjects.ProfileID, edges []LinkedEdge, provenance string, timestamp time.Time) EdgesLinked {
	return EdgesLinked{
		BaseEvent: BaseEvent{
			AggregateID: anchorID.String(),
			EventType:   "edges.linked",
			Timestamp:   timestamp,
			Version:     1,
		},
		AnchorID:   anchorID,
		ProfileID:  profileID,
		Edges:      edges,
		Provenance: provenance,
	}
}

// Profile Events

// ProfileCreated is raised when a new voice profile is created
type ProfileCreated struct {
	BaseEvent
	ProfileID valueobjects.ProfileID `json:"profile_id"`
	Name      string                 `json:"name"`
}

// NewProfileCreated creates a ProfileCreated event
func NewProfileCreated(profileID valueobjects.ProfileID, name string, timestamp time.Time) ProfileCreated {
	return ProfileCreated{
		BaseEvent: BaseEvent{
			AggregateID: profileID.String(),
			EventType:   "profile.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		ProfileID: profileID,
		Name:      name,
	}
}

// ProfileReset is raised after a profile's ideas, edges, and vectors have been cleared
type ProfileReset struct {
	BaseEvent
	ProfileID    valueobjects.ProfileID `json:"profile_id"`
	IdeasRemoved int                    `json:"ideas_removed"`
	EdgesRemoved int                    `json:"edges_removed"`
}

// NewProfileReset creates a ProfileReset event
func NewProfileReset(profileID valueobjects.ProfileID, ideasRemoved, edgesRemoved int, timestamp time.Time) ProfileReset {
	return ProfileReset{
		BaseEvent: BaseEvent{
			AggregateID: profileID.String(),
			EventType:   "profile.reset",
			Timestamp:   timestamp,
			Version:     1,
		},
		ProfileID:    profileID,
		IdeasRemoved: ideasRemoved,
		EdgesRemoved: edgesRemoved,
	}
}
