package entities

import (
	"fmt"
	"time"

	"ideaweaver/domain/config"
	"ideaweaver/domain/core/valueobjects"
	"ideaweaver/domain/events"
	pkgerrors "ideaweaver/pkg/errors"
)

// Node is the main entity representing a captured idea.
// This is a rich domain model with encapsulated business logic.
type Node struct {
	// Private fields ensure encapsulation
	id        valueobjects.NodeID
	profileID valueobjects.ProfileID
	text      valueobjects.IdeaText
	tags      []string
	hasVector bool
	createdAt time.Time
	updatedAt time.Time
	version   int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewNode captures a new idea into a profile with full business rule validation
func NewNode(profileID valueobjects.ProfileID, text valueobjects.IdeaText, tags []string) (*Node, error) {
	if profileID.IsZero() {
		return nil, pkgerrors.NewValidationError("profileID cannot be empty")
	}

	if text.IsEmpty() {
		return nil, pkgerrors.ErrIdeaTextRequired
	}

	now := time.Now()
	node := &Node{
		id:        valueobjects.NewNodeID(),
		profileID: profileID,
		text:      text,
		tags:      append([]string{}, tags...),
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	node.addEvent(events.NewIdeaCaptured(
		node.id,
		profileID,
		text.String(),
		node.Tags(),
		false, // flipped when an embedding is attached
		now,
	))

	return node, nil
}

// ReconstructNode reconstructs a node from repository data with preserved timestamps
func ReconstructNode(
	id valueobjects.NodeID,
	profileID valueobjects.ProfileID,
	text valueobjects.IdeaText,
	tags []string,
	hasVector bool,
	createdAt, updatedAt time.Time,
	version int,
) (*Node, error) {
	if profileID.IsZero() {
		return nil, pkgerrors.NewValidationError("profileID cannot be empty")
	}

	if text.IsEmpty() {
		return nil, pkgerrors.ErrIdeaTextRequired
	}

	if version < 1 {
		version = 1
	}

	return &Node{
		id:        id,
		profileID: profileID,
		text:      text,
		tags:      append([]string{}, tags...),
		hasVector: hasVector,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// ProfileID returns the owning profile's ID
func (n *Node) ProfileID() valueobjects.ProfileID {
	return n.profileID
}

// Text returns the idea's text
func (n *Node) Text() valueobjects.IdeaText {
	return n.text
}

// HasVector reports whether an embedding has been attached
func (n *Node) HasVector() bool {
	return n.hasVector
}

// Version returns the node's version for optimistic locking
func (n *Node) Version() int {
	return n.version
}

// BelongsTo checks the node's profile membership. Autolink and selection
// refuse nodes from any other profile.
func (n *Node) BelongsTo(profileID valueobjects.ProfileID) bool {
	return n.profileID.Equals(profileID)
}

// MarkEmbedded records that an embedding was computed for this idea
func (n *Node) MarkEmbedded() {
	if n.hasVector {
		return
	}
	n.hasVector = true
	n.updatedAt = time.Now()

	// The pending capture event must carry the final vector status so the
	// autolink Lambda knows whether k-NN is possible.
	for i, event := range n.events {
		if captured, ok := event.(events.IdeaCaptured); ok {
			captured.HasVector = true
			n.events[i] = captured
			break
		}
	}
}

// UpdateText replaces the idea's text
func (n *Node) UpdateText(text valueobjects.IdeaText) error {
	if text.IsEmpty() {
		return pkgerrors.ErrIdeaTextRequired
	}

	if text.Equals(n.text) {
		return nil // No change needed
	}

	n.text = text
	n.hasVector = false // stale embedding, recompute on next capture pass
	n.updatedAt = time.Now()
	n.version++

	return nil
}

// AddTag adds a tag to the node
func (n *Node) AddTag(tag string) error {
	return n.AddTagWithConfig(tag, config.DefaultDomainConfig())
}

// AddTagWithConfig adds a tag to the node with configuration
func (n *Node) AddTagWithConfig(tag string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if tag == "" {
		return pkgerrors.NewValidationError("tag cannot be empty")
	}

	for _, t := range n.tags {
		if t == tag {
			return nil // Tag already exists
		}
	}

	if len(n.tags) >= cfg.MaxTagsPerIdea {
		return fmt.Errorf("maximum tags reached: %d", cfg.MaxTagsPerIdea)
	}

	n.tags = append(n.tags, tag)
	n.updatedAt = time.Now()

	for i, event := range n.events {
		if captured, ok := event.(events.IdeaCaptured); ok {
			captured.Tags = n.Tags()
			n.events[i] = captured
			break
		}
	}

	return nil
}

// RemoveTag removes a tag from the node
func (n *Node) RemoveTag(tag string) error {
	newTags := []string{}
	found := false

	for _, t := range n.tags {
		if t != tag {
			newTags = append(newTags, t)
		} else {
			found = true
		}
	}

	if !found {
		return pkgerrors.NewNotFoundError("tag")
	}

	n.tags = newTags
	n.updatedAt = time.Now()

	return nil
}

// Tags returns all tags
func (n *Node) Tags() []string {
	// Return a copy to maintain encapsulation
	tags := make([]string, len(n.tags))
	copy(tags, n.tags)
	return tags
}

// CreatedAt returns when the idea was captured
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *Node) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *Node) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (n *Node) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}
