package entities

import (
	"time"

	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/valueobjects"
	"ideaweaver/domain/events"
	pkgerrors "ideaweaver/pkg/errors"
)

// Profile is an isolated voice: a named container for ideas, edges, and
// vectors. Nothing is shared between profiles.
type Profile struct {
	id        valueobjects.ProfileID
	name      string
	preset    string
	autolink  autolink.Config
	createdAt time.Time
	updatedAt time.Time
	version   int

	events []events.DomainEvent
}

// NewProfile creates a profile with the named autolink preset.
// An empty preset name selects the default policy.
func NewProfile(name, preset string) (*Profile, error) {
	if name == "" {
		return nil, pkgerrors.ErrProfileNameRequired
	}

	cfg, err := autolink.FromPreset(preset)
	if err != nil {
		return nil, err
	}
	if preset == "" {
		preset = autolink.PresetDefault
	}

	now := time.Now()
	profile := &Profile{
		id:        valueobjects.NewProfileID(),
		name:      name,
		preset:    preset,
		autolink:  cfg,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	profile.addEvent(events.NewProfileCreated(profile.id, name, now))

	return profile, nil
}

// ReconstructProfile rebuilds a profile from repository data
func ReconstructProfile(
	id valueobjects.ProfileID,
	name, preset string,
	cfg autolink.Config,
	createdAt, updatedAt time.Time,
	version int,
) (*Profile, error) {
	if name == "" {
		return nil, pkgerrors.ErrProfileNameRequired
	}
	if version < 1 {
		version = 1
	}

	return &Profile{
		id:        id,
		name:      name,
		preset:    preset,
		autolink:  cfg,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the profile's unique identifier
func (p *Profile) ID() valueobjects.ProfileID {
	return p.id
}

// Name returns the profile's display name
func (p *Profile) Name() string {
	return p.name
}

// Preset returns the name of the active autolink preset, or "custom"
func (p *Profile) Preset() string {
	return p.preset
}

// AutolinkConfig returns the profile's effective autolink policy
func (p *Profile) AutolinkConfig() autolink.Config {
	return p.autolink
}

// Version returns the profile's version for optimistic locking
func (p *Profile) Version() int {
	return p.version
}

// Rename changes the profile's display name
func (p *Profile) Rename(name string) error {
	if name == "" {
		return pkgerrors.ErrProfileNameRequired
	}
	if name == p.name {
		return nil
	}

	p.name = name
	p.updatedAt = time.Now()
	p.version++

	return nil
}

// ApplyPreset replaces the autolink policy with a named preset
func (p *Profile) ApplyPreset(preset string) error {
	cfg, err := autolink.FromPreset(preset)
	if err != nil {
		return err
	}
	if preset == "" {
		preset = autolink.PresetDefault
	}

	p.preset = preset
	p.autolink = cfg
	p.updatedAt = time.Now()
	p.version++

	return nil
}

// ApplyCustomConfig replaces the autolink policy with explicit knobs.
// Provenance for edges written under it becomes "custom".
func (p *Profile) ApplyCustomConfig(cfg autolink.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	p.preset = autolink.ProvenanceCustom
	p.autolink = cfg
	p.updatedAt = time.Now()
	p.version++

	return nil
}

// RecordReset raises the reset event after the profile's graph was cleared
func (p *Profile) RecordReset(ideasRemoved, edgesRemoved int) {
	p.updatedAt = time.Now()
	p.version++
	p.addEvent(events.NewProfileReset(p.id, ideasRemoved, edgesRemoved, p.updatedAt))
}

// CreatedAt returns when the profile was created
func (p *Profile) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns when the profile was last updated
func (p *Profile) UpdatedAt() time.Time {
	return p.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (p *Profile) GetUncommittedEvents() []events.DomainEvent {
	return p.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (p *Profile) MarkEventsAsCommitted() {
	p.events = []events.DomainEvent{}
}

func (p *Profile) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}
