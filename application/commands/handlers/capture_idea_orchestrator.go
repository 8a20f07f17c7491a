package handlers

import (
	"context"
	"fmt"

	"ideaweaver/application/commands"
	"ideaweaver/application/ports"
	"ideaweaver/application/services"
	"ideaweaver/domain/config"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/validators"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

// Logger interface for flexible logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// CaptureIdeaOrchestrator runs the capture pipeline: validate the
// profile, tag and persist the idea, attach its embedding, then link it
// into the graph. Capture never loses an idea: an embedding outage
// stores the idea unembedded and skips linking.
type CaptureIdeaOrchestrator struct {
	uow         ports.UnitOfWork
	profileRepo ports.ProfileRepository
	vectors     ports.VectorStore
	embedder    ports.Embedder
	autolinker  *services.AutolinkService
	publisher   ports.EventPublisher
	locker      ports.Locker
	tagger      *entities.Tagger
	validator   *validators.IdeaValidator
	domainCfg   *config.DomainConfig
	logger      Logger
}

// NewCaptureIdeaOrchestrator creates a new orchestrator instance.
// autolinker may be nil when linking runs asynchronously off the
// idea.captured event instead.
func NewCaptureIdeaOrchestrator(
	uow ports.UnitOfWork,
	profileRepo ports.ProfileRepository,
	vectors ports.VectorStore,
	embedder ports.Embedder,
	autolinker *services.AutolinkService,
	publisher ports.EventPublisher,
	locker ports.Locker,
	tagger *entities.Tagger,
	domainCfg *config.DomainConfig,
	logger Logger,
) *CaptureIdeaOrchestrator {
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	return &CaptureIdeaOrchestrator{
		uow:         uow,
		profileRepo: profileRepo,
		vectors:     vectors,
		embedder:    embedder,
		autolinker:  autolinker,
		publisher:   publisher,
		locker:      locker,
		tagger:      tagger,
		validator:   validators.NewIdeaValidator(),
		domainCfg:   domainCfg,
		logger:      logger,
	}
}

// Handle executes the capture pipeline
func (o *CaptureIdeaOrchestrator) Handle(ctx context.Context, cmd commands.CaptureIdeaCommand) (*entities.Node, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	profileID, err := valueobjects.NewProfileIDFromString(cmd.ProfileID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	profile, err := o.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.ErrUnknownProfile.WithDetail("profile_id", cmd.ProfileID).WithCause(err)
	}

	// One writer per profile: captures into the same voice serialize.
	if o.locker != nil {
		lock, err := o.locker.Acquire(ctx, profileLockKey(profileID))
		if err != nil {
			return nil, pkgerrors.ErrProfileLocked.WithDetail("profile_id", cmd.ProfileID).WithCause(err)
		}
		defer func() {
			if releaseErr := lock.Release(ctx); releaseErr != nil {
				o.logger.Error("Failed to release capture lock",
					"profileID", cmd.ProfileID,
					"error", releaseErr,
				)
			}
		}()
	}

	text, err := valueobjects.NewIdeaTextWithConfig(cmd.Text, o.domainCfg)
	if err != nil {
		return nil, err
	}

	tags := cmd.Tags
	if len(tags) > 0 {
		if err := o.validator.ValidateTags(tags); err != nil {
			return nil, err
		}
	} else if o.tagger != nil && o.domainCfg.EnableAutoTagging {
		tags = o.tagger.Tags(text.String())
	}

	node, err := entities.NewNode(profileID, text, tags)
	if err != nil {
		return nil, err
	}

	// Embed before the transactional save so the stored record carries
	// the final vector status.
	var vector []float32
	if o.embedder != nil {
		vector, err = o.embedder.Embed(ctx, text.String())
		if err != nil {
			o.logger.Error("Embedding unavailable, capturing without vector",
				"nodeID", node.ID().String(),
				"error", pkgerrors.ErrEmbeddingUnavailable.WithCause(err),
			)
			vector = nil
		} else {
			node.MarkEmbedded()
		}
	}

	if err := o.uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer o.uow.Rollback() // no-op once committed

	if err := o.uow.NodeRepository().Save(ctx, node); err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	if err := o.uow.Commit(ctx); err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	if vector != nil {
		if err := o.vectors.Upsert(ctx, profileID, node.ID(), vector); err != nil {
			// The idea is committed; losing the vector only delays linking.
			o.logger.Error("Failed to index vector",
				"nodeID", node.ID().String(),
				"error", err,
			)
		}
	}

	events := node.GetUncommittedEvents()
	if len(events) > 0 && o.publisher != nil {
		if err := o.publisher.PublishBatch(ctx, events); err != nil {
			o.logger.Error("Failed to publish domain events",
				"error", err,
				"eventCount", len(events),
				"nodeID", node.ID().String(),
			)
		} else {
			node.MarkEventsAsCommitted()
		}
	}

	if o.autolinker != nil && !cmd.SkipAutolink && node.HasVector() {
		result, err := o.autolinker.Autolink(ctx, profileID, node.ID(), profile.AutolinkConfig(), profile.Preset())
		if err != nil {
			// Capture already succeeded; linking can be retried.
			o.logger.Error("Autolink pass failed after capture",
				"nodeID", node.ID().String(),
				"error", err,
			)
		} else {
			o.logger.Debug("Autolink pass after capture",
				"nodeID", node.ID().String(),
				"edges", len(result.Edges),
			)
		}
	}

	o.logger.Info("Idea captured",
		"nodeID", node.ID().String(),
		"profileID", cmd.ProfileID,
		"hasVector", node.HasVector(),
		"tags", len(tags),
	)

	return node, nil
}
