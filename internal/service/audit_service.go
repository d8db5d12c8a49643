package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/phonebook/internal/config"
	"github.com/spec-kit/phonebook/internal/events"
)

// AuditService records contact lifecycle events in the log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuditConfig
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.AuditConfig) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil || !a.cfg.Enabled {
		return
	}
	a.dispatcher.Subscribe(events.EventContactCreated, a.handleContactChanged)
	a.dispatcher.Subscribe(events.EventContactUpdated, a.handleContactChanged)
	a.dispatcher.Subscribe(events.EventContactDeleted, a.handleContactDeleted)
}

func (a *AuditService) handleContactChanged(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.ContactChangedPayload); ok {
		fields = append(fields, zap.Strings("fields", payload.Fields))
		if payload.AddressID != nil {
			fields = append(fields, zap.Int64("address_id", *payload.AddressID))
		}
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *AuditService) handleContactDeleted(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), a.baseFields(event)...)
	return nil
}

func (a *AuditService) baseFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.Int64("contact_id", event.ContactID),
		zap.Int64("actor_id", event.ActorID),
		zap.Time("at", event.Timestamp),
	}
}
