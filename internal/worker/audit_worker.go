package worker

import (
	"github.com/spec-kit/phonebook/internal/service"
)

// StartAuditWorker registers the contact audit handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
