package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCertificateCreated      = "certificate.created"
	EventTypeCertificateUpdated      = "certificate.updated"
	EventTypeCertificateDeleted      = "certificate.deleted"
	EventTypeCertificateStatusSynced = "certificate.status_synced"
)

var CertificateEventTypes = []string{
	EventTypeCertificateCreated,
	EventTypeCertificateUpdated,
	EventTypeCertificateDeleted,
	EventTypeCertificateStatusSynced,
}

type CertificateEvent struct {
	BaseEvent
	CertificateID int64  `json:"certificate_id"`
	EmployeeID    int64  `json:"employee_id"`
	Status        string `json:"status,omitempty"`
}

func NewCertificateEvent(eventType string, tenantID, certificateID, employeeID int64, status string) *CertificateEvent {
	return &CertificateEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			TenantID:  tenantID,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"certificate_id": certificateID,
				"employee_id":    employeeID,
				"status":         status,
			},
		},
		CertificateID: certificateID,
		EmployeeID:    employeeID,
		Status:        status,
	}
}

type StatusSyncedEvent struct {
	BaseEvent
	Checked int `json:"checked"`
	Updated int `json:"updated"`
}

func NewStatusSyncedEvent(tenantID int64, checked, updated int) *StatusSyncedEvent {
	return &StatusSyncedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCertificateStatusSynced,
			TenantID:  tenantID,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"checked": checked,
				"updated": updated,
			},
		},
		Checked: checked,
		Updated: updated,
	}
}
