package notifications

import "github.com/brandradar/visibility-dashboard/internal/models"

// NotificationInterface defines the contract for report delivery
type NotificationInterface interface {
	SendReport(report *models.Report) error
}
