package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"agrimandi/internal/models"
)

// NotificationService writes in-app notification rows for lifecycle events.
// Callers treat it as fire-and-forget: a failed notification is logged by the
// caller and never fails the transition that triggered it.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateNotification creates a new notification
func (s *NotificationService) CreateNotification(userID uint, notifType models.NotificationType, title, message string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}
		dataJSON = string(jsonBytes)
	}

	notification := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    dataJSON,
		IsRead:  false,
	}

	if err := s.db.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// NotifyRequestAccepted notifies the buyer when a farmer accepts
func (s *NotificationService) NotifyRequestAccepted(buyerID uint, farmerName, crop string, requestID uint) error {
	return s.CreateNotification(
		buyerID,
		models.NotificationRequestAccepted,
		"Request Accepted",
		fmt.Sprintf("%s has accepted your request for %s", farmerName, crop),
		map[string]interface{}{
			"request_id":  requestID,
			"farmer_name": farmerName,
			"crop":        crop,
		},
	)
}

// NotifyRequestCompleted notifies the buyer when the farmer marks delivery done
func (s *NotificationService) NotifyRequestCompleted(buyerID uint, farmerName, crop string, requestID uint) error {
	return s.CreateNotification(
		buyerID,
		models.NotificationRequestCompleted,
		"Delivery Completed",
		fmt.Sprintf("%s has marked your %s request as delivered. Please confirm or raise an issue.", farmerName, crop),
		map[string]interface{}{
			"request_id":  requestID,
			"farmer_name": farmerName,
			"crop":        crop,
		},
	)
}

// NotifyRequestConfirmed notifies the farmer when the buyer confirms delivery
func (s *NotificationService) NotifyRequestConfirmed(farmerID uint, buyerName, crop string, requestID uint) error {
	return s.CreateNotification(
		farmerID,
		models.NotificationRequestConfirmed,
		"Delivery Confirmed",
		fmt.Sprintf("%s has confirmed delivery of %s", buyerName, crop),
		map[string]interface{}{
			"request_id": requestID,
			"buyer_name": buyerName,
			"crop":       crop,
		},
	)
}

// NotifyRequestDisputed notifies the farmer when the buyer denies delivery
func (s *NotificationService) NotifyRequestDisputed(farmerID uint, buyerName, reason string, requestID uint) error {
	return s.CreateNotification(
		farmerID,
		models.NotificationRequestDisputed,
		"Delivery Disputed",
		fmt.Sprintf("%s has disputed the delivery. Reason: %s", buyerName, reason),
		map[string]interface{}{
			"request_id": requestID,
			"buyer_name": buyerName,
			"reason":     reason,
		},
	)
}

// NotifyRequestCancelled notifies the counterparty of a cancellation
func (s *NotificationService) NotifyRequestCancelled(userID uint, cancelledBy, crop string, requestID uint) error {
	return s.CreateNotification(
		userID,
		models.NotificationRequestCancelled,
		"Request Cancelled",
		fmt.Sprintf("The request for %s has been cancelled by the %s", crop, cancelledBy),
		map[string]interface{}{
			"request_id":   requestID,
			"cancelled_by": cancelledBy,
			"crop":         crop,
		},
	)
}

// NotifyRequestReassigned notifies the newly assigned farmer
func (s *NotificationService) NotifyRequestReassigned(farmerID uint, crop string, requestID uint) error {
	return s.CreateNotification(
		farmerID,
		models.NotificationRequestReassigned,
		"Request Assigned to You",
		fmt.Sprintf("An administrator has assigned you a request for %s", crop),
		map[string]interface{}{
			"request_id": requestID,
			"crop":       crop,
		},
	)
}
