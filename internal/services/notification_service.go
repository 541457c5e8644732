package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"tradematch_backend/internal/models"
	"tradematch_backend/internal/repositories"
	"tradematch_backend/internal/services/dto"
	"tradematch_backend/pkg/apperrors"
)

const (
	NotificationNewJobMatch     = "new_job_match"
	NotificationNewQuote        = "new_quote"
	NotificationQuoteAccepted   = "quote_accepted"
	NotificationJobRemoved      = "job_removed"
	NotificationFinalPaymentDue = "final_payment_due"
)

type NotificationService interface {
	Create(userID, notificationType, title, message string, data map[string]string) error
	List(userID string, limit, offset int) (*dto.NotificationListResponse, error)
	MarkAsRead(userID, notificationID string) error
	MarkAllAsRead(userID string) error
	CountUnread(userID string) (int64, error)

	NotifyNewJobMatch(userID string, job *models.Job) error
	NotifyNewQuote(customerID string, job *models.Job, quote *models.Quote) error
	NotifyQuoteAccepted(tradespersonID string, job *models.Job, quote *models.Quote) error
	NotifyJobRemoved(userID string, job *models.Job) error
	NotifyFinalPaymentDue(customerID string, job *models.Job) error
}

type NotificationServiceImpl struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &NotificationServiceImpl{notificationRepo: notificationRepo}
}

func (s *NotificationServiceImpl) Create(userID, notificationType, title, message string, data map[string]string) error {
	var raw datatypes.JSON
	if len(data) > 0 {
		bytes, err := json.Marshal(data)
		if err != nil {
			return apperrors.InternalError(err)
		}
		raw = bytes
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		Data:    raw,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *NotificationServiceImpl) List(userID string, limit, offset int) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.notificationRepo.FindByUser(userID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, dto.NewNotificationResponse(&notifications[i]))
	}
	return &dto.NotificationListResponse{Items: items, Total: total}, nil
}

func (s *NotificationServiceImpl) MarkAsRead(userID, notificationID string) error {
	if err := s.notificationRepo.MarkAsRead(userID, notificationID); err != nil {
		if err == repositories.ErrNotificationNotFound {
			return apperrors.ErrNotFound(err, "notifications")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllAsRead(userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *NotificationServiceImpl) CountUnread(userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnread(userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *NotificationServiceImpl) NotifyNewJobMatch(userID string, job *models.Job) error {
	return s.Create(userID, NotificationNewJobMatch,
		"New job in your area",
		fmt.Sprintf("A new %s job was posted: %s", job.ServiceType, job.Title),
		map[string]string{"job_id": job.ID},
	)
}

func (s *NotificationServiceImpl) NotifyNewQuote(customerID string, job *models.Job, quote *models.Quote) error {
	name := quote.TradespersonName
	if name == "" {
		name = "A tradesperson"
	}
	return s.Create(customerID, NotificationNewQuote,
		"New quote received",
		fmt.Sprintf("%s sent a quote for %q", name, job.Title),
		map[string]string{"job_id": job.ID, "quote_id": quote.ID},
	)
}

func (s *NotificationServiceImpl) NotifyQuoteAccepted(tradespersonID string, job *models.Job, quote *models.Quote) error {
	return s.Create(tradespersonID, NotificationQuoteAccepted,
		"Your quote was accepted",
		fmt.Sprintf("Your quote for %q was accepted. The job is now yours.", job.Title),
		map[string]string{"job_id": job.ID, "quote_id": quote.ID},
	)
}

func (s *NotificationServiceImpl) NotifyJobRemoved(userID string, job *models.Job) error {
	return s.Create(userID, NotificationJobRemoved,
		"Job removed",
		fmt.Sprintf("The job %q was removed by an administrator", job.Title),
		map[string]string{"job_id": job.ID},
	)
}

func (s *NotificationServiceImpl) NotifyFinalPaymentDue(customerID string, job *models.Job) error {
	return s.Create(customerID, NotificationFinalPaymentDue,
		"Final payment due",
		fmt.Sprintf("The work on %q is complete. The final payment is now due.", job.Title),
		map[string]string{"job_id": job.ID},
	)
}
