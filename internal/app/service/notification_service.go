package service

import (
	"strings"

	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/internal/app/repository"
	"github.com/nexapay/nexapay-backend/pkg/logger"
)

// NotificationService implements Notifier over stored in-app notifications
// plus outbound mail. The stored internal user record decides the recipient.
type NotificationService interface {
	Notifier

	ListNotifications(userID uint, limit, offset int) ([]model.Notification, error)
	UnreadCount(userID uint) (int64, error)
	MarkAsRead(notificationID, userID uint) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	mailer           Mailer
}

func NewNotificationService(notificationRepo repository.NotificationRepository, mailer Mailer) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		mailer:           mailer,
	}
}

func (s *notificationService) NotifyApproved(user *model.User) error {
	content := "Your identity verification was approved. Your account is now fully active."
	if err := s.store(user.ID, model.NotificationTypeKYCApproved, "Verification approved", content); err != nil {
		return err
	}
	s.mail(user, "Verification approved", content)
	return nil
}

func (s *notificationService) NotifyRejected(user *model.User, reasons []string) error {
	content := "Your identity verification could not be approved."
	if len(reasons) > 0 {
		content += "\n\n" + bulletList(reasons)
	}
	if err := s.store(user.ID, model.NotificationTypeKYCRejected, "Verification rejected", content); err != nil {
		return err
	}
	s.mail(user, "Verification rejected", content)
	return nil
}

func (s *notificationService) NotifyResubmission(user *model.User, reasons, corrections []string) error {
	content := "Your identity verification needs another attempt."
	if len(reasons) > 0 {
		content += "\n\nWhat went wrong:\n" + bulletList(reasons)
	}
	if len(corrections) > 0 {
		content += "\n\nWhat to correct:\n" + bulletList(corrections)
	}
	if err := s.store(user.ID, model.NotificationTypeKYCResubmission, "Verification needs resubmission", content); err != nil {
		return err
	}
	s.mail(user, "Verification needs resubmission", content)
	return nil
}

func (s *notificationService) ListNotifications(userID uint, limit, offset int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.notificationRepo.FindByUser(userID, limit, offset)
}

func (s *notificationService) UnreadCount(userID uint) (int64, error) {
	return s.notificationRepo.GetUnreadCount(userID)
}

func (s *notificationService) MarkAsRead(notificationID, userID uint) error {
	return s.notificationRepo.MarkAsRead(notificationID, userID)
}

func (s *notificationService) store(userID uint, notifType model.NotificationType, title, content string) error {
	return s.notificationRepo.Create(&model.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Content: content,
	})
}

// mail is fire-and-forget; a mail failure never fails the notification.
func (s *notificationService) mail(user *model.User, subject, body string) {
	if user.Email == "" {
		return
	}
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		logger.Error("Failed to send notification mail", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}
}

func bulletList(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
