// Package sender отправляет письма по задачам из очереди и ведёт журнал отправленных писем.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Repository методы хранилища, нужные sender.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	InsertSentEmail(ctx context.Context, e models.SentEmail) error
}

// SenderService сервис отправки писем.
type SenderService struct {
	repo      Repository
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(repo Repository, log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		repo:      repo,
		transport: transport,
		log:       log,
	}
}

// Send отправляет пользователю письмо об истекающей подписке.
// Ошибки только логируются.
func (s *SenderService) Send(ctx context.Context, userUID string, sub models.SubscriptionSummary) {
	const op = "sender.Send"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", userUID),
		slog.Int("subscription_id", sub.SubscriptionID))

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("user not found for notification")
			return
		}
		log.Error("failed to get user", sl.Err(err))
		return
	}

	subject := "Subscription Expiring Soon: " + sub.Name
	body := fmt.Sprintf("Hello,\n\nYour subscription to %s is expiring soon on %s.\n"+
		"Please renew it to continue enjoying the benefits.\n\nBest regards,\nSubscription Tracker",
		sub.Name, sub.Expiry.Format(time.DateOnly))

	if err := s.sendEmail(ctx, user.Email, subject, body); err != nil {
		log.Error("failed to send notification email", sl.Err(err))
	}
}

// SendPasswordReset отправляет письмо со ссылкой на сброс пароля.
func (s *SenderService) SendPasswordReset(ctx context.Context, job models.PasswordResetJob) error {
	subject := "Password Reset"
	body := fmt.Sprintf("Hello %s,\n\nYou requested a password reset. Follow the link below within one hour:\n%s\n\n"+
		"If you did not request it, ignore this email.", job.Username, job.ResetLink)
	return s.sendEmail(ctx, job.Email, subject, body)
}

// HandleUpcoming обработчик очереди notifications.upcoming.
func (s *SenderService) HandleUpcoming(ctx context.Context, body []byte) error {
	var job models.NotificationJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %w", rabbitmq.ErrMalformed, err)
	}
	if job.UserUID == "" {
		return fmt.Errorf("%w: empty user_uid", rabbitmq.ErrMalformed)
	}
	s.Send(ctx, job.UserUID, job.Subscription)
	return nil
}

// HandlePasswordReset обработчик очереди notifications.password_reset.
func (s *SenderService) HandlePasswordReset(ctx context.Context, body []byte) error {
	var job models.PasswordResetJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %w", rabbitmq.ErrMalformed, err)
	}
	if job.Email == "" || job.ResetLink == "" {
		return fmt.Errorf("%w: email and reset_link are required", rabbitmq.ErrMalformed)
	}
	return s.SendPasswordReset(ctx, job)
}

func (s *SenderService) sendEmail(ctx context.Context, to, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := smtp.BuildMessage(from, to, subject, bodyText)

	client, err := s.transport.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from %s: %w", from, err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to %s: %w", to, err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write(msg); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	if err = client.Quit(); err != nil {
		s.log.Warn("failed to quit SMTP session", sl.Err(err))
	}
	s.log.Info("email sent successfully", slog.String("to", to))

	if err := s.repo.InsertSentEmail(ctx, models.SentEmail{
		SenderEmail:   from,
		ReceiverEmail: to,
		Subject:       subject,
		Message:       bodyText,
	}); err != nil {
		s.log.Error("failed to log sent email", sl.Err(err))
	}
	return nil
}
