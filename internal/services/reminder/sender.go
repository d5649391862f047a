package reminder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/freefromtrial/backend/internal/lib/datemath"
	"github.com/freefromtrial/backend/internal/lib/sl"
	"github.com/freefromtrial/backend/internal/lib/smtp"
	"github.com/freefromtrial/backend/internal/models"
)

// SenderService отправляет письма-напоминания из очереди.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendExpiringTrialReminder разбирает сообщение очереди и отправляет
// письмо о скором окончании пробного периода.
func (s *SenderService) SendExpiringTrialReminder(body []byte) error {
	var message models.TrialReminder
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := fmt.Sprintf("Your %s trial ends in %s", message.ServiceName, dayWord(message.DaysLeft))

	lines := []string{
		fmt.Sprintf("Hi %s,", message.Name),
		"",
		fmt.Sprintf("Your free trial of %s ends on %s (%s left).",
			message.ServiceName,
			datemath.FormatDate(message.ExpiryDate.Format("2006-01-02")),
			dayWord(message.DaysLeft)),
		"",
		"Cancel before then if you don't want to be charged.",
	}
	if message.CancelURL != nil {
		lines = append(lines, "", "Cancel here: "+*message.CancelURL)
	}

	return s.sendEmail(to, subject, strings.Join(lines, "\n"))
}

func dayWord(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("reminder email sent", slog.String("to", strings.Join(to, ";")))
	return nil
}
