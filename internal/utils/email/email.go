package email

import (
	"fmt"
	"net/smtp"

	"github.com/Dan9191/etl-pipeline/internal/config"
	"github.com/Dan9191/etl-pipeline/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending run reports via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendRunReport sends a pipeline run summary to the configured recipient
func (s *Sender) SendRunReport(summary *models.RunSummary) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.ReportEmail}
	if summary.Error != "" {
		e.Subject = "ETL Pipeline Run Failed"
	} else {
		e.Subject = "ETL Pipeline Run Report"
	}

	body := fmt.Sprintf(
		"Pipeline run started at %s and finished at %s.\n",
		summary.StartedAt.Format("2006-01-02 15:04:05"),
		summary.FinishedAt.Format("2006-01-02 15:04:05"),
	)
	if summary.Error != "" {
		body += fmt.Sprintf("The run failed: %s\n", summary.Error)
	} else {
		body += fmt.Sprintf(
			"Loaded %d users and %d posts.\n",
			summary.UsersLoaded, summary.PostsLoaded,
		)
	}
	if summary.UsedFallback {
		body += "The remote API was unavailable; fallback sample data was used.\n"
	}
	body += "\nBest regards,\nETL Pipeline"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	err := e.Send(addr, auth)
	if err != nil {
		s.logger.Errorf("Failed to send run report to %s: %v", s.cfg.ReportEmail, err)
		return fmt.Errorf("failed to send run report: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.ReportEmail, e.Subject)
	return nil
}
