package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Dan9191/etl-pipeline/internal/config"
	"github.com/Dan9191/etl-pipeline/internal/extract"
	"github.com/Dan9191/etl-pipeline/internal/models"
	"github.com/Dan9191/etl-pipeline/internal/repository"
	"github.com/Dan9191/etl-pipeline/internal/transform"
	"github.com/sirupsen/logrus"
)

// Mailer sends a run report after each pipeline run.
type Mailer interface {
	SendRunReport(summary *models.RunSummary) error
}

// Service orchestrates the extract, transform, load, and report stages
type Service struct {
	repo   *repository.Repository
	fetch  extract.Fetcher
	log    *logrus.Logger
	config *config.Config
	out    io.Writer
	mailer Mailer // nil when SMTP is not configured

	mu      sync.Mutex
	lastRun *models.RunSummary
}

// NewService initializes a new service
func NewService(repo *repository.Repository, fetch extract.Fetcher, log *logrus.Logger, cfg *config.Config, out io.Writer) *Service {
	return &Service{repo: repo, fetch: fetch, log: log, config: cfg, out: out}
}

// SetMailer enables run-report mail after each run.
func (s *Service) SetMailer(m Mailer) { s.mailer = m }

// Run executes one full pipeline pass: fetch both collections (substituting
// fallback samples on fetch failure), transform, fully replace the store
// contents, and print the three report queries. Transform drops are silent;
// load and report failures abort the run.
func (s *Service) Run(ctx context.Context) (*models.RunSummary, error) {
	summary := &models.RunSummary{StartedAt: time.Now()}

	rawUsers, rawPosts, usedFallback := extract.Extract(s.fetch, s.log)
	summary.UsedFallback = usedFallback

	users, posts := transform.Transform(ctx, rawUsers, rawPosts)
	summary.UsersLoaded = len(users)
	summary.PostsLoaded = len(posts)

	if err := s.repo.Replace(ctx, users, posts); err != nil {
		return s.finish(summary, fmt.Errorf("load failed: %w", err))
	}
	s.log.Infof("Loaded %d users and %d posts into %s", len(users), len(posts), s.config.DBConn)

	if err := s.Report(ctx); err != nil {
		return s.finish(summary, err)
	}

	s.log.Infof("ETL pipeline finished successfully")
	return s.finish(summary, nil)
}

// finish stamps the summary, records it as the last run, and mails the run
// report when a mailer is configured.
func (s *Service) finish(summary *models.RunSummary, err error) (*models.RunSummary, error) {
	summary.FinishedAt = time.Now()
	if err != nil {
		summary.Error = err.Error()
	}

	s.mu.Lock()
	s.lastRun = summary
	s.mu.Unlock()

	if s.mailer != nil {
		if mailErr := s.mailer.SendRunReport(summary); mailErr != nil {
			s.log.Errorf("Failed to send run report: %v", mailErr)
		}
	}
	return summary, err
}

// LastRun returns the summary of the most recent run, or nil before any run.
func (s *Service) LastRun() *models.RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// Report runs the three analytics queries and prints their results as
// aligned text tables.
func (s *Service) Report(ctx context.Context) error {
	top, err := s.repo.TopPosters(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "\n1) Top 5 users by number of posts:")
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "user_id\tusername\tpost_count")
	for _, row := range top {
		fmt.Fprintf(w, "%d\t%s\t%d\n", row.UserID, row.Username, row.PostCount)
	}
	w.Flush()

	stats, err := s.repo.AvgTitleLength(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "\n2) Average title length per user (descending):")
	w = tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "user_id\tusername\tavg_title_len")
	for _, row := range stats {
		fmt.Fprintf(w, "%d\t%s\t%.2f\n", row.UserID, row.Username, row.AvgTitleLen)
	}
	w.Flush()

	short, err := s.repo.ShortTitles(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "\n3) Posts with short titles (<10 chars):")
	w = tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "post_id\tuser_id\ttitle\ttitle_len")
	for _, row := range short {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", row.PostID, row.UserID, row.Title, row.TitleLen)
	}
	w.Flush()

	return nil
}
