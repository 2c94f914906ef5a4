package moderation

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/lysyi3m/news-comb/app/news"
)

const DefaultThreshold = 3

type ArticleStore interface {
	GetArticle(ctx context.Context, id int64) (*news.Article, error)
	ApplyReports(ctx context.Context, id int64, count int, hide bool) error
}

type ReportStore interface {
	HasReported(ctx context.Context, userID, articleID int64) (bool, error)
	CreateReport(ctx context.Context, report *news.Report) error
	GetReportCount(ctx context.Context, articleID int64) (int, error)
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) bool
}

// Outcome describes the effect of an accepted report.
type Outcome struct {
	Report        news.Report
	Count         int
	Hidden        bool // hidden by this report
	AdminNotified bool
}

// Gate hides an article once enough distinct users have reported it.
type Gate struct {
	articles   ArticleStore
	reports    ReportStore
	mailer     Mailer
	adminEmail string
	threshold  int
}

func NewGate(articles ArticleStore, reports ReportStore, mailer Mailer, adminEmail string, threshold int) *Gate {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Gate{
		articles:   articles,
		reports:    reports,
		mailer:     mailer,
		adminEmail: adminEmail,
		threshold:  threshold,
	}
}

func (g *Gate) Threshold() int {
	return g.threshold
}

// Report records a user's report against an article. Reports on hidden articles and
// repeated reports by the same user are rejected with a domain error and change nothing.
// Every accepted report mails the administrator, and so does the hide it may trigger.
func (g *Gate) Report(ctx context.Context, userID, articleID int64, reason string) (*Outcome, error) {
	article, err := g.articles.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article.Hidden {
		return nil, news.DomainError(fmt.Sprintf("article %d", articleID), news.ErrAlreadyHidden)
	}

	reported, err := g.reports.HasReported(ctx, userID, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check previous reports: %w", err)
	}
	if reported {
		return nil, news.DomainError(fmt.Sprintf("article %d", articleID), news.ErrAlreadyReported)
	}

	report := news.Report{UserID: userID, ArticleID: articleID, Reason: reason}
	if err := g.reports.CreateReport(ctx, &report); err != nil {
		return nil, err
	}

	count, err := g.reports.GetReportCount(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	outcome := &Outcome{Report: report, Count: count}

	outcome.Hidden = count >= g.threshold
	if err := g.articles.ApplyReports(ctx, articleID, count, outcome.Hidden); err != nil {
		return nil, fmt.Errorf("failed to update article after report: %w", err)
	}

	article.Reports = count
	article.Hidden = outcome.Hidden
	outcome.AdminNotified = g.notifyAdmin(ctx, *article, report, count)

	slog.Info("Article reported",
		"article_id", articleID,
		"user_id", userID,
		"reports", count,
		"threshold", g.threshold,
		"hidden", outcome.Hidden)

	return outcome, nil
}

func (g *Gate) notifyAdmin(ctx context.Context, article news.Article, report news.Report, count int) bool {
	subject := fmt.Sprintf("Article reported (%d/%d): %s", count, g.threshold, article.Title)
	body := fmt.Sprintf("<p>User %d reported <a href=\"%s\">%s</a>.</p>\n<p>Reason: %s</p>\n<p>Reports: %d of %d</p>\n",
		report.UserID, html.EscapeString(article.URL), html.EscapeString(article.Title),
		html.EscapeString(report.Reason), count, g.threshold)

	ok := g.mailer.SendEmail(ctx, g.adminEmail, subject, body)

	if article.Hidden {
		subject = "Article hidden after reports: " + article.Title
		body = fmt.Sprintf("<p><a href=\"%s\">%s</a> was hidden after %d reports.</p>\n",
			html.EscapeString(article.URL), html.EscapeString(article.Title), count)
		ok = g.mailer.SendEmail(ctx, g.adminEmail, subject, body) && ok
	}

	if !ok {
		slog.Error("Failed to notify administrator about report", "article_id", article.ID, "to", g.adminEmail)
	}
	return ok
}
