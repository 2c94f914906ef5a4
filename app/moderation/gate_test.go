package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/lysyi3m/news-comb/app/news"
)

type memoryStore struct {
	articles map[int64]*news.Article
	reports  []news.Report
	afterGet func()
}

func newMemoryStore(articles ...news.Article) *memoryStore {
	s := &memoryStore{articles: make(map[int64]*news.Article)}
	for _, a := range articles {
		a := a
		s.articles[a.ID] = &a
	}
	return s
}

func (s *memoryStore) GetArticle(ctx context.Context, id int64) (*news.Article, error) {
	a, ok := s.articles[id]
	if !ok {
		return nil, news.DomainError("article", news.ErrNotFound)
	}
	copied := *a
	if s.afterGet != nil {
		s.afterGet()
	}
	return &copied, nil
}

func (s *memoryStore) ApplyReports(ctx context.Context, id int64, count int, hide bool) error {
	a, ok := s.articles[id]
	if !ok {
		return news.DomainError("article", news.ErrNotFound)
	}
	a.Reports = max(a.Reports, count)
	a.Hidden = a.Hidden || hide
	return nil
}

func (s *memoryStore) HasReported(ctx context.Context, userID, articleID int64) (bool, error) {
	for _, r := range s.reports {
		if r.UserID == userID && r.ArticleID == articleID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) CreateReport(ctx context.Context, report *news.Report) error {
	report.ID = int64(len(s.reports) + 1)
	s.reports = append(s.reports, *report)
	return nil
}

func (s *memoryStore) GetReportCount(ctx context.Context, articleID int64) (int, error) {
	count := 0
	for _, r := range s.reports {
		if r.ArticleID == articleID {
			count++
		}
	}
	return count, nil
}

type recordingMailer struct {
	subjects []string
	ok       bool
}

func (m *recordingMailer) SendEmail(ctx context.Context, to, subject, htmlBody string) bool {
	m.subjects = append(m.subjects, subject)
	return m.ok
}

func TestGate_HidesAtThreshold(t *testing.T) {
	store := newMemoryStore(news.Article{ID: 7, Title: "Z"})
	mailer := &recordingMailer{ok: true}
	gate := NewGate(store, store, mailer, "admin@example.com", 3)
	ctx := context.Background()

	for user := int64(1); user <= 2; user++ {
		outcome, err := gate.Report(ctx, user, 7, "spam")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if outcome.Hidden || store.articles[7].Hidden {
			t.Fatalf("Expected article visible after %d reports", user)
		}
	}

	outcome, err := gate.Report(ctx, 3, 7, "spam")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !outcome.Hidden || !store.articles[7].Hidden {
		t.Error("Expected article hidden after the third report")
	}
	if outcome.Count != 3 || store.articles[7].Reports != 3 {
		t.Errorf("Expected report count 3, got %d and %d", outcome.Count, store.articles[7].Reports)
	}
	if !outcome.AdminNotified {
		t.Error("Expected administrator to be notified")
	}

	// three report mails plus one hide mail
	if len(mailer.subjects) != 4 {
		t.Errorf("Expected 4 admin emails, got %d", len(mailer.subjects))
	}
}

func TestGate_Rejections(t *testing.T) {
	store := newMemoryStore(news.Article{ID: 1}, news.Article{ID: 2, Hidden: true})
	mailer := &recordingMailer{ok: true}
	gate := NewGate(store, store, mailer, "admin@example.com", 0)
	ctx := context.Background()

	if gate.Threshold() != DefaultThreshold {
		t.Errorf("Expected default threshold %d, got %d", DefaultThreshold, gate.Threshold())
	}

	if _, err := gate.Report(ctx, 1, 1, ""); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		userID    int64
		articleID int64
		expected  error
	}{
		{"same user twice", 1, 1, news.ErrAlreadyReported},
		{"already hidden", 1, 2, news.ErrAlreadyHidden},
		{"unknown article", 1, 99, news.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.Report(ctx, tt.userID, tt.articleID, "")
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
			if !news.IsKind(err, news.KindDomain) {
				t.Errorf("Expected domain error, got %v", err)
			}
		})
	}

	if len(store.reports) != 1 {
		t.Errorf("Expected rejected reports to change nothing, got %d reports", len(store.reports))
	}
	if len(mailer.subjects) != 1 {
		t.Errorf("Expected no mail for rejected reports, got %d", len(mailer.subjects))
	}
}

func TestGate_MailFailureIsReported(t *testing.T) {
	store := newMemoryStore(news.Article{ID: 1})
	gate := NewGate(store, store, &recordingMailer{ok: false}, "admin@example.com", 3)

	outcome, err := gate.Report(context.Background(), 1, 1, "")
	if err != nil {
		t.Fatalf("Expected report to be kept when mail fails, got %v", err)
	}
	if outcome.AdminNotified {
		t.Error("Expected AdminNotified to be false")
	}
	if len(store.reports) != 1 {
		t.Error("Expected report to be persisted")
	}
}

func TestGate_KeepsConcurrentLike(t *testing.T) {
	store := newMemoryStore(news.Article{ID: 4, Title: "Liked meanwhile"})
	store.afterGet = func() { store.articles[4].Likes++ }
	gate := NewGate(store, store, &recordingMailer{ok: true}, "admin@example.com", 3)

	if _, err := gate.Report(context.Background(), 1, 4, "spam"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if store.articles[4].Likes != 1 {
		t.Errorf("Expected like made during the report to survive, got %d likes", store.articles[4].Likes)
	}
	if store.articles[4].Reports != 1 {
		t.Errorf("Expected 1 report, got %d", store.articles[4].Reports)
	}
}
