package engine

import (
	"cmp"
	"context"
	"slices"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/news"
)

// memStore is an in-memory stand-in for the sqlite repositories.
type memStore struct {
	articles      map[int64]*news.Article
	categories    []news.Category
	filtered      []string
	likes         map[[2]int64]bool
	dislikes      map[[2]int64]bool
	reads         map[[2]int64]bool
	saves         map[[2]int64]bool
	subscriptions []news.Subscription
	reports       []news.Report
	notifications []news.Notification
	nextID        int64

	categoriesErr   error
	interactionsErr error

	onInsert  func() // runs after each staged insert
	afterList func() // runs after ListArticles takes its snapshot
}

func newMemStore(categories ...news.Category) *memStore {
	return &memStore{
		articles:   make(map[int64]*news.Article),
		categories: categories,
		likes:      make(map[[2]int64]bool),
		dislikes:   make(map[[2]int64]bool),
		reads:      make(map[[2]int64]bool),
		saves:      make(map[[2]int64]bool),
	}
}

func (s *memStore) add(articles ...news.Article) {
	for _, a := range articles {
		a := a
		if a.ID == 0 {
			s.nextID++
			a.ID = s.nextID
		}
		s.articles[a.ID] = &a
	}
}

func (s *memStore) ArticleExists(ctx context.Context, url string) (bool, error) {
	for _, a := range s.articles {
		if a.URL == url {
			return true, nil
		}
	}
	return false, nil
}

// CreateArticles stages the batch and commits it only if ctx stays live.
func (s *memStore) CreateArticles(ctx context.Context, articles []news.Article) ([]news.Article, error) {
	nextID := s.nextID
	var created []news.Article
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nextID++
		article.ID = nextID
		created = append(created, article)
		if s.onInsert != nil {
			s.onInsert()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.nextID = nextID
	for _, article := range created {
		copied := article
		s.articles[copied.ID] = &copied
	}
	return created, nil
}

func (s *memStore) UpdateCategory(ctx context.Context, id, categoryID int64) error {
	a, ok := s.articles[id]
	if !ok {
		return news.DomainError("article", news.ErrNotFound)
	}
	a.CategoryID = categoryID
	return nil
}

func (s *memStore) ApplyReports(ctx context.Context, id int64, count int, hide bool) error {
	a, ok := s.articles[id]
	if !ok {
		return news.DomainError("article", news.ErrNotFound)
	}
	a.Reports = max(a.Reports, count)
	a.Hidden = a.Hidden || hide
	return nil
}

func (s *memStore) GetArticle(ctx context.Context, id int64) (*news.Article, error) {
	a, ok := s.articles[id]
	if !ok {
		return nil, news.DomainError("article", news.ErrNotFound)
	}
	copied := *a
	return &copied, nil
}

func (s *memStore) ListArticles(ctx context.Context, filter database.ArticleFilter) ([]news.Article, error) {
	var list []news.Article
	for _, a := range s.articles {
		if a.Hidden && !filter.IncludeHidden {
			continue
		}
		if filter.CategoryID != 0 && a.CategoryID != filter.CategoryID {
			continue
		}
		list = append(list, *a)
	}
	slices.SortFunc(list, func(x, y news.Article) int {
		if c := y.PublishedAt.Compare(x.PublishedAt); c != 0 {
			return c
		}
		return cmp.Compare(y.ID, x.ID)
	})
	if s.afterList != nil {
		s.afterList()
	}
	return list, nil
}

func (s *memStore) GetAllCategories(ctx context.Context) ([]news.Category, error) {
	return s.categories, s.categoriesErr
}

func (s *memStore) GetFilteredKeywords(ctx context.Context) ([]string, error) {
	return s.filtered, nil
}

func (s *memStore) AddFilteredKeyword(ctx context.Context, keyword string) error {
	s.filtered = append(s.filtered, keyword)
	return nil
}

func (s *memStore) GetUserInteractionSets(ctx context.Context, userID int64) (news.Interactions, error) {
	sets := news.Interactions{Liked: news.NewIDSet(), Read: news.NewIDSet(), Saved: news.NewIDSet()}
	if s.interactionsErr != nil {
		return sets, s.interactionsErr
	}
	collect := func(m map[[2]int64]bool, set news.IDSet) {
		for key := range m {
			if key[0] == userID {
				set[key[1]] = struct{}{}
			}
		}
	}
	collect(s.likes, sets.Liked)
	collect(s.reads, sets.Read)
	collect(s.saves, sets.Saved)
	return sets, nil
}

func (s *memStore) toggle(m map[[2]int64]bool, userID, articleID int64, on bool, counter *int) bool {
	key := [2]int64{userID, articleID}
	if m[key] == on {
		return false
	}
	if on {
		m[key] = true
	} else {
		delete(m, key)
	}
	if counter != nil {
		if on {
			*counter++
		} else {
			*counter--
		}
	}
	return true
}

func (s *memStore) AddLike(ctx context.Context, userID, articleID int64) (bool, error) {
	return s.toggle(s.likes, userID, articleID, true, &s.articles[articleID].Likes), nil
}

func (s *memStore) RemoveLike(ctx context.Context, userID, articleID int64) (bool, error) {
	return s.toggle(s.likes, userID, articleID, false, &s.articles[articleID].Likes), nil
}

func (s *memStore) AddDislike(ctx context.Context, userID, articleID int64) (bool, error) {
	return s.toggle(s.dislikes, userID, articleID, true, &s.articles[articleID].Dislikes), nil
}

func (s *memStore) MarkRead(ctx context.Context, userID, articleID int64) (bool, error) {
	return s.toggle(s.reads, userID, articleID, true, nil), nil
}

func (s *memStore) AddSave(ctx context.Context, userID, articleID int64) (bool, error) {
	return s.toggle(s.saves, userID, articleID, true, nil), nil
}

func (s *memStore) RemoveSave(ctx context.Context, userID, articleID int64) (bool, error) {
	return s.toggle(s.saves, userID, articleID, false, nil), nil
}

func (s *memStore) GetUserSubscriptions(ctx context.Context, userID int64) ([]news.Subscription, error) {
	var subs []news.Subscription
	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (s *memStore) UpsertSubscription(ctx context.Context, sub *news.Subscription) error {
	for i, existing := range s.subscriptions {
		if existing.UserID == sub.UserID && sameCategory(existing.CategoryID, sub.CategoryID) {
			sub.ID = existing.ID
			s.subscriptions[i] = *sub
			return nil
		}
	}
	sub.ID = int64(len(s.subscriptions) + 1)
	s.subscriptions = append(s.subscriptions, *sub)
	return nil
}

func sameCategory(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *memStore) HasReported(ctx context.Context, userID, articleID int64) (bool, error) {
	for _, r := range s.reports {
		if r.UserID == userID && r.ArticleID == articleID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CreateReport(ctx context.Context, report *news.Report) error {
	report.ID = int64(len(s.reports) + 1)
	s.reports = append(s.reports, *report)
	return nil
}

func (s *memStore) GetReportCount(ctx context.Context, articleID int64) (int, error) {
	count := 0
	for _, r := range s.reports {
		if r.ArticleID == articleID {
			count++
		}
	}
	return count, nil
}

func (s *memStore) ListNotifications(ctx context.Context, userID int64, limit int) ([]news.Notification, error) {
	var list []news.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	return list, nil
}
