package news

import (
	"fmt"
)

// Visibility decides which articles may be shown on any read path.
type Visibility struct {
	keywords         []string
	hiddenCategories IDSet
}

func NewVisibility(filteredKeywords []string, categories []Category) *Visibility {
	keywords := make([]string, 0, len(filteredKeywords))
	for _, kw := range filteredKeywords {
		if folded := Fold(kw); folded != "" {
			keywords = append(keywords, folded)
		}
	}

	hidden := NewIDSet()
	for _, category := range categories {
		if category.Hidden {
			hidden[category.ID] = struct{}{}
		}
	}

	return &Visibility{
		keywords:         keywords,
		hiddenCategories: hidden,
	}
}

// Check returns false and the reason when the article must not be shown.
func (v *Visibility) Check(article Article) (bool, string) {
	if article.Hidden {
		return false, "Article hidden by moderation"
	}

	if v.hiddenCategories.Has(article.CategoryID) {
		return false, fmt.Sprintf("Category %d is hidden", article.CategoryID)
	}

	title := Fold(article.Title)
	description := Fold(article.Description)
	for _, kw := range v.keywords {
		if ContainsFolded(title, kw) || ContainsFolded(description, kw) {
			return false, fmt.Sprintf("Excluded by keyword filter: contains '%s'", kw)
		}
	}

	return true, ""
}

func (v *Visibility) Allows(article Article) bool {
	ok, _ := v.Check(article)
	return ok
}

// Run returns the visible articles in their original order.
func (v *Visibility) Run(articles []Article) []Article {
	visible := make([]Article, 0, len(articles))
	for _, article := range articles {
		if v.Allows(article) {
			visible = append(visible, article)
		}
	}
	return visible
}
