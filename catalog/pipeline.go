// Package catalog derives the visible book list from the catalog and the
// session's filter state.
package catalog

import (
	"slices"
	"strings"

	"campus_shelf/models"
	"campus_shelf/views"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Filter 是 FilterSort 的全部输入（除书目本身）
type Filter struct {
	Segment         views.Segment
	FilterCollege   bool
	UserCollege     string
	AcceptedBookIDs []string
	Query           string
}

// FilterSort 纯函数：不修改 books，同样输入同样输出
func FilterSort(books []models.Book, f Filter) []models.Book {
	accepted := make(map[string]struct{}, len(f.AcceptedBookIDs))
	for _, id := range f.AcceptedBookIDs {
		accepted[id] = struct{}{}
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]models.Book, 0, len(books))
	for _, b := range books {
		if f.FilterCollege && (f.Segment == views.Buyer || f.Segment == views.Library) && b.College != f.UserCollege {
			continue
		}
		switch f.Segment {
		case views.Library:
			if _, ok := accepted[b.ID]; !ok && !b.IsInstitutionDonated {
				continue
			}
		case views.Buyer:
			if b.IsInstitutionDonated {
				continue
			}
		}
		if q != "" && !strings.Contains(strings.ToLower(b.Title), q) && !strings.Contains(strings.ToLower(b.Author), q) {
			continue
		}
		out = append(out, b)
	}

	// collator 不是并发安全的，每次调用新建
	col := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b models.Book) int {
		if a.IsUrgent != b.IsUrgent {
			if a.IsUrgent {
				return -1
			}
			return 1
		}
		return col.CompareString(a.Title, b.Title)
	})
	return out
}

// OwnListings 卖家视图：只看自己上架的书，保持目录原顺序
func OwnListings(books []models.Book, userID string) []models.Book {
	out := make([]models.Book, 0)
	for _, b := range books {
		if b.DonorID == userID {
			out = append(out, b)
		}
	}
	return out
}

// AcceptedBookIDs 当前用户已被接受借阅的书
func AcceptedBookIDs(reqs []models.BookRequest, userID string) []string {
	var ids []string
	for _, r := range reqs {
		if r.BorrowerID == userID && r.Status == models.StatusAccepted {
			ids = append(ids, r.BookID)
		}
	}
	return ids
}

func FilterPeers(peers []models.User, query string) []models.User {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.User, 0, len(peers))
	for _, p := range peers {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Branch), q) {
			out = append(out, p)
		}
	}
	return out
}
