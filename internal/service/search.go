package service

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/search"

	"silsilah_go/internal/family"
)

// SearchQuery 成员搜索
type SearchQuery struct {
	Query string
	Limit int
}

// SearchResult 搜索结果
type SearchResult struct {
	Person  family.PersonView `json:"person"`
	Lineage []family.Crumb    `json:"lineage"` // 从最上层祖先到该成员
	prefix  bool
}

// Search 按姓名或小名搜索成员，忽略大小写和变音符号，前缀匹配优先
func (s *TreeService) Search(ctx context.Context, baniID string, viewer Viewer, q SearchQuery) ([]SearchResult, error) {
	query := strings.TrimSpace(q.Query)
	if query == "" {
		return nil, NewError(ErrInvalidInput, "search query is required", nil)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = s.config.PageSize
	}
	if limit > s.config.MaxPageSize {
		limit = s.config.MaxPageSize
	}

	snap, err := s.load(ctx, baniID)
	if err != nil {
		return nil, err
	}

	matcher := search.New(s.config.Language(), search.IgnoreCase, search.IgnoreDiacritics)
	pattern := matcher.CompileString(query)
	proj := viewer.Projection(baniID)

	results := make([]SearchResult, 0)
	for gen := 0; gen <= snap.idx.MaxGeneration(); gen++ {
		for _, p := range snap.idx.ByGeneration(gen, "") {
			start, _ := pattern.IndexString(p.Name)
			if start < 0 && p.Nickname != "" {
				start, _ = pattern.IndexString(p.Nickname)
			}
			if start < 0 {
				continue
			}
			results = append(results, SearchResult{
				Person:  proj(p),
				Lineage: family.Breadcrumbs(family.DrillState{Generation: p.Generation, ParentID: p.ID}, snap.idx),
				prefix:  start == 0,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].prefix && !results[j].prefix
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
