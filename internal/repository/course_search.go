package repository

import (
	"context"
	"fmt"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	minTagLength = 2
	maxTagLength = 20
)

// NormalizeTags 小写化，非 [a-z0-9] 字符替换为 '-'，长度 2-20，去重后最多 10 个。
// 输入中的逗号视为分隔符。
func NormalizeTags(raw []string) ([]string, error) {
	tags := make([]string, 0, len(raw))
	seen := map[string]bool{}
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			tag := normalizeTag(part)
			if n := len(tag); n < minTagLength || n > maxTagLength {
				return nil, fmt.Errorf("%w: %q must be 2-20 characters", util.ErrInvalidTag, part)
			}
			if seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	if len(tags) > model.MaxTagsPerCourse {
		return nil, util.ErrTooManyTags
	}
	return tags, nil
}

func normalizeTag(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// SortKey 课程排序方式
type SortKey string

const (
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortTitle    SortKey = "title"
	SortProgress SortKey = "progress"
)

// CourseView 带完成度的课程
type CourseView struct {
	model.Course
	Progress int `json:"progress"`
}

func viewsOf(doc *model.Document, courses []model.Course) []CourseView {
	views := make([]CourseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, CourseView{Course: c, Progress: doc.CourseProgressPercent(c.ID)})
	}
	return views
}

// fold Caser 有状态，不能跨 goroutine 共享
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(fold(haystack), needle)
}

// Search 按关键字与条件筛选课程。
// 关键字不区分大小写，匹配标题、描述、标签或分类的子串；空关键字匹配全部。
func (r *CourseRepository) Search(ctx context.Context, query string, filters model.CourseFilters) []CourseView {
	doc := r.Store.Load(ctx)
	return searchCourses(doc, query, filters)
}

func searchCourses(doc *model.Document, query string, filters model.CourseFilters) []CourseView {
	needle := fold(strings.TrimSpace(query))
	out := []CourseView{}
	for _, c := range doc.Courses {
		if needle != "" && !matchesQuery(c, needle) {
			continue
		}
		if filters.Category != "" && c.Category != filters.Category {
			continue
		}
		if filters.Difficulty != "" && c.Difficulty != filters.Difficulty {
			continue
		}
		if filters.Tag != "" && !c.HasTag(filters.Tag) {
			continue
		}
		percent := doc.CourseProgressPercent(c.ID)
		if filters.Progress != "" && !filters.Progress.Match(percent) {
			continue
		}
		out = append(out, CourseView{Course: c, Progress: percent})
	}
	return out
}

func matchesQuery(c model.Course, needle string) bool {
	if containsFold(c.Title, needle) || containsFold(c.Description, needle) || containsFold(c.Category, needle) {
		return true
	}
	for _, t := range c.Tags {
		if containsFold(t, needle) {
			return true
		}
	}
	return false
}

// SortCourses 返回排序后的新切片；未知排序方式原样返回
func SortCourses(courses []CourseView, key SortKey) []CourseView {
	out := append([]CourseView(nil), courses...)
	switch key {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case SortTitle:
		col := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Title, out[j].Title) < 0 })
	case SortProgress:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Progress > out[j].Progress })
	}
	return out
}

// TagCount 标签及其使用次数
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AllTags 所有课程用到的标签，按字母排序
func (r *CourseRepository) AllTags(ctx context.Context) []string {
	seen := map[string]bool{}
	tags := []string{}
	for _, c := range r.Store.Load(ctx).Courses {
		for _, t := range c.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// PopularTags 使用次数最多的标签，次数相同按字母排序
func (r *CourseRepository) PopularTags(ctx context.Context, limit int) []TagCount {
	if limit <= 0 {
		limit = util.DefaultPopularTagsLimit
	}
	counts := map[string]int{}
	for _, c := range r.Store.Load(ctx).Courses {
		for _, t := range c.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Categories 去重后的分类列表
func (r *CourseRepository) Categories(ctx context.Context) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range r.Store.Load(ctx).Courses {
		if c.Category != "" && !seen[c.Category] {
			seen[c.Category] = true
			out = append(out, c.Category)
		}
	}
	sort.Strings(out)
	return out
}

// ListViews 全部课程及其完成度
func (r *CourseRepository) ListViews(ctx context.Context) []CourseView {
	doc := r.Store.Load(ctx)
	return viewsOf(doc, doc.Courses)
}
