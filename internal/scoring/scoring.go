// Package scoring aggregates raw answers into category, area, and aptitude
// scores. Everything here is a pure function of (questions, answers):
// presentation order never changes a result.
package scoring

import (
	"sort"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
)

// MaxScalePerQuestion is the top of the Likert scale.
const MaxScalePerQuestion = 5

// Category is one RIASEC interest category. Declaration order in Categories
// is the tie-break order for rankings.
type Category struct {
	Code string
	Name string
}

// Categories lists the six RIASEC categories in canonical order.
var Categories = []Category{
	{"R", "Realistic"},
	{"I", "Investigative"},
	{"A", "Artistic"},
	{"S", "Social"},
	{"E", "Enterprising"},
	{"C", "Conventional"},
}

// CategoryScore is the aggregate for one category.
type CategoryScore struct {
	Code     string  `json:"code"`
	Total    int     `json:"total"`
	Answered int     `json:"answered"`
	Percent  float64 `json:"percent"`
}

// AreaScore is the aggregate for one interest area nested under a category.
type AreaScore struct {
	Category string  `json:"category"`
	Area     string  `json:"area"`
	Total    int     `json:"total"`
	Answered int     `json:"answered"`
	Percent  float64 `json:"percent"`
}

// Summary is the full derived score set, recomputed on every answer change.
type Summary struct {
	Categories    []CategoryScore `json:"categories"`
	Top3          []string        `json:"top3"`
	Areas         []AreaScore     `json:"areas"`
	TopAreas      []AreaScore     `json:"top_areas"`
	BottomAreas   []AreaScore     `json:"bottom_areas"`
	Aptitude      map[string]int  `json:"aptitude"`
	AnsweredCount int             `json:"answered_count"`
}

// Percent normalizes a Likert total to the percentage of the maximum
// achievable for the answered questions, clamped to [0, 100].
func Percent(total, answered int) float64 {
	if answered <= 0 {
		return 0
	}
	p := float64(total) / float64(answered*MaxScalePerQuestion) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// CategoryScores sums Likert answers per category. The result is in the
// canonical category order and includes every category, answered or not.
func CategoryScores(questions []model.Question, answers map[string]model.AnswerValue) []CategoryScore {
	totals := make(map[string]int, len(Categories))
	counts := make(map[string]int, len(Categories))

	for _, q := range questions {
		if q.Kind != model.SectionKindLikert || q.Category == "" {
			continue
		}
		ans, ok := answers[q.ID.String()]
		if !ok || ans.Kind != model.AnswerKindLikert {
			continue
		}
		totals[q.Category] += ans.Likert
		counts[q.Category]++
	}

	scores := make([]CategoryScore, 0, len(Categories))
	for _, c := range Categories {
		scores = append(scores, CategoryScore{
			Code:     c.Code,
			Total:    totals[c.Code],
			Answered: counts[c.Code],
			Percent:  Percent(totals[c.Code], counts[c.Code]),
		})
	}
	return scores
}

// TopCategories ranks eligible categories by total descending and returns the
// first n codes. A category needs at least minAnswered answered questions to
// be eligible; below-threshold categories keep their raw totals but never
// rank. Ties keep canonical declaration order (stable sort).
func TopCategories(scores []CategoryScore, n, minAnswered int) []string {
	eligible := make([]CategoryScore, 0, len(scores))
	for _, s := range scores {
		if s.Answered >= minAnswered {
			eligible = append(eligible, s)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Total > eligible[j].Total
	})

	if n > len(eligible) {
		n = len(eligible)
	}
	top := make([]string, 0, n)
	for _, s := range eligible[:n] {
		top = append(top, s.Code)
	}
	return top
}

// AreaScores applies the percent formula per area tag, grouped by canonical
// category order with each group sorted by percent descending. Only areas
// with at least one answered question appear.
func AreaScores(questions []model.Question, answers map[string]model.AnswerValue) []AreaScore {
	type key struct{ category, area string }
	totals := make(map[key]int)
	counts := make(map[key]int)
	order := make([]key, 0)

	for _, q := range questions {
		if q.Kind != model.SectionKindLikert || q.Area == "" {
			continue
		}
		ans, ok := answers[q.ID.String()]
		if !ok || ans.Kind != model.AnswerKindLikert {
			continue
		}
		k := key{q.Category, q.Area}
		if counts[k] == 0 {
			order = append(order, k)
		}
		totals[k] += ans.Likert
		counts[k]++
	}

	grouped := make([]AreaScore, 0, len(order))
	for _, c := range Categories {
		var group []AreaScore
		for _, k := range order {
			if k.category != c.Code {
				continue
			}
			group = append(group, AreaScore{
				Category: k.category,
				Area:     k.area,
				Total:    totals[k],
				Answered: counts[k],
				Percent:  Percent(totals[k], counts[k]),
			})
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Percent > group[j].Percent
		})
		grouped = append(grouped, group...)
	}
	return grouped
}

// flattenSorted returns the areas globally sorted by percent descending,
// independent of category grouping.
func flattenSorted(areas []AreaScore) []AreaScore {
	flat := append([]AreaScore(nil), areas...)
	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].Percent > flat[j].Percent
	})
	return flat
}

// TopAreas returns the n highest-percent areas from the global ranking.
func TopAreas(areas []AreaScore, n int) []AreaScore {
	flat := flattenSorted(areas)
	if n > len(flat) {
		n = len(flat)
	}
	return flat[:n]
}

// BottomAreas returns the n lowest-percent areas from the global ranking.
func BottomAreas(areas []AreaScore, n int) []AreaScore {
	flat := flattenSorted(areas)
	if n > len(flat) {
		n = len(flat)
	}
	out := make([]AreaScore, n)
	copy(out, flat[len(flat)-n:])
	return out
}

// AptitudeScores counts correct choice answers per aptitude domain.
func AptitudeScores(questions []model.Question, answers map[string]model.AnswerValue) map[string]int {
	scores := make(map[string]int)
	for _, q := range questions {
		if q.Kind != model.SectionKindChoice || q.Domain == "" {
			continue
		}
		if _, seen := scores[q.Domain]; !seen {
			scores[q.Domain] = 0
		}
		ans, ok := answers[q.ID.String()]
		if !ok || ans.Kind != model.AnswerKindChoice {
			continue
		}
		if ans.Choice == q.CorrectIndex {
			scores[q.Domain]++
		}
	}
	return scores
}

// Summarize computes the full derived score set in one pass.
func Summarize(questions []model.Question, answers map[string]model.AnswerValue, minAnswered int) *Summary {
	categories := CategoryScores(questions, answers)
	areas := AreaScores(questions, answers)

	answered := 0
	for _, q := range questions {
		if _, ok := answers[q.ID.String()]; ok {
			answered++
		}
	}

	return &Summary{
		Categories:    categories,
		Top3:          TopCategories(categories, 3, minAnswered),
		Areas:         areas,
		TopAreas:      TopAreas(areas, 5),
		BottomAreas:   BottomAreas(areas, 3),
		Aptitude:      AptitudeScores(questions, answers),
		AnsweredCount: answered,
	}
}
