package scoring

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
)

func likertQuestion(category, area string) model.Question {
	return model.Question{
		ID:       uuid.New(),
		Kind:     model.SectionKindLikert,
		Category: category,
		Area:     area,
	}
}

func choiceQuestion(domain string, correct int) model.Question {
	return model.Question{
		ID:           uuid.New(),
		Kind:         model.SectionKindChoice,
		Domain:       domain,
		CorrectIndex: correct,
	}
}

func TestCategoryScores(t *testing.T) {
	questions := []model.Question{
		likertQuestion("R", "Teknik"),
		likertQuestion("R", "Teknik"),
		likertQuestion("I", "Sains"),
		likertQuestion("A", "Seni"),
	}
	answers := map[string]model.AnswerValue{
		questions[0].ID.String(): model.LikertAnswer(5),
		questions[1].ID.String(): model.LikertAnswer(3),
		questions[2].ID.String(): model.LikertAnswer(4),
	}

	scores := CategoryScores(questions, answers)
	if len(scores) != len(Categories) {
		t.Fatalf("got %d categories, want %d", len(scores), len(Categories))
	}

	byCode := make(map[string]CategoryScore)
	for _, s := range scores {
		byCode[s.Code] = s
	}

	if got := byCode["R"]; got.Total != 8 || got.Answered != 2 {
		t.Errorf("R = %+v, want total 8 answered 2", got)
	}
	if got := byCode["I"]; got.Total != 4 || got.Answered != 1 {
		t.Errorf("I = %+v, want total 4 answered 1", got)
	}
	if got := byCode["A"]; got.Total != 0 || got.Answered != 0 {
		t.Errorf("A (unanswered) = %+v, want zeros", got)
	}
}

// Totals must be invariant under any permutation of presentation order.
func TestCategoryScoresShuffleInvariant(t *testing.T) {
	questions := make([]model.Question, 0, 30)
	answers := make(map[string]model.AnswerValue)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 30; i++ {
		q := likertQuestion(Categories[i%len(Categories)].Code, "")
		questions = append(questions, q)
		answers[q.ID.String()] = model.LikertAnswer(rng.Intn(5) + 1)
	}

	want := CategoryScores(questions, answers)
	for trial := 0; trial < 5; trial++ {
		rng.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
		got := CategoryScores(questions, answers)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("shuffle %d changed scores:\n got %+v\nwant %+v", trial, got, want)
		}
	}
}

func TestTopCategoriesThreshold(t *testing.T) {
	scores := []CategoryScore{
		{Code: "R", Total: 25, Answered: 5},
		{Code: "I", Total: 30, Answered: 2}, // highest total, below threshold
		{Code: "A", Total: 20, Answered: 4},
		{Code: "S", Total: 15, Answered: 3},
		{Code: "E", Total: 0, Answered: 0},
		{Code: "C", Total: 0, Answered: 0},
	}

	top := TopCategories(scores, 3, 3)
	want := []string{"R", "A", "S"}
	if !reflect.DeepEqual(top, want) {
		t.Errorf("top3 = %v, want %v (I must be excluded below threshold)", top, want)
	}
}

func TestTopCategoriesStableTieBreak(t *testing.T) {
	scores := []CategoryScore{
		{Code: "R", Total: 10, Answered: 3},
		{Code: "I", Total: 10, Answered: 3},
		{Code: "A", Total: 10, Answered: 3},
	}

	top := TopCategories(scores, 2, 1)
	// Ties keep declaration order.
	want := []string{"R", "I"}
	if !reflect.DeepEqual(top, want) {
		t.Errorf("top = %v, want %v", top, want)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		total, answered int
		want            float64
	}{
		{25, 5, 100},
		{5, 5, 20},
		{0, 0, 0},
		{0, 3, 0},
		{999, 5, 100}, // clamped
	}
	for _, tt := range tests {
		if got := Percent(tt.total, tt.answered); got != tt.want {
			t.Errorf("Percent(%d, %d) = %v, want %v", tt.total, tt.answered, got, tt.want)
		}
	}
}

func TestAreaScoresGroupingAndRanking(t *testing.T) {
	qR1 := likertQuestion("R", "Mesin")
	qR2 := likertQuestion("R", "Konstruksi")
	qI1 := likertQuestion("I", "Laboratorium")
	qI2 := likertQuestion("I", "Riset")
	questions := []model.Question{qR1, qR2, qI1, qI2}
	answers := map[string]model.AnswerValue{
		qR1.ID.String(): model.LikertAnswer(2), // 40%
		qR2.ID.String(): model.LikertAnswer(5), // 100%
		qI1.ID.String(): model.LikertAnswer(4), // 80%
		qI2.ID.String(): model.LikertAnswer(1), // 20%
	}

	areas := AreaScores(questions, answers)
	gotOrder := make([]string, 0, len(areas))
	for _, a := range areas {
		gotOrder = append(gotOrder, a.Area)
	}
	// R group first (sorted desc within group), then I group.
	want := []string{"Konstruksi", "Mesin", "Laboratorium", "Riset"}
	if !reflect.DeepEqual(gotOrder, want) {
		t.Errorf("area order = %v, want %v", gotOrder, want)
	}

	top := TopAreas(areas, 2)
	if top[0].Area != "Konstruksi" || top[1].Area != "Laboratorium" {
		t.Errorf("top areas = %v, want Konstruksi then Laboratorium", top)
	}

	bottom := BottomAreas(areas, 2)
	if bottom[0].Area != "Mesin" || bottom[1].Area != "Riset" {
		t.Errorf("bottom areas = %v, want Mesin then Riset", bottom)
	}
}

func TestAptitudeScores(t *testing.T) {
	q1 := choiceQuestion("verbal", 2)
	q2 := choiceQuestion("verbal", 0)
	q3 := choiceQuestion("numerik", 1)
	questions := []model.Question{q1, q2, q3}
	answers := map[string]model.AnswerValue{
		q1.ID.String(): model.ChoiceAnswer(2), // correct
		q2.ID.String(): model.ChoiceAnswer(3), // wrong
		q3.ID.String(): model.ChoiceAnswer(1), // correct
	}

	got := AptitudeScores(questions, answers)
	want := map[string]int{"verbal": 1, "numerik": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("aptitude = %v, want %v", got, want)
	}
}

func TestSummarizeEndToEnd(t *testing.T) {
	// Every R question answered with 5, everything else untouched.
	questions := make([]model.Question, 0, 12)
	answers := make(map[string]model.AnswerValue)
	for i := 0; i < 6; i++ {
		q := likertQuestion("R", "Teknik")
		questions = append(questions, q)
		answers[q.ID.String()] = model.LikertAnswer(5)
	}
	for _, c := range []string{"I", "A", "S", "E", "C"} {
		questions = append(questions, likertQuestion(c, ""))
	}

	sum := Summarize(questions, answers, 3)
	if len(sum.Top3) == 0 || sum.Top3[0] != "R" {
		t.Fatalf("top3 = %v, want R first", sum.Top3)
	}
	if len(sum.Top3) != 1 {
		t.Errorf("top3 = %v, only R meets the answered threshold", sum.Top3)
	}
	for _, s := range sum.Categories {
		if s.Code == "R" && s.Total != 5*6 {
			t.Errorf("R total = %d, want %d", s.Total, 5*6)
		}
	}
	if sum.AnsweredCount != 6 {
		t.Errorf("answered count = %d, want 6", sum.AnsweredCount)
	}
}
