package pipeline

import (
	"encoding/json"

	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
	"github.com/jonesrussell/north-cloud/content-forge/internal/dedup"
	"github.com/jonesrussell/north-cloud/content-forge/internal/store"
)

// taskState adapts one content kind to the generic batch loop: it owns
// the in-memory existing-items list, the dedup scope, ID assignment and
// persistence for a single (category, kind) task.
type taskState interface {
	// count returns the number of items currently held, persisted plus
	// accepted this run.
	count() int
	// samples returns prompt-steering samples of existing texts.
	samples() []string
	// accept validates and dedups one candidate, assigning it an ID and
	// keeping it when it passes. Reports whether it was kept.
	accept(raw json.RawMessage) bool
	// persist atomically rewrites the category file.
	persist() error
}

// curiosityState is the curiosity-kind task state.
type curiosityState struct {
	categoryID   string
	items        []content.Curiosity
	ids          []string
	titleScope   []string
	contentScope []string
	dedup        *dedup.Deduplicator
	store        *store.Store
}

func newCuriosityState(s *store.Store, d *dedup.Deduplicator, categoryID string) (*curiosityState, error) {
	items, err := s.LoadCuriosities(categoryID)
	if err != nil {
		return nil, err
	}

	st := &curiosityState{
		categoryID: categoryID,
		items:      items,
		dedup:      d,
		store:      s,
	}
	for _, it := range items {
		st.ids = append(st.ids, it.ID)
		st.titleScope = append(st.titleScope, it.Title)
		st.contentScope = append(st.contentScope, it.Content)
	}

	return st, nil
}

func (s *curiosityState) count() int { return len(s.items) }

func (s *curiosityState) samples() []string { return s.titleScope }

func (s *curiosityState) accept(raw json.RawMessage) bool {
	var cand content.Curiosity
	if err := json.Unmarshal(raw, &cand); err != nil {
		return false
	}
	cand.ID = ""
	cand.CategoryID = s.categoryID

	if !content.ValidCuriosity(&cand) {
		return false
	}
	if s.dedup.IsDuplicate(cand.Title, dedup.FieldTitle, s.titleScope) ||
		s.dedup.IsDuplicate(cand.Content, dedup.FieldContent, s.contentScope) {
		return false
	}

	cand.ID = content.NextID(content.IDPrefix(content.KindCuriosity, s.categoryID), s.ids)
	s.ids = append(s.ids, cand.ID)
	s.titleScope = append(s.titleScope, cand.Title)
	s.contentScope = append(s.contentScope, cand.Content)
	s.items = append(s.items, cand)

	s.dedup.Accept(cand.Title, dedup.FieldTitle)
	s.dedup.Accept(cand.Content, dedup.FieldContent)

	return true
}

func (s *curiosityState) persist() error {
	return s.store.SaveCuriosities(s.categoryID, s.items)
}

// quizState is the quiz-kind task state.
type quizState struct {
	categoryID    string
	items         []content.QuizQuestion
	ids           []string
	questionScope []string
	dedup         *dedup.Deduplicator
	store         *store.Store
}

func newQuizState(s *store.Store, d *dedup.Deduplicator, categoryID string) (*quizState, error) {
	items, err := s.LoadQuizzes(categoryID)
	if err != nil {
		return nil, err
	}

	st := &quizState{
		categoryID: categoryID,
		items:      items,
		dedup:      d,
		store:      s,
	}
	for _, it := range items {
		st.ids = append(st.ids, it.ID)
		st.questionScope = append(st.questionScope, it.Question)
	}

	return st, nil
}

func (s *quizState) count() int { return len(s.items) }

func (s *quizState) samples() []string { return s.questionScope }

func (s *quizState) accept(raw json.RawMessage) bool {
	var cand content.QuizQuestion
	if err := json.Unmarshal(raw, &cand); err != nil {
		return false
	}
	cand.ID = ""
	cand.CategoryID = s.categoryID

	if !content.ValidQuizQuestion(&cand) {
		return false
	}
	if s.dedup.IsDuplicate(cand.Question, dedup.FieldQuestion, s.questionScope) {
		return false
	}

	cand.ID = content.NextID(content.IDPrefix(content.KindQuiz, s.categoryID), s.ids)
	s.ids = append(s.ids, cand.ID)
	s.questionScope = append(s.questionScope, cand.Question)
	s.items = append(s.items, cand)

	s.dedup.Accept(cand.Question, dedup.FieldQuestion)

	return true
}

func (s *quizState) persist() error {
	return s.store.SaveQuizzes(s.categoryID, s.items)
}
