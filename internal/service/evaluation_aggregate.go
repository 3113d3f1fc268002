package service

import (
	"strconv"
	"strings"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/repository"
)

type questionTally struct {
	id       uint
	text     string
	category string
	sum      int
	count    int
}

type subjectTally struct {
	id           uint
	name         string
	code         string
	comments     []string
	seenComments map[string]struct{}
	evaluations  map[uint]struct{}
	questionIDs  []uint
	questions    map[uint]*questionTally
}

// subjectTallies is keyed by subject id and iterates in first-seen order.
type subjectTallies struct {
	order []uint
	byID  map[uint]*subjectTally
}

func newSubjectTallies() *subjectTallies {
	return &subjectTallies{byID: map[uint]*subjectTally{}}
}

func (t *subjectTallies) subject(row repository.FacultyEvaluationRow) *subjectTally {
	if tally, ok := t.byID[row.SubjectID]; ok {
		return tally
	}
	tally := &subjectTally{
		id:           row.SubjectID,
		name:         row.SubjectName,
		code:         row.SubjectCode,
		comments:     []string{},
		seenComments: map[string]struct{}{},
		evaluations:  map[uint]struct{}{},
		questions:    map[uint]*questionTally{},
	}
	t.order = append(t.order, row.SubjectID)
	t.byID[row.SubjectID] = tally
	return tally
}

func (s *subjectTally) add(row repository.FacultyEvaluationRow) {
	s.evaluations[row.EvaluationID] = struct{}{}

	if row.Comments != nil {
		comment := strings.TrimSpace(*row.Comments)
		if _, seen := s.seenComments[comment]; comment != "" && !seen {
			s.seenComments[comment] = struct{}{}
			s.comments = append(s.comments, comment)
		}
	}

	question, ok := s.questions[row.QuestionID]
	if !ok {
		question = &questionTally{id: row.QuestionID, text: row.QuestionText, category: row.CategoryName}
		s.questions[row.QuestionID] = question
		s.questionIDs = append(s.questionIDs, row.QuestionID)
	}
	question.sum += row.Rating
	question.count++
}

func (s *subjectTally) summary() dto.FacultySubjectSummary {
	totalSum, totalCount := 0, 0
	questions := make([]dto.QuestionSummary, 0, len(s.questionIDs))
	for _, id := range s.questionIDs {
		q := s.questions[id]
		totalSum += q.sum
		totalCount += q.count
		questions = append(questions, dto.QuestionSummary{
			QuestionID:   q.id,
			QuestionText: q.text,
			CategoryName: q.category,
			Sum:          q.sum,
			Count:        q.count,
			Average:      formatAverage(q.sum, q.count),
		})
	}

	return dto.FacultySubjectSummary{
		SubjectID:        s.id,
		SubjectName:      s.name,
		SubjectCode:      s.code,
		Comments:         s.comments,
		OverallAverage:   formatAverage(totalSum, totalCount),
		TotalEvaluations: len(s.evaluations),
		Questions:        questions,
	}
}

// AggregateFacultyRows groups answer rows by subject and question, preserving the
// order in which subjects and questions first appear in rows.
func AggregateFacultyRows(rows []repository.FacultyEvaluationRow) []dto.FacultySubjectSummary {
	tallies := newSubjectTallies()
	for _, row := range rows {
		tallies.subject(row).add(row)
	}

	summaries := make([]dto.FacultySubjectSummary, 0, len(tallies.order))
	for _, id := range tallies.order {
		summaries = append(summaries, tallies.byID[id].summary())
	}
	return summaries
}

func formatAverage(sum, count int) string {
	if count == 0 {
		return "0.00"
	}
	return strconv.FormatFloat(float64(sum)/float64(count), 'f', 2, 64)
}
