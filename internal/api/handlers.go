package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/example/hamprep/pkg/models"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request, user *models.User) {
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) updateReminders(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req models.ReminderSettings
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.ReminderHour < 0 || req.ReminderHour > 23 {
		s.fail(w, r, badRequestf("reminderHour must be between 0 and 23"))
		return
	}
	if req.Enabled && req.TelegramChatID == nil {
		s.fail(w, r, badRequestf("telegramChatId is required to enable reminders"))
		return
	}

	updated, err := s.deps.Users.UpdateReminders(r.Context(), user.ID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request, user *models.User) {
	stats, err := s.deps.Tracker.DashboardStats(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) subelementProgress(w http.ResponseWriter, r *http.Request, user *models.User) {
	rows, err := s.deps.Tracker.SubelementProgress(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (s *Server) subelements(w http.ResponseWriter, r *http.Request, _ *models.User) {
	writeJSON(w, http.StatusOK, models.Subelements)
}

// listQuestions serves the pool, narrowed by at most one of ?ids=a,b,
// ?random=n or ?subelement=T1A.
func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request, _ *models.User) {
	query := r.URL.Query()
	ids := lo.Compact(lo.Map(strings.Split(query.Get("ids"), ","), func(id string, _ int) string {
		return strings.ToUpper(strings.TrimSpace(id))
	}))
	sub := strings.TrimSpace(query.Get("subelement"))
	random, err := queryInt(r, "random")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if lo.CountBy([]bool{len(ids) > 0, random > 0, sub != ""}, func(set bool) bool { return set }) > 1 {
		s.fail(w, r, badRequestf("ids, random and subelement cannot be combined"))
		return
	}

	var questions []models.Question
	switch {
	case len(ids) > 0:
		questions, err = s.deps.Questions.GetByIDs(r.Context(), ids)
	case random > 0:
		questions, err = s.deps.Questions.GetRandom(r.Context(), random)
	case sub != "":
		questions, err = s.deps.Questions.GetBySubelement(r.Context(), sub)
	default:
		questions, err = s.deps.Questions.GetAll(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(questions))
}

func (s *Server) studyQueue(w http.ResponseWriter, r *http.Request, user *models.User) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	questions, err := s.deps.Tracker.StudyQueue(r.Context(), user.ID, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(questions))
}

func (s *Server) dueQuestions(w http.ResponseWriter, r *http.Request, user *models.User) {
	questions, err := s.deps.Tracker.DueQuestions(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(questions))
}

func (s *Server) questionDue(w http.ResponseWriter, r *http.Request, user *models.User) {
	id := r.PathValue("id")
	due, err := s.deps.Tracker.IsDue(r.Context(), user.ID, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questionId": id, "isDue": due})
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request, _ *models.User) {
	q, err := s.deps.Questions.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"questionId":  q.ID,
		"explanation": s.deps.Explainer.ExplainWithFallback(r.Context(), q),
	})
}

func (s *Server) listProgress(w http.ResponseWriter, r *http.Request, user *models.User) {
	progress, err := s.deps.Tracker.Progress(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(progress))
}

type submitAnswerRequest struct {
	QuestionID          string   `json:"questionId"`
	Answer              string   `json:"answer"`
	ResponseTimeSeconds *float64 `json:"responseTimeSeconds"`
}

func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req submitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.QuestionID) == "" {
		s.fail(w, r, badRequestf("questionId is required"))
		return
	}

	res, err := s.deps.Tracker.SubmitAnswer(r.Context(), user.ID, req.QuestionID, req.Answer, req.ResponseTimeSeconds)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) testHistory(w http.ResponseWriter, r *http.Request, user *models.User) {
	history, err := s.deps.Tracker.TestHistory(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) startTest(w http.ResponseWriter, r *http.Request, user *models.User) {
	test, err := s.deps.Practice.Start(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, test.View())
}

func (s *Server) currentTest(w http.ResponseWriter, r *http.Request, user *models.User) {
	test, err := s.deps.Practice.Current(user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, test.View())
}

type submitTestRequest struct {
	Answers map[string]string `json:"answers"`
}

func (s *Server) submitTest(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req submitTestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.deps.Practice.Submit(r.Context(), user.ID, req.Answers)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listBookmarks(w http.ResponseWriter, r *http.Request, user *models.User) {
	bookmarks, err := s.deps.Bookmarks.GetByUser(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(bookmarks))
}

type bookmarkRequest struct {
	QuestionID string `json:"questionId"`
}

func (s *Server) createBookmark(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req bookmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.deps.Questions.GetByID(r.Context(), req.QuestionID); err != nil {
		s.fail(w, r, err)
		return
	}

	bookmark, err := s.deps.Bookmarks.Create(r.Context(), user.ID, req.QuestionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmark)
}

func (s *Server) deleteBookmark(w http.ResponseWriter, r *http.Request, user *models.User) {
	if err := s.deps.Bookmarks.Delete(r.Context(), user.ID, r.PathValue("questionId")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequestf("%s must be a non-negative integer", key)
	}
	return n, nil
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
