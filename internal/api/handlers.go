package api

import (
	"net/http"
	"time"

	"github.com/Veraticus/spent/internal/category"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

type categoryResponse struct {
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	ID        int64     `json:"id"`
	IsDefault bool      `json:"isDefault"`
}

func newCategoryResponse(c model.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		IsDefault: c.IsDefault(),
		CreatedAt: c.CreatedAt,
	}
}

func newCategoryResponses(categories []model.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, newCategoryResponse(c))
	}
	return out
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.ListVisible(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponses(categories))
}

func (s *Server) listDefaultCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.ListDefaults(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponses(categories))
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.categories.Create(r.Context(), userFrom(r.Context()), category.NewCategory{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryResponse(*created))
}

type expenseRequest struct {
	Description   *string     `json:"description"`
	Date          string      `json:"date"`
	PaymentMethod string      `json:"paymentMethod"`
	Amount        model.Money `json:"amount"`
	CategoryID    int64       `json:"categoryId"`
}

func (req expenseRequest) input() (ledger.ExpenseInput, error) {
	in := ledger.ExpenseInput{
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if req.Date != "" {
		date, err := model.ParseDate(req.Date)
		if err != nil {
			return in, common.InvalidInput("%v", err)
		}
		in.Date = date
	}
	method, err := model.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return in, common.InvalidInput("%v", err)
	}
	in.PaymentMethod = method
	return in, nil
}

type expenseResponse struct {
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	Description   *string             `json:"description,omitempty"`
	Date          string              `json:"date"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	CategoryName  string              `json:"categoryName"`
	CategoryColor string              `json:"categoryColor"`
	CategoryIcon  string              `json:"categoryIcon"`
	Amount        model.Money         `json:"amount"`
	ID            int64               `json:"id"`
	CategoryID    int64               `json:"categoryId"`
}

func newExpenseResponse(e model.Expense) expenseResponse {
	return expenseResponse{
		ID:            e.ID,
		Amount:        e.Amount,
		Date:          model.FormatDate(e.Date),
		Description:   e.Description,
		PaymentMethod: e.PaymentMethod,
		CategoryID:    e.CategoryID,
		CategoryName:  e.CategoryName,
		CategoryColor: e.CategoryColor,
		CategoryIcon:  e.CategoryIcon,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

type expensePageResponse struct {
	Content       []expenseResponse `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

func newExpensePageResponse(p *service.ExpensePage) expensePageResponse {
	content := make([]expenseResponse, 0, len(p.Items))
	for _, e := range p.Items {
		content = append(content, newExpenseResponse(e))
	}
	return expensePageResponse{
		Content:       content,
		Page:          p.Page,
		Size:          p.PageSize,
		TotalElements: p.TotalItems,
		TotalPages:    p.TotalPages,
	}
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := s.ledger.Create(r.Context(), userFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newExpenseResponse(*expense))
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := s.ledger.Get(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExpenseResponse(*expense))
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := s.ledger.Update(r.Context(), userFrom(r.Context()), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExpenseResponse(*expense))
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.Delete(r.Context(), userFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := parseExpenseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.ledger.List(r.Context(), userFrom(r.Context()), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExpensePageResponse(page))
}

// parseExpenseQuery reads categoryId, startDate, endDate, page, size, sortBy
// and direction from the query string.
func parseExpenseQuery(r *http.Request) (ledger.Query, error) {
	values := r.URL.Query()
	var q ledger.Query

	if raw := values.Get("categoryId"); raw != "" {
		id, err := queryInt(r, "categoryId")
		if err != nil {
			return q, err
		}
		categoryID := int64(id)
		q.CategoryID = &categoryID
	}
	for key, dst := range map[string]**time.Time{"startDate": &q.From, "endDate": &q.To} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		d, err := model.ParseDate(raw)
		if err != nil {
			return q, common.InvalidInput("%s: %v", key, err)
		}
		*dst = &d
	}

	var err error
	if q.Page, err = queryInt(r, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = queryInt(r, "size"); err != nil {
		return q, err
	}
	if raw := values.Get("sortBy"); raw != "" {
		if q.SortKey, err = ledger.ParseSortKey(raw); err != nil {
			return q, err
		}
	}
	if raw := values.Get("direction"); raw != "" {
		if q.Direction, err = ledger.ParseDirection(raw); err != nil {
			return q, err
		}
	}
	return q, nil
}

type budgetRequest struct {
	MonthlyLimit model.Money `json:"monthlyLimit"`
	CategoryID   int64       `json:"categoryId"`
	Year         int         `json:"year"`
	Month        int         `json:"month"`
}

type budgetUpdateRequest struct {
	MonthlyLimit model.Money `json:"monthlyLimit"`
}

func (s *Server) createBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.budgets.Create(r.Context(), userFrom(r.Context()), req.CategoryID, req.MonthlyLimit, req.Year, req.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	ym, err := s.monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := s.budgets.ListForMonth(r.Context(), userFrom(r.Context()), ym.Year, int(ym.Month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) updateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req budgetUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.budgets.Update(r.Context(), userFrom(r.Context()), id, req.MonthlyLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) deleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.budgets.Delete(r.Context(), userFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.Stats(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) categoryBreakdown(w http.ResponseWriter, r *http.Request) {
	ym, err := s.monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	breakdown, err := s.dashboard.CategoryBreakdown(r.Context(), userFrom(r.Context()), ym.Year, int(ym.Month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) trends(w http.ResponseWriter, r *http.Request) {
	ym, err := s.monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trend, err := s.dashboard.DailyTrend(r.Context(), userFrom(r.Context()), ym.Year, int(ym.Month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) monthlyComparison(w http.ResponseWriter, r *http.Request) {
	comparison, err := s.dashboard.MonthlyComparison(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

// monthParam reads optional year and month query parameters; omitting both
// selects the current month.
func (s *Server) monthParam(r *http.Request) (model.YearMonth, error) {
	year, err := queryInt(r, "year")
	if err != nil {
		return model.YearMonth{}, err
	}
	month, err := queryInt(r, "month")
	if err != nil {
		return model.YearMonth{}, err
	}
	return s.dashboard.ResolveMonth(year, month)
}
