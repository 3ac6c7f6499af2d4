package httpapi

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"savetrack/internal/savings"
	"savetrack/internal/service"
	"savetrack/internal/signal"
	"savetrack/internal/storage"
)

const dateLayout = "2006-01-02"

// Service is the subset of the orchestrator the API needs.
type Service interface {
	RunStrategy(ctx context.Context, req service.StrategyRequest) (service.StrategyResult, error)
	Signals(ctx context.Context, ticker string, limit int) ([]storage.SignalRecord, error)
	AddTransaction(ctx context.Context, in service.TransactionInput) (storage.Transaction, error)
	Savings(ctx context.Context) (savings.Summary, error)
}

type strategyRequest struct {
	Ticker string `json:"ticker" validate:"required,max=16"`
	Start  string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End    string `json:"end" validate:"omitempty,datetime=2006-01-02"`
	// Last is the number of rows echoed back; an explicit 0 returns them all.
	Last *int `json:"last" default:"10" validate:"omitempty,gte=0,lte=5000"`
}

type signalsQuery struct {
	Ticker string `query:"ticker" validate:"max=16"`
	Limit  *int   `query:"limit" default:"100" validate:"omitempty,gte=0,lte=100000"`
}

type transactionRequest struct {
	Type     string          `json:"type" default:"deposit" validate:"oneof=deposit withdrawal"`
	Category string          `json:"category" validate:"required,max=64"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Note     string          `json:"note" validate:"max=256"`
}

type signalRow struct {
	RunID   string          `json:"run_id,omitempty"`
	Ticker  string          `json:"ticker,omitempty"`
	Date    string          `json:"date"`
	Close   decimal.Decimal `json:"close"`
	Average decimal.Decimal `json:"average"`
	Signal  string          `json:"signal"`
}

type strategyResponse struct {
	RunID       string      `json:"run_id"`
	Ticker      string      `json:"ticker"`
	Computed    int         `json:"computed"`
	StoredTotal int         `json:"stored_total"`
	Latest      *signalRow  `json:"latest,omitempty"`
	Rows        []signalRow `json:"rows"`
}

type transactionRow struct {
	ID       int64            `json:"id"`
	Date     string           `json:"date"`
	Category string           `json:"category"`
	Amount   decimal.Decimal  `json:"amount"`
	Note     string           `json:"note,omitempty"`
	Running  *decimal.Decimal `json:"running,omitempty"`
}

type categoryRow struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

type savingsResponse struct {
	Balance    decimal.Decimal  `json:"balance"`
	Deposits   decimal.Decimal  `json:"deposits"`
	Withdrawn  decimal.Decimal  `json:"withdrawn"`
	Entries    []transactionRow `json:"entries"`
	Categories []categoryRow    `json:"categories"`
}

type handler struct {
	svc         Service
	defaultFrom time.Time
	logger      zerolog.Logger
}

func (h *handler) registerRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)

	g := e.Group("/api")
	g.POST("/strategy", h.runStrategy)
	g.GET("/signals", h.listSignals)
	g.POST("/transactions", h.addTransaction)
	g.GET("/transactions", h.listTransactions)
}

func (h *handler) health(c echo.Context) error {
	return successResponse(c, map[string]string{"state": "ok"})
}

func (h *handler) runStrategy(c echo.Context) error {
	req := &strategyRequest{}
	if verr := readAndValidateRequest(c, req); verr != nil {
		return badRequestResponse(c, verr)
	}

	start := h.defaultFrom
	if req.Start != "" {
		start, _ = time.Parse(dateLayout, req.Start)
	}
	var end time.Time
	if req.End != "" {
		end, _ = time.Parse(dateLayout, req.End)
	}

	result, err := h.svc.RunStrategy(c.Request().Context(), service.StrategyRequest{
		Ticker: req.Ticker,
		Start:  start,
		End:    end,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("ticker", req.Ticker).Msg("strategy request failed")
		return errorResponse(c, err)
	}

	resp := strategyResponse{
		RunID:       result.RunID,
		Ticker:      result.Ticker,
		Computed:    len(result.Computed),
		StoredTotal: len(result.Stored),
		Rows:        make([]signalRow, 0),
	}
	if latest, ok := signal.Latest(result.Computed); ok {
		row := fromSignalRow(latest)
		resp.Latest = &row
	}
	for _, row := range service.Tail(result.Computed, *req.Last) {
		resp.Rows = append(resp.Rows, fromSignalRow(row))
	}
	return successResponse(c, resp)
}

func (h *handler) listSignals(c echo.Context) error {
	req := &signalsQuery{}
	if verr := readAndValidateRequest(c, req); verr != nil {
		return badRequestResponse(c, verr)
	}

	records, err := h.svc.Signals(c.Request().Context(), req.Ticker, *req.Limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("list signals failed")
		return errorResponse(c, err)
	}

	rows := make([]signalRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, signalRow{
			RunID:   rec.RunID,
			Ticker:  rec.Ticker,
			Date:    rec.Date.Format(dateLayout),
			Close:   rec.Close,
			Average: rec.Average,
			Signal:  rec.Signal.String(),
		})
	}
	return listResponse(c, rows, len(rows))
}

func (h *handler) addTransaction(c echo.Context) error {
	req := &transactionRequest{}
	if verr := readAndValidateRequest(c, req); verr != nil {
		return badRequestResponse(c, verr)
	}

	kind, err := savings.ParseKind(req.Type)
	if err != nil {
		return badRequestResponse(c, []ValidationError{{Code: "ERR_ONEOF", Field: "type", Message: err.Error()}})
	}
	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse(dateLayout, req.Date)
	}

	tx, err := h.svc.AddTransaction(c.Request().Context(), service.TransactionInput{
		Date:     date,
		Kind:     kind,
		Category: req.Category,
		Amount:   req.Amount,
		Note:     req.Note,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return createdResponse(c, fromTransaction(tx, nil))
}

func (h *handler) listTransactions(c echo.Context) error {
	summary, err := h.svc.Savings(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list transactions failed")
		return errorResponse(c, err)
	}

	resp := savingsResponse{
		Balance:    summary.Balance,
		Deposits:   summary.Deposits,
		Withdrawn:  summary.Withdrawn,
		Entries:    make([]transactionRow, 0, len(summary.Entries)),
		Categories: make([]categoryRow, 0, len(summary.Categories)),
	}
	for _, entry := range summary.Entries {
		running := entry.Running
		resp.Entries = append(resp.Entries, fromTransaction(entry.Transaction, &running))
	}
	for _, cat := range summary.Categories {
		resp.Categories = append(resp.Categories, categoryRow{Category: cat.Category, Total: cat.Total, Count: cat.Count})
	}
	return successResponse(c, resp)
}

func fromSignalRow(row signal.Row) signalRow {
	return signalRow{
		Date:    row.Date.Format(dateLayout),
		Close:   row.Close,
		Average: row.Average,
		Signal:  row.Signal.String(),
	}
}

func fromTransaction(tx storage.Transaction, running *decimal.Decimal) transactionRow {
	return transactionRow{
		ID:       tx.ID,
		Date:     tx.Date.UTC().Format(storage.DateTimeLayout),
		Category: tx.Category,
		Amount:   tx.Amount,
		Note:     tx.Note,
		Running:  running,
	}
}
