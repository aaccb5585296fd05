package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/adapter/http/dto"
	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
)

type ledgerQueryStub struct {
	getPanelFn   func(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error)
	getBankFn    func(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error)
	listPanelsFn func(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.PanelLedger, error)
	listBanksFn  func(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.BankLedger, error)
	lockFn       func(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time, lock bool, actorID string) error
}

func (s *ledgerQueryStub) GetPanelLedger(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error) {
	return s.getPanelFn(ctx, panelID, date)
}

func (s *ledgerQueryStub) GetBankLedger(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error) {
	return s.getBankFn(ctx, bankAccountID, date)
}

func (s *ledgerQueryStub) ListPanelLedgers(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.PanelLedger, error) {
	return s.listPanelsFn(ctx, filter)
}

func (s *ledgerQueryStub) ListBankLedgers(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.BankLedger, error) {
	return s.listBanksFn(ctx, filter)
}

func (s *ledgerQueryStub) LockLedger(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time, lock bool, actorID string) error {
	return s.lockFn(ctx, entityType, entityID, date, lock, actorID)
}

type validationStub struct {
	canModifyFn   func(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (usecase.ModifyCheck, error)
	balanceFn     func(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (usecase.BalanceCheck, error)
	validateAllFn func(ctx context.Context, date time.Time) (*usecase.ValidationReport, error)
}

func (s *validationStub) CanModify(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (usecase.ModifyCheck, error) {
	return s.canModifyFn(ctx, entityType, entityID, date)
}

func (s *validationStub) ValidateBalanceCalculation(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (usecase.BalanceCheck, error) {
	return s.balanceFn(ctx, entityType, entityID, date)
}

func (s *validationStub) ValidateAllLedgers(ctx context.Context, date time.Time) (*usecase.ValidationReport, error) {
	return s.validateAllFn(ctx, date)
}

type calculationStub struct {
	panelFn func(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error)
	bankFn  func(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error)
	allFn   func(ctx context.Context, date time.Time) (*usecase.RecalculationSummary, error)
}

func (s *calculationStub) RecalculatePanel(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error) {
	return s.panelFn(ctx, panelID, date)
}

func (s *calculationStub) RecalculateBank(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error) {
	return s.bankFn(ctx, bankAccountID, date)
}

func (s *calculationStub) RecalculateAll(ctx context.Context, date time.Time) (*usecase.RecalculationSummary, error) {
	return s.allFn(ctx, date)
}

// routeRequest dispatches through a chi router so URL params resolve.
func routeRequest(h http.HandlerFunc, pattern, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get(pattern, h)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(rec, req)

	return rec
}

func TestLedgerHandler_GetPanel_Success(t *testing.T) {
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	h := NewLedgerHandler(&ledgerQueryStub{
		getPanelFn: func(ctx context.Context, panelID string, d time.Time) (*domain.PanelLedger, error) {
			if panelID != "panel-1" {
				t.Fatalf("expected panel-1, got %s", panelID)
			}
			if !d.Equal(date) {
				t.Fatalf("expected %s, got %s", date, d)
			}
			return &domain.PanelLedger{
				ID:             "row-1",
				PanelID:        panelID,
				LedgerDate:     date,
				ClosingBalance: decimal.NewFromInt(5000),
				Status:         domain.StatusOpen,
			}, nil
		},
	}, nil, nil, nil)

	rec := routeRequest(h.GetPanel, "/ledger/panel/{id}", "/ledger/panel/panel-1?date=2026-08-31")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.PanelLedgerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.LedgerDate != "2026-08-31" || !resp.ClosingBalance.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLedgerHandler_GetPanel_NotFound(t *testing.T) {
	h := NewLedgerHandler(&ledgerQueryStub{
		getPanelFn: func(ctx context.Context, panelID string, d time.Time) (*domain.PanelLedger, error) {
			return nil, domain.ErrLedgerNotFound
		},
	}, nil, nil, nil)

	rec := routeRequest(h.GetPanel, "/ledger/panel/{id}", "/ledger/panel/panel-9")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLedgerHandler_GetBank_Success(t *testing.T) {
	h := NewLedgerHandler(&ledgerQueryStub{
		getBankFn: func(ctx context.Context, bankAccountID string, d time.Time) (*domain.BankLedger, error) {
			return &domain.BankLedger{
				ID:             "row-2",
				BankAccountID:  bankAccountID,
				LedgerDate:     time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
				ClosingBalance: decimal.NewFromInt(70000),
				TotalCharges:   decimal.NewFromInt(500),
				Status:         domain.StatusOpen,
			}, nil
		},
	}, nil, nil, nil)

	rec := routeRequest(h.GetBank, "/ledger/bank/{id}", "/ledger/bank/bank-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BankLedgerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.NetBalance.Equal(decimal.NewFromInt(69500)) {
		t.Fatalf("expected net balance 69500, got %s", resp.NetBalance)
	}
}

func TestLedgerHandler_ListPanels_Filter(t *testing.T) {
	var captured usecase.LedgerFilter

	h := NewLedgerHandler(&ledgerQueryStub{
		listPanelsFn: func(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.PanelLedger, error) {
			captured = filter
			return nil, nil
		},
	}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/ledger/panel?entity_id=panel-1&status=OPEN&limit=5", nil)
	rec := httptest.NewRecorder()

	h.ListPanels(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.EntityID != "panel-1" || captured.Status != domain.StatusOpen || captured.Limit != 5 {
		t.Fatalf("unexpected filter %+v", captured)
	}
}

func TestLedgerHandler_Lock_Success(t *testing.T) {
	var gotLock bool
	var gotActor string

	h := NewLedgerHandler(&ledgerQueryStub{
		lockFn: func(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time, lock bool, actorID string) error {
			gotLock = lock
			gotActor = actorID
			return nil
		},
	}, nil, nil, nil)

	body, _ := json.Marshal(dto.LockLedgerRequest{
		EntityType: "panel",
		EntityID:   "panel-1",
		Date:       "2026-08-31",
		Lock:       true,
	})

	req := httptest.NewRequest(http.MethodPost, "/ledger/lock", bytes.NewReader(body))
	req.Header.Set(ActorIDHeader, "admin-1")
	rec := httptest.NewRecorder()

	h.Lock(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !gotLock || gotActor != "admin-1" {
		t.Fatalf("expected lock by admin-1, got lock=%v actor=%s", gotLock, gotActor)
	}
}

func TestLedgerHandler_CanModify(t *testing.T) {
	h := NewLedgerHandler(nil, &validationStub{
		canModifyFn: func(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (usecase.ModifyCheck, error) {
			return usecase.ModifyCheck{Reason: "Ledger for 2026-08-30 is closed and cannot be modified"}, nil
		},
	}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/ledger/can-modify?entity_type=panel&entity_id=panel-1&date=2026-08-30", nil)
	rec := httptest.NewRecorder()

	h.CanModify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ModifyCheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Allowed || resp.Reason == "" {
		t.Fatalf("expected denial with reason, got %+v", resp)
	}
}

func TestLedgerHandler_CanModify_MissingEntity(t *testing.T) {
	h := NewLedgerHandler(nil, &validationStub{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/ledger/can-modify?entity_type=panel", nil)
	rec := httptest.NewRecorder()

	h.CanModify(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_Validate_SingleEntity(t *testing.T) {
	h := NewLedgerHandler(nil, &validationStub{
		balanceFn: func(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (usecase.BalanceCheck, error) {
			return usecase.BalanceCheck{
				Valid:    false,
				Expected: decimal.NewFromInt(5000),
				Actual:   decimal.NewFromInt(4990),
			}, nil
		},
	}, nil, nil)

	body, _ := json.Marshal(dto.ValidateRequest{EntityType: "panel", EntityID: "panel-1", Date: "2026-08-31"})
	req := httptest.NewRequest(http.MethodPost, "/ledger/validate", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Validate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceCheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Valid || !resp.Expected.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLedgerHandler_Validate_FullSweep(t *testing.T) {
	h := NewLedgerHandler(nil, &validationStub{
		validateAllFn: func(ctx context.Context, date time.Time) (*usecase.ValidationReport, error) {
			return &usecase.ValidationReport{
				Date:    date,
				Checked: 12,
				Valid:   false,
				Errors: []usecase.LedgerDiscrepancy{
					{
						EntityType: domain.EntityPanel,
						EntityID:   "panel-3",
						LedgerDate: date,
						Expected:   decimal.NewFromInt(100),
						Actual:     decimal.NewFromInt(90),
					},
				},
			}, nil
		},
	}, nil, nil)

	body, _ := json.Marshal(dto.ValidateRequest{Date: "2026-08-31"})
	req := httptest.NewRequest(http.MethodPost, "/ledger/validate", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Validate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ValidationReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Checked != 12 || resp.Valid || len(resp.Errors) != 1 {
		t.Fatalf("unexpected report %+v", resp)
	}
}

func TestLedgerHandler_Recalculate_AllAndSingle(t *testing.T) {
	h := NewLedgerHandler(nil, nil, &calculationStub{
		panelFn: func(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error) {
			return &domain.PanelLedger{ID: "row-1", PanelID: panelID}, nil
		},
		allFn: func(ctx context.Context, date time.Time) (*usecase.RecalculationSummary, error) {
			return &usecase.RecalculationSummary{Date: date, PanelsTotal: 4, BanksTotal: 2}, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.RecalculateRequest{EntityType: "panel", EntityID: "panel-1"})
	req := httptest.NewRequest(http.MethodPost, "/ledger/recalculate", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Recalculate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for single recalculation, got %d", rec.Code)
	}

	body, _ = json.Marshal(dto.RecalculateRequest{Date: "2026-08-31"})
	req = httptest.NewRequest(http.MethodPost, "/ledger/recalculate", bytes.NewReader(body))
	rec = httptest.NewRecorder()

	h.Recalculate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for batch recalculation, got %d", rec.Code)
	}

	var resp dto.RecalculationSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.PanelsTotal != 4 || resp.BanksTotal != 2 {
		t.Fatalf("unexpected summary %+v", resp)
	}
}

type snapshotStub struct {
	getFn func(ctx context.Context) (*usecase.LedgerSnapshot, error)
}

func (s *snapshotStub) Get(ctx context.Context) (*usecase.LedgerSnapshot, error) {
	return s.getFn(ctx)
}

func TestLedgerHandler_Snapshot(t *testing.T) {
	h := NewLedgerHandler(nil, nil, nil, &snapshotStub{
		getFn: func(ctx context.Context) (*usecase.LedgerSnapshot, error) {
			return &usecase.LedgerSnapshot{Date: "2026-08-31", PanelCount: 5, BankCount: 2}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ledger/snapshot", nil)
	rec := httptest.NewRecorder()

	h.Snapshot(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp usecase.LedgerSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.PanelCount != 5 || resp.BankCount != 2 {
		t.Fatalf("unexpected snapshot %+v", resp)
	}
}
