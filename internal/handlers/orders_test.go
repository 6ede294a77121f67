package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fixmate/go_booking/internal/client"
	"github.com/fixmate/go_booking/internal/models"
	"github.com/gorilla/mux"
)

func fixedTestClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	}
}

func unassignedOrder() *models.Order {
	return &models.Order{
		ID:          9,
		OrderStatus: models.StatusRef{Slug: models.OrderStatusNewBooking},
	}
}

func rescheduleRequest(t *testing.T, orderID string, body models.RescheduleRequest) *http.Request {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/reschedule", bytes.NewReader(raw))
	return mux.SetURLVars(req, map[string]string{"id": orderID})
}

func TestHandleReschedule_Success(t *testing.T) {
	api := &mockAPI{
		order:   unassignedOrder(),
		outcome: client.Outcome{OK: true, Message: "Order rescheduled"},
	}
	h := NewOrderHandler(api, NewInflightRegistry(), fixedTestClock())

	rr := httptest.NewRecorder()
	h.HandleReschedule(rr, rescheduleRequest(t, "9", models.RescheduleRequest{
		Date: "2026-03-05",
		Slot: "10:30",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleReschedule_InvalidSlotLabel(t *testing.T) {
	api := &mockAPI{order: unassignedOrder(), outcome: client.Outcome{OK: true}}
	h := NewOrderHandler(api, NewInflightRegistry(), fixedTestClock())

	rr := httptest.NewRecorder()
	h.HandleReschedule(rr, rescheduleRequest(t, "9", models.RescheduleRequest{
		Date: "2026-03-05",
		Slot: "10:15", // not on the half-hour grid
	}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}

	resp := decodeResponse(t, rr)
	if resp.Field != "slot" {
		t.Errorf("Expected slot field error, got %q", resp.Field)
	}
}

func TestHandleReschedule_PassedSlotToday(t *testing.T) {
	api := &mockAPI{order: unassignedOrder(), outcome: client.Outcome{OK: true}}
	h := NewOrderHandler(api, NewInflightRegistry(), fixedTestClock())

	// clock is 12:00; 10:30 today has passed
	rr := httptest.NewRecorder()
	h.HandleReschedule(rr, rescheduleRequest(t, "9", models.RescheduleRequest{
		Date: "2026-03-01",
		Slot: "10:30",
	}))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rr.Code)
	}
}

func TestHandleReschedule_InvalidDateFormat(t *testing.T) {
	api := &mockAPI{order: unassignedOrder(), outcome: client.Outcome{OK: true}}
	h := NewOrderHandler(api, NewInflightRegistry(), fixedTestClock())

	rr := httptest.NewRecorder()
	h.HandleReschedule(rr, rescheduleRequest(t, "9", models.RescheduleRequest{
		Date: "05/03/2026",
		Slot: "10:30",
	}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}

	resp := decodeResponse(t, rr)
	if resp.Field != "date" {
		t.Errorf("Expected date field error, got %q", resp.Field)
	}
}

func TestHandleReschedule_AssignedOrderRejected(t *testing.T) {
	order := unassignedOrder()
	partnerID := int64(7)
	order.AssignPartnerID = &partnerID
	order.OrderStatus = models.StatusRef{Slug: models.OrderStatusAccepted}

	api := &mockAPI{order: order, outcome: client.Outcome{OK: true}}
	h := NewOrderHandler(api, NewInflightRegistry(), fixedTestClock())

	rr := httptest.NewRecorder()
	h.HandleReschedule(rr, rescheduleRequest(t, "9", models.RescheduleRequest{
		Date: "2026-03-05",
		Slot: "10:30",
	}))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rr.Code)
	}
}

func TestHandleCancelOrder_Success(t *testing.T) {
	api := &mockAPI{
		order:   unassignedOrder(),
		outcome: client.Outcome{OK: true, Message: "Order cancelled"},
	}
	h := NewOrderHandler(api, NewInflightRegistry(), fixedTestClock())

	req := httptest.NewRequest(http.MethodPost, "/orders/9/cancel", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "9"})

	rr := httptest.NewRecorder()
	h.HandleCancelOrder(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp.Message != "Order cancelled" {
		t.Errorf("Expected upstream message verbatim, got %q", resp.Message)
	}
}

func TestHandleCancelOrder_TerminalOrder(t *testing.T) {
	order := unassignedOrder()
	order.OrderStatus = models.StatusRef{Slug: models.OrderStatusCompleted}

	api := &mockAPI{order: order, outcome: client.Outcome{OK: true}}
	h := NewOrderHandler(api, NewInflightRegistry(), fixedTestClock())

	req := httptest.NewRequest(http.MethodPost, "/orders/9/cancel", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "9"})

	rr := httptest.NewRecorder()
	h.HandleCancelOrder(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rr.Code)
	}
}

func TestHandleOrderActions(t *testing.T) {
	api := &mockAPI{order: unassignedOrder()}
	h := NewOrderHandler(api, NewInflightRegistry(), fixedTestClock())

	req := httptest.NewRequest(http.MethodGet, "/orders/9/actions", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "9"})

	rr := httptest.NewRecorder()
	h.HandleOrderActions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	resp := decodeResponse(t, rr)
	actions := resp.Data.(map[string]interface{})
	if actions["show_cancel"] != true || actions["show_reschedule"] != true {
		t.Errorf("Expected cancel and reschedule for an unassigned order, got %v", actions)
	}
}
