package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
)

func TestInitiatePostsConversationAndUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/video/initiate-call" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["conversation_id"] != "c1" || body["initiated_by"] != "doctor-1" {
			t.Errorf("unexpected body %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true, "call_id": "call-1",
			"room_name": "conv-c1-abc", "room_url": "https://r/conv-c1-abc", "token": "tok",
		})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).Initiate(context.Background(), "c1", "doctor-1")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if res.CallID != "call-1" || res.Token != "tok" || res.RoomURL == "" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestInitiateFailureWrapsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"success":false}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Initiate(context.Background(), "c1", "doctor-1")
	if !errors.Is(err, ErrInitiateCall) {
		t.Fatalf("expected ErrInitiateCall, got %v", err)
	}
}

func TestAcceptConflictMapsTo409(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/video/accept-call" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "status": "ended"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Accept(context.Background(), "call-1", "patient-1")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestGetCallDecodesRecord(t *testing.T) {
	created := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/video/calls/call-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "call-1", "conversation_id": "c1", "started_by": "doctor-1",
			"status": "accepted", "room_name": "rm", "room_url": "https://r/rm",
			"created_at": created,
		})
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL).GetCall(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("get call: %v", err)
	}
	if rec.Status != call.StatusAccepted || rec.StartedBy != "doctor-1" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestGetCallNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetCall(context.Background(), "nope")
	if !errors.Is(err, ErrCallNotFound) {
		t.Fatalf("expected ErrCallNotFound, got %v", err)
	}
}

func TestEndToleratesConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).End(context.Background(), "call-1")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected bare ErrConflict, got %v", err)
	}
}
