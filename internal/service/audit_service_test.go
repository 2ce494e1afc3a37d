package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/studika/gradebook-backend/internal/model"
)

func TestRecordInsertsDirectlyWithoutQueue(t *testing.T) {
	store := &fakeAuditStore{}
	svc := newTestAudit(store)

	actor := &model.Principal{ID: 5, Role: model.RoleAdmin}
	before := map[string]int{"exam": 40}
	after := map[string]int{"exam": 55}

	svc.Record(context.Background(), actor, model.ActionMarkRecord, "marks", "12", before, after, "10.0.0.9")

	if len(store.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(store.entries))
	}
	e := store.entries[0]
	if e.ActorID != 5 || e.ActorRole != model.RoleAdmin {
		t.Errorf("actor = %d/%s, want 5/admin", e.ActorID, e.ActorRole)
	}
	if e.RecordID != "12" {
		t.Errorf("record id = %q, want 12", e.RecordID)
	}

	var decoded map[string]int
	if err := json.Unmarshal(e.Before, &decoded); err != nil || decoded["exam"] != 40 {
		t.Errorf("before snapshot = %s, want exam 40", e.Before)
	}
	if err := json.Unmarshal(e.After, &decoded); err != nil || decoded["exam"] != 55 {
		t.Errorf("after snapshot = %s, want exam 55", e.After)
	}
}

func TestRecordNilSnapshotsOmitted(t *testing.T) {
	store := &fakeAuditStore{}
	svc := newTestAudit(store)

	svc.Record(context.Background(), &model.Principal{ID: 1, Role: model.RoleTeacher},
		model.ActionLogout, "sessions", "3", nil, nil, "")

	if len(store.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(store.entries))
	}
	if store.entries[0].Before != nil || store.entries[0].After != nil {
		t.Error("nil snapshots must stay nil")
	}
}

func TestListFiltersByAction(t *testing.T) {
	store := &fakeAuditStore{}
	svc := newTestAudit(store)
	actor := &model.Principal{ID: 1, Role: model.RoleAdmin}

	svc.Record(context.Background(), actor, model.ActionLogin, "sessions", "1", nil, nil, "")
	svc.Record(context.Background(), actor, model.ActionMarkRecord, "marks", "2", nil, nil, "")

	entries, total, err := svc.List(context.Background(), model.AuditFilter{Action: model.ActionMarkRecord}, 1, 25)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("total = %d, entries = %d, want 1/1", total, len(entries))
	}
	if entries[0].Action != model.ActionMarkRecord {
		t.Errorf("action = %q, want %q", entries[0].Action, model.ActionMarkRecord)
	}
}

func TestListFiltersByTable(t *testing.T) {
	store := &fakeAuditStore{}
	svc := newTestAudit(store)
	actor := &model.Principal{ID: 1, Role: model.RoleAdmin}

	svc.Record(context.Background(), actor, model.ActionLogin, "sessions", "1", nil, nil, "")
	svc.Record(context.Background(), actor, model.ActionMarkRecord, "marks", "2", nil, nil, "")
	svc.Record(context.Background(), actor, model.ActionMarkRecord, "marks", "3", nil, nil, "")

	entries, total, err := svc.List(context.Background(), model.AuditFilter{TableName: "marks"}, 1, 25)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(entries) != 2 {
		t.Fatalf("total = %d, entries = %d, want 2/2", total, len(entries))
	}
	for _, e := range entries {
		if e.TableName != "marks" {
			t.Errorf("table = %q, want marks", e.TableName)
		}
	}
}
