package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// fakeList は LPUSH / LTRIM / LRANGE だけを再現するインメモリ実装です。
type fakeList struct {
	lists map[string][]string
}

func newFakeList() *fakeList {
	return &fakeList{lists: make(map[string][]string)}
}

func (f *fakeList) LPush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	for _, v := range values {
		var s string
		switch t := v.(type) {
		case []byte:
			s = string(t)
		case string:
			s = t
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeList) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	l := f.lists[key]
	if stop+1 < int64(len(l)) {
		f.lists[key] = l[start : stop+1]
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeList) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	l := f.lists[key]
	end := stop + 1
	if end > int64(len(l)) {
		end = int64(len(l))
	}
	if start >= end {
		return redis.NewStringSliceResult(nil, nil)
	}
	return redis.NewStringSliceResult(append([]string(nil), l[start:end]...), nil)
}

func TestStoreAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeList()
	store := NewStore(rdb, 3)

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := store.Append(ctx, Event{
			ID:         string(rune('a' + i)),
			Kind:       KindLoginFailed,
			Email:      "user@example.com",
			StatusCode: 401,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	if n := len(rdb.lists["auth:events:user@example.com"]); n != 3 {
		t.Fatalf("retained %d events, want 3", n)
	}

	events, err := store.Recent(ctx, "user@example.com", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 || events[0].ID != "e" || events[2].ID != "c" {
		t.Fatalf("events = %+v", events)
	}

	events, _ = store.Recent(ctx, "user@example.com", 1)
	if len(events) != 1 || events[0].ID != "e" {
		t.Fatalf("limited events = %+v", events)
	}

	events, _ = store.Recent(ctx, "other@example.com", 10)
	if len(events) != 0 {
		t.Fatalf("events for another user = %+v", events)
	}
}

func TestStoreSkipsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeList()
	store := NewStore(rdb, 10)

	_ = store.Append(ctx, Event{ID: "1", Kind: KindLogout, Email: "user@example.com"})
	rdb.lists["auth:events:user@example.com"] = append([]string{"not json"}, rdb.lists["auth:events:user@example.com"]...)

	events, err := store.Recent(ctx, "user@example.com", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ID != "1" {
		t.Fatalf("events = %+v", events)
	}
}

func TestStoreRequiresEmail(t *testing.T) {
	if err := NewStore(newFakeList(), 5).Append(context.Background(), Event{Kind: KindLogout}); err == nil {
		t.Fatal("expected error for event without email")
	}
}

type memoryWriter struct {
	events []Event
	err    error
}

func (w *memoryWriter) Append(ctx context.Context, event Event) error {
	if w.err != nil {
		return w.err
	}
	w.events = append(w.events, event)
	return nil
}

func newTestManager(w eventWriter) *Manager {
	return &Manager{
		writer: w,
		now:    func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func TestNewTaskFillsDefaults(t *testing.T) {
	m := newTestManager(&memoryWriter{})

	task, err := m.newTask(Event{Kind: KindLoginSucceeded, Email: "user@example.com", StatusCode: 200})
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != taskTypeAuthEvent {
		t.Fatalf("task type = %q", task.Type())
	}

	var ev Event
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.ID == "" || !ev.OccurredAt.Equal(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("defaults not filled: %+v", ev)
	}

	if _, err := m.newTask(Event{Kind: KindLogout}); err == nil {
		t.Fatal("expected error for event without email")
	}
}

func TestHandleEventTask(t *testing.T) {
	w := &memoryWriter{}
	m := newTestManager(w)

	task, _ := m.newTask(Event{Kind: KindSignupSucceeded, Email: "new@example.com", StatusCode: 200})
	if err := m.handleEventTask(context.Background(), task); err != nil {
		t.Fatalf("handleEventTask returned error: %v", err)
	}
	if len(w.events) != 1 || w.events[0].Email != "new@example.com" || w.events[0].Kind != KindSignupSucceeded {
		t.Fatalf("written events = %+v", w.events)
	}
}

func TestHandleEventTaskSkipsRetryOnBadPayload(t *testing.T) {
	m := newTestManager(&memoryWriter{})

	err := m.handleEventTask(context.Background(), asynq.NewTask(taskTypeAuthEvent, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry", err)
	}
	err = m.handleEventTask(context.Background(), asynq.NewTask(taskTypeAuthEvent, []byte(`{"kind":"logout"}`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry", err)
	}
}

func TestHandleEventTaskPropagatesWriteErrors(t *testing.T) {
	w := &memoryWriter{err: errors.New("redis down")}
	m := newTestManager(w)

	task, _ := m.newTask(Event{Kind: KindLogout, Email: "user@example.com"})
	if err := m.handleEventTask(context.Background(), task); err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("write errors must be retried, got %v", err)
	}
}
