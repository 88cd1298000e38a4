package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"debate-arena/internal/detector"
	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
	"debate-arena/internal/infra/persistence/memory"
	"debate-arena/internal/oracle"
	"debate-arena/internal/service"
)

const testRoom = "room-1"

type sentEvent struct {
	roomID string
	userID string
	event  dto.Event
}

// recordingBroadcaster keeps every event in order.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, event dto.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{roomID: roomID, event: event})
}

func (b *recordingBroadcaster) SendToUser(roomID, userID string, event dto.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{roomID: roomID, userID: userID, event: event})
}

func (b *recordingBroadcaster) named(name string) []sentEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []sentEvent
	for _, e := range b.events {
		if e.event.Event == name {
			out = append(out, e)
		}
	}
	return out
}

type stubDetector struct {
	mu     sync.Mutex
	result detector.Result
	err    error
	calls  int
}

func (d *stubDetector) Detect(_ context.Context, _ string) (detector.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.result, d.err
}

func (d *stubDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// stubScorer gives every criterion the same value unless err is set.
type stubScorer struct {
	mu    sync.Mutex
	value int
	err   error
	block bool
}

func (s *stubScorer) set(value int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value, s.err = value, err
}

func (s *stubScorer) Score(ctx context.Context, _ oracle.Request) (oracle.Assessment, error) {
	s.mu.Lock()
	value, err, block := s.value, s.err, s.block
	s.mu.Unlock()
	if block {
		<-ctx.Done()
		return oracle.Assessment{}, ctx.Err()
	}
	if err != nil {
		return oracle.Assessment{}, err
	}
	return oracle.Assessment{Criteria: uniform(value), Feedback: "ok"}, nil
}

func uniform(v int) domain.Criteria {
	return domain.Criteria{Clarity: v, Relevance: v, Logic: v, Evidence: v, Persuasiveness: v, Rebuttal: v}
}

type countingArchiver struct {
	mu    sync.Mutex
	rooms []string
}

func (a *countingArchiver) EnqueueArchive(_ context.Context, roomID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rooms = append(a.rooms, roomID)
	return nil
}

type engine struct {
	store       *memory.Store
	broadcaster *recordingBroadcaster
	detector    *stubDetector
	scorer      *stubScorer
	archiver    *countingArchiver
	registry    *service.RoomRegistry
	stances     *service.StanceService
	arguments   *service.ArgumentService
	messages    *service.MessageService
	lifecycle   *service.LifecycleService
	standings   *service.StandingsService
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	store := memory.NewStore()
	store.PutRoom(domain.Room{ID: testRoom, Topic: "Cities should ban cars", CreatorID: "creator", IsActive: true})

	e := &engine{
		store:       store,
		broadcaster: &recordingBroadcaster{},
		detector:    &stubDetector{},
		scorer:      &stubScorer{value: 5},
		archiver:    &countingArchiver{},
	}
	e.registry = service.NewRoomRegistry(store.RoomRepository(), store.EvaluationRepository(), store.ResultRepository())
	e.stances = service.NewStanceService(e.registry, store.StanceRepository(), e.broadcaster)
	e.lifecycle = service.NewLifecycleService(e.registry, store.RoomRepository(), store.EvaluationRepository(),
		store.ResultRepository(), e.broadcaster, e.archiver)
	e.arguments = service.NewArgumentService(e.registry, store.StanceRepository(), store.EvaluationRepository(),
		store.StrikeRepository(), e.detector, e.scorer, e.broadcaster, e.lifecycle, 200*time.Millisecond)
	e.messages = service.NewMessageService(e.registry, store.MessageRepository(), e.broadcaster, []string{"mod-1"})
	e.standings = service.NewStandingsService(e.registry, e.broadcaster)
	return e
}

const sampleArgument = "Dense public transit moves far more people per lane than private cars do."

// argue selects a stance if needed and submits n scored arguments.
func (e *engine) argue(t *testing.T, userID string, team domain.Team, n int) {
	t.Helper()
	ctx := context.Background()
	if s, _ := e.stances.GetStance(ctx, testRoom, userID); s == nil {
		_, err := e.stances.SelectStance(ctx, testRoom, userID, "name-"+userID, string(team))
		if err != nil {
			t.Fatalf("select stance for %s: %v", userID, err)
		}
	}
	for i := 0; i < n; i++ {
		_, err := e.arguments.Evaluate(ctx, service.EvaluateRequest{
			RoomID: testRoom, UserID: userID, Username: "name-" + userID, Team: string(team), Argument: sampleArgument,
		})
		if err != nil {
			t.Fatalf("evaluate for %s: %v", userID, err)
		}
	}
}
