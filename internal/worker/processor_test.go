package worker

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/repository"
	"github.com/kitbuilder587/codecritic/internal/rl"
	"github.com/kitbuilder587/codecritic/internal/weights"
)

func newProcessor(queue repository.FeedbackQueue, weightRepo repository.WeightRepository) *Processor {
	store := weights.NewStore(weightRepo, nil)
	p := NewProcessor(queue, rl.NewTrainer(store, nil), nil, nil)
	p.poll = 5 * time.Millisecond
	return p
}

func fb(agent string, accepted bool, rating int) domain.Feedback {
	return domain.Feedback{
		AnalysisID:   "an-0123456789ab",
		SuggestionID: "sug-deadbeef",
		Agent:        agent,
		Accepted:     accepted,
		Rating:       rating,
	}
}

func TestProcessBatch_AppliesAndAcks(t *testing.T) {
	queue := repository.NewMemoryFeedbackQueue()
	weightRepo := repository.NewMemoryWeightRepository()
	p := newProcessor(queue, weightRepo)
	ctx := context.Background()

	queue.Enqueue(ctx, fb("style", false, 5))
	queue.Enqueue(ctx, fb("security", true, 3))

	items, err := queue.Dequeue(ctx, MaxBatch)
	if err != nil || len(items) != 2 {
		t.Fatalf("Dequeue() = %d items, err %v", len(items), err)
	}

	acked := p.processBatch(ctx, items)
	if len(acked) != 2 {
		t.Fatalf("acked %d items, want 2", len(acked))
	}

	store := weights.NewStore(weightRepo, nil)
	m := store.Get(ctx, weights.ScopeGlobal)
	if math.Abs(m["style"]-0.75) > 1e-9 {
		t.Errorf("style weight = %v, want 0.75", m["style"])
	}
	if math.Abs(m["security"]-1.15) > 1e-9 {
		t.Errorf("security weight = %v, want 1.15", m["security"])
	}
}

func TestProcessBatch_InvalidFeedbackIsDropped(t *testing.T) {
	queue := repository.NewMemoryFeedbackQueue()
	p := newProcessor(queue, repository.NewMemoryWeightRepository())
	ctx := context.Background()

	queue.Enqueue(ctx, fb("linter", true, 3)) // неизвестный агент
	queue.Enqueue(ctx, fb("style", true, 9))  // невозможный рейтинг

	items, _ := queue.Dequeue(ctx, MaxBatch)
	acked := p.processBatch(ctx, items)

	// мусор подтверждается, чтобы не крутиться на нем вечно
	if len(acked) != 2 {
		t.Errorf("acked %d items, want 2 dropped invalids", len(acked))
	}
}

func TestRun_DrainsQueueAndStops(t *testing.T) {
	queue := repository.NewMemoryFeedbackQueue()
	weightRepo := repository.NewMemoryWeightRepository()
	p := newProcessor(queue, weightRepo)

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 3; i++ {
		queue.Enqueue(ctx, fb("naming", false, 4))
	}

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for queue.Len() > 0 {
		select {
		case <-deadline:
			t.Fatalf("queue not drained, %d left", queue.Len())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after context cancel")
	}

	// три reject с rating 4: 1.0 - 3*0.2 = 0.4
	m := weights.NewStore(weightRepo, nil).Get(context.Background(), weights.ScopeGlobal)
	if math.Abs(m["naming"]-0.4) > 1e-9 {
		t.Errorf("naming weight = %v, want 0.4 after three rejections", m["naming"])
	}
}

func TestRun_QueueOutageBacksOffAndRecovers(t *testing.T) {
	queue := repository.NewMemoryFeedbackQueue()
	queue.FailDeq = context.DeadlineExceeded // любой не-cancel сбой
	p := newProcessor(queue, repository.NewMemoryWeightRepository())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// воркер жив несмотря на сбоящую очередь
	time.Sleep(50 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Run() exited because of queue errors")
	default:
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not stop after context cancel")
	}
}
