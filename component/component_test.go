package component

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/kbukum/paiflow/logger"
)

type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	log      *[]string
}

func (f *fakeComponent) Name() string { return f.name }
func (f *fakeComponent) Start(context.Context) error {
	*f.log = append(*f.log, "start:"+f.name)
	return f.startErr
}
func (f *fakeComponent) Stop(context.Context) error {
	*f.log = append(*f.log, "stop:"+f.name)
	return f.stopErr
}
func (f *fakeComponent) Health(context.Context) Health {
	return Health{Name: f.name, Status: StatusHealthy}
}
func (f *fakeComponent) Describe() Description { return Description{Type: "fake"} }

// --- Registry tests ---

func TestRegistry_StartStopOrder(t *testing.T) {
	var calls []string
	r := NewRegistry(logger.Nop())
	for _, n := range []string{"store", "storage", "server"} {
		if err := r.Register(&fakeComponent{name: n, log: &calls}); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := "start:store,start:storage,start:server,stop:server,stop:storage,stop:store"
	if got := strings.Join(calls, ","); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	var calls []string
	r := NewRegistry(logger.Nop())
	_ = r.Register(&fakeComponent{name: "a", log: &calls})
	if err := r.Register(&fakeComponent{name: "a", log: &calls}); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRegistry_StartFailureStopsOnlyStarted(t *testing.T) {
	var calls []string
	r := NewRegistry(logger.Nop())
	_ = r.Register(&fakeComponent{name: "a", log: &calls})
	_ = r.Register(&fakeComponent{name: "b", log: &calls, startErr: stderrors.New("boom")})
	_ = r.Register(&fakeComponent{name: "c", log: &calls})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	calls = nil
	_ = r.StopAll(context.Background())
	if strings.Join(calls, ",") != "stop:a" {
		t.Errorf("only started components should stop, got %v", calls)
	}
}

func TestRegistry_StopErrorsJoined(t *testing.T) {
	var calls []string
	r := NewRegistry(logger.Nop())
	_ = r.Register(&fakeComponent{name: "a", log: &calls, stopErr: stderrors.New("x")})
	_ = r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err == nil || !strings.Contains(err.Error(), "failed to stop a") {
		t.Errorf("unexpected %v", err)
	}
}

func TestRegistry_HealthAndDescribe(t *testing.T) {
	var calls []string
	r := NewRegistry(logger.Nop())
	_ = r.Register(&fakeComponent{name: "store", log: &calls})

	h := r.HealthAll(context.Background())
	if len(h) != 1 || h[0].Status != StatusHealthy {
		t.Errorf("unexpected health %+v", h)
	}
	d := r.Describe()
	if len(d) != 1 || d[0].Name != "store" || d[0].Type != "fake" {
		t.Errorf("unexpected descriptions %+v", d)
	}
	if r.Get("store") == nil || r.Get("missing") != nil {
		t.Error("Get mismatch")
	}
}

func TestRegistry_LaunchStopsFirst(t *testing.T) {
	var calls []string
	r := NewRegistry(logger.Nop())
	_ = r.Register(&fakeComponent{name: "store", log: &calls})
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.Launch(context.Background(), &fakeComponent{name: "server", log: &calls}); err != nil {
		t.Fatal(err)
	}
	if err := r.Launch(context.Background(), &fakeComponent{name: "store", log: &calls}); err == nil {
		t.Error("expected duplicate error from Launch")
	}
	_ = r.StopAll(context.Background())

	want := "start:store,start:server,stop:server,stop:store"
	if got := strings.Join(calls, ","); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
