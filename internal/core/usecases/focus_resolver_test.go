package usecases_test

import (
	"context"
	"testing"

	"github.com/voyago/voyago/internal/core/domain"
	"github.com/voyago/voyago/internal/core/usecases"
)

// --- Mock EventPublisher ---

type mockPublisher struct {
	focusChanges []*domain.FocusChange
	assignments  []*domain.PlanAssignment
	syncFailures []*domain.PlanAssignment
}

func (m *mockPublisher) PublishFocusChange(ctx context.Context, fc *domain.FocusChange) error {
	m.focusChanges = append(m.focusChanges, fc)
	return nil
}

func (m *mockPublisher) PublishAssignment(ctx context.Context, a *domain.PlanAssignment) error {
	m.assignments = append(m.assignments, a)
	return nil
}

func (m *mockPublisher) PublishSyncFailure(ctx context.Context, a *domain.PlanAssignment) error {
	m.syncFailures = append(m.syncFailures, a)
	return nil
}

// --- Fixtures ---

func place(id, name string, lat, lon float64) domain.Place {
	return domain.Place{ID: id, Name: name, Location: domain.GeoPoint{Lat: lat, Lon: lon}}
}

func newTestSession() *domain.Session {
	return domain.NewSession("sess-1", "user-1")
}

func evaluate(t *testing.T, r *usecases.FocusResolver, sess *domain.Session, evs ...domain.FocusEvent) *domain.FocusChange {
	t.Helper()
	sess.Lock()
	defer sess.Unlock()
	for _, ev := range evs {
		sess.Enqueue(ev)
	}
	return r.Evaluate(context.Background(), sess)
}

// --- Tests ---

func TestFocusResolver_HomeChangeMovesFocus(t *testing.T) {
	r := usecases.NewFocusResolver(nil)
	sess := newTestSession()
	home := place("p-home", "Hotel Arriaga", 43.256, -2.924)

	fc := evaluate(t, r, sess, domain.FocusEvent{Kind: domain.FocusHomeChanged, Place: &home})

	if fc == nil {
		t.Fatal("expected a focus change")
	}
	if fc.Signal != "home" {
		t.Errorf("expected signal home, got %s", fc.Signal)
	}
	if fc.Target.ID != "p-home" {
		t.Errorf("expected target p-home, got %s", fc.Target.ID)
	}
	if sess.Home == nil || sess.Home.ID != "p-home" {
		t.Error("home signal not updated")
	}
	if sess.FocusTarget == nil || sess.FocusTarget.ID != "p-home" {
		t.Error("focus target not updated")
	}
}

func TestFocusResolver_ClearedHomeMovesNothing(t *testing.T) {
	r := usecases.NewFocusResolver(nil)
	sess := newTestSession()
	home := place("p-home", "Hotel Arriaga", 43.256, -2.924)
	evaluate(t, r, sess, domain.FocusEvent{Kind: domain.FocusHomeChanged, Place: &home})

	fc := evaluate(t, r, sess, domain.FocusEvent{Kind: domain.FocusHomeChanged, Place: nil})

	if fc != nil {
		t.Fatalf("expected no focus change, got %+v", fc)
	}
	if sess.Home != nil {
		t.Error("home signal should be cleared")
	}
	if sess.FocusTarget == nil || sess.FocusTarget.ID != "p-home" {
		t.Error("focus target should keep its last value")
	}
}

func TestFocusResolver_HomeBeatsSearchInOneBatch(t *testing.T) {
	r := usecases.NewFocusResolver(nil)
	sess := newTestSession()
	home := place("p-home", "Hotel", 43.256, -2.924)
	searched := place("p-search", "Guggenheim", 43.268, -2.934)

	fc := evaluate(t, r, sess,
		domain.FocusEvent{Kind: domain.FocusSearchSelected, Place: &searched},
		domain.FocusEvent{Kind: domain.FocusHomeChanged, Place: &home},
	)

	if fc == nil || fc.Target.ID != "p-home" {
		t.Fatalf("expected home to win, got %+v", fc)
	}
	// The losing search event still updates the search signal.
	if sess.Searched == nil || sess.Searched.ID != "p-search" {
		t.Error("search signal should be updated even when it loses")
	}
}

func TestFocusResolver_SearchBeatsActivityAndExplicitHome(t *testing.T) {
	r := usecases.NewFocusResolver(nil)
	sess := newTestSession()
	sess.Groups["museums"] = []domain.Place{place("p-act", "Museo de Bellas Artes", 43.264, -2.931)}
	searched := place("p-search", "Guggenheim", 43.268, -2.934)

	fc := evaluate(t, r, sess,
		domain.FocusEvent{Kind: domain.FocusHomeRequested},
		domain.FocusEvent{Kind: domain.FocusActivitySelected, Ref: domain.SelectionRef{GroupID: "museums", Index: 0}},
		domain.FocusEvent{Kind: domain.FocusSearchSelected, Place: &searched},
	)

	if fc == nil || fc.Signal != "search" {
		t.Fatalf("expected search to win, got %+v", fc)
	}
	if fc.Target.ID != "p-search" {
		t.Errorf("expected target p-search, got %s", fc.Target.ID)
	}
}

func TestFocusResolver_LaterSameKindEventSupersedes(t *testing.T) {
	r := usecases.NewFocusResolver(nil)
	sess := newTestSession()
	first := place("p-1", "First", 43.1, -2.9)
	second := place("p-2", "Second", 43.2, -2.8)

	fc := evaluate(t, r, sess,
		domain.FocusEvent{Kind: domain.FocusSearchSelected, Place: &first},
		domain.FocusEvent{Kind: domain.FocusSearchSelected, Place: &second},
	)

	if fc == nil || fc.Target.ID != "p-2" {
		t.Fatalf("expected the later selection to win, got %+v", fc)
	}
	if sess.Searched == nil || sess.Searched.ID != "p-2" {
		t.Error("search signal should hold the later value")
	}
}

func TestFocusResolver_ActivitySelectionResolvedLate(t *testing.T) {
	r := usecases.NewFocusResolver(nil)
	sess := newTestSession()
	sess.Groups["museums"] = []domain.Place{
		place("p-a", "A", 43.1, -2.9),
		place("p-b", "B", 43.2, -2.8),
	}

	// The group is mutated after the selection is enqueued but before
	// evaluation; resolution must see the new contents.
	sess.Lock()
	sess.Enqueue(domain.FocusEvent{Kind: domain.FocusActivitySelected, Ref: domain.SelectionRef{GroupID: "museums", Index: 1}})
	sess.Groups["museums"] = []domain.Place{
		place("p-x", "X", 43.3, -2.7),
		place("p-y", "Y", 43.4, -2.6),
	}
	fc := r.Evaluate(context.Background(), sess)
	sess.Unlock()

	if fc == nil || fc.Target.ID != "p-y" {
		t.Fatalf("expected resolution against current group contents, got %+v", fc)
	}
}

func TestFocusResolver_StaleSelectionIsSilentlyConsumed(t *testing.T) {
	pub := &mockPublisher{}
	r := usecases.NewFocusResolver(pub)
	sess := newTestSession()
	sess.Groups["museums"] = []domain.Place{place("p-a", "A", 43.1, -2.9)}

	fc := evaluate(t, r, sess, domain.FocusEvent{Kind: domain.FocusActivitySelected, Ref: domain.SelectionRef{GroupID: "museums", Index: 5}})

	if fc != nil {
		t.Fatalf("expected no focus change for a stale reference, got %+v", fc)
	}
	if len(pub.focusChanges) != 0 {
		t.Error("nothing should be published for a stale reference")
	}

	// The stale selection was consumed: a later home change must not
	// re-fire it.
	home := place("p-home", "Hotel", 43.256, -2.924)
	fc = evaluate(t, r, sess, domain.FocusEvent{Kind: domain.FocusHomeChanged, Place: &home})
	if fc == nil || fc.Signal != "home" {
		t.Fatalf("expected a plain home change, got %+v", fc)
	}
}

func TestFocusResolver_ExplicitHomeRequest(t *testing.T) {
	r := usecases.NewFocusResolver(nil)
	sess := newTestSession()

	// Without a home the request is a no-op.
	if fc := evaluate(t, r, sess, domain.FocusEvent{Kind: domain.FocusHomeRequested}); fc != nil {
		t.Fatalf("expected no focus change without a home, got %+v", fc)
	}

	home := place("p-home", "Hotel", 43.256, -2.924)
	evaluate(t, r, sess, domain.FocusEvent{Kind: domain.FocusHomeChanged, Place: &home})
	searched := place("p-search", "Guggenheim", 43.268, -2.934)
	evaluate(t, r, sess, domain.FocusEvent{Kind: domain.FocusSearchSelected, Place: &searched})

	fc := evaluate(t, r, sess, domain.FocusEvent{Kind: domain.FocusHomeRequested})
	if fc == nil || fc.Signal != "explicit_home" {
		t.Fatalf("expected an explicit home focus, got %+v", fc)
	}
	if fc.Target.ID != "p-home" {
		t.Errorf("expected target p-home, got %s", fc.Target.ID)
	}
}

func TestFocusResolver_HomeChangeAndRequestInOneBatch(t *testing.T) {
	r := usecases.NewFocusResolver(nil)
	sess := newTestSession()
	home := place("p-home", "Hotel", 43.256, -2.924)

	fc := evaluate(t, r, sess,
		domain.FocusEvent{Kind: domain.FocusHomeRequested},
		domain.FocusEvent{Kind: domain.FocusHomeChanged, Place: &home},
	)

	if fc == nil || fc.Signal != "home" {
		t.Fatalf("expected the home change to win over the request, got %+v", fc)
	}
}

func TestFocusResolver_PublishesFocusChange(t *testing.T) {
	pub := &mockPublisher{}
	r := usecases.NewFocusResolver(pub)
	sess := newTestSession()
	home := place("p-home", "Hotel", 43.256, -2.924)

	evaluate(t, r, sess, domain.FocusEvent{Kind: domain.FocusHomeChanged, Place: &home})

	if len(pub.focusChanges) != 1 {
		t.Fatalf("expected 1 published focus change, got %d", len(pub.focusChanges))
	}
	if pub.focusChanges[0].SessionID != "sess-1" {
		t.Errorf("expected session sess-1, got %s", pub.focusChanges[0].SessionID)
	}
}

func TestFocusResolver_EmptyBatch(t *testing.T) {
	r := usecases.NewFocusResolver(nil)
	sess := newTestSession()

	sess.Lock()
	fc := r.Evaluate(context.Background(), sess)
	sess.Unlock()

	if fc != nil {
		t.Fatalf("expected nil for an empty batch, got %+v", fc)
	}
}
