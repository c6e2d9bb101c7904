package change

import "testing"

func TestNotifier_Order(t *testing.T) {
	var n Notifier[int]
	var got []string
	n.Attach(func(v int) { got = append(got, "first") })
	n.Attach(func(v int) { got = append(got, "second") })
	n.Notify(1)
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("expected attachment order, got %v", got)
	}
}

func TestNotifier_DetachIdempotent(t *testing.T) {
	var n Notifier[int]
	calls := 0
	detach := n.Attach(func(int) { calls++ })
	other := n.Attach(func(int) {})
	detach()
	detach()
	n.Notify(1)
	if calls != 0 {
		t.Errorf("expected detached listener not to run, got %d calls", calls)
	}
	if n.Len() != 1 {
		t.Errorf("expected 1 listener left, got %d", n.Len())
	}
	other()
	if n.Len() != 0 {
		t.Errorf("expected no listeners, got %d", n.Len())
	}
}

func TestNotifier_DetachDuringNotify(t *testing.T) {
	var n Notifier[int]
	var detachSecond func()
	secondCalls := 0
	n.Attach(func(int) { detachSecond() })
	detachSecond = n.Attach(func(int) { secondCalls++ })

	n.Notify(1)
	n.Notify(2)
	if secondCalls != 1 {
		t.Errorf("expected the round in progress to finish, got %d calls", secondCalls)
	}
}
