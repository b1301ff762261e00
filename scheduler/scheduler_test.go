package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jheinrichs/remindme/model"
)

var testNow = time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

type (
	advanceCall struct {
		id       int64
		from, to model.Tier
	}

	renewCall struct {
		id      int64
		from    model.Tier
		nextDue time.Time
	}

	fakeStore struct {
		candidates []model.DueReminder
		listErr    error

		listedMax   time.Time
		advances    []advanceCall
		advanceErrs []error
		renews      []renewCall
		deletes     []int64

		staleBefore time.Time
		staleCount  int64
		staleErr    error
	}
)

func (f *fakeStore) ListDueCandidates(maxDueDate time.Time) ([]model.DueReminder, error) {
	f.listedMax = maxDueDate
	return f.candidates, f.listErr
}

func (f *fakeStore) AdvanceTier(id int64, from, to model.Tier) error {
	f.advances = append(f.advances, advanceCall{id: id, from: from, to: to})
	if len(f.advanceErrs) > 0 {
		err := f.advanceErrs[0]
		f.advanceErrs = f.advanceErrs[1:]
		return err
	}
	return nil
}

func (f *fakeStore) Renew(id int64, from model.Tier, nextDue time.Time) error {
	f.renews = append(f.renews, renewCall{id: id, from: from, nextDue: nextDue})
	return nil
}

func (f *fakeStore) DeleteByID(id int64) error {
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeStore) DeleteStale(before time.Time) (int64, error) {
	f.staleBefore = before
	return f.staleCount, f.staleErr
}

type sentMail struct {
	id   int64
	days int
}

type fakeNotifier struct {
	sent    []sentMail
	failIDs map[int64]error
}

func (f *fakeNotifier) SendDueReminder(_ context.Context, reminder model.DueReminder, daysUntilDue int) error {
	if err := f.failIDs[reminder.ID]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMail{id: reminder.ID, days: daysUntilDue})
	return nil
}

func candidate(id int64, dueIn int, tier model.Tier, permanent bool) model.DueReminder {
	return model.DueReminder{
		Reminder: model.Reminder{
			ID:        id,
			UserID:    1,
			Title:     "Dentist",
			DueDate:   testNow.AddDate(0, 0, dueIn).Truncate(24 * time.Hour),
			Permanent: permanent,
			Tier:      tier,
		},
		Email: "owner@example.com",
		Name:  "Owner",
	}
}

func newTestScheduler(store *fakeStore, notifier *fakeNotifier) *Scheduler {
	return New(store, notifier, WithClock(testClock))
}

func TestRunSweepAdvancesTier(t *testing.T) {
	store := &fakeStore{candidates: []model.DueReminder{candidate(7, 10, model.TierNone, false)}}
	notifier := &fakeNotifier{}

	newTestScheduler(store, notifier).RunSweep()

	if len(notifier.sent) != 1 || notifier.sent[0].days != 10 {
		t.Fatalf("sent = %+v, want one mail at 10 days", notifier.sent)
	}
	if len(store.advances) != 1 {
		t.Fatalf("advances = %+v, want exactly one", store.advances)
	}
	if got := store.advances[0]; got.from != model.TierNone || got.to != model.TierMonth {
		t.Errorf("advance = %+v, want none -> month", got)
	}
}

func TestRunSweepJumpsToWeekTier(t *testing.T) {
	store := &fakeStore{candidates: []model.DueReminder{candidate(3, 5, model.TierNone, false)}}
	notifier := &fakeNotifier{}

	newTestScheduler(store, notifier).RunSweep()

	if len(store.advances) != 1 || store.advances[0].to != model.TierWeek {
		t.Fatalf("advances = %+v, want single jump to week", store.advances)
	}
}

func TestRunSweepScansThirtyDayHorizon(t *testing.T) {
	store := &fakeStore{}
	newTestScheduler(store, &fakeNotifier{}).RunSweep()

	want := time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC)
	if !store.listedMax.Equal(want) {
		t.Errorf("ListDueCandidates(%v), want %v", store.listedMax, want)
	}
}

func TestRunSweepRenewsPermanentReminder(t *testing.T) {
	store := &fakeStore{candidates: []model.DueReminder{candidate(9, 0, model.TierOneDay, true)}}
	notifier := &fakeNotifier{}

	newTestScheduler(store, notifier).RunSweep()

	if len(notifier.sent) != 1 || notifier.sent[0].days != 0 {
		t.Fatalf("sent = %+v, want one final notice", notifier.sent)
	}
	if len(store.deletes) != 0 {
		t.Fatalf("permanent reminder was deleted: %v", store.deletes)
	}
	if len(store.renews) != 1 {
		t.Fatalf("renews = %+v, want exactly one", store.renews)
	}

	got := store.renews[0]
	wantDue := time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC)
	if got.from != model.TierOneDay || !got.nextDue.Equal(wantDue) {
		t.Errorf("renew = %+v, want from one_day due %v", got, wantDue)
	}
}

func TestRunSweepDeletesNonPermanentReminder(t *testing.T) {
	store := &fakeStore{candidates: []model.DueReminder{candidate(4, 0, model.TierOneDay, false)}}
	notifier := &fakeNotifier{}

	newTestScheduler(store, notifier).RunSweep()

	if len(notifier.sent) != 1 {
		t.Fatalf("sent = %+v, want final notice before deletion", notifier.sent)
	}
	if len(store.deletes) != 1 || store.deletes[0] != 4 {
		t.Fatalf("deletes = %v, want [4]", store.deletes)
	}
	if len(store.renews) != 0 {
		t.Fatalf("non-permanent reminder was renewed: %+v", store.renews)
	}
}

func TestRunSweepNotifierFailureLeavesStateUntouched(t *testing.T) {
	store := &fakeStore{candidates: []model.DueReminder{candidate(5, 10, model.TierNone, false)}}
	notifier := &fakeNotifier{failIDs: map[int64]error{5: errors.New("smtp unreachable")}}

	s := newTestScheduler(store, notifier)
	s.RunSweep()

	if len(store.advances)+len(store.renews)+len(store.deletes) != 0 {
		t.Fatalf("state changed despite send failure: %+v %+v %v", store.advances, store.renews, store.deletes)
	}

	// Next sweep retries the identical send.
	notifier.failIDs = nil
	s.RunSweep()

	if len(notifier.sent) != 1 || len(store.advances) != 1 {
		t.Fatalf("retry sweep did not deliver: sent=%+v advances=%+v", notifier.sent, store.advances)
	}
}

func TestRunSweepIsolatesFailures(t *testing.T) {
	store := &fakeStore{candidates: []model.DueReminder{
		candidate(1, 10, model.TierNone, false),
		candidate(2, 5, model.TierNone, false),
	}}
	notifier := &fakeNotifier{failIDs: map[int64]error{1: errors.New("mailbox full")}}

	newTestScheduler(store, notifier).RunSweep()

	if len(store.advances) != 1 || store.advances[0].id != 2 {
		t.Fatalf("advances = %+v, want only reminder 2", store.advances)
	}
}

func TestRunSweepRetriesFailedWrite(t *testing.T) {
	store := &fakeStore{
		candidates:  []model.DueReminder{candidate(6, 20, model.TierNone, false)},
		advanceErrs: []error{errors.New("deadlock"), errors.New("deadlock")},
	}
	notifier := &fakeNotifier{}

	newTestScheduler(store, notifier).RunSweep()

	if len(store.advances) != 3 {
		t.Fatalf("advance attempts = %d, want 3 (two failures, then success)", len(store.advances))
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("sent = %+v, send must happen once regardless of write retries", notifier.sent)
	}
}

func TestRunSweepStopsRetryingOnStaleTier(t *testing.T) {
	store := &fakeStore{
		candidates:  []model.DueReminder{candidate(8, 20, model.TierNone, false)},
		advanceErrs: []error{model.ErrStale},
	}

	newTestScheduler(store, &fakeNotifier{}).RunSweep()

	if len(store.advances) != 1 {
		t.Fatalf("advance attempts = %d, want 1; a lost CAS must not be retried", len(store.advances))
	}
}

func TestRunSweepListFailure(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection refused")}
	notifier := &fakeNotifier{}

	// Must log and return without panicking or sending anything.
	newTestScheduler(store, notifier).RunSweep()

	if len(notifier.sent) != 0 {
		t.Fatalf("sent = %+v, want none", notifier.sent)
	}
}

func TestRunReap(t *testing.T) {
	store := &fakeStore{staleCount: 3}

	newTestScheduler(store, &fakeNotifier{}).RunReap()

	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !store.staleBefore.Equal(want) {
		t.Errorf("DeleteStale(%v), want %v", store.staleBefore, want)
	}
}

func TestStartStop(t *testing.T) {
	s := New(&fakeStore{}, &fakeNotifier{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	s.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	s := New(&fakeStore{}, &fakeNotifier{})
	s.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(&fakeStore{}, &fakeNotifier{}, WithSweepSchedule("not a cron spec"))
	if err := s.Start(); err == nil {
		t.Fatal("Start() accepted an invalid schedule")
	}
}
