package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/foodmap/internal/models"
	"github.com/foodmap/internal/repositories"
)

type fakeNotifier struct {
	configured bool
	err        error

	mu   sync.Mutex
	sent []models.Submission
}

func (f *fakeNotifier) IsConfigured() bool { return f.configured }

func (f *fakeNotifier) SendSubmissionNotification(ctx context.Context, s models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, s)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func validSubmission(name string) SubmissionInput {
	return SubmissionInput{
		Name: name, Type: "community fridge", Address: "2922 Swiss Ave, Dallas, TX 75204",
		Latitude: "32.7905", Longitude: "-96.7850",
	}
}

func TestSubmitPersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryResourceStore()
	notifier := &fakeNotifier{configured: true}
	svc := NewSubmissionService(store, notifier).(*submissionService)
	now := fixedNow
	svc.now = func() time.Time { return now }

	first, err := svc.Submit(ctx, validSubmission("Swiss Ave Fridge"))
	if err != nil {
		t.Fatal(err)
	}
	if first.Type != models.CategoryCommunityFridge || !first.SubmittedAt.Equal(fixedNow) {
		t.Errorf("unexpected submission: %+v", first)
	}
	now = now.Add(time.Minute)
	if _, err := svc.Submit(ctx, validSubmission("Second Fridge")); err != nil {
		t.Fatal(err)
	}
	WaitForNotifications(svc)

	if notifier.count() != 2 {
		t.Errorf("notifications = %d, want 2", notifier.count())
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "Second Fridge" {
		t.Errorf("submissions should be newest first: %+v", list)
	}
}

func TestSubmitSucceedsWhenNotificationFails(t *testing.T) {
	store := repositories.NewMemoryResourceStore()
	notifier := &fakeNotifier{configured: true, err: errors.New("smtp: connection refused")}
	svc := NewSubmissionService(store, notifier)

	if _, err := svc.Submit(context.Background(), validSubmission("Pantry")); err != nil {
		t.Fatalf("submit should not fail on notification error: %v", err)
	}
	WaitForNotifications(svc)
	if list, _ := svc.List(context.Background()); len(list) != 1 {
		t.Errorf("submission should be stored, got %d", len(list))
	}
}

func TestSubmitSkipsUnconfiguredNotifier(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewSubmissionService(repositories.NewMemoryResourceStore(), notifier)
	if _, err := svc.Submit(context.Background(), validSubmission("Pantry")); err != nil {
		t.Fatal(err)
	}
	WaitForNotifications(svc)
	if notifier.count() != 0 {
		t.Error("unconfigured notifier should not be called")
	}

	svc = NewSubmissionService(repositories.NewMemoryResourceStore(), nil)
	if _, err := svc.Submit(context.Background(), validSubmission("Pantry")); err != nil {
		t.Fatal(err)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := NewSubmissionService(repositories.NewMemoryResourceStore(), nil)
	in := validSubmission("")
	in.Address = " "
	_, err := svc.Submit(context.Background(), in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if _, ok := verr.Fields["name"]; !ok {
		t.Errorf("fields = %v", verr.Fields)
	}
	if _, ok := verr.Fields["address"]; !ok {
		t.Errorf("fields = %v", verr.Fields)
	}
}
