package schedule_test

import (
	"context"
	"testing"
	"time"

	"chatkeeper/internal/schedule"
)

func TestNewTrigger(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "standard five-field expression", expr: "0 1 * * 1"},
		{name: "six-field expression with seconds", expr: "0 56 22 * * *"},
		{name: "descriptor", expr: "@daily"},
		{name: "malformed expression", expr: "not a cron", wantErr: true},
		{name: "empty expression", expr: "", wantErr: true},
		{name: "out-of-range field", expr: "0 25 * * *", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := schedule.NewTrigger(tc.expr, time.UTC)
			if (err != nil) != tc.wantErr {
				t.Errorf("NewTrigger(%q) error = %v, wantErr %v", tc.expr, err, tc.wantErr)
			}
		})
	}
}

func TestTriggerNext(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		expr string
		now  time.Time
		want time.Time
	}{
		{
			name: "weekly monday fire computed from a tuesday",
			expr: "0 1 * * 1",
			now:  time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 8, 1, 0, 0, 0, time.UTC),
		},
		{
			name: "exact fire instant yields the following occurrence",
			expr: "0 1 * * 1",
			now:  time.Date(2024, 1, 8, 1, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC),
		},
		{
			name: "daily fire with seconds field",
			expr: "0 56 22 * * *",
			now:  time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 3, 22, 56, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			trigger, err := schedule.NewTrigger(tc.expr, time.UTC)
			if err != nil {
				t.Fatalf("NewTrigger(%q) error = %v", tc.expr, err)
			}

			got := trigger.Next(tc.now)
			if !got.Equal(tc.want) {
				t.Errorf("Next(%s) = %s, want %s", tc.now, got, tc.want)
			}
		})
	}
}

func TestTriggerNextHonorsReferenceTimeZone(t *testing.T) {
	t.Parallel()

	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	trigger, err := schedule.NewTrigger("0 1 * * *", seoul)
	if err != nil {
		t.Fatalf("NewTrigger: %v", err)
	}

	// 17:00 UTC on Jan 2 is already 02:00 on Jan 3 in Seoul, so the next
	// 01:00 fire is on Jan 4 Seoul time.
	now := time.Date(2024, 1, 2, 17, 0, 0, 0, time.UTC)
	want := time.Date(2024, 1, 4, 1, 0, 0, 0, seoul)

	got := trigger.Next(now)
	if !got.Equal(want) {
		t.Errorf("Next(%s) = %s, want %s", now, got, want)
	}
}

func TestSleepUntil(t *testing.T) {
	t.Parallel()

	t.Run("past instant returns immediately", func(t *testing.T) {
		t.Parallel()

		if err := schedule.SleepUntil(context.Background(), time.Now().Add(-time.Hour)); err != nil {
			t.Errorf("SleepUntil() error = %v, want nil", err)
		}
	})

	t.Run("cancellation interrupts the sleep", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := schedule.SleepUntil(ctx, time.Now().Add(time.Hour))
		if err != context.DeadlineExceeded {
			t.Errorf("SleepUntil() error = %v, want %v", err, context.DeadlineExceeded)
		}
	})
}
