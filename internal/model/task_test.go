package model

import (
	"testing"
	"time"
)

func TestNextDueDate(t *testing.T) {
	from := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		repeat RepeatType
		want   time.Time
	}{
		{RepeatDaily, from.AddDate(0, 0, 1)},
		{RepeatWeekly, from.AddDate(0, 0, 7)},
		{RepeatMonthly, from.AddDate(0, 0, 30)},
		{RepeatNone, from},
	}

	for _, tc := range cases {
		if got := tc.repeat.NextDueDate(from); !got.Equal(tc.want) {
			t.Errorf("%s: next due = %v, want %v", tc.repeat, got, tc.want)
		}
	}
}

func TestRepeatTypeValid(t *testing.T) {
	for _, repeat := range []RepeatType{RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly} {
		if !repeat.Valid() {
			t.Errorf("%s should be valid", repeat)
		}
	}
	if RepeatType("yearly").Valid() {
		t.Error("yearly should not be valid")
	}
}

func TestTaskPlanStatusValid(t *testing.T) {
	for _, status := range []TaskPlanStatus{PlanActive, PlanPaused, PlanCompleted} {
		if !status.Valid() {
			t.Errorf("%s should be valid", status)
		}
	}
	if TaskPlanStatus("archived").Valid() {
		t.Error("archived should not be valid")
	}
}
