package application

import "testing"

func TestStartMinutes(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"08:00 - 09:00": 480,
		"17:30-18:30":   1050,
		" 6:05 - 7:00":  365,
		"morning":       0,
		"":              0,
		"ab:cd - 10:00": 0,
	}
	for in, want := range cases {
		if got := StartMinutes(in); got != want {
			t.Fatalf("StartMinutes(%q): expected %d, got %d", in, want, got)
		}
	}
}

func TestDaySchedule(t *testing.T) {
	t.Parallel()

	schedule := []ClassSession{
		{ID: "late", DayIndex: 1, Time: "18:00 - 19:00", ClassName: "ZUMBA"},
		{ID: "early", DayIndex: 1, Time: "06:00 - 07:00", ClassName: "YOGA"},
		{ID: "other-day", DayIndex: 2, Time: "05:00 - 06:00", ClassName: "TAICHI"},
		{ID: "unknown", DayIndex: 1, Time: "TBD", ClassName: "DANCE"},
	}
	ratings := []Rating{
		{ClassID: "early", Stars: 5},
		{ClassID: "early", Stars: 4},
		{ClassID: "early", Stars: 4},
	}

	views := DaySchedule(schedule, ratings, 1)
	if len(views) != 3 {
		t.Fatalf("expected three classes on day 1, got %d", len(views))
	}
	if views[0].ID != "unknown" || views[1].ID != "early" || views[2].ID != "late" {
		t.Fatalf("unexpected order %s, %s, %s", views[0].ID, views[1].ID, views[2].ID)
	}
	if views[1].Rating == nil || views[1].Rating.Average != 4.3 || views[1].Rating.Count != 3 {
		t.Fatalf("expected 4.3 over 3 ratings, got %+v", views[1].Rating)
	}
	if views[2].Rating != nil {
		t.Fatalf("expected unrated class to have no summary")
	}

	if empty := DaySchedule(schedule, nil, 6); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice for a day without classes")
	}
}

func TestChangeNotice(t *testing.T) {
	t.Parallel()

	base := ClassSession{ClassName: "YOGA", Time: "08:00 - 09:00"}

	cases := []struct {
		status ClassStatus
		text   string
		kind   NotificationType
	}{
		{StatusCancelled, "Thông báo: Lớp YOGA lúc 08:00 - 09:00 đã bị HỦY. Quý hội viên lưu ý!", NotificationAlert},
		{StatusSubstitute, "Thông báo: Lớp YOGA lúc 08:00 - 09:00 có thay đổi giáo viên. Quý hội viên lưu ý!", NotificationInfo},
		{StatusNormal, "Thông báo: Lớp YOGA lúc 08:00 - 09:00 đã được cập nhật. Quý hội viên lưu ý!", NotificationInfo},
	}
	for _, tc := range cases {
		class := base
		class.Status = tc.status
		msg, kind := ChangeNotice(class)
		if msg != tc.text || kind != tc.kind {
			t.Fatalf("status %s: got (%q, %s)", tc.status, msg, kind)
		}
	}
}

func TestRatingFeed_DanglingClass(t *testing.T) {
	t.Parallel()

	schedule := []ClassSession{{ID: "c2", ClassName: "ZUMBA"}}
	ratings := []Rating{
		{ID: "r1", ClassID: "c1", Stars: 4, Comment: "Great"},
		{ID: "r2", ClassID: "c2", Stars: 5, Comment: "Fun"},
	}

	feed := RatingFeed(schedule, ratings)
	if len(feed) != 2 {
		t.Fatalf("expected two entries, got %d", len(feed))
	}
	if feed[0].ClassName != DeletedClassLabel || !feed[0].ClassDeleted {
		t.Fatalf("expected placeholder for dangling class, got %+v", feed[0])
	}
	if feed[1].ClassName != "ZUMBA" || feed[1].ClassDeleted {
		t.Fatalf("expected resolved class name, got %+v", feed[1])
	}
}
