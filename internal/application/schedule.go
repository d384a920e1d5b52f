package application

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DayNames lists the Vietnamese day labels, indexed by ClassSession.DayIndex.
var DayNames = [7]string{"Thứ 2", "Thứ 3", "Thứ 4", "Thứ 5", "Thứ 6", "Thứ 7", "Chủ Nhật"}

// RatingSummary aggregates the ratings of a single class.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ClassView is a class as displayed on the board, with its rating summary.
type ClassView struct {
	ClassSession
	Rating *RatingSummary `json:"rating,omitempty"`
}

// StartMinutes returns the minutes after midnight at which a class starts, parsed from
// a "HH:MM - HH:MM" range. Unparsable values count as zero.
func StartMinutes(timeRange string) int {
	start := strings.TrimSpace(strings.SplitN(timeRange, "-", 2)[0])
	parts := strings.SplitN(start, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	return hours*60 + minutes
}

// DaySchedule returns the classes held on day, ordered by start time, with their
// rating summaries.
func DaySchedule(schedule []ClassSession, ratings []Rating, day int) []ClassView {
	summaries := SummarizeRatings(ratings)

	views := make([]ClassView, 0)
	for _, class := range schedule {
		if class.DayIndex != day {
			continue
		}
		view := ClassView{ClassSession: class}
		if summary, ok := summaries[class.ID]; ok {
			s := summary
			view.Rating = &s
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return StartMinutes(views[i].Time) < StartMinutes(views[j].Time)
	})
	return views
}

// SummarizeRatings groups ratings by class and averages them to one decimal.
func SummarizeRatings(ratings []Rating) map[string]RatingSummary {
	totals := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range ratings {
		totals[r.ClassID] += r.Stars
		counts[r.ClassID]++
	}

	out := make(map[string]RatingSummary, len(counts))
	for classID, count := range counts {
		avg := float64(totals[classID]) / float64(count)
		out[classID] = RatingSummary{Average: math.Round(avg*10) / 10, Count: count}
	}
	return out
}

// ChangeNotice builds the broadcast message announcing a change to class, together
// with the notification type matching its status.
func ChangeNotice(class ClassSession) (string, NotificationType) {
	statusText := "đã được cập nhật"
	kind := NotificationInfo
	switch class.Status {
	case StatusCancelled:
		statusText = "đã bị HỦY"
		kind = NotificationAlert
	case StatusSubstitute:
		statusText = "có thay đổi giáo viên"
	}
	return fmt.Sprintf("Thông báo: Lớp %s lúc %s %s. Quý hội viên lưu ý!", class.ClassName, class.Time, statusText), kind
}

func findClass(schedule []ClassSession, id string) (ClassSession, bool) {
	for _, class := range schedule {
		if class.ID == id {
			return class, true
		}
	}
	return ClassSession{}, false
}
