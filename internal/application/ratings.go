package application

// DeletedClassLabel replaces the class name of ratings whose class no longer exists.
const DeletedClassLabel = "Lớp đã bị xóa"

// RatingEntry pairs a rating with the name of the class it refers to.
type RatingEntry struct {
	Rating
	ClassName    string `json:"className"`
	ClassDeleted bool   `json:"classDeleted"`
}

// RatingFeed resolves the class of every rating, newest first as stored. Dangling
// class references render with DeletedClassLabel.
func RatingFeed(schedule []ClassSession, ratings []Rating) []RatingEntry {
	names := make(map[string]string, len(schedule))
	for _, class := range schedule {
		names[class.ID] = class.ClassName
	}

	feed := make([]RatingEntry, 0, len(ratings))
	for _, r := range ratings {
		entry := RatingEntry{Rating: r}
		if name, ok := names[r.ClassID]; ok {
			entry.ClassName = name
		} else {
			entry.ClassName = DeletedClassLabel
			entry.ClassDeleted = true
		}
		feed = append(feed, entry)
	}
	return feed
}
