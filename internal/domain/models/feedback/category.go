package feedback

// Category classifies a report and selects the prompt template and tracker label.
type Category string

const (
	CategoryBug      Category = "bug"
	CategoryFeature  Category = "feature"
	CategoryFeedback Category = "feedback"
)

// Categories lists every accepted category, in widget order.
var Categories = []Category{CategoryBug, CategoryFeature, CategoryFeedback}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryBug, CategoryFeature, CategoryFeedback:
		return true
	}
	return false
}

// TitleTag is the prefix the assistant puts in front of issue titles.
func (c Category) TitleTag() string {
	switch c {
	case CategoryBug:
		return "[Bug]"
	case CategoryFeedback:
		return "[Feedback]"
	default:
		return "[Feature]"
	}
}

// TrackerLabel maps the category onto the issue-tracker label vocabulary.
func (c Category) TrackerLabel() string {
	switch c {
	case CategoryBug:
		return "bug"
	case CategoryFeature:
		return "enhancement"
	default:
		return "feedback"
	}
}
