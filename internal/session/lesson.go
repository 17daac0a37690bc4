package session

// LessonType selects the kind of exercise generated for a lesson.
type LessonType string

// Lesson types
const (
	LessonVocabulary   LessonType = "vocabulary"
	LessonGrammar      LessonType = "grammar"
	LessonConversation LessonType = "conversation"
	LessonCulture      LessonType = "culture"
)

// Lesson is an entry of the fixed lesson catalog.
type Lesson struct {
	ID      string     `json:"id"`
	Type    LessonType `json:"type"`
	Title   string     `json:"title"`
	Content string     `json:"content"`
}

// LessonStatus is a catalog entry with one learner's progress.
type LessonStatus struct {
	Lesson
	Completed bool `json:"completed"`
	Locked    bool `json:"locked"`
}

// catalog is ordered; lesson i unlocks when lesson i-1 is completed.
var catalog = []Lesson{
	{ID: "1", Type: LessonVocabulary, Title: "Basic Greetings", Content: "Learn essential greetings and introductions"},
	{ID: "2", Type: LessonGrammar, Title: "Present Tense", Content: "Master the present tense conjugations"},
	{ID: "3", Type: LessonConversation, Title: "At the Restaurant", Content: "Practice ordering food and drinks"},
	{ID: "4", Type: LessonCulture, Title: "Festivals & Celebrations", Content: "Explore cultural celebrations and traditions"},
}

// Catalog returns a copy of the lesson catalog in unlock order.
func Catalog() []Lesson {
	return append([]Lesson(nil), catalog...)
}

// LessonByID looks up a catalog entry and its position.
func LessonByID(id string) (Lesson, int, error) {
	for i, l := range catalog {
		if l.ID == id {
			return l, i, nil
		}
	}
	return Lesson{}, -1, ErrLessonNotFound
}
