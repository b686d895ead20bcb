package domain

// QuizQuestion is one multiple-choice question. Answer repeats one of
// the options verbatim.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Quiz is a generated practice quiz. Quizzes are returned to the client
// directly and never persisted.
type Quiz struct {
	Topic     string         `json:"topic"`
	Questions []QuizQuestion `json:"questions"`
}
