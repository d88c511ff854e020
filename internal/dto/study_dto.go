package dto

// --- Session DTOs ---

type StartSessionRequest struct {
	Subject    string `json:"subject" validate:"required,min=2"`
	ClassLevel string `json:"class_level" validate:"omitempty,max=32"`
	Intent     string `json:"intent" validate:"omitempty,oneof=quiz solve explain search"`
	Content    string `json:"content" validate:"omitempty"`
	SourceURL  string `json:"source_url" validate:"omitempty,url"`
}

type SessionStateResponse struct {
	SessionId  string `json:"session_id,omitempty"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Subject    string `json:"subject,omitempty"`
	ClassLevel string `json:"class_level,omitempty"`
	Intent     string `json:"intent,omitempty"`
	Started    bool   `json:"started"`
	HasContent bool   `json:"has_content"`
}

type SetSelectionRequest struct {
	Subject    string `json:"subject" validate:"required,min=2"`
	ClassLevel string `json:"class_level" validate:"omitempty,max=32"`
	Intent     string `json:"intent" validate:"omitempty,oneof=quiz solve explain search"`
}

type SetPostSearchActionRequest struct {
	Tool string `json:"tool" validate:"required,oneof=quiz solve explain"`
}

// --- Tool DTOs ---

type GenerateQuizRequest struct {
	QuestionCount int `json:"question_count" validate:"omitempty,min=1,max=20"`
}

type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation"`
}

type QuizResponse struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
	Charged   bool           `json:"charged"`
}

type SolveRequest struct {
	Problem string `json:"problem" validate:"required,min=3"`
}

type SolveStep struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type SolveResponse struct {
	Steps       []SolveStep `json:"steps"`
	FinalAnswer string      `json:"final_answer"`
	Charged     bool        `json:"charged"`
}

type ExplainRequest struct {
	Topic string `json:"topic" validate:"required,min=2"`
}

type ExplainResponse struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Example   string   `json:"example"`
	Charged   bool     `json:"charged"`
}

type RelatedSessionResponse struct {
	SessionId string `json:"session_id"`
	Subject   string `json:"subject"`
	Snippet   string `json:"snippet"`
}
