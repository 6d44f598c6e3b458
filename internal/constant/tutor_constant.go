package constant

const (
	TutorGreetingReply = "Hi! I focus on Python programming. Ask me about variables, loops, functions, lists, errors, etc."
	TutorOffTopicReply = "I'm focused on Python programming. Ask me about Python concepts, debugging errors, or improving your code."
	TutorFailureReply  = "AI couldn't respond"
	QuizFailureMessage = "Failed to generate quiz. Please try again later."

	RunnerInvalidCodeMessage = "Invalid code: Must be <10KB"
	RunnerBlockedCodeMessage = "Unsafe operations not allowed"
	RunnerTimeoutMessage     = "Execution timed out or crashed"
	RunnerRateLimitedMessage = "Too many requests, please try again later"

	TranscriptRequiredMessage   = "Session data required"
	TranscriptNotFoundMessage   = "Session not found"
	TranscriptSaveFailedMessage = "Failed to save session"
	TranscriptUpdateFailMessage = "Failed to update session"
	ContactFailureMessage       = "Failed to send email"

	UploadMissingFileMessage   = "No file uploaded"
	UploadUnsupportedMessage   = "Unsupported file type"
	UploadUnextractableMessage = "File has no extractable text"
	UploadFailedMessage        = "Failed to process file"
	MaterialNotFoundMessage    = "Not found"
)

// Watermill topics.
const (
	TopicTutorTurns = "tutor.turns"
)
