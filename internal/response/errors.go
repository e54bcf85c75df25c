package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"
	ErrForbidden     ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Session gating ────────────────────────────────────────────────
	ErrTestNotOpen         ErrCode = "TEST_NOT_OPEN"
	ErrTestClosed          ErrCode = "TEST_CLOSED"
	ErrAttemptLimitReached ErrCode = "ATTEMPT_LIMIT_REACHED"
	ErrNoSession           ErrCode = "NO_ACTIVE_SESSION"

	// ─── Live session ──────────────────────────────────────────────────
	ErrSessionNotLive    ErrCode = "SESSION_NOT_LIVE"
	ErrResumePending     ErrCode = "RESUME_DECISION_PENDING"
	ErrResumeMandatory   ErrCode = "RESUME_MANDATORY"
	ErrNotAwaitingResume ErrCode = "NO_RESUME_PENDING"
	ErrUnknownQuestion   ErrCode = "UNKNOWN_QUESTION"
	ErrAnswerShape       ErrCode = "ANSWER_SHAPE_MISMATCH"
	ErrIndexOutOfRange   ErrCode = "INDEX_OUT_OF_RANGE"
	ErrAlreadySubmitted  ErrCode = "ALREADY_SUBMITTED"
	ErrSubmitInFlight    ErrCode = "SUBMISSION_IN_PROGRESS"
	ErrSubmissionFailed  ErrCode = "SUBMISSION_FAILED"

	// ─── Results ───────────────────────────────────────────────────────
	ErrResultsHidden ErrCode = "RESULTS_HIDDEN"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is not valid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The id format is not valid."
	case ErrInvalidPayload:
		return "The request payload is not valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The resource was not found."

	// ─── Session gating ────────────────────────────────────────────────
	case ErrTestNotOpen:
		return "This test has not opened yet."
	case ErrTestClosed:
		return "This test's window has closed."
	case ErrAttemptLimitReached:
		return "You have used all permitted attempts for this test."
	case ErrNoSession:
		return "There is no live session for this test."

	// ─── Live session ──────────────────────────────────────────────────
	case ErrSessionNotLive:
		return "This session is no longer accepting changes."
	case ErrResumePending:
		return "Answer the resume prompt before continuing."
	case ErrResumeMandatory:
		return "An interrupted session is still live and must be continued."
	case ErrNotAwaitingResume:
		return "There is no resume decision pending."
	case ErrUnknownQuestion:
		return "That question does not belong to this test."
	case ErrAnswerShape:
		return "The answer does not match the question type."
	case ErrIndexOutOfRange:
		return "The question index is out of range."
	case ErrAlreadySubmitted:
		return "This session has already been submitted."
	case ErrSubmitInFlight:
		return "A submission is already in progress."
	case ErrSubmissionFailed:
		return "Submission failed. Your answers are preserved; please retry."

	// ─── Results ───────────────────────────────────────────────────────
	case ErrResultsHidden:
		return "Results are not visible for this test."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
