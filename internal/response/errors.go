package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "LOGIN_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "LOGIN_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Test sessions ─────────────────────────────────────────────────
	ErrInsufficientQuestions ErrCode = "INSUFFICIENT_QUESTIONS"
	ErrSessionNotActive      ErrCode = "SESSION_NOT_ACTIVE"
	ErrSessionExpired        ErrCode = "SESSION_EXPIRED"
	ErrCandidateNotApproved  ErrCode = "CANDIDATE_NOT_APPROVED"
	ErrTestAccessDenied      ErrCode = "TEST_ACCESS_DENIED"
	ErrConfigNotFound        ErrCode = "CONFIG_NOT_FOUND"

	// ─── Multi-stage ───────────────────────────────────────────────────
	ErrStageMismatch       ErrCode = "STAGE_MISMATCH"
	ErrInvalidStage        ErrCode = "INVALID_STAGE"
	ErrOfficerNotAssigned  ErrCode = "OFFICER_NOT_ASSIGNED"
	ErrWrittenStagePending ErrCode = "WRITTEN_STAGE_PENDING"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "You are already logged in on another device."
	case ErrSessionInvalidated:
		return "Your login has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."
	case ErrPermissionDenied:
		return "Permission denied."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Test sessions ─────────────────────────────────────────────────
	case ErrInsufficientQuestions:
		return "Not enough approved questions are available for this test."
	case ErrSessionNotActive:
		return "The test session is not active."
	case ErrSessionExpired:
		return "The test session has expired."
	case ErrCandidateNotApproved:
		return "Only approved candidates can start tests."
	case ErrTestAccessDenied:
		return "No verified appointment found for this test today."
	case ErrConfigNotFound:
		return "Test configuration not found or inactive."

	// ─── Multi-stage ───────────────────────────────────────────────────
	case ErrStageMismatch:
		return "The session is not at the requested stage."
	case ErrInvalidStage:
		return "The written stage cannot be evaluated through this endpoint."
	case ErrOfficerNotAssigned:
		return "You are not the officer assigned to this stage."
	case ErrWrittenStagePending:
		return "The written stage has not been completed yet."

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
