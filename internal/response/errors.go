package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation          ErrCode = "VALIDATION_ERROR"
	ErrInvalidID           ErrCode = "INVALID_ID"
	ErrInvalidPayload      ErrCode = "INVALID_PAYLOAD"
	ErrMissingField        ErrCode = "MISSING_FIELD"
	ErrInvalidAnswerFormat ErrCode = "INVALID_ANSWER_FORMAT"
	ErrMissingCode         ErrCode = "MISSING_CODE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrExamNotFound ErrCode = "EXAM_NOT_FOUND"
	ErrExamLocked   ErrCode = "EXAM_LOCKED"

	// ─── Execution gateway ─────────────────────────────────────────────
	ErrGatewayUnavailable ErrCode = "EXECUTION_GATEWAY_UNAVAILABLE"
	ErrUnsupportedLang    ErrCode = "UNSUPPORTED_LANGUAGE"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

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
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrSessionInvalidated:
		return "Your session is no longer active. Please log in again."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrMissingField:
		return "examId, studentId and answers are required."
	case ErrInvalidAnswerFormat:
		return "Invalid answers format."
	case ErrMissingCode:
		return "Please write your solution before submitting."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrExamNotFound:
		return "Exam not found."
	case ErrExamLocked:
		return "Cannot edit: exam already started."

	// ─── Execution gateway ─────────────────────────────────────────────
	case ErrGatewayUnavailable:
		return "The code execution service is currently unavailable."
	case ErrUnsupportedLang:
		return "The requested language is not supported."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File size exceeds the limit."

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
