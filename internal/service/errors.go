package service

type ErrorCode string

const (
	ErrorCodeUsernameExists      ErrorCode = "USERNAME_EXISTS"
	ErrorCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrorCodeAlreadyMember       ErrorCode = "ALREADY_MEMBER"
	ErrorCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrorCodeShareNotFoundOrPaid ErrorCode = "SHARE_NOT_FOUND_OR_PAID"
	ErrorCodeEmptyTeam           ErrorCode = "EMPTY_TEAM"
	ErrorCodeInvalidBody         ErrorCode = "INVALID_BODY"
	ErrorCodeUnspecified         ErrorCode = "UNSPECIFIED"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func NewServiceError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	return e.Message
}
