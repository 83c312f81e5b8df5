package domain

import "errors"

var (
	// ErrEmailRequired indicates a signup with an empty email after trimming.
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordTooShort indicates a plaintext password under 8 characters.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	// ErrEmailTaken is returned when signing up with an existing email.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers access tokens with a bad signature or past expiry.
	ErrInvalidToken = errors.New("invalid or expired access token")
	// ErrSessionInvalid covers refresh sessions that are absent or expired.
	ErrSessionInvalid = errors.New("refresh token has expired or the session is invalid")

	// ErrNameRequired covers student and classroom names empty after trimming.
	ErrNameRequired = errors.New("name is required")
	// ErrNoteInvalid, ErrActivityInvalid and ErrGroupInvalid flag child
	// records missing their required fields.
	ErrNoteInvalid     = errors.New("note title and content are required")
	ErrActivityInvalid = errors.New("activity preparation and introduction are required")
	ErrGroupInvalid    = errors.New("group name and color are required")

	ErrUserNotFound      = errors.New("user not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrClassroomNotFound = errors.New("classroom not found")
	ErrItemNotFound      = errors.New("item not found")
)
