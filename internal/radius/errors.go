package radius

import "errors"

var (
	// ErrUserExists is returned when creating a username that already has a credential row.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when the username has no credential row.
	ErrUserNotFound = errors.New("user not found")
	// ErrGroupExists is returned when creating a group that is already known.
	ErrGroupExists = errors.New("group already exists")
	// ErrGroupNotFound is returned when the group has neither a radgroups row nor members.
	ErrGroupNotFound = errors.New("group not found")
	// ErrSystemGroup is returned when deleting a protected group.
	ErrSystemGroup = errors.New("cannot delete system group")
	// ErrAttributeExists is returned when the exact attribute row is already present.
	ErrAttributeExists = errors.New("attribute already exists")
	// ErrAttributeNotFound is returned when no row matched (owner, name, op, value).
	ErrAttributeNotFound = errors.New("attribute not found")
	// ErrCredentialAttribute is returned when the password row is edited as a plain attribute.
	ErrCredentialAttribute = errors.New("password attribute is managed by set password")
	// ErrInvalidKind is returned for an attribute kind other than check or reply.
	ErrInvalidKind = errors.New("attribute kind must be check or reply")
	// ErrEmptyPassword is returned when setting an empty password.
	ErrEmptyPassword = errors.New("password must not be empty")
)

var domainErrors = []error{
	ErrUserExists,
	ErrUserNotFound,
	ErrGroupExists,
	ErrGroupNotFound,
	ErrSystemGroup,
	ErrAttributeExists,
	ErrAttributeNotFound,
	ErrCredentialAttribute,
	ErrInvalidKind,
	ErrEmptyPassword,
}

// IsDomainError reports whether err is a validation or sentinel error of this
// package, as opposed to a database failure.
func IsDomainError(err error) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return true
	}

	for _, e := range domainErrors {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
