package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs a code with a user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a persistence error into a code and a message safe to
// show users. context names the operation, e.g. "delete category".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Translated errors lose the constraint name; fall back to context.
		return parseDuplicateKeyError(strings.ToLower(err.Error() + " " + context))
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return parseForeignKeyError(context)
	}

	// Drivers that do not translate errors
	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "duplicate key"), strings.Contains(errLower, "unique constraint"):
		return parseDuplicateKeyError(errLower)
	case strings.Contains(errLower, "foreign key constraint"):
		return parseForeignKeyError(context)
	case strings.Contains(errLower, "not null constraint"), strings.Contains(errLower, "violates not-null"):
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	return ErrorInfo{Code: InternalDatabaseError, Message: defaultMessage(context)}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "consultant"):
		return ErrorInfo{Code: ConsultantEmailExists, Message: "An application with this email already exists"}
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
	case strings.Contains(errLower, "categor"):
		return ErrorInfo{Code: CategoryNameExists, Message: "A category with this name already exists"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
}

func parseForeignKeyError(context string) ErrorInfo {
	if strings.Contains(strings.ToLower(context), "delete") {
		return ErrorInfo{Code: ResourceConflict, Message: "This record is still in use and cannot be deleted"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "subcategor"):
		return "Subcategory not found"
	case strings.Contains(contextLower, "categor"):
		return "Category not found"
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "consultant"):
		return "Consultant not found"
	case strings.Contains(contextLower, "message"):
		return "Message not found"
	case strings.Contains(contextLower, "thread"):
		return "Thread not found"
	case strings.Contains(contextLower, "comment"):
		return "Comment not found"
	case strings.Contains(contextLower, "post"):
		return "Post not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "The requested record was not found"
}

func defaultMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Could not save. Please try again later"
	case strings.Contains(contextLower, "update"):
		return "Could not update. Please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Could not delete. Please try again later"
	}
	return "Something went wrong. Please try again later"
}
