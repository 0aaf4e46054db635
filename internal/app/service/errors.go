package service

import (
	"errors"
	"fmt"
)

// Root error kinds. Callers classify with errors.Is against these.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrProductUnavailable = errors.New("product is not available")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrConflict           = errors.New("conflict")
	ErrUploadFailed       = errors.New("upload failed")
)

// Specific errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrUserNotFound          = fmt.Errorf("%w: user", ErrNotFound)
	ErrProductNotFound       = fmt.Errorf("%w: product", ErrNotFound)
	ErrCategoryNotFound      = fmt.Errorf("%w: category", ErrNotFound)
	ErrSubCategoryNotFound   = fmt.Errorf("%w: subcategory", ErrNotFound)
	ErrCartItemNotFound      = fmt.Errorf("%w: cart item", ErrNotFound)
	ErrConsultantNotFound    = fmt.Errorf("%w: consultant", ErrNotFound)
	ErrMessageNotFound       = fmt.Errorf("%w: message", ErrNotFound)
	ErrForumCategoryNotFound = fmt.Errorf("%w: forum category", ErrNotFound)
	ErrThreadNotFound        = fmt.Errorf("%w: thread", ErrNotFound)
	ErrReplyNotFound         = fmt.Errorf("%w: reply", ErrNotFound)
	ErrBlogCategoryNotFound  = fmt.Errorf("%w: blog category", ErrNotFound)
	ErrPostNotFound          = fmt.Errorf("%w: post", ErrNotFound)
	ErrCommentNotFound       = fmt.Errorf("%w: comment", ErrNotFound)

	ErrInvalidQuantity      = fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	ErrInvalidAction        = fmt.Errorf("%w: action must be approve or reject", ErrValidation)
	ErrInvalidTransition    = fmt.Errorf("%w: consultant has already been reviewed", ErrValidation)
	ErrInvalidPurgeAge      = fmt.Errorf("%w: days must be at least 1", ErrValidation)
	ErrInvalidRole          = fmt.Errorf("%w: unknown role", ErrValidation)
	ErrUnsupportedImage     = fmt.Errorf("%w: unsupported image", ErrValidation)
	ErrUnsupportedMedia     = fmt.Errorf("%w: unsupported media file", ErrValidation)
	ErrCategoryNameTaken    = fmt.Errorf("%w: category name already exists", ErrValidation)
	ErrSubCategoryNameTaken = fmt.Errorf("%w: subcategory name already exists in this category", ErrValidation)
	ErrEmptyReply           = fmt.Errorf("%w: reply cannot be empty", ErrValidation)
	ErrEmptyComment         = fmt.Errorf("%w: comment cannot be empty", ErrValidation)

	ErrCategoryInUse       = fmt.Errorf("%w: category is still used by consultants", ErrConflict)
	ErrCategoryHasChildren = fmt.Errorf("%w: forum category still has subcategories", ErrConflict)
)

// validationError wraps a message as an ErrValidation.
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
