package controller

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	apperrors "github.com/agrifarma/agrifarma-backend/internal/errors"
	"github.com/agrifarma/agrifarma-backend/internal/flash"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

// errorSpec is how a domain error surfaces to clients.
type errorSpec struct {
	status   int
	code     string
	message  string
	category string
}

// specific sentinels first, roots last
var errorTable = []struct {
	err  error
	spec errorSpec
}{
	{service.ErrInvalidCredentials, errorSpec{http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password.", flash.Danger}},
	{service.ErrInvalidQuantity, errorSpec{http.StatusBadRequest, apperrors.CartInvalidQuantity, "", flash.Warning}},
	{service.ErrInvalidAction, errorSpec{http.StatusBadRequest, apperrors.ConsultantInvalidAction, "", flash.Warning}},
	{service.ErrInvalidTransition, errorSpec{http.StatusBadRequest, apperrors.ConsultantInvalidTransition, "", flash.Warning}},
	{service.ErrCategoryNameTaken, errorSpec{http.StatusBadRequest, apperrors.CategoryNameExists, "", flash.Warning}},
	{service.ErrSubCategoryNameTaken, errorSpec{http.StatusBadRequest, apperrors.CategoryNameExists, "", flash.Warning}},
	{service.ErrUnsupportedImage, errorSpec{http.StatusBadRequest, apperrors.UploadInvalidFileType, "", flash.Warning}},
	{service.ErrUnsupportedMedia, errorSpec{http.StatusBadRequest, apperrors.UploadInvalidFileType, "", flash.Warning}},
	{service.ErrEmptyReply, errorSpec{http.StatusBadRequest, apperrors.ForumEmptyReply, "Reply cannot be empty.", flash.Warning}},
	{service.ErrEmptyComment, errorSpec{http.StatusBadRequest, apperrors.BlogEmptyComment, "Comment cannot be empty.", flash.Warning}},
	{service.ErrValidation, errorSpec{http.StatusBadRequest, apperrors.ValidationInvalidInput, "", flash.Warning}},
	{service.ErrProductNotFound, errorSpec{http.StatusNotFound, apperrors.ProductNotFound, "Product not found.", flash.Warning}},
	{service.ErrCategoryNotFound, errorSpec{http.StatusNotFound, apperrors.CategoryNotFound, "Category not found.", flash.Warning}},
	{service.ErrSubCategoryNotFound, errorSpec{http.StatusNotFound, apperrors.SubCategoryNotFound, "Subcategory not found.", flash.Warning}},
	{service.ErrCartItemNotFound, errorSpec{http.StatusNotFound, apperrors.CartItemNotFound, "Item not found in your cart.", flash.Warning}},
	{service.ErrConsultantNotFound, errorSpec{http.StatusNotFound, apperrors.ConsultantNotFound, "Consultant not found.", flash.Warning}},
	{service.ErrMessageNotFound, errorSpec{http.StatusNotFound, apperrors.MessageNotFound, "Message not found.", flash.Warning}},
	{service.ErrForumCategoryNotFound, errorSpec{http.StatusNotFound, apperrors.ForumCategoryNotFound, "Forum category not found.", flash.Warning}},
	{service.ErrThreadNotFound, errorSpec{http.StatusNotFound, apperrors.ForumThreadNotFound, "Thread not found.", flash.Warning}},
	{service.ErrReplyNotFound, errorSpec{http.StatusNotFound, apperrors.ForumReplyNotFound, "Reply not found.", flash.Warning}},
	{service.ErrBlogCategoryNotFound, errorSpec{http.StatusNotFound, apperrors.BlogCategoryNotFound, "Blog category not found.", flash.Warning}},
	{service.ErrPostNotFound, errorSpec{http.StatusNotFound, apperrors.BlogPostNotFound, "Post not found.", flash.Warning}},
	{service.ErrCommentNotFound, errorSpec{http.StatusNotFound, apperrors.BlogCommentNotFound, "Comment not found.", flash.Warning}},
	{service.ErrNotFound, errorSpec{http.StatusNotFound, apperrors.ResourceNotFound, "The requested item was not found.", flash.Warning}},
	{service.ErrDuplicateEmail, errorSpec{http.StatusConflict, apperrors.AuthEmailAlreadyExists, "This email is already registered.", flash.Danger}},
	{service.ErrProductUnavailable, errorSpec{http.StatusConflict, apperrors.ProductUnavailable, "This product is currently unavailable.", flash.Error}},
	{service.ErrPermissionDenied, errorSpec{http.StatusForbidden, apperrors.AuthzForbidden, "You do not have permission to perform this action.", flash.Error}},
	{service.ErrCategoryInUse, errorSpec{http.StatusConflict, apperrors.CategoryInUse, "This category is still used by consultants and cannot be deleted.", flash.Error}},
	{service.ErrCategoryHasChildren, errorSpec{http.StatusConflict, apperrors.ForumCategoryHasChildren, "Cannot delete category with existing subcategories. Please delete subcategories first.", flash.Error}},
	{service.ErrConflict, errorSpec{http.StatusConflict, apperrors.ResourceConflict, "This record is still in use.", flash.Error}},
	{service.ErrUploadFailed, errorSpec{http.StatusInternalServerError, apperrors.UploadFailed, "The file could not be saved. Please try again.", flash.Danger}},
}

// classify maps err to its client-facing form. Unknown errors fall through
// to the persistence parser and finally to a generic 500.
func classify(err error, operation string) errorSpec {
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			spec := entry.spec
			if spec.message == "" {
				spec.message = validationMessage(err)
			}
			return spec
		}
	}

	info := apperrors.ParseError(err, operation)
	status := http.StatusInternalServerError
	switch info.Code {
	case apperrors.ResourceNotFound:
		status = http.StatusNotFound
	case apperrors.ResourceAlreadyExists, apperrors.AuthEmailAlreadyExists,
		apperrors.ConsultantEmailExists, apperrors.CategoryNameExists, apperrors.ResourceConflict:
		status = http.StatusConflict
	case apperrors.ValidationRequired:
		status = http.StatusBadRequest
	}
	return errorSpec{status: status, code: info.Code, message: info.Message, category: flash.Danger}
}

// validationMessage strips the root prefix and capitalizes the detail.
func validationMessage(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, service.ErrValidation.Error()+": ")
	if msg == "" {
		return "Invalid input."
	}
	msg = strings.ToUpper(msg[:1]) + msg[1:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}

// respondError answers a failed operation: a JSON envelope for JSON callers,
// otherwise a flash message and a redirect to location.
func respondError(c *gin.Context, err error, operation, location string) {
	spec := classify(err, operation)
	logFailure(c, err, operation, spec.status)

	if middleware.WantsJSON(c) {
		writeErrorJSON(c, err, spec)
		return
	}
	redirectWithFlash(c, spec.category, spec.message, location)
}

// respondJSONError always answers with the envelope.
func respondJSONError(c *gin.Context, err error, operation string) {
	spec := classify(err, operation)
	logFailure(c, err, operation, spec.status)
	writeErrorJSON(c, err, spec)
}

// writeErrorJSON adds the per-field messages when err carries them.
func writeErrorJSON(c *gin.Context, err error, spec errorSpec) {
	var inputErr *service.InputError
	if errors.As(err, &inputErr) {
		apperrors.RespondWithValidationError(c, spec.message, inputErr.Fields)
		return
	}
	apperrors.RespondWithError(c, spec.status, spec.code, spec.message)
}

func logFailure(c *gin.Context, err error, operation string, status int) {
	log := middleware.GetLoggerFromContext(c)
	fields := map[string]interface{}{
		"operation": operation,
		"status":    status,
	}
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", err, fields)
		return
	}
	fields["error"] = err.Error()
	log.Warn("Request rejected", fields)
}

// respondOK answers a successful mutation: JSON payload for JSON callers,
// otherwise a flash and a redirect.
func respondOK(c *gin.Context, message, location string, payload gin.H) {
	if middleware.WantsJSON(c) {
		body := gin.H{"message": message}
		for k, v := range payload {
			body[k] = v
		}
		c.JSON(http.StatusOK, body)
		return
	}
	redirectWithFlash(c, flash.Success, message, location)
}

func redirectWithFlash(c *gin.Context, category, message, location string) {
	flash.Add(c, category, message)
	c.Redirect(http.StatusSeeOther, location)
}

// back returns the local Referer path, or fallback.
func back(c *gin.Context, fallback string) string {
	return safeLocalPath(c.GetHeader("Referer"), fallback)
}

// safeLocalPath accepts only same-site paths, stripping scheme and host from
// absolute URLs. Browsers read a backslash as a slash, so "/\host" is
// refused like "//host", encoded or not.
func safeLocalPath(target, fallback string) string {
	if target == "" || strings.Contains(target, "\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") ||
		strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, "\\") {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

// parseIDParam reads a positive integer path parameter. On failure it has
// already answered the request.
func parseIDParam(c *gin.Context, name, location string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID format", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		if middleware.WantsJSON(c) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		} else {
			redirectWithFlash(c, flash.Warning, "Invalid ID.", location)
		}
		return 0, false
	}
	return uint(id), true
}

// queryInt reads an integer query parameter, returning 0 when unset or
// malformed.
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

// optionalUintQuery parses an optional positive id from the query string.
func optionalUintQuery(c *gin.Context, name string) *uint {
	n, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil || n == 0 {
		return nil
	}
	id := uint(n)
	return &id
}

// formUpload returns the uploaded file under field, or nil when none was
// sent. The returned closer must be called once the upload is consumed.
func formUpload(c *gin.Context, field string) (*storage.Upload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	if header.Filename == "" || header.Size == 0 {
		return nil, func() {}, nil
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*storage.Upload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	upload := &storage.Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}
	return upload, func() { _ = file.Close() }, nil
}

// parseUintParam reads a positive id without answering the request.
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bindError turns a binder failure into a validation error without leaking
// binder internals.
func bindError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return fmt.Errorf("%w: a numeric field has an invalid value", service.ErrValidation)
	}
	return fmt.Errorf("%w: the submitted form is invalid", service.ErrValidation)
}
