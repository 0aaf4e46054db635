package errors

// Error code constants
// Format: CATEGORY_SPECIFIC_DETAIL
// Clients map user-facing copy from these codes

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT" // still referenced elsewhere

	// ==================== Catalog (PRODUCT_ / CATEGORY_) ====================
	ProductNotFound     = "PRODUCT_NOT_FOUND"
	ProductUnavailable  = "PRODUCT_UNAVAILABLE" // inactive product targeted
	CategoryNotFound    = "CATEGORY_NOT_FOUND"
	CategoryInUse       = "CATEGORY_IN_USE"
	CategoryNameExists  = "CATEGORY_NAME_EXISTS"
	SubCategoryNotFound = "SUBCATEGORY_NOT_FOUND"

	// ==================== Cart (CART_) ====================
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"

	// ==================== Consultancy (CONSULTANT_) ====================
	ConsultantNotFound          = "CONSULTANT_NOT_FOUND"
	ConsultantEmailExists       = "CONSULTANT_EMAIL_EXISTS"
	ConsultantInvalidAction     = "CONSULTANT_INVALID_ACTION"
	ConsultantInvalidTransition = "CONSULTANT_INVALID_TRANSITION"

	// ==================== Messages (MESSAGE_) ====================
	MessageNotFound = "MESSAGE_NOT_FOUND"

	// ==================== Forum (FORUM_) ====================
	ForumCategoryNotFound    = "FORUM_CATEGORY_NOT_FOUND"
	ForumCategoryHasChildren = "FORUM_CATEGORY_HAS_CHILDREN"
	ForumThreadNotFound      = "FORUM_THREAD_NOT_FOUND"
	ForumReplyNotFound       = "FORUM_REPLY_NOT_FOUND"
	ForumEmptyReply          = "FORUM_EMPTY_REPLY"

	// ==================== Blog (BLOG_) ====================
	BlogCategoryNotFound = "BLOG_CATEGORY_NOT_FOUND"
	BlogPostNotFound     = "BLOG_POST_NOT_FOUND"
	BlogCommentNotFound  = "BLOG_COMMENT_NOT_FOUND"
	BlogEmptyComment     = "BLOG_EMPTY_COMMENT"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
