package service

import (
	"fmt"
)

// Kind classifies a business error so the transport layer can pick a status code
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
)

// Error is a business rule violation. Anything else returned by a service is internal.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code so errors built with Withf still satisfy errors.Is against the sentinel
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Withf returns a copy of e carrying a more specific message
func (e *Error) Withf(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrInvalidID = newError(KindValidation, "INVALID_ID", "Invalid identifier")

	// categories
	ErrCategoryNotFound      = newError(KindNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	ErrParentNotFound        = newError(KindNotFound, "PARENT_NOT_FOUND", "Parent category not found")
	ErrDuplicateCategoryName = newError(KindConflict, "DUPLICATE_NAME", "Category with this name already exists at this level")
	ErrSelfParent            = newError(KindConflict, "SELF_PARENT", "A category cannot be its own parent")
	ErrCircularReference     = newError(KindConflict, "CIRCULAR_REFERENCE", "A category cannot have a descendant as its parent (circular reference)")
	ErrCategoryHasChildren   = newError(KindConflict, "HAS_CHILDREN", "Cannot delete category with subcategories. Please delete or reassign subcategories first.")
	ErrCategoryHasProducts   = newError(KindConflict, "HAS_PRODUCTS", "Cannot delete category with products. Please reassign or delete products first.")

	// products and variants
	ErrProductNotFound     = newError(KindNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	ErrDuplicateProductSKU = newError(KindConflict, "DUPLICATE_SKU", "Product with this SKU already exists")
	ErrProductHasVariants  = newError(KindConflict, "HAS_VARIANTS", "Cannot delete product with variants. Please delete variants first.")
	ErrVariantNotFound     = newError(KindNotFound, "VARIANT_NOT_FOUND", "Variant not found")
	ErrDuplicateVariantSKU = newError(KindConflict, "DUPLICATE_VARIANT_SKU", "Variant with this SKU already exists")
	ErrVariantHasOrders    = newError(KindConflict, "HAS_ORDER_REFERENCES", "Cannot delete variant that is referenced in orders")

	// inventory
	ErrActorNotFound = newError(KindNotFound, "ACTOR_NOT_FOUND", "User performing the adjustment not found")

	// orders
	ErrOrderNotFound        = newError(KindNotFound, "ORDER_NOT_FOUND", "Order not found")
	ErrDuplicateOrderNumber = newError(KindConflict, "DUPLICATE_ORDER_NUMBER", "Order with this number already exists")
	ErrInvalidOrderStatus   = newError(KindValidation, "INVALID_STATUS", "Invalid order status")
	ErrNegativePrice        = newError(KindValidation, "INVALID_PRICE", "Item price must not be negative")

	// users and credentials
	ErrUserNotFound        = newError(KindNotFound, "USER_NOT_FOUND", "User not found")
	ErrEmailTaken          = newError(KindConflict, "EMAIL_TAKEN", "Email already registered")
	ErrInvalidCredentials  = newError(KindUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrInvalidRefreshToken = newError(KindUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid refresh token")
	ErrInvalidRole         = newError(KindValidation, "INVALID_ROLE", "Invalid role: must be ADMIN, MANAGER or STAFF")
	ErrForbidden           = newError(KindForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
)
