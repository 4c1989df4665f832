package apperr

import "github.com/freshtrackdev/freshtrack/pkg/zerror"

const (
	ValidationErrorCode      = "VALIDATION_FAILED"
	ProductNotFoundCode      = "PRODUCT_NOT_FOUND"
	BarcodeAlreadyExistsCode = "BARCODE_ALREADY_EXISTS"
	EmptyImportCode          = "EMPTY_IMPORT"
)

var (
	ValidationErr           = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ProductNotFoundErr      = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	BarcodeAlreadyExistsErr = zerror.NewConflict(BarcodeAlreadyExistsCode, "a product with this barcode already exists")
	EmptyImportErr          = zerror.NewUnprocessableEntity(EmptyImportCode, "import file contains no usable rows")
)
