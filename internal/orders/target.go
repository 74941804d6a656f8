package orders

import (
	"github.com/google/uuid"

	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
)

// TargetKind discriminates what a one-shot order is selling.
type TargetKind string

const (
	TargetProduct TargetKind = "product"
	TargetPackage TargetKind = "package"
)

// OrderTarget is resolved once at order creation: a sale is for a single
// product or a customized package, never both.
type OrderTarget struct {
	Kind      TargetKind
	ProductID uuid.UUID
	PackageID uuid.UUID
}

// ResolveTarget validates the product/package selection on the input.
func ResolveTarget(input CreateOrderInput) (OrderTarget, error) {
	switch {
	case input.ProductID != nil && input.PackageID != nil:
		return OrderTarget{}, pkgerrors.New(pkgerrors.CodeValidation, "order target ambiguous: both product and package supplied")
	case input.ProductID != nil:
		if *input.ProductID == uuid.Nil {
			return OrderTarget{}, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if len(input.AddProductIDs) > 0 || len(input.RemoveProductIDs) > 0 {
			return OrderTarget{}, pkgerrors.New(pkgerrors.CodeValidation, "add/remove lists only apply to package orders")
		}
		return OrderTarget{Kind: TargetProduct, ProductID: *input.ProductID}, nil
	case input.PackageID != nil:
		if *input.PackageID == uuid.Nil {
			return OrderTarget{}, pkgerrors.New(pkgerrors.CodeValidation, "package id required")
		}
		return OrderTarget{Kind: TargetPackage, PackageID: *input.PackageID}, nil
	default:
		return OrderTarget{}, pkgerrors.New(pkgerrors.CodeValidation, "order target missing: supply a product or a package")
	}
}
