package orders

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
)

// PackageComposition is the resolved line set and total for a customized
// package order, ready to persist alongside the sale.
type PackageComposition struct {
	Total decimal.Decimal
	Items []models.OrderItem
}

// ResolvePackageComposition prices a package order. The total starts at
// the package's effective price; removing a default member credits its
// remove_price back, adding a product charges either the membership's
// add_price (optional members) or the product's effective price
// (non-members). Removed members stay on the order as zero-priced audit
// lines. Adding a product that already ships with the base bundle is a
// conflict.
func ResolvePackageComposition(pkg *models.Package, addProducts []*models.Product, removeIDs []uuid.UUID) (*PackageComposition, error) {
	if pkg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package required")
	}

	defaultMembers := make(map[uuid.UUID]struct{}, len(pkg.Items))
	optionalMembers := make(map[uuid.UUID]*models.PackageItem, len(pkg.Items))
	for i := range pkg.Items {
		member := &pkg.Items[i]
		if member.IsDefault {
			defaultMembers[member.ProductID] = struct{}{}
		} else {
			optionalMembers[member.ProductID] = member
		}
	}

	removeSet := make(map[uuid.UUID]struct{}, len(removeIDs))
	for _, id := range removeIDs {
		if _, ok := defaultMembers[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "removed product is not a default package member").
				WithDetails(map[string]any{"product_id": id.String()})
		}
		removeSet[id] = struct{}{}
	}

	total := pkg.EffectivePrice()
	composition := &PackageComposition{}

	for i := range pkg.Items {
		member := &pkg.Items[i]
		if !member.IsDefault {
			continue
		}
		if member.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "package member product not loaded")
		}
		if _, removed := removeSet[member.ProductID]; removed {
			if member.RemovePrice != nil {
				total = total.Sub(*member.RemovePrice)
			}
			composition.Items = append(composition.Items, models.OrderItem{
				ProductID:         member.ProductID,
				InternalProductID: &member.ProductID,
				ProductName:       member.Product.Name,
				Price:             decimal.Zero,
				Qty:               1,
				Action:            enums.LineActionRemoved,
				RemovePrice:       member.RemovePrice,
			})
			continue
		}
		composition.Items = append(composition.Items, models.OrderItem{
			ProductID:         member.ProductID,
			InternalProductID: &member.ProductID,
			ProductName:       member.Product.Name,
			Price:             member.Product.EffectivePrice(),
			Qty:               1,
			Action:            enums.LineActionBase,
		})
	}

	seenAdds := make(map[uuid.UUID]struct{}, len(addProducts))
	for _, product := range addProducts {
		if product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "added product not loaded")
		}
		if _, isDefault := defaultMembers[product.ID]; isDefault {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product %q is already part of the package", product.Name)).
				WithDetails(map[string]any{"product_id": product.ID.String()})
		}
		if _, dup := seenAdds[product.ID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product %q added twice", product.Name)).
				WithDetails(map[string]any{"product_id": product.ID.String()})
		}
		seenAdds[product.ID] = struct{}{}

		price := product.EffectivePrice()
		if member, ok := optionalMembers[product.ID]; ok && member.AddPrice != nil {
			price = *member.AddPrice
		}
		total = total.Add(price)
		composition.Items = append(composition.Items, models.OrderItem{
			ProductID:         product.ID,
			InternalProductID: &product.ID,
			ProductName:       product.Name,
			Price:             price,
			Qty:               1,
			Action:            enums.LineActionAdded,
		})
	}

	composition.Total = total
	return composition, nil
}
