package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStatus is the approval state of a catalog item.
type ProductStatus string

const (
	ProductPending    ProductStatus = "PENDING"
	ProductApproved   ProductStatus = "APPROVED"
	ProductRejected   ProductStatus = "REJECTED"
	ProductOutOfStock ProductStatus = "OUT_OF_STOCK"
)

// ParseProductStatus maps a case-insensitive string onto the status set.
func ParseProductStatus(s string) (ProductStatus, bool) {
	switch ProductStatus(normalizeEnum(s)) {
	case ProductPending:
		return ProductPending, true
	case ProductApproved:
		return ProductApproved, true
	case ProductRejected:
		return ProductRejected, true
	case ProductOutOfStock:
		return ProductOutOfStock, true
	}
	return "", false
}

// Product is a supplier-submitted catalog item. Barcodes are unique across the
// products collection. The supplier is referenced by identifier copy, with
// name and email denormalised for listings and notifications.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Barcode     string             `bson:"barcode" json:"barcode"`
	Name        string             `bson:"name" json:"name" validate:"required,min=2,max=200"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price" validate:"required,gt=0"`
	Quantity    int                `bson:"quantity" json:"quantity" validate:"gte=0"`
	BestBefore  time.Time          `bson:"bestBefore,omitempty" json:"bestBefore,omitempty"`

	SupplierID    primitive.ObjectID `bson:"supplierId" json:"supplierId"`
	SupplierName  string             `bson:"supplierName" json:"supplierName"`
	SupplierEmail string             `bson:"supplierEmail" json:"supplierEmail"`

	Status     ProductStatus      `bson:"status" json:"status"`
	ApprovedBy primitive.ObjectID `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// normalizeEnum uppercases and trims an enum candidate from user input.
func normalizeEnum(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
