package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/app/repositories"
)

type productStore interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (models.Product, error)
	ExistsByBarcode(ctx context.Context, barcode string) (bool, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	All(ctx context.Context) ([]models.Product, error)
	ByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error)
	BySupplier(ctx context.Context, supplierID primitive.ObjectID) ([]models.Product, error)
	Available(ctx context.Context) ([]models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	ByPriceRange(ctx context.Context, min, max float64) ([]models.Product, error)
	ExpiringBetween(ctx context.Context, start, end time.Time) ([]models.Product, error)
	Expired(ctx context.Context, now time.Time) ([]models.Product, error)
	LowStock(ctx context.Context, threshold int) ([]models.Product, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// ProductService manages the catalog and its approval workflow. New products
// enter PENDING and become sellable only after an admin approves them.
type ProductService struct {
	products productStore
	users    userFinder
	barcodes *BarcodeService
	notifier Notifier
}

func NewProductService(products productStore, users userFinder, barcodes *BarcodeService, notifier Notifier) *ProductService {
	return &ProductService{products: products, users: users, barcodes: barcodes, notifier: notifier}
}

// ProductInput carries the supplier-editable product fields.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	BestBefore  string  `json:"bestBefore"`
}

func (in ProductInput) bestBefore() (time.Time, error) {
	if in.BestBefore == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", in.BestBefore)
	if err != nil {
		return time.Time{}, errBadRequest("bestBefore must be YYYY-MM-DD")
	}
	return t, nil
}

// Create registers a new product for a supplier. The product gets a generated
// unique barcode and starts in PENDING until an admin reviews it.
func (s *ProductService) Create(ctx context.Context, supplierID primitive.ObjectID, in ProductInput) (models.Product, error) {
	supplier, err := s.users.FindByID(ctx, supplierID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Product{}, errNotFound("supplier not found")
	}
	if err != nil {
		return models.Product{}, err
	}
	if supplier.Role != models.RoleSupplier {
		return models.Product{}, errForbidden("user is not a supplier")
	}

	bestBefore, err := in.bestBefore()
	if err != nil {
		return models.Product{}, err
	}

	barcode, err := s.uniqueBarcode(ctx, in.Name)
	if err != nil {
		return models.Product{}, err
	}

	now := time.Now().UTC()
	product := models.Product{
		Barcode:       barcode,
		Name:          in.Name,
		Description:   in.Description,
		Price:         round2(in.Price),
		Quantity:      in.Quantity,
		BestBefore:    bestBefore,
		SupplierID:    supplier.ID,
		SupplierName:  supplier.FullName(),
		SupplierEmail: supplier.Email,
		Status:        models.ProductPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.products.Create(ctx, &product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// uniqueBarcode retries the generated barcode with a numeric suffix until it
// is free in the catalog.
func (s *ProductService) uniqueBarcode(ctx context.Context, name string) (string, error) {
	base := s.barcodes.Generate(name)
	candidate := base
	for counter := 1; ; counter++ {
		taken, err := s.products.ExistsByBarcode(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "_" + strconv.Itoa(counter)
	}
}

// Approve moves a pending product to APPROVED, recording the reviewing admin.
func (s *ProductService) Approve(ctx context.Context, productID, adminID primitive.ObjectID) (models.Product, error) {
	return s.review(ctx, productID, adminID, models.ProductApproved, "")
}

// Reject marks a pending product REJECTED with the admin's reason.
func (s *ProductService) Reject(ctx context.Context, productID, adminID primitive.ObjectID, reason string) (models.Product, error) {
	return s.review(ctx, productID, adminID, models.ProductRejected, reason)
}

func (s *ProductService) review(ctx context.Context, productID, adminID primitive.ObjectID, status models.ProductStatus, reason string) (models.Product, error) {
	product, err := s.GetByID(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}

	admin, err := s.users.FindByID(ctx, adminID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Product{}, errNotFound("admin not found")
	}
	if err != nil {
		return models.Product{}, err
	}
	if admin.Role != models.RoleAdmin {
		return models.Product{}, errForbidden("user is not an admin")
	}

	now := time.Now().UTC()
	product.Status = status
	product.ApprovedBy = adminID
	product.ApprovedAt = now
	product.UpdatedAt = now
	if err := s.products.Update(ctx, &product); err != nil {
		return models.Product{}, err
	}

	if status == models.ProductApproved {
		s.notifier.ProductApproved(product)
	} else {
		s.notifier.ProductRejected(product, reason)
	}
	return product, nil
}

// Update rewrites a supplier's own product. Only PENDING products may change;
// anything already reviewed is immutable to the supplier.
func (s *ProductService) Update(ctx context.Context, productID, supplierID primitive.ObjectID, in ProductInput) (models.Product, error) {
	product, err := s.GetByID(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	if product.SupplierID != supplierID {
		return models.Product{}, errForbidden("product does not belong to this supplier")
	}
	if product.Status != models.ProductPending {
		return models.Product{}, errConflict("cannot update a reviewed product")
	}

	bestBefore, err := in.bestBefore()
	if err != nil {
		return models.Product{}, err
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = round2(in.Price)
	product.Quantity = in.Quantity
	product.BestBefore = bestBefore
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, &product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// Delete removes a supplier's own product while it is still PENDING.
func (s *ProductService) Delete(ctx context.Context, productID, supplierID primitive.ObjectID) error {
	product, err := s.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.SupplierID != supplierID {
		return errForbidden("product does not belong to this supplier")
	}
	if product.Status != models.ProductPending {
		return errConflict("cannot delete a reviewed product")
	}
	return s.products.Delete(ctx, productID)
}

// UpdateStock adjusts the quantity of an approved product by delta, which may
// be negative. Stock never goes below zero; a product that reaches zero flips
// to OUT_OF_STOCK.
func (s *ProductService) UpdateStock(ctx context.Context, productID primitive.ObjectID, delta int) (models.Product, error) {
	product, err := s.GetByID(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	if product.Status != models.ProductApproved && product.Status != models.ProductOutOfStock {
		return models.Product{}, errConflict("cannot update stock for a non-approved product")
	}

	next := product.Quantity + delta
	if next < 0 {
		return models.Product{}, errBadRequest("insufficient stock")
	}

	product.Quantity = next
	switch {
	case next == 0:
		product.Status = models.ProductOutOfStock
	case product.Status == models.ProductOutOfStock:
		product.Status = models.ProductApproved
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, &product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (s *ProductService) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Product{}, errNotFound("product not found")
	}
	return product, err
}

func (s *ProductService) GetByBarcode(ctx context.Context, barcode string) (models.Product, error) {
	product, err := s.products.FindByBarcode(ctx, barcode)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Product{}, errNotFound("product not found")
	}
	return product, err
}

func (s *ProductService) All(ctx context.Context) ([]models.Product, error) {
	return s.products.All(ctx)
}

func (s *ProductService) ByStatus(ctx context.Context, status string) ([]models.Product, error) {
	st, ok := models.ParseProductStatus(status)
	if !ok {
		return nil, errBadRequest("invalid product status: %s", status)
	}
	return s.products.ByStatus(ctx, st)
}

func (s *ProductService) Pending(ctx context.Context) ([]models.Product, error) {
	return s.products.ByStatus(ctx, models.ProductPending)
}

func (s *ProductService) Approved(ctx context.Context) ([]models.Product, error) {
	return s.products.ByStatus(ctx, models.ProductApproved)
}

func (s *ProductService) Available(ctx context.Context) ([]models.Product, error) {
	return s.products.Available(ctx)
}

func (s *ProductService) BySupplier(ctx context.Context, supplierID primitive.ObjectID) ([]models.Product, error) {
	return s.products.BySupplier(ctx, supplierID)
}

func (s *ProductService) Search(ctx context.Context, query string) ([]models.Product, error) {
	return s.products.Search(ctx, query)
}

func (s *ProductService) ByPriceRange(ctx context.Context, min, max float64) ([]models.Product, error) {
	if min < 0 || max < min {
		return nil, errBadRequest("invalid price range")
	}
	return s.products.ByPriceRange(ctx, min, max)
}

func (s *ProductService) Expired(ctx context.Context) ([]models.Product, error) {
	return s.products.Expired(ctx, time.Now().UTC())
}

func (s *ProductService) ExpiringBetween(ctx context.Context, start, end time.Time) ([]models.Product, error) {
	return s.products.ExpiringBetween(ctx, start, end)
}

func (s *ProductService) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	if threshold <= 0 {
		threshold = 10
	}
	return s.products.LowStock(ctx, threshold)
}
