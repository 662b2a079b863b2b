package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/emart/app/models"
)

func newProductFixture(t *testing.T) (*ProductService, *memUsers, *memProducts) {
	t.Helper()
	users := newMemUsers()
	products := newMemProducts()
	svc := NewProductService(products, users, NewBarcodeService(), NopNotifier{})
	return svc, users, products
}

func seedSupplier(users *memUsers) models.User {
	return users.add(models.User{
		Username:  "sam",
		Email:     "sam@example.com",
		FirstName: "Sam",
		LastName:  "Supplier",
		Role:      models.RoleSupplier,
		Enabled:   true,
	})
}

func seedAdmin(users *memUsers) models.User {
	return users.add(models.User{
		Username: "root",
		Email:    "root@example.com",
		Role:     models.RoleAdmin,
		Enabled:  true,
	})
}

func TestCreateProductStartsPending(t *testing.T) {
	svc, users, _ := newProductFixture(t)
	supplier := seedSupplier(users)

	product, err := svc.Create(context.Background(), supplier.ID, ProductInput{
		Name: "Olive Oil", Price: 7.499, Quantity: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ProductPending, product.Status)
	assert.Equal(t, 7.50, product.Price)
	assert.Equal(t, supplier.ID, product.SupplierID)
	assert.Equal(t, "Sam Supplier", product.SupplierName)
	assert.Regexp(t, `^OLI\d+$`, product.Barcode)
}

func TestCreateProductRequiresSupplier(t *testing.T) {
	svc, users, _ := newProductFixture(t)
	admin := seedAdmin(users)

	_, err := svc.Create(context.Background(), admin.ID, ProductInput{
		Name: "Olive Oil", Price: 7.49, Quantity: 20,
	})
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 403, ce.Status)
}

func TestApproveRequiresAdmin(t *testing.T) {
	svc, users, _ := newProductFixture(t)
	supplier := seedSupplier(users)
	admin := seedAdmin(users)

	product, err := svc.Create(context.Background(), supplier.ID, ProductInput{
		Name: "Honey", Price: 4.99, Quantity: 10,
	})
	require.NoError(t, err)

	var ce *ClientError
	_, err = svc.Approve(context.Background(), product.ID, supplier.ID)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 403, ce.Status)

	approved, err := svc.Approve(context.Background(), product.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductApproved, approved.Status)
	assert.Equal(t, admin.ID, approved.ApprovedBy)
	assert.False(t, approved.ApprovedAt.IsZero())
}

func TestRejectKeepsReasonForNotice(t *testing.T) {
	svc, users, _ := newProductFixture(t)
	supplier := seedSupplier(users)
	admin := seedAdmin(users)

	product, err := svc.Create(context.Background(), supplier.ID, ProductInput{
		Name: "Mystery Meat", Price: 1.00, Quantity: 5,
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), product.ID, admin.ID, "missing provenance")
	require.NoError(t, err)
	assert.Equal(t, models.ProductRejected, rejected.Status)
}

func TestSupplierEditsOnlyOwnPendingProducts(t *testing.T) {
	svc, users, _ := newProductFixture(t)
	supplier := seedSupplier(users)
	other := seedSupplier(users)
	admin := seedAdmin(users)

	product, err := svc.Create(context.Background(), supplier.ID, ProductInput{
		Name: "Butter", Price: 2.99, Quantity: 15,
	})
	require.NoError(t, err)

	var ce *ClientError
	_, err = svc.Update(context.Background(), product.ID, other.ID, ProductInput{
		Name: "Butter", Price: 0.01, Quantity: 15,
	})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 403, ce.Status)

	_, err = svc.Approve(context.Background(), product.ID, admin.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), product.ID, supplier.ID, ProductInput{
		Name: "Butter", Price: 3.49, Quantity: 15,
	})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 409, ce.Status)

	err = svc.Delete(context.Background(), product.ID, supplier.ID)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 409, ce.Status)
}

func TestUpdateStockNeverGoesNegative(t *testing.T) {
	svc, _, products := newProductFixture(t)
	product := products.add(models.Product{
		Name: "Eggs", Barcode: "EGG10000001001", Price: 3.20,
		Quantity: 5, Status: models.ProductApproved,
	})

	var ce *ClientError
	_, err := svc.UpdateStock(context.Background(), product.ID, -6)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)

	out, err := svc.UpdateStock(context.Background(), product.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Quantity)
	assert.Equal(t, models.ProductOutOfStock, out.Status)

	back, err := svc.UpdateStock(context.Background(), product.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, back.Quantity)
	assert.Equal(t, models.ProductApproved, back.Status)
}

func TestUpdateStockRejectsPending(t *testing.T) {
	svc, _, products := newProductFixture(t)
	product := products.add(models.Product{
		Name: "Flour", Barcode: "FLO10000001001", Price: 1.80,
		Quantity: 5, Status: models.ProductPending,
	})

	var ce *ClientError
	_, err := svc.UpdateStock(context.Background(), product.ID, 1)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 409, ce.Status)
}

// collidingProducts reports the first n barcode candidates as taken.
type collidingProducts struct {
	*memProducts
	collisions int
}

func (c *collidingProducts) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	if c.collisions > 0 {
		c.collisions--
		return true, nil
	}
	return c.memProducts.ExistsByBarcode(ctx, barcode)
}

func TestUniqueBarcodeGetsSuffix(t *testing.T) {
	users := newMemUsers()
	store := &collidingProducts{memProducts: newMemProducts(), collisions: 2}
	svc := NewProductService(store, users, NewBarcodeService(), NopNotifier{})
	supplier := seedSupplier(users)

	product, err := svc.Create(context.Background(), supplier.ID, ProductInput{
		Name: "Jam", Price: 2.50, Quantity: 5,
	})
	require.NoError(t, err)

	assert.Regexp(t, `^JAM\d+_2$`, product.Barcode)
}

func TestByPriceRangeValidation(t *testing.T) {
	svc, _, _ := newProductFixture(t)

	var ce *ClientError
	_, err := svc.ByPriceRange(context.Background(), -1, 10)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)

	_, err = svc.ByPriceRange(context.Background(), 10, 5)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)
}
