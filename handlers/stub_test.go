package handlers

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v82"

	"paydash.app/cloud/internal/stripeapi"
	"paydash.app/cloud/models"
)

// fakeAPI stands in for the provider client in handler tests.
type fakeAPI struct {
	items       []models.CatalogItem
	catalogErr  error
	created     *models.CatalogItem
	createErr   error
	session     *stripe.CheckoutSession
	sessionErr  error
	payments    []models.Payment
	paymentsErr error
	account     *stripeapi.AccountInfo
	connErr     error

	checkoutPriceIDs []string
	createdInputs    []models.ProductInput
}

func (f *fakeAPI) Catalog(ctx context.Context) ([]models.CatalogItem, error) {
	return f.items, f.catalogErr
}

func (f *fakeAPI) CreateProduct(ctx context.Context, input models.ProductInput) (*models.CatalogItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	f.createdInputs = append(f.createdInputs, input)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.created != nil {
		return f.created, nil
	}
	item := models.CatalogItem{
		ProductID:   "prod_created",
		ProductName: input.Name,
		PriceID:     "price_created",
		UnitAmount:  input.AmountCents,
		Currency:    input.Currency,
	}
	return &item, nil
}

func (f *fakeAPI) RecentProducts(ctx context.Context, limit int) ([]models.CatalogItem, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func (f *fakeAPI) CreateCheckoutSession(ctx context.Context, priceID string, recurring bool) (*stripe.CheckoutSession, error) {
	f.checkoutPriceIDs = append(f.checkoutPriceIDs, priceID)
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if f.session != nil {
		return f.session, nil
	}
	return &stripe.CheckoutSession{
		ID:  "cs_test123",
		URL: "https://checkout.example.com/cs_test123",
	}, nil
}

func (f *fakeAPI) PaymentsSince(ctx context.Context, since time.Time) ([]models.Payment, error) {
	return f.payments, f.paymentsErr
}

func (f *fakeAPI) CheckConnection(ctx context.Context) (*stripeapi.AccountInfo, error) {
	if f.connErr != nil {
		return nil, f.connErr
	}
	if f.account != nil {
		return f.account, nil
	}
	return &stripeapi.AccountInfo{ID: "acct_test", Country: "US", DefaultCurrency: "USD"}, nil
}
