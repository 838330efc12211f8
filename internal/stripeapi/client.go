package stripeapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/price"
	"github.com/stripe/stripe-go/v82/product"
	"github.com/stripe/stripe-go/v82/webhook"

	"paydash.app/cloud/internal/logger"
	"paydash.app/cloud/models"
)

const (
	productPageLimit = 100
	pricesPerProduct = 10
)

// Client wraps the provider SDK calls the dashboard needs. The SDK key is
// process-wide (stripe.Key), set once at startup.
type Client struct {
	BaseURL string
}

func New(apiKey, baseURL string) *Client {
	stripe.Key = apiKey
	return &Client{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Catalog lists active products and flattens them with their prices into
// catalog rows. A failure to list prices for one product does not abort
// the whole catalog; those errors are aggregated and returned alongside
// the rows that did resolve.
func (c *Client) Catalog(ctx context.Context) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	var errs *multierror.Error

	params := &stripe.ProductListParams{
		Active: stripe.Bool(true),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(productPageLimit)

	iter := product.List(params)
	for iter.Next() {
		p := iter.Product()

		prices, err := c.pricesFor(ctx, p.ID)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("prices for product %s: %w", p.ID, err))
			continue
		}

		for _, pr := range prices {
			items = append(items, catalogItem(p, pr))
		}
	}
	if err := iter.Err(); err != nil {
		if len(items) == 0 {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}
		errs = multierror.Append(errs, fmt.Errorf("product listing stopped early: %w", err))
	}

	return items, errs.ErrorOrNil()
}

func (c *Client) pricesFor(ctx context.Context, productID string) ([]*stripe.Price, error) {
	params := &stripe.PriceListParams{
		Product: stripe.String(productID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(pricesPerProduct)

	var prices []*stripe.Price
	iter := price.List(params)
	for iter.Next() {
		prices = append(prices, iter.Price())
	}
	return prices, iter.Err()
}

// CreateProduct creates a product and its price in two provider calls.
// If the price creation fails the product is left behind in the provider
// account; it carries no price, so it never reaches the catalog.
func (c *Client) CreateProduct(ctx context.Context, input models.ProductInput) (*models.CatalogItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	productParams := &stripe.ProductParams{
		Name: stripe.String(input.Name),
	}
	productParams.Context = ctx
	if input.Description != "" {
		productParams.Description = stripe.String(input.Description)
	}
	if input.ImageURL != "" {
		productParams.Images = stripe.StringSlice([]string{input.ImageURL})
	}
	if input.MetadataKey != "" {
		productParams.AddMetadata(input.MetadataKey, input.MetadataValue)
	}

	p, err := product.New(productParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(p.ID),
		UnitAmount: stripe.Int64(input.AmountCents),
		Currency:   stripe.String(strings.ToLower(input.Currency)),
	}
	priceParams.Context = ctx
	if input.Nickname != "" {
		priceParams.Nickname = stripe.String(input.Nickname)
	}
	if input.Recurring {
		priceParams.Recurring = &stripe.PriceRecurringParams{
			Interval: stripe.String(input.Interval),
		}
	}

	pr, err := price.New(priceParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create price for product %s: %w", p.ID, err)
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": p.ID,
		"price_id":   pr.ID,
		"amount":     input.AmountCents,
		"currency":   input.Currency,
	})

	item := catalogItem(p, pr)
	return &item, nil
}

// RecentProducts returns the newest products, each with its first price
// when one exists.
func (c *Client) RecentProducts(ctx context.Context, limit int) ([]models.CatalogItem, error) {
	params := &stripe.ProductListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))

	var items []models.CatalogItem
	iter := product.List(params)
	for iter.Next() {
		if len(items) >= limit {
			break
		}
		p := iter.Product()

		prices, err := c.pricesFor(ctx, p.ID)
		if err != nil {
			return nil, err
		}

		if len(prices) == 0 {
			// No price set yet; still worth showing on the form page
			items = append(items, catalogItem(p, nil))
			continue
		}
		items = append(items, catalogItem(p, prices[0]))
	}

	return items, iter.Err()
}

// CreateCheckoutSession starts a hosted checkout for one unit of the
// given price. The customer lands back on the catalog page afterwards.
func (c *Client) CreateCheckoutSession(ctx context.Context, priceID string, recurring bool) (*stripe.CheckoutSession, error) {
	mode := stripe.CheckoutSessionModePayment
	if recurring {
		mode = stripe.CheckoutSessionModeSubscription
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(mode)),
		SuccessURL: stripe.String(c.BaseURL + "/?success=true"),
		CancelURL:  stripe.String(c.BaseURL + "/?canceled=true"),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	logger.Info("Checkout session created", map[string]interface{}{
		"session_id": sess.ID,
		"price_id":   priceID,
		"mode":       string(mode),
	})

	return sess, nil
}

// PaymentsSince lists payment intents created at or after the given time
// and keeps the succeeded ones.
func (c *Client) PaymentsSince(ctx context.Context, since time.Time) ([]models.Payment, error) {
	params := &stripe.PaymentIntentListParams{
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: since.Unix(),
		},
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var payments []models.Payment
	iter := paymentintent.List(params)
	for iter.Next() {
		pi := iter.PaymentIntent()
		if pi.Status != stripe.PaymentIntentStatusSucceeded {
			continue
		}

		payment := models.Payment{
			StripePaymentID: pi.ID,
			Amount:          pi.Amount,
			Currency:        strings.ToUpper(string(pi.Currency)),
			Description:     pi.Description,
			CreatedAt:       time.Unix(pi.Created, 0),
		}
		if payment.Description == "" {
			payment.Description = "Payment"
		}
		if pi.Customer != nil {
			payment.CustomerID = pi.Customer.ID
		}
		payments = append(payments, payment)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}

// AccountInfo is the provider-side identity used by the health check.
type AccountInfo struct {
	ID              string `json:"id"`
	Email           string `json:"email,omitempty"`
	Country         string `json:"country,omitempty"`
	DefaultCurrency string `json:"default_currency,omitempty"`
}

func (c *Client) CheckConnection(ctx context.Context) (*AccountInfo, error) {
	// account.Get takes no params, so the deadline is enforced around
	// the call.
	type accountResult struct {
		acct *stripe.Account
		err  error
	}
	results := make(chan accountResult, 1)
	go func() {
		acct, err := account.Get()
		results <- accountResult{acct, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("account lookup failed: %w", ctx.Err())
	case r := <-results:
		if r.err != nil {
			return nil, fmt.Errorf("account lookup failed: %w", r.err)
		}
		return &AccountInfo{
			ID:              r.acct.ID,
			Email:           r.acct.Email,
			Country:         r.acct.Country,
			DefaultCurrency: strings.ToUpper(string(r.acct.DefaultCurrency)),
		}, nil
	}
}

// VerifyWebhook checks the payload signature and returns the parsed event.
func VerifyWebhook(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, secret)
}

func catalogItem(p *stripe.Product, pr *stripe.Price) models.CatalogItem {
	item := models.CatalogItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Description: p.Description,
		CreatedAt:   time.Unix(p.Created, 0),
	}
	if item.Description == "" {
		item.Description = "No description"
	}
	if len(p.Images) > 0 {
		item.ImageURL = p.Images[0]
	}

	if pr != nil {
		item.PriceID = pr.ID
		item.UnitAmount = pr.UnitAmount
		item.Currency = strings.ToUpper(string(pr.Currency))
		if pr.Recurring != nil {
			item.Recurring = true
			item.Interval = string(pr.Recurring.Interval)
		}
	}

	return item
}
