package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"paydash.app/cloud/internal/analytics"
	"paydash.app/cloud/internal/logger"
	"paydash.app/cloud/internal/stripeapi"
	"paydash.app/cloud/models"
)

const analyticsWindowDays = 30

type catalogView struct {
	Items    []models.CatalogItem
	Stale    bool
	Error    string
	Success  bool
	Canceled bool
}

func (s *Server) Catalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view := catalogView{
		Success:  r.URL.Query().Get("success") == "true",
		Canceled: r.URL.Query().Get("canceled") == "true",
	}

	items, err := s.Stripe.Catalog(ctx)
	if err != nil && len(items) > 0 {
		// Partial catalog is still worth showing
		logger.Warn("Catalog fetch incomplete", map[string]interface{}{
			"error": err.Error(),
			"items": len(items),
		})
		err = nil
	}

	if err != nil {
		category, message := stripeapi.Classify(err)
		logger.Error("Catalog fetch failed", map[string]interface{}{
			"error":    err.Error(),
			"category": string(category),
		})

		cached, cacheErr := s.Storage.ListCatalog(ctx)
		if cacheErr != nil || len(cached) == 0 {
			view.Error = message
			s.render(w, http.StatusOK, "catalog.html", view)
			return
		}

		s.Metrics.CatalogFallbacks.Inc()
		view.Items = cached
		view.Stale = true
		view.Error = message
		s.render(w, http.StatusOK, "catalog.html", view)
		return
	}

	view.Items = items
	s.render(w, http.StatusOK, "catalog.html", view)
}

type productFormView struct {
	Error   string
	Created *models.CatalogItem
	Recent  []models.CatalogItem
	Form    productForm
}

type productForm struct {
	Name          string
	Description   string
	ImageURL      string
	PriceType     string
	Interval      string
	Amount        string
	Currency      string
	Nickname      string
	MetadataKey   string
	MetadataValue string
}

func defaultProductForm() productForm {
	return productForm{
		PriceType: "one_time",
		Interval:  "month",
		Currency:  "usd",
	}
}

func (s *Server) ProductNew(w http.ResponseWriter, r *http.Request) {
	view := productFormView{Form: defaultProductForm()}

	recent, err := s.Stripe.RecentProducts(r.Context(), 5)
	if err != nil {
		logger.Warn("Failed to fetch recent products", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		view.Recent = recent
	}

	s.render(w, http.StatusOK, "product_new.html", view)
}

func (s *Server) ProductCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "product_new.html", productFormView{
			Error: "Invalid form submission.",
			Form:  defaultProductForm(),
		})
		return
	}

	form := productForm{
		Name:          r.PostFormValue("name"),
		Description:   r.PostFormValue("description"),
		ImageURL:      r.PostFormValue("image_url"),
		PriceType:     r.PostFormValue("price_type"),
		Interval:      r.PostFormValue("interval"),
		Amount:        r.PostFormValue("amount"),
		Currency:      r.PostFormValue("currency"),
		Nickname:      r.PostFormValue("nickname"),
		MetadataKey:   r.PostFormValue("metadata_key"),
		MetadataValue: r.PostFormValue("metadata_value"),
	}

	input, err := form.toInput()
	if err != nil {
		s.render(w, http.StatusOK, "product_new.html", productFormView{Error: err.Error(), Form: form})
		return
	}

	created, err := s.Stripe.CreateProduct(ctx, input)
	if err != nil {
		category, message := stripeapi.Classify(err)
		logger.Error("Product creation failed", map[string]interface{}{
			"error":    err.Error(),
			"category": string(category),
			"name":     input.Name,
		})
		s.render(w, http.StatusOK, "product_new.html", productFormView{Error: message, Form: form})
		return
	}

	view := productFormView{
		Created: created,
		Form:    defaultProductForm(),
	}
	if recent, err := s.Stripe.RecentProducts(ctx, 5); err == nil {
		view.Recent = recent
	}

	s.render(w, http.StatusOK, "product_new.html", view)
}

func (f productForm) toInput() (models.ProductInput, error) {
	input := models.ProductInput{
		Name:          f.Name,
		Description:   f.Description,
		ImageURL:      f.ImageURL,
		Currency:      f.Currency,
		Recurring:     f.PriceType == "recurring",
		Interval:      f.Interval,
		Nickname:      f.Nickname,
		MetadataKey:   f.MetadataKey,
		MetadataValue: f.MetadataValue,
	}

	amount, err := strconv.ParseFloat(f.Amount, 64)
	if err != nil || amount <= 0 {
		return input, errValidation("price amount is required")
	}
	input.AmountCents = int64(math.Round(amount * 100))

	if err := input.Validate(); err != nil {
		return input, err
	}
	return input, nil
}

type validationError string

func errValidation(msg string) error { return validationError(msg) }

func (e validationError) Error() string { return string(e) }

type dayView struct {
	Date    string
	Revenue string
	Volume  int
	Percent int
}

type analyticsView struct {
	Summary        analytics.Summary
	Days           []dayView
	TotalRevenue   string
	AvgTransaction string
	BestDayRevenue string
	Error          string
	Stale          bool
}

func (s *Server) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, stale, fetchErr := s.revenueSummary(ctx)

	view := analyticsView{
		Summary:        summary,
		Stale:          stale,
		TotalRevenue:   models.FormatAmount(summary.TotalRevenue, summary.Currency),
		AvgTransaction: models.FormatAmount(summary.AverageTransaction, summary.Currency),
		BestDayRevenue: models.FormatAmount(summary.BestDayRevenue, summary.Currency),
	}
	if fetchErr != "" {
		view.Error = fetchErr
	}

	var maxRevenue int64
	for _, d := range summary.Daily {
		if d.Revenue > maxRevenue {
			maxRevenue = d.Revenue
		}
	}
	for _, d := range summary.Daily {
		percent := 0
		if maxRevenue > 0 {
			percent = int(d.Revenue * 100 / maxRevenue)
		}
		view.Days = append(view.Days, dayView{
			Date:    d.Date,
			Revenue: models.FormatAmount(d.Revenue, summary.Currency),
			Volume:  d.Volume,
			Percent: percent,
		})
	}

	s.render(w, http.StatusOK, "analytics.html", view)
}

// revenueSummary aggregates the last 30 days of payments, preferring the
// provider and falling back to locally recorded payments.
func (s *Server) revenueSummary(ctx context.Context) (analytics.Summary, bool, string) {
	since := analytics.Window(time.Now(), analyticsWindowDays)

	payments, err := s.Stripe.PaymentsSince(ctx, since)
	if err == nil {
		return analytics.Summarize(payments, analyticsWindowDays), false, ""
	}

	category, message := stripeapi.Classify(err)
	logger.Error("Revenue fetch failed", map[string]interface{}{
		"error":    err.Error(),
		"category": string(category),
	})

	local, localErr := s.Storage.ListPaymentsSince(ctx, since)
	if localErr != nil {
		logger.Error("Local payment lookup failed", map[string]interface{}{
			"error": localErr.Error(),
		})
		return analytics.Summary{WindowDays: analyticsWindowDays}, false, message
	}

	return analytics.Summarize(local, analyticsWindowDays), true, message
}
