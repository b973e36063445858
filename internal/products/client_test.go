package products

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trendbasket/storefront/pkg/config"
	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
	"github.com/trendbasket/storefront/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.APIConfig{BaseURL: server.URL}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	return client
}

func TestGetAllProductsUnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getAllProducts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"_id":"p1","productName":"Slim Fit Jeans","category":"Jeans","price":1200}]}`))
	}))

	got, err := client.GetAllProducts(context.Background())
	if err != nil {
		t.Fatalf("get all products: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" || got[0].Name != "Slim Fit Jeans" {
		t.Fatalf("unexpected products: %+v", got)
	}
}

func TestGetProductNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetProduct(context.Background(), "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestPurchaseSendsUserAndProduct(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/purchase" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"userId":"u1"`) || !strings.Contains(string(body), `"productId":"p1"`) {
			t.Errorf("unexpected body: %s", body)
		}
		_, _ = w.Write([]byte(`{"message":"purchase recorded","product":{"_id":"p1"}}`))
	}))

	result, err := client.Purchase(context.Background(), "u1", "p1")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Message != "purchase recorded" || result.Product.ID != "p1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGetReviewsUnwrapsNestedEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"reviews":[{"userId":"u1","stars":5,"comment":"great"}]}}`))
	}))

	reviews, err := client.GetReviews(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Stars != 5 {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}
}

func TestCreateProductRejectsInvalidPayloadBeforeNetwork(t *testing.T) {
	called := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.CreateProduct(context.Background(), CreateProductInput{ProductName: "x"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Fatalf("expected no network call for invalid payload")
	}
}

func TestUploadProductImageMultipartFields(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("email") != "asha@example.com" || r.FormValue("userId") != "u1" {
			t.Errorf("unexpected form values: email=%q userId=%q", r.FormValue("email"), r.FormValue("userId"))
		}
		file, header, err := r.FormFile("imagefiles")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer file.Close()
			if header.Filename != "kurta.png" {
				t.Errorf("unexpected filename %q", header.Filename)
			}
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"imageUrl":"https://cdn.example.com/kurta.png"}}`))
	}))

	result, err := client.UploadProductImage(context.Background(), UploadInput{
		FileName: "kurta.png",
		File:     strings.NewReader("png-bytes"),
		Email:    "asha@example.com",
		UserID:   "u1",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.ImageURL != "https://cdn.example.com/kurta.png" {
		t.Fatalf("unexpected image url: %s", result.ImageURL)
	}
}

func TestServerErrorSurfacesAsNetworkError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.GetAllProducts(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}
