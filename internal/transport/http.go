package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vasiliy-maslov/food-ordering/internal/cart"
	"github.com/vasiliy-maslov/food-ordering/internal/catalog"
	appHttp "github.com/vasiliy-maslov/food-ordering/internal/handler/http"
	"github.com/vasiliy-maslov/food-ordering/internal/order"
	"github.com/vasiliy-maslov/food-ordering/internal/user"
)

// NewRouter wires repositories, services and handlers onto one mux.
func NewRouter(pool *pgxpool.Pool, sessions *appHttp.Sessions) (*chi.Mux, user.Service) {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(appHttp.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	catalogRepo := catalog.NewRepository(pool)
	cartStore := cart.NewStore()
	cartSvc := cart.NewService(cartStore, catalogRepo)

	orderRepo := order.NewRepository(pool)
	orderSvc := order.NewService(orderRepo, cartStore, catalogRepo)

	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)

	appHttp.NewAuthHandler(userSvc, sessions).RegisterRoutes(r)
	appHttp.NewMenuHandler(catalogRepo).RegisterRoutes(r)
	appHttp.NewCartHandler(cartSvc, sessions).RegisterRoutes(r)
	appHttp.NewOrderHandler(orderSvc, sessions).RegisterRoutes(r)

	return r, userSvc
}
