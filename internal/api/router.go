package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	lockersHandler := &LockersHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	statsHandler := &StatsHandler{DB: db}
	exchangeHandler := &ExchangeHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Own account.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("PUT /api/auth/picture", authMW(http.HandlerFunc(authHandler.UploadPicture)))

	// Users (admin only, except picture serving).
	mux.Handle("GET /api/users", authMW(RequireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(RequireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Delete))))
	mux.Handle("GET /api/users/{id}/picture", authMW(http.HandlerFunc(usersHandler.GetPicture)))

	// Lockers.
	mux.Handle("GET /api/lockers", authMW(http.HandlerFunc(lockersHandler.List)))
	mux.Handle("POST /api/lockers", authMW(http.HandlerFunc(lockersHandler.Create)))
	mux.Handle("POST /api/lockers/bulk-delete", authMW(http.HandlerFunc(lockersHandler.BulkDelete)))
	mux.Handle("GET /api/lockers/{id}", authMW(http.HandlerFunc(lockersHandler.Get)))
	mux.Handle("PUT /api/lockers/{id}", authMW(http.HandlerFunc(lockersHandler.Update)))
	mux.Handle("DELETE /api/lockers/{id}", authMW(http.HandlerFunc(lockersHandler.Delete)))
	mux.Handle("GET /api/qr/{key}", authMW(http.HandlerFunc(lockersHandler.GetQR)))

	// Categories.
	mux.Handle("GET /api/categories", authMW(http.HandlerFunc(categoriesHandler.List)))
	mux.Handle("POST /api/categories", authMW(http.HandlerFunc(categoriesHandler.Create)))
	mux.Handle("GET /api/categories/{id}", authMW(http.HandlerFunc(categoriesHandler.Get)))
	mux.Handle("PUT /api/categories/{id}", authMW(http.HandlerFunc(categoriesHandler.Update)))
	mux.Handle("DELETE /api/categories/{id}", authMW(http.HandlerFunc(categoriesHandler.Delete)))

	// Items.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("POST /api/items/bulk-delete", authMW(http.HandlerFunc(itemsHandler.BulkDelete)))
	mux.Handle("POST /api/items/bulk-move", authMW(http.HandlerFunc(itemsHandler.BulkMove)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	// Stats and data exchange.
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(statsHandler.Get)))
	mux.Handle("GET /api/export", authMW(http.HandlerFunc(exchangeHandler.Export)))
	mux.Handle("POST /api/import", authMW(http.HandlerFunc(exchangeHandler.Import)))

	return mux
}
