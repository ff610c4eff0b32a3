package transactions

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/premierauto/dealership-server/cmd/models"
	"github.com/premierauto/dealership-server/cmd/utils"
	"gorm.io/gorm"
)

// TransactionFilter represents all possible filters for transactions
type TransactionFilter struct {
	VehicleID  uint
	CustomerID uint
	Type       string
	MinAmount  float64
	MaxAmount  float64
	StartDate  time.Time
	EndDate    time.Time
}

// ParseTransactionFilter extracts filter values from query parameters.
// Unparseable values are treated as absent.
func ParseTransactionFilter(r *http.Request) TransactionFilter {
	query := r.URL.Query()

	var filter TransactionFilter
	filter.Type = query.Get("type")
	if id, err := strconv.ParseUint(query.Get("vehicle_id"), 10, 64); err == nil {
		filter.VehicleID = uint(id)
	}
	if id, err := strconv.ParseUint(query.Get("customer_id"), 10, 64); err == nil {
		filter.CustomerID = uint(id)
	}
	if amount, err := strconv.ParseFloat(query.Get("min_amount"), 64); err == nil {
		filter.MinAmount = amount
	}
	if amount, err := strconv.ParseFloat(query.Get("max_amount"), 64); err == nil {
		filter.MaxAmount = amount
	}
	if date, err := time.Parse("2006-01-02", query.Get("start_date")); err == nil {
		filter.StartDate = date
	}
	if date, err := time.Parse("2006-01-02", query.Get("end_date")); err == nil {
		filter.EndDate = date
	}
	return filter
}

// Apply adds the set filters to a transactions query.
func (f TransactionFilter) Apply(query *gorm.DB) *gorm.DB {
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.VehicleID != 0 {
		query = query.Where("vehicle_id = ?", f.VehicleID)
	}
	if f.CustomerID != 0 {
		query = query.Where("customer_id = ?", f.CustomerID)
	}
	if f.MinAmount > 0 {
		query = query.Where("amount >= ?", f.MinAmount)
	}
	if f.MaxAmount > 0 {
		query = query.Where("amount <= ?", f.MaxAmount)
	}
	if !f.StartDate.IsZero() {
		query = query.Where("created_at >= ?", f.StartDate)
	}
	if !f.EndDate.IsZero() {
		query = query.Where("created_at <= ?", f.EndDate)
	}
	return query
}

// PaginatedResponse represents the standard paginated API response structure
type PaginatedResponse struct {
	Data       interface{}    `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
	Error      string         `json:"error,omitempty"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	HasPrevious bool  `json:"has_previous"`
	HasNext     bool  `json:"has_next"`
}

type TransactionHandler struct {
	db *gorm.DB
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{db: db}
}

// RegisterRoutes registers transaction-related routes with Gorilla Mux
func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	transactionRouter := router.PathPrefix("/transactions").Subrouter()

	transactionRouter.HandleFunc("", utils.AuthMiddleware(h.GetTransactions)).Methods("GET")
	transactionRouter.HandleFunc("", utils.AuthMiddleware(h.CreateTransaction)).Methods("POST")
	transactionRouter.HandleFunc("/{id}", utils.AuthMiddleware(h.GetTransaction)).Methods("GET")
}

// ParsePaginationParams extracts and validates pagination parameters from request
func ParsePaginationParams(r *http.Request) (int, int) {
	query := r.URL.Query()

	page := 1
	if query.Get("page") != "" {
		if parsedPage, err := strconv.Atoi(query.Get("page")); err == nil && parsedPage > 0 {
			page = parsedPage
		}
	}

	perPage := 25
	if query.Get("per_page") != "" {
		if parsed, err := strconv.Atoi(query.Get("per_page")); err == nil && parsed > 0 {
			perPage = parsed
			if perPage > 100 {
				perPage = 100
			}
		}
	}

	return page, perPage
}

// CreateTransaction records a completed sale or trade-in. The vehicle is
// marked sold and the customer's aggregates are bumped in the same database
// transaction so the inventory can never show a sold car as available.
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VehicleID  uint    `json:"vehicle_id"`
		CustomerID *uint   `json:"customer_id"`
		Amount     float64 `json:"amount"`
		Type       string  `json:"type"`
		Method     string  `json:"method"`
		Notes      string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Type != models.TransactionSale && req.Type != models.TransactionTradeIn {
		http.Error(w, "Type must be sale or trade_in", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "Amount must be positive", http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()

	var vehicle models.Vehicle
	if err := tx.First(&vehicle, req.VehicleID).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	transaction := models.Transaction{
		VehicleID:  req.VehicleID,
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Type:       req.Type,
		Method:     req.Method,
		Notes:      req.Notes,
	}

	if err := tx.Create(&transaction).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating transaction", http.StatusInternalServerError)
		return
	}

	if req.Type == models.TransactionSale {
		vehicle.Status = models.VehicleSold
		if err := tx.Save(&vehicle).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error updating vehicle status", http.StatusInternalServerError)
			return
		}
	}

	if req.CustomerID != nil {
		var customer models.Customer
		if err := tx.First(&customer, *req.CustomerID).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Customer not found", http.StatusNotFound)
			return
		}
		customer.TotalPurchases++
		customer.TotalSpent += req.Amount
		if err := tx.Save(&customer).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error updating customer", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error completing transaction", http.StatusInternalServerError)
		return
	}

	h.db.Preload("Vehicle").Preload("Customer").First(&transaction, transaction.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transaction)
}

// GetTransactions lists transactions with filters and the standard pagination envelope.
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	page, perPage := ParsePaginationParams(r)
	filter := ParseTransactionFilter(r)

	query := filter.Apply(h.db.Model(&models.Transaction{}).Preload("Vehicle").Preload("Customer"))

	var total int64
	query.Count(&total)

	var transactions []models.Transaction
	if err := query.Offset((page - 1) * perPage).Limit(perPage).
		Order("created_at DESC").Find(&transactions).Error; err != nil {
		http.Error(w, "Error retrieving transactions", http.StatusInternalServerError)
		return
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PaginatedResponse{
		Data: transactions,
		Pagination: PaginationMeta{
			CurrentPage: page,
			PerPage:     perPage,
			TotalItems:  total,
			TotalPages:  totalPages,
			HasPrevious: page > 1,
			HasNext:     page < totalPages,
		},
	})
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	var transaction models.Transaction
	if err := h.db.Preload("Vehicle").Preload("Customer").First(&transaction, id).Error; err != nil {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transaction)
}
