package customer

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/premierauto/dealership-server/cmd/models"
	"github.com/premierauto/dealership-server/cmd/utils"
	"gorm.io/gorm"
)

type CustomerHandler struct {
	db *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

func (h *CustomerHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/customers", utils.AuthMiddleware(h.GetCustomers)).Methods("GET")
	router.HandleFunc("/customers", utils.AuthMiddleware(h.CreateCustomer)).Methods("POST")
	router.HandleFunc("/customers/{id}", utils.AuthMiddleware(h.GetCustomer)).Methods("GET")
	router.HandleFunc("/customers/{id}", utils.AuthMiddleware(h.UpdateCustomer)).Methods("PUT")
	router.HandleFunc("/customers/{id}", utils.AuthMiddleware(h.DeleteCustomer)).Methods("DELETE")
}

func (h *CustomerHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 50

	query := h.db.Model(&models.Customer{})

	if search := r.URL.Query().Get("search"); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", term, term, term)
	}

	var total int64
	query.Count(&total)

	var customers []models.Customer
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("created_at DESC").Find(&customers).Error; err != nil {
		http.Error(w, "Error retrieving customers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"customers":   customers,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	customerID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, customerID).Error; err != nil {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customer)
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if customer.FullName == "" || customer.Email == "" {
		http.Error(w, "Full name and email are required", http.StatusBadRequest)
		return
	}

	if err := h.db.Create(&customer).Error; err != nil {
		http.Error(w, "Error creating customer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(customer)
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	customerID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, customerID).Error; err != nil {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}

	var updateData models.Customer
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	customer.FullName = updateData.FullName
	customer.Email = updateData.Email
	customer.Phone = updateData.Phone
	customer.Address = updateData.Address
	customer.Notes = updateData.Notes

	if err := h.db.Save(&customer).Error; err != nil {
		http.Error(w, "Error updating customer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customer)
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	customerID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.Customer{}, customerID)
	if result.Error != nil {
		http.Error(w, "Error deleting customer", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Customer deleted successfully",
	})
}
