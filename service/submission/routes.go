package submission

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/premierauto/dealership-server/cmd/models"
	"github.com/premierauto/dealership-server/cmd/utils"
	"github.com/premierauto/dealership-server/service/mailer"
	"gorm.io/gorm"
)

type SubmissionHandler struct {
	db     *gorm.DB
	mailer *mailer.Mailer
}

func NewSubmissionHandler(db *gorm.DB, m *mailer.Mailer) *SubmissionHandler {
	return &SubmissionHandler{db: db, mailer: m}
}

func (h *SubmissionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/submissions", h.CreateSubmission).Methods("POST")
	router.HandleFunc("/submissions", utils.AuthMiddleware(h.GetSubmissions)).Methods("GET")
	router.HandleFunc("/submissions/{id}", utils.AuthMiddleware(h.GetSubmission)).Methods("GET")
	router.HandleFunc("/submissions/{id}/status", utils.AuthMiddleware(h.UpdateStatus)).Methods("PATCH")
	router.HandleFunc("/submissions/{id}", utils.AuthMiddleware(h.DeleteSubmission)).Methods("DELETE")
}

// CreateSubmission takes a public sell/trade intake and notifies the operator.
func (h *SubmissionHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var sub models.VehicleSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if sub.Type != "sell" && sub.Type != "trade" {
		http.Error(w, "Type must be sell or trade", http.StatusBadRequest)
		return
	}
	if sub.Make == "" || sub.ModelName == "" || sub.Year == 0 {
		http.Error(w, "Make, model and year are required", http.StatusBadRequest)
		return
	}
	if sub.OwnerName == "" || sub.OwnerEmail == "" {
		http.Error(w, "Owner name and email are required", http.StatusBadRequest)
		return
	}

	sub.Status = models.SubmissionNew

	if err := h.db.Create(&sub).Error; err != nil {
		http.Error(w, "Error creating submission", http.StatusInternalServerError)
		return
	}

	go func() {
		if err := h.mailer.SendSubmissionReceived(&sub); err != nil {
			log.Printf("Error sending submission notification for %d: %v", sub.ID, err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sub)
}

func (h *SubmissionHandler) GetSubmissions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 50

	query := h.db.Model(&models.VehicleSubmission{})

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if subType := r.URL.Query().Get("type"); subType != "" {
		query = query.Where("type = ?", subType)
	}

	var total int64
	query.Count(&total)

	var submissions []models.VehicleSubmission
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("created_at DESC").Find(&submissions).Error; err != nil {
		http.Error(w, "Error retrieving submissions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"submissions": submissions,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *SubmissionHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid submission ID", http.StatusBadRequest)
		return
	}

	var sub models.VehicleSubmission
	if err := h.db.First(&sub, id).Error; err != nil {
		http.Error(w, "Submission not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *SubmissionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid submission ID", http.StatusBadRequest)
		return
	}

	var update struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch update.Status {
	case models.SubmissionNew, models.SubmissionReviewing, models.SubmissionOfferMade,
		models.SubmissionAccepted, models.SubmissionRejected:
	default:
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	var sub models.VehicleSubmission
	if err := h.db.First(&sub, id).Error; err != nil {
		http.Error(w, "Submission not found", http.StatusNotFound)
		return
	}

	sub.Status = update.Status
	if update.Notes != "" {
		sub.Notes = update.Notes
	}

	if err := h.db.Save(&sub).Error; err != nil {
		http.Error(w, "Error updating submission", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *SubmissionHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid submission ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.VehicleSubmission{}, id)
	if result.Error != nil {
		http.Error(w, "Error deleting submission", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Submission not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Submission deleted successfully",
	})
}
