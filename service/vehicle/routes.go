package vehicle

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/premierauto/dealership-server/cmd/models"
	"github.com/premierauto/dealership-server/cmd/utils"
	"gorm.io/gorm"
)

type VehicleHandler struct {
	db *gorm.DB
}

func NewVehicleHandler(db *gorm.DB) *VehicleHandler {
	return &VehicleHandler{db: db}
}

func (h *VehicleHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/vehicles", h.GetVehicles).Methods("GET")
	router.HandleFunc("/vehicles/export", utils.AuthMiddleware(h.ExportVehicles)).Methods("GET")
	router.HandleFunc("/vehicles/vin/{vin}", utils.AuthMiddleware(h.DecodeVIN)).Methods("GET")
	router.HandleFunc("/vehicles/{id}", h.GetVehicle).Methods("GET")
	router.HandleFunc("/vehicles", utils.AuthMiddleware(h.CreateVehicle)).Methods("POST")
	router.HandleFunc("/vehicles/{id}", utils.AuthMiddleware(h.UpdateVehicle)).Methods("PUT")
	router.HandleFunc("/vehicles/{id}", utils.AuthMiddleware(h.DeleteVehicle)).Methods("DELETE")
	router.HandleFunc("/vehicles/{id}/photos", utils.AuthMiddleware(h.UploadPhoto)).Methods("POST")
	router.HandleFunc("/vehicles/photos/{photoId}", utils.AuthMiddleware(h.DeletePhoto)).Methods("DELETE")
	router.HandleFunc("/images/{filename}", h.ServeImage).Methods("GET")
}

// GetVehicles lists inventory with the public site's filters.
func (h *VehicleHandler) GetVehicles(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 24

	query := h.db.Model(&models.Vehicle{}).Preload("Photos")

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if makeFilter := r.URL.Query().Get("make"); makeFilter != "" {
		query = query.Where("make = ?", makeFilter)
	}
	if year := r.URL.Query().Get("year"); year != "" {
		query = query.Where("year = ?", year)
	}
	if minPrice := r.URL.Query().Get("min_price"); minPrice != "" {
		query = query.Where("price >= ?", minPrice)
	}
	if maxPrice := r.URL.Query().Get("max_price"); maxPrice != "" {
		query = query.Where("price <= ?", maxPrice)
	}
	if r.URL.Query().Get("featured") == "true" {
		query = query.Where("featured = ?", true)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(make) LIKE ? OR LOWER(model) LIKE ? OR LOWER(description) LIKE ?", term, term, term)
	}

	var total int64
	query.Count(&total)

	var vehicles []models.Vehicle
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("created_at DESC").Find(&vehicles).Error; err != nil {
		http.Error(w, "Error retrieving vehicles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"vehicles":    vehicles,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	vehicleID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}

	var vehicle models.Vehicle
	if err := h.db.Preload("Photos").First(&vehicle, vehicleID).Error; err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle)
}

func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if vehicle.Make == "" || vehicle.ModelName == "" || vehicle.Year == 0 {
		http.Error(w, "Make, model and year are required", http.StatusBadRequest)
		return
	}
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleAvailable
	}

	if err := h.db.Create(&vehicle).Error; err != nil {
		http.Error(w, "Error creating vehicle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(vehicle)
}

func (h *VehicleHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	vehicleID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}

	var vehicle models.Vehicle
	if err := h.db.First(&vehicle, vehicleID).Error; err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	var updateData models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	vehicle.VIN = updateData.VIN
	vehicle.Make = updateData.Make
	vehicle.ModelName = updateData.ModelName
	vehicle.Year = updateData.Year
	vehicle.Trim = updateData.Trim
	vehicle.BodyStyle = updateData.BodyStyle
	vehicle.ExteriorColor = updateData.ExteriorColor
	vehicle.InteriorColor = updateData.InteriorColor
	vehicle.Mileage = updateData.Mileage
	vehicle.Price = updateData.Price
	vehicle.Description = updateData.Description
	vehicle.Featured = updateData.Featured
	if updateData.Status != "" {
		vehicle.Status = updateData.Status
	}

	if err := h.db.Save(&vehicle).Error; err != nil {
		http.Error(w, "Error updating vehicle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle)
}

func (h *VehicleHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	vehicleID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.Vehicle{}, vehicleID)
	if result.Error != nil {
		http.Error(w, "Error deleting vehicle", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Vehicle deleted successfully",
	})
}

func (h *VehicleHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	vehicleID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}

	var vehicle models.Vehicle
	if err := h.db.First(&vehicle, vehicleID).Error; err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "Photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	urlPath, err := utils.SaveImage(file, header)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	position, _ := strconv.Atoi(r.FormValue("position"))
	photo := models.VehiclePhoto{
		VehicleID: uint(vehicleID),
		FilePath:  urlPath,
		Position:  position,
	}

	if err := h.db.Create(&photo).Error; err != nil {
		http.Error(w, "Error saving photo", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(photo)
}

func (h *VehicleHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	photoID, err := strconv.ParseUint(vars["photoId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid photo ID", http.StatusBadRequest)
		return
	}

	var photo models.VehiclePhoto
	if err := h.db.First(&photo, photoID).Error; err != nil {
		http.Error(w, "Photo not found", http.StatusNotFound)
		return
	}

	if err := utils.DeleteImage(photo.FilePath); err != nil {
		http.Error(w, "Error deleting photo file", http.StatusInternalServerError)
		return
	}

	if err := h.db.Unscoped().Delete(&photo).Error; err != nil {
		http.Error(w, "Error deleting photo", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Photo deleted successfully",
	})
}

func (h *VehicleHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	filename := vars["filename"]

	if strings.Contains(filename, "..") {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	http.ServeFile(w, r, filepath.Join(utils.ImagePath, filepath.Clean(filename)))
}

// ExportVehicles streams the inventory as CSV for back-office spreadsheets.
func (h *VehicleHandler) ExportVehicles(w http.ResponseWriter, r *http.Request) {
	var vehicles []models.Vehicle
	if err := h.db.Order("created_at DESC").Find(&vehicles).Error; err != nil {
		http.Error(w, "Error retrieving vehicles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=inventory.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"id", "vin", "make", "model", "year", "trim", "mileage", "price", "status"})
	for _, v := range vehicles {
		writer.Write([]string{
			strconv.FormatUint(uint64(v.ID), 10),
			v.VIN,
			v.Make,
			v.ModelName,
			strconv.Itoa(v.Year),
			v.Trim,
			strconv.Itoa(v.Mileage),
			fmt.Sprintf("%.2f", v.Price),
			v.Status,
		})
	}
}

// DecodeVIN proxies the NHTSA vPIC decoder so the admin form can prefill
// vehicle details from a VIN.
func (h *VehicleHandler) DecodeVIN(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	vin := vars["vin"]
	if len(vin) != 17 {
		http.Error(w, "VIN must be 17 characters", http.StatusBadRequest)
		return
	}

	url := fmt.Sprintf("https://vpic.nhtsa.dot.gov/api/vehicles/DecodeVinValues/%s?format=json", vin)
	resp, err := http.Get(url)
	if err != nil {
		http.Error(w, "Error contacting VIN decoder", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	var decoded struct {
		Results []struct {
			Make      string `json:"Make"`
			Model     string `json:"Model"`
			ModelYear string `json:"ModelYear"`
			Trim      string `json:"Trim"`
			BodyClass string `json:"BodyClass"`
			FuelType  string `json:"FuelTypePrimary"`
		} `json:"Results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil || len(decoded.Results) == 0 {
		http.Error(w, "Error reading VIN decoder response", http.StatusBadGateway)
		return
	}

	result := decoded.Results[0]
	year, _ := strconv.Atoi(result.ModelYear)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"vin":        vin,
		"make":       result.Make,
		"model":      result.Model,
		"year":       year,
		"trim":       result.Trim,
		"body_style": result.BodyClass,
		"fuel_type":  result.FuelType,
	})
}
