package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/premierauto/dealership-server/cmd/models"
	"github.com/premierauto/dealership-server/cmd/utils"
	"github.com/premierauto/dealership-server/service/testdrive"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DashboardHandler struct {
	db  *gorm.DB
	loc *time.Location
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db, loc: testdrive.DefaultLocation()}
}

type DashboardStats struct {
	AvailableVehicles int64   `json:"available_vehicles"`
	PendingTestDrives int64   `json:"pending_test_drives"`
	NewSubmissions    int64   `json:"new_submissions"`
	TotalCustomers    int64   `json:"total_customers"`
	MonthlyRevenue    float64 `json:"monthly_revenue"`
	MonthlySales      int64   `json:"monthly_sales"`
}

func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	dashboardRouter := router.PathPrefix("/dashboard").Subrouter()
	dashboardRouter.HandleFunc("/stats", utils.AuthMiddleware(h.GetDashboardStats)).Methods("GET")
	dashboardRouter.HandleFunc("/metrics", utils.AuthMiddleware(h.GetMonthlyMetrics)).Methods("GET")
	dashboardRouter.HandleFunc("/metrics/recompute", utils.AuthMiddleware(h.RecomputeMonthlyMetrics)).Methods("POST")
}

func (h *DashboardHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats

	h.db.Model(&models.Vehicle{}).Where("status = ?", models.VehicleAvailable).Count(&stats.AvailableVehicles)
	h.db.Model(&models.TestDrive{}).Where("status = ?", models.TestDrivePending).Count(&stats.PendingTestDrives)
	h.db.Model(&models.VehicleSubmission{}).Where("status = ?", models.SubmissionNew).Count(&stats.NewSubmissions)
	h.db.Model(&models.Customer{}).Count(&stats.TotalCustomers)

	start, end, err := monthBounds(time.Now().In(h.loc).Format(monthLayout), h.loc)
	if err == nil {
		h.db.Model(&models.Transaction{}).
			Where("type = ? AND created_at >= ? AND created_at < ?", models.TransactionSale, start, end).
			Count(&stats.MonthlySales)
		h.db.Model(&models.Transaction{}).
			Where("type = ? AND created_at >= ? AND created_at < ?", models.TransactionSale, start, end).
			Select("COALESCE(SUM(amount), 0)").Scan(&stats.MonthlyRevenue)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (h *DashboardHandler) GetMonthlyMetrics(w http.ResponseWriter, r *http.Request) {
	var metrics []models.MonthlyMetric
	if err := h.db.Order("month DESC").Limit(12).Find(&metrics).Error; err != nil {
		http.Error(w, "Error retrieving metrics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics)
}

// RecomputeMonthlyMetrics rebuilds one month's aggregate row from the source
// tables and upserts it. Defaults to the current month when none is given.
func (h *DashboardHandler) RecomputeMonthlyMetrics(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
	}
	// Body is optional.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Month == "" {
		req.Month = time.Now().In(h.loc).Format(monthLayout)
	}

	start, end, err := monthBounds(req.Month, h.loc)
	if err != nil {
		http.Error(w, "Invalid month. Use YYYY-MM", http.StatusBadRequest)
		return
	}

	metric := models.MonthlyMetric{Month: req.Month}

	var sales int64
	h.db.Model(&models.Transaction{}).
		Where("type = ? AND created_at >= ? AND created_at < ?", models.TransactionSale, start, end).
		Count(&sales)
	metric.VehiclesSold = int(sales)

	h.db.Model(&models.Transaction{}).
		Where("type = ? AND created_at >= ? AND created_at < ?", models.TransactionSale, start, end).
		Select("COALESCE(SUM(amount), 0)").Scan(&metric.Revenue)

	var testDrives int64
	h.db.Model(&models.TestDrive{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&testDrives)
	metric.TestDrivesBooked = int(testDrives)

	var submissions int64
	h.db.Model(&models.VehicleSubmission{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&submissions)
	metric.SubmissionsReceived = int(submissions)

	var customers int64
	h.db.Model(&models.Customer{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&customers)
	metric.NewCustomers = int(customers)

	if err := h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"vehicles_sold", "revenue", "test_drives_booked", "submissions_received", "new_customers", "updated_at",
		}),
	}).Create(&metric).Error; err != nil {
		http.Error(w, "Error saving metrics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metric)
}

const monthLayout = "2006-01"

// monthBounds returns the half-open [first of month, first of next month)
// window in the dealership's timezone.
func monthBounds(month string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(monthLayout, month, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}
