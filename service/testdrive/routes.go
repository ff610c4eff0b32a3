package testdrive

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/premierauto/dealership-server/cmd/models"
	"github.com/premierauto/dealership-server/cmd/utils"
	"github.com/premierauto/dealership-server/service/mailer"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type TestDriveHandler struct {
	db        *gorm.DB
	mailer    *mailer.Mailer
	reminders *ReminderService
	loc       *time.Location
	open      string
	close     string
}

func NewTestDriveHandler(db *gorm.DB, m *mailer.Mailer, reminders *ReminderService) *TestDriveHandler {
	open, close := businessHours()
	return &TestDriveHandler{
		db:        db,
		mailer:    m,
		reminders: reminders,
		loc:       DefaultLocation(),
		open:      open,
		close:     close,
	}
}

func (h *TestDriveHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/testdrives/book", h.BookTestDrive).Methods("POST")
	router.HandleFunc("/testdrives/availability", h.GetAvailability).Methods("GET")
	router.HandleFunc("/testdrives", utils.AuthMiddleware(h.GetTestDrives)).Methods("GET")
	router.HandleFunc("/testdrives", utils.AuthMiddleware(h.CreateTestDrive)).Methods("POST")
	router.HandleFunc("/testdrives/{id}", utils.AuthMiddleware(h.GetTestDrive)).Methods("GET")
	router.HandleFunc("/testdrives/{id}", utils.AuthMiddleware(h.UpdateTestDrive)).Methods("PUT")
	router.HandleFunc("/testdrives/{id}/cancel", utils.AuthMiddleware(h.CancelTestDrive)).Methods("PATCH")
	router.HandleFunc("/testdrives/{id}", utils.AuthMiddleware(h.DeleteTestDrive)).Methods("DELETE")

	router.HandleFunc("/blocked-slots", utils.AuthMiddleware(h.GetBlockedSlots)).Methods("GET")
	router.HandleFunc("/blocked-slots", utils.AuthMiddleware(h.CreateBlockedSlot)).Methods("POST")
	router.HandleFunc("/blocked-slots/{id}", utils.AuthMiddleware(h.DeleteBlockedSlot)).Methods("DELETE")

	router.HandleFunc("/cron/reminders", utils.CronAuthMiddleware(h.TriggerReminders)).Methods("POST")
}

type bookingRequest struct {
	VehicleID     uint   `json:"vehicle_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Notes         string `json:"notes"`
}

// slotDecision applies the availability rules: blocked ranges first, then
// active bookings at the exact (date, time).
func slotDecision(blocks []models.BlockedTimeSlot, slot string, activeBookings int64) (bool, string) {
	if SlotBlocked(blocks, slot) {
		return false, ReasonBlocked
	}
	if activeBookings > 0 {
		return false, ReasonBooked
	}
	return true, ""
}

// checkSlot loads the day's state and applies slotDecision. Read-only.
func (h *TestDriveHandler) checkSlot(tx *gorm.DB, date time.Time, slot string) (bool, string, error) {
	var blocks []models.BlockedTimeSlot
	if err := tx.Where("date = ?", date).Find(&blocks).Error; err != nil {
		return false, "", err
	}

	var count int64
	if err := tx.Model(&models.TestDrive{}).
		Where("date = ? AND time_slot = ? AND status != ?", date, slot, models.TestDriveCancelled).
		Count(&count).Error; err != nil {
		return false, "", err
	}

	available, reason := slotDecision(blocks, slot, count)
	return available, reason, nil
}

// BookTestDrive handles the public booking form. New bookings start pending;
// confirmation email is best-effort and never rolls the booking back.
func (h *TestDriveHandler) BookTestDrive(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.createBooking(w, req, models.TestDrivePending, models.SourceWebsite)
}

// CreateTestDrive lets an admin book on a customer's behalf; these start
// confirmed since staff made them directly.
func (h *TestDriveHandler) CreateTestDrive(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.createBooking(w, req, models.TestDriveConfirmed, models.SourceAdmin)
}

func (h *TestDriveHandler) createBooking(w http.ResponseWriter, req bookingRequest, status, source string) {
	if req.CustomerName == "" || req.CustomerEmail == "" {
		http.Error(w, "Customer name and email are required", http.StatusBadRequest)
		return
	}

	slot, err := NormalizeTime(req.Time)
	if err != nil {
		http.Error(w, "Invalid time format", http.StatusBadRequest)
		return
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, h.loc)
	if err != nil {
		http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()

	var vehicle models.Vehicle
	if err := tx.First(&vehicle, req.VehicleID).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}
	if vehicle.Status == models.VehicleSold {
		tx.Rollback()
		http.Error(w, "Vehicle is no longer available for test drives", http.StatusConflict)
		return
	}

	available, reason, err := h.checkSlot(tx, date, slot)
	if err != nil {
		tx.Rollback()
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if !available {
		tx.Rollback()
		writeSlotUnavailable(w, reason)
		return
	}

	testDrive := models.TestDrive{
		VehicleID:     req.VehicleID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Date:          date,
		TimeSlot:      slot,
		Status:        status,
		Source:        source,
		Notes:         req.Notes,
	}

	// Link a known customer when the email matches; the snapshot fields above
	// stay authoritative for this booking either way.
	var customer models.Customer
	if err := tx.Where("email = ?", req.CustomerEmail).First(&customer).Error; err == nil {
		testDrive.CustomerID = &customer.ID
	}

	if err := tx.Create(&testDrive).Error; err != nil {
		tx.Rollback()
		// The partial unique index on active (date, time_slot) rows closes the
		// read-then-write race; the loser lands here.
		if isUniqueViolation(err) {
			writeSlotUnavailable(w, ReasonBooked)
			return
		}
		http.Error(w, "Error creating test drive", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error completing booking", http.StatusInternalServerError)
		return
	}

	go func() {
		if err := h.mailer.SendBookingConfirmation(&testDrive, &vehicle); err != nil {
			log.Printf("Error sending booking confirmation for test drive %d: %v", testDrive.ID, err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(testDrive)
}

func writeSlotUnavailable(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	json.NewEncoder(w).Encode(map[string]string{
		"error":  "Slot unavailable",
		"reason": reason,
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetAvailability returns the per-slot status map for one date, for the
// public booking widget.
func (h *TestDriveHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	date, err := time.ParseInLocation(dateLayout, dateStr, h.loc)
	if err != nil {
		http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var blocks []models.BlockedTimeSlot
	if err := h.db.Where("date = ?", date).Find(&blocks).Error; err != nil {
		http.Error(w, "Error retrieving blocked slots", http.StatusInternalServerError)
		return
	}

	var active []models.TestDrive
	if err := h.db.Where("date = ? AND status != ?", date, models.TestDriveCancelled).Find(&active).Error; err != nil {
		http.Error(w, "Error retrieving bookings", http.StatusInternalServerError)
		return
	}

	booked := make(map[string]bool, len(active))
	for _, td := range active {
		booked[td.TimeSlot] = true
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"date":  dateStr,
		"slots": BuildSlotStatuses(HourlySlots(h.open, h.close), blocks, booked),
	})
}

func (h *TestDriveHandler) GetTestDrives(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 50

	query := h.db.Model(&models.TestDrive{}).Preload("Vehicle")

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		if date, err := time.ParseInLocation(dateLayout, dateStr, h.loc); err == nil {
			query = query.Where("date = ?", date)
		}
	}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		query = query.Where("vehicle_id = ?", vehicleID)
	}

	var total int64
	query.Count(&total)

	var testDrives []models.TestDrive
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("date DESC, time_slot DESC").Find(&testDrives).Error; err != nil {
		http.Error(w, "Error retrieving test drives", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"test_drives": testDrives,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *TestDriveHandler) GetTestDrive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid test drive ID", http.StatusBadRequest)
		return
	}

	var testDrive models.TestDrive
	if err := h.db.Preload("Vehicle").Preload("Customer").First(&testDrive, id).Error; err != nil {
		http.Error(w, "Test drive not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(testDrive)
}

// UpdateTestDrive applies admin edits. The new slot is not re-checked against
// blocked ranges (kept from the original product behavior); moving onto an
// actively booked slot still fails on the unique index.
func (h *TestDriveHandler) UpdateTestDrive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid test drive ID", http.StatusBadRequest)
		return
	}

	var update struct {
		Date               string  `json:"date"`
		Time               string  `json:"time"`
		Status             string  `json:"status"`
		Notes              *string `json:"notes"`
		CancellationReason string  `json:"cancellation_reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var testDrive models.TestDrive
	if err := h.db.First(&testDrive, id).Error; err != nil {
		http.Error(w, "Test drive not found", http.StatusNotFound)
		return
	}

	if update.Date != "" {
		date, err := time.ParseInLocation(dateLayout, update.Date, h.loc)
		if err != nil {
			http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		testDrive.Date = date
	}
	if update.Time != "" {
		slot, err := NormalizeTime(update.Time)
		if err != nil {
			http.Error(w, "Invalid time format", http.StatusBadRequest)
			return
		}
		testDrive.TimeSlot = slot
	}
	if update.Status != "" {
		switch update.Status {
		case models.TestDrivePending, models.TestDriveConfirmed, models.TestDriveCancelled:
			testDrive.Status = update.Status
		default:
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
	}
	if update.Notes != nil {
		testDrive.Notes = *update.Notes
	}
	if testDrive.Status == models.TestDriveCancelled && update.CancellationReason != "" {
		testDrive.CancellationReason = update.CancellationReason
	}

	if err := h.db.Save(&testDrive).Error; err != nil {
		if isUniqueViolation(err) {
			writeSlotUnavailable(w, ReasonBooked)
			return
		}
		http.Error(w, "Error updating test drive", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(testDrive)
}

func (h *TestDriveHandler) CancelTestDrive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid test drive ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// Body is optional for cancellation.
	_ = json.NewDecoder(r.Body).Decode(&body)

	var testDrive models.TestDrive
	if err := h.db.First(&testDrive, id).Error; err != nil {
		http.Error(w, "Test drive not found", http.StatusNotFound)
		return
	}

	testDrive.Status = models.TestDriveCancelled
	if body.Reason != "" {
		testDrive.CancellationReason = body.Reason
	}

	if err := h.db.Save(&testDrive).Error; err != nil {
		http.Error(w, "Error cancelling test drive", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(testDrive)
}

// DeleteTestDrive hard-deletes the row. Irreversible; there is no tombstone.
func (h *TestDriveHandler) DeleteTestDrive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid test drive ID", http.StatusBadRequest)
		return
	}

	result := h.db.Unscoped().Delete(&models.TestDrive{}, id)
	if result.Error != nil {
		http.Error(w, "Error deleting test drive", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Test drive not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Test drive deleted successfully",
	})
}

func (h *TestDriveHandler) GetBlockedSlots(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.BlockedTimeSlot{})

	if from := r.URL.Query().Get("from"); from != "" {
		if date, err := time.ParseInLocation(dateLayout, from, h.loc); err == nil {
			query = query.Where("date >= ?", date)
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if date, err := time.ParseInLocation(dateLayout, to, h.loc); err == nil {
			query = query.Where("date <= ?", date)
		}
	}

	var blocks []models.BlockedTimeSlot
	if err := query.Order("date ASC, start_time ASC").Find(&blocks).Error; err != nil {
		http.Error(w, "Error retrieving blocked slots", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(blocks)
}

func (h *TestDriveHandler) CreateBlockedSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date      string `json:"date"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		FullDay   bool   `json:"full_day"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, h.loc)
	if err != nil {
		http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	block := models.BlockedTimeSlot{
		Date:    date,
		FullDay: req.FullDay,
		Reason:  req.Reason,
	}

	if req.FullDay {
		block.StartTime = h.open
		block.EndTime = h.close
	} else {
		start, err := NormalizeTime(req.StartTime)
		if err != nil {
			http.Error(w, "Invalid start time", http.StatusBadRequest)
			return
		}
		end, err := NormalizeTime(req.EndTime)
		if err != nil {
			http.Error(w, "Invalid end time", http.StatusBadRequest)
			return
		}
		if end < start {
			http.Error(w, "End time must not be before start time", http.StatusBadRequest)
			return
		}
		block.StartTime = start
		block.EndTime = end
		// A range spanning the whole business day means "closed"; store that
		// explicitly so a later hours change can't un-block the day.
		if start == h.open && end == h.close {
			block.FullDay = true
		}
	}

	if err := h.db.Create(&block).Error; err != nil {
		http.Error(w, "Error creating blocked slot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(block)
}

func (h *TestDriveHandler) DeleteBlockedSlot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid blocked slot ID", http.StatusBadRequest)
		return
	}

	result := h.db.Unscoped().Delete(&models.BlockedTimeSlot{}, id)
	if result.Error != nil {
		http.Error(w, "Error deleting blocked slot", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Blocked slot not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Blocked slot deleted successfully",
	})
}

// TriggerReminders runs the sweep on demand for external cron services.
func (h *TestDriveHandler) TriggerReminders(w http.ResponseWriter, r *http.Request) {
	result, err := h.reminders.Sweep()
	if err != nil {
		log.Printf("Reminder sweep failed: %v", err)
		http.Error(w, "Reminder sweep failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
