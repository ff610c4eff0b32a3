package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/premierauto/dealership-server/cmd/models"
	"github.com/premierauto/dealership-server/cmd/utils"
	"gorm.io/gorm"
)

// ChatHandler backs the admin "chat with your data" assistant. It is a thin
// proxy: it snapshots a compact view of the store, forwards the question to a
// hosted LLM, and records the exchange.
type ChatHandler struct {
	db *gorm.DB
}

func NewChatHandler(db *gorm.DB) *ChatHandler {
	return &ChatHandler{db: db}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chat", utils.AuthMiddleware(h.SendMessage)).Methods("POST")
	router.HandleFunc("/chat/{sessionId}", utils.AuthMiddleware(h.GetSession)).Methods("GET")
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	var session models.ChatSession
	if req.SessionID != "" {
		if err := h.db.Preload("Messages").Where("session_id = ?", req.SessionID).First(&session).Error; err != nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
	} else {
		session = models.ChatSession{
			SessionID: uuid.New().String(),
			UserID:    userID,
		}
		if err := h.db.Create(&session).Error; err != nil {
			http.Error(w, "Error creating session", http.StatusInternalServerError)
			return
		}
	}

	context, err := h.buildDataContext()
	if err != nil {
		http.Error(w, "Error building data context", http.StatusInternalServerError)
		return
	}

	messages := []llmMessage{{
		Role: "system",
		Content: "You are an assistant for a car dealership's back office. Answer questions " +
			"about the dealership's own inventory, appointments and sales using only the data below. " +
			"If a question is unrelated to the dealership, say you can only help with dealership data.\n\n" + context,
	}}
	for _, m := range session.Messages {
		messages = append(messages, llmMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llmMessage{Role: "user", Content: req.Message})

	reply, err := callLLM(messages)
	if err != nil {
		log.Printf("LLM request failed for session %s: %v", session.SessionID, err)
		http.Error(w, "Assistant unavailable", http.StatusBadGateway)
		return
	}

	exchange := []models.ChatMessage{
		{ChatSessionID: session.ID, Role: "user", Content: req.Message},
		{ChatSessionID: session.ID, Role: "assistant", Content: reply},
	}
	if err := h.db.Create(&exchange).Error; err != nil {
		log.Printf("Error saving chat exchange for session %s: %v", session.SessionID, err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"session_id": session.SessionID,
		"reply":      reply,
	})
}

func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var session models.ChatSession
	if err := h.db.Preload("Messages").Where("session_id = ?", vars["sessionId"]).First(&session).Error; err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

// buildDataContext summarizes the store into a prompt-sized snapshot.
func (h *ChatHandler) buildDataContext() (string, error) {
	var availableCount, soldCount, pendingTestDrives int64
	h.db.Model(&models.Vehicle{}).Where("status = ?", models.VehicleAvailable).Count(&availableCount)
	h.db.Model(&models.Vehicle{}).Where("status = ?", models.VehicleSold).Count(&soldCount)
	h.db.Model(&models.TestDrive{}).Where("status = ?", models.TestDrivePending).Count(&pendingTestDrives)

	var vehicles []models.Vehicle
	if err := h.db.Where("status = ?", models.VehicleAvailable).
		Order("created_at DESC").Limit(25).Find(&vehicles).Error; err != nil {
		return "", err
	}

	var metrics []models.MonthlyMetric
	if err := h.db.Order("month DESC").Limit(6).Find(&metrics).Error; err != nil {
		return "", err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "Inventory: %d available, %d sold. Pending test drives: %d.\n\n", availableCount, soldCount, pendingTestDrives)

	b.WriteString("Available vehicles:\n")
	for _, v := range vehicles {
		fmt.Fprintf(&b, "- #%d %d %s %s, %d mi, $%.0f\n", v.ID, v.Year, v.Make, v.ModelName, v.Mileage, v.Price)
	}

	b.WriteString("\nMonthly metrics:\n")
	for _, m := range metrics {
		fmt.Fprintf(&b, "- %s: %d sold, $%.0f revenue, %d test drives, %d submissions, %d new customers\n",
			m.Month, m.VehiclesSold, m.Revenue, m.TestDrivesBooked, m.SubmissionsReceived, m.NewCustomers)
	}

	return b.String(), nil
}

// callLLM posts to an OpenAI-compatible chat completions endpoint.
func callLLM(messages []llmMessage) (string, error) {
	apiURL := os.Getenv("LLM_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/chat/completions"
	}
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	payload := map[string]interface{}{
		"model":    model,
		"messages": messages,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("LLM_API_KEY"))
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm returned status %d", resp.StatusCode)
	}

	var llmResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", err
	}
	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}

	return llmResp.Choices[0].Message.Content, nil
}
