package api

import (
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/premierauto/dealership-server/service/chat"
	"github.com/premierauto/dealership-server/service/customer"
	"github.com/premierauto/dealership-server/service/dashboard"
	"github.com/premierauto/dealership-server/service/mailer"
	"github.com/premierauto/dealership-server/service/submission"
	"github.com/premierauto/dealership-server/service/testdrive"
	"github.com/premierauto/dealership-server/service/transactions"
	"github.com/premierauto/dealership-server/service/user"
	"github.com/premierauto/dealership-server/service/vehicle"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
	mailer  *mailer.Mailer
}

func NewApiServer(address string, db *gorm.DB, m *mailer.Mailer) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
		mailer:  m,
	}
}

func (s *APIServer) Run(reminders *testdrive.ReminderService) error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	vehicleHandler := vehicle.NewVehicleHandler(s.db)
	vehicleHandler.RegisterRoutes(subrouter)

	customerHandler := customer.NewCustomerHandler(s.db)
	customerHandler.RegisterRoutes(subrouter)

	testDriveHandler := testdrive.NewTestDriveHandler(s.db, s.mailer, reminders)
	testDriveHandler.RegisterRoutes(subrouter)

	submissionHandler := submission.NewSubmissionHandler(s.db, s.mailer)
	submissionHandler.RegisterRoutes(subrouter)

	transactionHandler := transactions.NewTransactionHandler(s.db)
	transactionHandler.RegisterRoutes(subrouter)

	dashboardHandler := dashboard.NewDashboardHandler(s.db)
	dashboardHandler.RegisterRoutes(subrouter)

	chatHandler := chat.NewChatHandler(s.db)
	chatHandler.RegisterRoutes(subrouter)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(router)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, corsHandler)
}
