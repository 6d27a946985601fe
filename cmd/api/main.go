package main

import (
	"fmt"
	"net/http"

	"github.com/lumina-hr/payroll-engine-go/internal/config"
	appHTTP "github.com/lumina-hr/payroll-engine-go/internal/handler/http"
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/database"
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/jwt"
	"github.com/lumina-hr/payroll-engine-go/internal/repository/postgresql"
	compensationService "github.com/lumina-hr/payroll-engine-go/internal/service/compensation"
	disbursementService "github.com/lumina-hr/payroll-engine-go/internal/service/disbursement"
	payrollService "github.com/lumina-hr/payroll-engine-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	compensationRepo := postgresql.NewCompensationRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	disbursementRepo := postgresql.NewDisbursementRepository(db)
	workflowRepo := postgresql.NewWorkflowRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	compensationSvc := compensationService.NewCompensationService(compensationRepo, employeeRepo)
	disbursementSvc := disbursementService.NewDisbursementService(disbursementRepo, compensationRepo, employeeRepo, workflowRepo)
	calculator := payrollService.NewSettlementCalculator()
	payrollSvc := payrollService.NewPayrollService(
		db,
		payrollRepo,
		compensationRepo,
		employeeRepo,
		disbursementRepo,
		calculator,
		cfg.Payroll.Workers,
	)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	compensationHandler := appHTTP.NewCompensationHandler(compensationSvc)
	disbursementHandler := appHTTP.NewDisbursementHandler(disbursementSvc)

	router := appHTTP.NewRouter(
		JWTService,
		payrollHandler,
		compensationHandler,
		disbursementHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
