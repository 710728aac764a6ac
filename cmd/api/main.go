package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ngokanh/hrm-backend-go/internal/config"
	appHTTP "github.com/ngokanh/hrm-backend-go/internal/handler/http"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/cron"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/database"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/jwt"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/timewindow"
	"github.com/ngokanh/hrm-backend-go/internal/repository/postgresql"
	attendanceService "github.com/ngokanh/hrm-backend-go/internal/service/attendance"
	scheduleService "github.com/ngokanh/hrm-backend-go/internal/service/schedule"
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

	shiftRepo := postgresql.NewShiftRepository(db)
	workScheduleRepo := postgresql.NewWorkScheduleRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	evaluator := timewindow.NewEvaluator(timewindow.Policy{
		CheckInGraceMinutes: cfg.Attendance.CheckInGraceMinutes,
		CheckOutGraceHours:  cfg.Attendance.CheckOutGraceHours,
	}, cfg.Location())

	scheduleSvc := scheduleService.NewScheduleService(db, shiftRepo, workScheduleRepo, evaluator)
	attendanceSvc := attendanceService.NewAttendanceService(db, attendanceRepo, workScheduleRepo, evaluator)

	scheduleHandler := appHTTP.NewScheduleHandler(scheduleSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceRepo, evaluator).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		jwtService,
		scheduleHandler,
		attendanceHandler,
		cfg.App.Env,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	server := &http.Server{
		Addr:              port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		fmt.Println("Server error:", err)
	}
}
