package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/studash/dashboard/apps/api/echo"
	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/audit"
	"github.com/studash/dashboard/core/blog"
	"github.com/studash/dashboard/core/file"
	"github.com/studash/dashboard/core/grade"
	"github.com/studash/dashboard/core/task"
	"github.com/studash/dashboard/core/user"
	emailsvc "github.com/studash/dashboard/services/email"
	logsvc "github.com/studash/dashboard/services/logger"
	"github.com/studash/dashboard/services/scheduler"
	"github.com/studash/dashboard/storage/database"
	sqlxrepos "github.com/studash/dashboard/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(os.Stdout, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal("setting up database", err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up repos & services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	auditRepo := sqlxrepos.NewAuditRepository(db)
	usrSvc := user.NewService(database.NewTransactor(db), sqlxrepos.NewUserRepository(db), auditRepo, mailSvc, conf)
	gradeSvc := grade.NewService(sqlxrepos.NewGradeRepository(db))
	taskSvc := task.NewService(sqlxrepos.NewTaskRepository(db))
	auditSvc := audit.NewService(auditRepo)
	blogSvc := blog.NewService(sqlxrepos.NewBlogRepository(db))
	fileSvc := file.NewService(sqlxrepos.NewFileRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error("debug server closed", err)
		}
	}()

	// =========================================================================
	// Start Scheduler

	sched, err := scheduler.New(conf, taskSvc, logger)
	if err != nil {
		logger.Fatal("setting up scheduler", err)
	}
	sched.Start()
	defer sched.Stop()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		GradeSvc:   gradeSvc,
		TaskSvc:    taskSvc,
		AuditSvc:   auditSvc,
		BlogSvc:    blogSvc,
		FileSvc:    fileSvc,
		Validate:   validate,
		Translator: translator,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal("server error", err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error("could not stop server gracefully", err)

			if err = server.Close(); err != nil {
				logger.Error("could not force stop server", err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
