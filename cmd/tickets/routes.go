package main

import (
	"log/slog"

	getadmin "github.com/Sstrulea/ascutzit-crm-sub001/http-server/admin/get"
	saveadmin "github.com/Sstrulea/ascutzit-crm-sub001/http-server/admin/save"
	upadmin "github.com/Sstrulea/ascutzit-crm-sub001/http-server/admin/update"
	getmoves "github.com/Sstrulea/ascutzit-crm-sub001/http-server/moves/get"
	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/pricing/calculate"
	gettechs "github.com/Sstrulea/ascutzit-crm-sub001/http-server/technicians/get"
	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/trays/excel"
	gettrays "github.com/Sstrulea/ascutzit-crm-sub001/http-server/trays/get"
	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/trays/merge"
	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/trays/split"
	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/trays/terms"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/config"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/middleware/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type trayAPI interface {
	calculate.PricePreviewer
	gettrays.TrayReader
	terms.TermsUpdater
	split.TraySplitter
	merge.TrayMerger
}

type storeAPI interface {
	gettechs.Technicians
	getadmin.AdminTechniciansProvider
	upadmin.UpdateTechniciansProvider
	saveadmin.TechnicianCreator
	getmoves.MoveJournal
}

type deps struct {
	trays    trayAPI
	excel    excel.QuoteExcelGenerator
	store    storeAPI
	gatherer prometheus.Gatherer
}

func routes(cfg config.Config, log *slog.Logger, d deps) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Post("/api/pricing/calculate", calculate.Calculate(log, d.trays))

	router.Route("/api/trays/{id}", func(r chi.Router) {
		r.Get("/quote", gettrays.GetQuote(log, d.trays))
		r.Get("/rows", gettrays.GetRows(log, d.trays))
		r.Get("/quote/excel", excel.ExportQuote(log, d.excel))
		r.Put("/terms", terms.UpdateTerms(log, d.trays))

		r.Post("/split/plan", split.Plan(log, d.trays))
		r.Post("/split", split.Apply(log, d.trays))
		r.Post("/merge/plan", merge.Plan(log, d.trays))
		r.Post("/merge", merge.Apply(log, d.trays))
	})

	router.Get("/api/moves/{batchID}", getmoves.GetBatch(log, d.store))
	router.Get("/api/technicians", gettechs.GetTechnicians(log, d.store))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Get("/technicians", getadmin.GetAllTechniciansAdmin(log, d.store))
	adminRouter.Put("/technicians", upadmin.UpdateTechniciansAdmin(log, d.store))
	adminRouter.Post("/technicians", saveadmin.SaveTechnicianAdmin(log, d.store))

	router.Mount("/api/admin", adminRouter)

	router.Handle("/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}))

	return router
}
