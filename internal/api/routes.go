package api

import (
	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/crosscover-protocol/settlement-api-service/internal/api/middlewares"
	_ "github.com/crosscover-protocol/settlement-api-service/docs"
)

func (a *Server) SetupRoutes(r *chi.Mux) {
	handlers := a.handlers
	r.Get("/healthcheck", registerHandler(handlers.HealthCheck))

	r.Post("/v1/pool/deposit", registerHandler(handlers.Deposit))
	r.Post("/v1/pool/withdrawals", registerHandler(handlers.RequestWithdraw))
	r.Post("/v1/pool/withdrawals/complete", registerHandler(handlers.CompleteWithdraw))
	r.Get("/v1/pool", registerHandler(handlers.GetPoolState))
	r.Get("/v1/pool/stake", registerHandler(handlers.GetStake))
	r.Get("/v1/pool/withdrawals", registerHandler(handlers.GetWithdrawRequest))

	r.Post("/v1/coverage", registerHandler(handlers.BuyCoverage))
	r.Get("/v1/coverage/preview", registerHandler(handlers.PreviewAllocation))
	r.Get("/v1/policies/{ref}", registerHandler(handlers.GetPolicy))

	r.Post("/v1/claims", registerHandler(handlers.OpenClaim))
	r.Post("/v1/claims/{id}/votes", registerHandler(handlers.Vote))
	r.Post("/v1/claims/{id}/finalize", registerHandler(handlers.FinalizeClaim))
	r.Get("/v1/claims/{id}", registerHandler(handlers.GetClaim))

	r.Get("/v1/mirror/power", registerHandler(handlers.GetVotingPower))
	r.Get("/v1/mirror/total", registerHandler(handlers.GetTotalVotingPower))
	r.Get("/v1/reserve", registerHandler(handlers.GetReserveState))
	r.Get("/v1/params", registerHandler(handlers.GetProtocolParams))

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(middlewares.AdminAuthMiddleware(a.cfg))
		r.Post("/allowlist/source", registerHandler(handlers.UpdateSourceAllowlist))
		r.Post("/allowlist/dest", registerHandler(handlers.UpdateDestAllowlist))
		r.Post("/split", registerHandler(handlers.SetSplit))
		r.Post("/params", registerHandler(handlers.SetParams))
		r.Post("/gas-limit", registerHandler(handlers.SetGasLimit))
		r.Post("/mirror/power", registerHandler(handlers.SetVotingPower))
		r.Post("/reserve/credit", registerHandler(handlers.CreditReserve))
		r.Post("/claims/{id}/retry-payout", registerHandler(handlers.RetryPayout))
		r.Post("/messages/replay", registerHandler(handlers.ReplayMessages))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
