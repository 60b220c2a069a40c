package http

import "github.com/labstack/echo/v4"

// Handlers groups every resource handler mounted by Register.
type Handlers struct {
	Health        *Handler
	Loans         *LoanHandler
	Repayments    *RepaymentHandler
	Settings      *SettingsHandler
	Rotation      *RotationHandler
	Contributions *ContributionHandler
	Members       *MemberHandler
}

// Register mounts /health and the /api/v1 routes. mw runs in order on the API
// group only (auth first, then idempotency).
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	api := e.Group("/api/v1", mw...)

	api.POST("/loans", h.Loans.RequestLoan)
	api.GET("/loans", h.Loans.ListLoans)
	api.GET("/loans/:loan_id", h.Loans.GetLoan)
	api.POST("/loans/:loan_id/offer", h.Loans.OfferLoan)
	api.POST("/loans/:loan_id/respond", h.Loans.RespondToOffer)
	api.POST("/loans/:loan_id/repayments", h.Loans.SubmitRepayment)
	api.GET("/loans/:loan_id/repayments", h.Loans.ListRepayments)

	api.POST("/repayments/:repayment_id/approve", h.Repayments.Approve)
	api.POST("/repayments/:repayment_id/reject", h.Repayments.Reject)
	api.POST("/repayments/:repayment_id/rating", h.Repayments.RateTiming)

	api.GET("/settings", h.Settings.Get)
	api.PATCH("/settings", h.Settings.Update)

	api.GET("/rotation", h.Rotation.State)
	api.POST("/rotation/cycles", h.Rotation.CreateCycle)
	api.POST("/rotation/cycles/:cycle_id/obligations", h.Rotation.RecordObligationMet)

	api.POST("/contributions", h.Contributions.Record)
	api.GET("/contributions/schedule", h.Contributions.Schedule)
	api.POST("/contributions/:contribution_id/rating", h.Contributions.RateTiming)

	api.POST("/members", h.Members.Add)
	api.GET("/members", h.Members.List)
	api.GET("/members/:member_id", h.Members.Get)
	api.GET("/members/:member_id/contributions", h.Contributions.ListForMember)
	api.GET("/members/:member_id/performance", h.Members.Performance)
	api.GET("/performance/leaderboard", h.Members.Leaderboard)
}
