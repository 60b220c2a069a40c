package http

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"chama-ledger/internal/domain/period"
	"chama-ledger/internal/usecase/loan"
)

type LoanHandler struct {
	uc  *loan.Usecase
	log *zap.Logger
}

func NewLoanHandler(uc *loan.Usecase, log *zap.Logger) *LoanHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoanHandler{uc: uc, log: log}
}

type requestLoanReq struct {
	Amount json.Number `json:"amount" validate:"required,money"`
	Reason string      `json:"reason" validate:"max=255"`
}

type offerLoanReq struct {
	Amount            json.Number  `json:"amount"             validate:"required,money"`
	InterestRate      *json.Number `json:"interest_rate"      validate:"omitempty,money0"`
	Fees              *json.Number `json:"fees"               validate:"omitempty,money0"`
	DueDate           string       `json:"due_date"           validate:"required,datetime=2006-01-02"`
	InstallmentNumber int          `json:"installment_number" validate:"required,gte=1,lte=520"`
	Period            string       `json:"period"             validate:"omitempty,oneof=weekly monthly"`
}

type respondReq struct {
	Accept *bool `json:"accept" validate:"required"`
}

type repayReq struct {
	Amount   json.Number `json:"amount"    validate:"required,money"`
	PaidDate string      `json:"paid_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *LoanHandler) RequestLoan(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req requestLoanReq
	if err := bind(c, &req); err != nil {
		return err
	}
	l, err := h.uc.Request(c.Request().Context(), actor, loan.RequestInput{Amount: amount(req.Amount), Reason: req.Reason})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return err
	}
	v, err := h.uc.Get(c.Request().Context(), actor, loanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	ls, err := h.uc.List(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, ls)
}

func (h *LoanHandler) OfferLoan(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return err
	}
	var req offerLoanReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in := loan.OfferInput{
		Amount:            amount(req.Amount),
		InterestRate:      optAmount(req.InterestRate),
		DueDate:           date(req.DueDate),
		InstallmentNumber: req.InstallmentNumber,
	}
	if fees := optAmount(req.Fees); fees != nil {
		in.Fees = *fees
	}
	if req.Period != "" {
		p := period.Frequency(req.Period)
		in.Period = &p
	}
	l, err := h.uc.Offer(c.Request().Context(), actor, loanID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) RespondToOffer(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return err
	}
	var req respondReq
	if err := bind(c, &req); err != nil {
		return err
	}
	v, err := h.uc.Respond(c.Request().Context(), actor, loanID, *req.Accept)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *LoanHandler) SubmitRepayment(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return err
	}
	var req repayReq
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.uc.Repay(c.Request().Context(), actor, loanID, loan.RepayInput{
		Amount:   amount(req.Amount),
		PaidDate: optDate(req.PaidDate),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *LoanHandler) ListRepayments(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return err
	}
	ps, err := h.uc.ListRepayments(c.Request().Context(), actor, loanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, ps)
}
