package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/yakoovad/team-expenses/internal/auth"
	"github.com/yakoovad/team-expenses/internal/service"
	"github.com/yakoovad/team-expenses/pkg/logger"
	"go.uber.org/zap"
)

type Handler struct {
	user    *service.UserService
	team    *service.TeamService
	expense *service.ExpenseService

	tokens *auth.TokenManager

	healthChecker HealthChecker

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger, tokens *auth.TokenManager) *Handler {
	return &Handler{
		logger: logger,
		tokens: tokens,
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithUserService(user *service.UserService) *Handler {
	h.user = user
	return h
}

func (h *Handler) WithTeamService(team *service.TeamService) *Handler {
	h.team = team
	return h
}

func (h *Handler) WithExpenseService(expense *service.ExpenseService) *Handler {
	h.expense = expense
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if h.healthChecker != nil {
		e.GET("/health", h.healthChecker.HealthCheck())
	}

	api := e.Group("/api")

	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	secured := api.Group("", AuthMiddleware(h.tokens))

	secured.POST("/teams", h.CreateTeam)
	secured.POST("/teams/join", h.JoinTeam)
	secured.GET("/teams/search", h.SearchTeams)
	secured.GET("/teams/:id/expenses", h.GetTeamExpenses)
	secured.POST("/expenses", h.CreateExpense)
	secured.POST("/expenses/:id/pay", h.PayShare)
}

func (h *Handler) Register(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("registering user", zap.String("username", req.Username))

	token, err := h.user.Register(e.Request().Context(), req.Username, req.Password)
	if err != nil {
		l.Error("failed to register user", zap.String("username", req.Username), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, echo.Map{"token": token})
}

func (h *Handler) Login(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("logging in user", zap.String("username", req.Username))

	token, err := h.user.Login(e.Request().Context(), req.Username, req.Password)
	if err != nil {
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, echo.Map{"token": token})
}

func (h *Handler) CreateTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Name     string `json:"name" validate:"required"`
		Passcode string `json:"passcode" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	userID := AuthenticatedUserID(e)

	l.Info("creating team", zap.String("team_name", req.Name), zap.Int64("user_id", userID))

	team, err := h.team.CreateTeam(e.Request().Context(), req.Name, req.Passcode, userID)
	if err != nil {
		l.Error("failed to create team", zap.String("team_name", req.Name), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, team)
}

func (h *Handler) JoinTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		TeamID   int64  `json:"teamId" validate:"required"`
		Passcode string `json:"passcode" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	userID := AuthenticatedUserID(e)

	l.Info("joining team", zap.Int64("team_id", req.TeamID), zap.Int64("user_id", userID))

	if err := h.team.JoinTeam(e.Request().Context(), req.TeamID, req.Passcode, userID); err != nil {
		l.Error("failed to join team", zap.Int64("team_id", req.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, echo.Map{"message": "Joined team successfully"})
}

func (h *Handler) SearchTeams(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	query := e.QueryParam("query")

	l.Info("searching teams", zap.String("query", query))

	teams, err := h.team.SearchTeams(e.Request().Context(), query)
	if err != nil {
		l.Error("failed to search teams", zap.String("query", query), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, teams)
}

func (h *Handler) CreateExpense(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		TeamID      int64           `json:"teamId" validate:"required"`
		Amount      decimal.Decimal `json:"amount" validate:"required"`
		Description string          `json:"description" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	userID := AuthenticatedUserID(e)

	l.Info("creating expense",
		zap.Int64("team_id", req.TeamID),
		zap.String("amount", req.Amount.String()),
		zap.Int64("user_id", userID))

	expense, err := h.expense.CreateExpense(e.Request().Context(), req.TeamID, req.Amount, req.Description, userID)
	if err != nil {
		l.Error("failed to create expense", zap.Int64("team_id", req.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, echo.Map{
		"id":          expense.ID,
		"amount":      expense.Amount,
		"description": expense.Description,
	})
}

func (h *Handler) PayShare(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	expenseID, err := strconv.ParseInt(e.Param("id"), 10, 64)
	if err != nil {
		return h.transportError(e, service.NewServiceError(service.ErrorCodeInvalidBody, "invalid expense id"))
	}

	userID := AuthenticatedUserID(e)

	l.Info("paying share", zap.Int64("expense_id", expenseID), zap.Int64("user_id", userID))

	if serviceErr := h.expense.PayShare(e.Request().Context(), expenseID, userID); serviceErr != nil {
		l.Error("failed to pay share", zap.Int64("expense_id", expenseID), zap.Any("error", serviceErr))
		return h.transportError(e, serviceErr)
	}

	return e.JSON(http.StatusOK, echo.Map{"message": "Payment successful"})
}

func (h *Handler) GetTeamExpenses(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	teamID, err := strconv.ParseInt(e.Param("id"), 10, 64)
	if err != nil {
		return h.transportError(e, service.NewServiceError(service.ErrorCodeInvalidBody, "invalid team id"))
	}

	userID := AuthenticatedUserID(e)

	l.Info("getting team expenses", zap.Int64("team_id", teamID), zap.Int64("user_id", userID))

	expenses, serviceErr := h.expense.GetTeamExpenses(e.Request().Context(), teamID, userID)
	if serviceErr != nil {
		l.Error("failed to get team expenses", zap.Int64("team_id", teamID), zap.Any("error", serviceErr))
		return h.transportError(e, serviceErr)
	}

	return e.JSON(http.StatusOK, expenses)
}

func (h *Handler) decodeRequest(e echo.Context, req any) *service.Error {
	if err := e.Bind(req); err != nil {
		return service.NewServiceError(service.ErrorCodeInvalidBody, "invalid request body")
	}

	if err := e.Validate(req); err != nil {
		return service.NewServiceError(service.ErrorCodeInvalidBody, errors.Wrap(err, "request validation failed").Error())
	}
	return nil
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: err}

	switch err.Code {
	case service.ErrorCodeNotFound:
		return e.JSON(http.StatusNotFound, response)
	case service.ErrorCodeInvalidCredentials:
		return e.JSON(http.StatusUnauthorized, response)
	case service.ErrorCodeUsernameExists, service.ErrorCodeAlreadyMember, service.ErrorCodeShareNotFoundOrPaid:
		return e.JSON(http.StatusBadRequest, response)
	case service.ErrorCodeInvalidBody:
		return e.JSON(http.StatusBadRequest, response)
	default:
		// EMPTY_TEAM and UNSPECIFIED both surface as a generic failure.
		return e.JSON(http.StatusInternalServerError, response)
	}
}
