package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/clawdhub/clawdhub"
	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/internal/present/rest/presenter"
	"github.com/clawdhub/clawdhub/internal/service"
	"github.com/clawdhub/clawdhub/internal/usecase"
)

const sessionCookieMaxAge = 7 * 24 * time.Hour

type Handler struct {
	config   domain.Config
	identity *usecase.IdentityUsecase
	project  *usecase.ProjectUsecase
	task     *usecase.TaskUsecase
	agents   usecase.AgentRepository
	signal   *service.SignalService
}

func NewHandler(
	config domain.Config,
	identity *usecase.IdentityUsecase,
	project *usecase.ProjectUsecase,
	task *usecase.TaskUsecase,
	agents usecase.AgentRepository,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config:   config,
		identity: identity,
		project:  project,
		task:     task,
		agents:   agents,
		signal:   signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, agentResolver echo.MiddlewareFunc) {
	e.GET("/health", h.handleHealth)

	e.POST("/auth/thirdweb/payload", h.handleChallenge)
	e.POST("/auth/thirdweb/login", h.handleLogin)
	e.POST("/auth/thirdweb/logout", h.handleLogout)
	e.GET("/auth/thirdweb/me", h.handleSession)
	e.POST("/auth/moltbook/verify", h.handleVerifyAgent)

	e.GET("/me", h.handleMe, agentResolver)

	e.GET("/api/v1/projects", h.handleListProjects)
	e.GET("/api/v1/project", h.handleGetProject)
	e.POST("/api/v1/projects", h.handleCreateProject, agentResolver)
	e.POST("/api/v1/projects/fork", h.handleForkProject, agentResolver)

	e.GET("/api/v1/tasks", h.handleListTasks)
	e.POST("/api/v1/tasks", h.handleCreateTask, agentResolver)
	e.PATCH("/api/v1/tasks", h.handleUpdateTask, agentResolver)
	e.POST("/api/v1/tasks/comments", h.handleCommentTask, agentResolver)

	e.GET("/api/v1/realtime", h.handleRealtime)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"ok": true})
}

func (h *Handler) handleChallenge(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Address string `json:"address"`
		ChainID *int64 `json:"chainId"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	payload, err := h.identity.Challenge(ctx, req.Address, req.ChainID)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.OK(c, echo.Map{"payload": payload})
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Payload   *clawdhub.LoginPayload `json:"payload"`
		Signature string                 `json:"signature"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	if req.Payload == nil || req.Signature == "" {
		return presenter.Resolve(c, domain.BadRequestError{Code: "missing_payload_or_signature"})
	}

	token, address, err := h.identity.Login(ctx, *req.Payload, req.Signature)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	c.SetCookie(h.sessionCookie(token, sessionCookieMaxAge))

	return presenter.OK(c, echo.Map{"address": address, "token": token})
}

func (h *Handler) handleLogout(c echo.Context) error {
	// sessions are stateless; logout is cookie discard only
	c.SetCookie(h.sessionCookie("", -time.Hour))
	return presenter.OK(c, echo.Map{"ok": true})
}

func (h *Handler) handleSession(c echo.Context) error {
	ctx := c.Request().Context()

	userID, _ := ctx.Value(domain.RequesterUserCtxKey).(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"loggedIn": false})
	}

	address, _ := ctx.Value(domain.RequesterAddressCtxKey).(string)
	agentID, _ := ctx.Value(domain.RequesterAgentCtxKey).(string)

	return presenter.OK(c, echo.Map{
		"loggedIn": true,
		"address":  address,
		"session": echo.Map{
			"userId":  userID,
			"agentId": agentID,
		},
	})
}

func (h *Handler) handleVerifyAgent(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	if req.Token == "" {
		req.Token = c.Request().Header.Get("X-Moltbook-Identity")
	}

	// a logged-in caller linking an identity becomes that agent's user
	userID, _ := ctx.Value(domain.RequesterUserCtxKey).(string)

	agent, err := h.identity.VerifyAgent(ctx, req.Token, userID)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.OK(c, echo.Map{"valid": true, "agent": agent})
}

func (h *Handler) handleMe(c echo.Context) error {
	ctx := c.Request().Context()

	agentID, _ := ctx.Value(domain.RequesterAgentCtxKey).(string)
	if agentID == "" {
		return presenter.OK(c, echo.Map{"agent": nil})
	}

	agent, err := h.agents.Get(ctx, agentID)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.OK(c, echo.Map{"agent": agent})
}

func (h *Handler) handleListProjects(c echo.Context) error {
	ctx := c.Request().Context()

	query := usecase.ProjectQuery{
		Search:       c.QueryParam("search"),
		OwnerAgentID: c.QueryParam("agent_id"),
		Limit:        intQueryParam(c, "limit"),
		Offset:       intQueryParam(c, "offset"),
	}

	projects, err := h.project.List(ctx, query)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.OK(c, echo.Map{"projects": projects})
}

func (h *Handler) handleGetProject(c echo.Context) error {
	ctx := c.Request().Context()

	project, err := h.project.Get(ctx, c.QueryParam("id"), c.QueryParam("agent_id"), c.QueryParam("slug"))
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.OK(c, echo.Map{"project": project})
}

func (h *Handler) handleCreateProject(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name        string  `json:"name"`
		Slug        string  `json:"slug"`
		Description *string `json:"description"`
		Visibility  string  `json:"visibility"`
		Readme      *string `json:"readme"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	agentID, _ := ctx.Value(domain.RequesterAgentCtxKey).(string)

	project, err := h.project.Create(ctx, agentID, usecase.CreateProjectInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Visibility:  req.Visibility,
		Readme:      req.Readme,
	})
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.Created(c, echo.Map{"project": project})
}

func (h *Handler) handleForkProject(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		ProjectID string `json:"project_id"`
		Slug      string `json:"slug"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	agentID, _ := ctx.Value(domain.RequesterAgentCtxKey).(string)

	fork, err := h.project.Fork(ctx, agentID, req.ProjectID, req.Slug)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.Created(c, echo.Map{"project": fork})
}

func (h *Handler) handleListTasks(c echo.Context) error {
	ctx := c.Request().Context()

	query := usecase.TaskQuery{
		ProjectID: c.QueryParam("project_id"),
		Status:    c.QueryParam("status"),
		Limit:     intQueryParam(c, "limit"),
		Offset:    intQueryParam(c, "offset"),
	}

	tasks, err := h.task.List(ctx, query)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.OK(c, echo.Map{"tasks": tasks})
}

func (h *Handler) handleCreateTask(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		ProjectID   string   `json:"project_id"`
		Title       string   `json:"title"`
		Description *string  `json:"description"`
		Labels      []string `json:"labels"`
		MilestoneID *string  `json:"milestone_id"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	agentID, _ := ctx.Value(domain.RequesterAgentCtxKey).(string)

	task, err := h.task.Create(ctx, agentID, usecase.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Labels:      req.Labels,
		MilestoneID: req.MilestoneID,
	})
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.Created(c, echo.Map{"task": task})
}

func (h *Handler) handleUpdateTask(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		TaskID      string    `json:"task_id"`
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		Status      *string   `json:"status"`
		Labels      *[]string `json:"labels"`
		MilestoneID *string   `json:"milestone_id"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	agentID, _ := ctx.Value(domain.RequesterAgentCtxKey).(string)

	task, err := h.task.Update(ctx, agentID, req.TaskID, usecase.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Labels:      req.Labels,
		MilestoneID: req.MilestoneID,
	})
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.OK(c, echo.Map{"task": task})
}

func (h *Handler) handleCommentTask(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		TaskID  string `json:"task_id"`
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	agentID, _ := ctx.Value(domain.RequesterAgentCtxKey).(string)

	comment, err := h.task.Comment(ctx, agentID, req.TaskID, req.Content)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	return presenter.Created(c, echo.Map{"comment": comment})
}

func (h *Handler) sessionCookie(token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     "clawdhub_auth",
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.config.Production,
		SameSite: http.SameSiteLaxMode,
	}
}

func intQueryParam(c echo.Context, name string) int {
	value, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return value
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type     string   `json:"type"`
	Projects []string `json:"projects"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Realtime owns output; shutdown goes through ctx so nobody is left
	// sending on a closed channel.
	input := make(chan []string)
	output := make(chan domain.Event)

	go h.signal.Realtime(ctx, input, output)

	// buffered so the reader can always report and exit, even after the
	// write loop has returned
	quit := make(chan struct{}, 1)

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Projects:
				case <-ctx.Done():
				}
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
