package redmine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client define las operaciones del bot contra la API REST de Redmine.
// Cada cliente queda atado al token de API de un usuario.
type Client interface {
	CurrentUser(ctx context.Context) (Account, error)
	Projects(ctx context.Context) ([]Project, error)
	Project(ctx context.Context, id int) (Project, error)
	CreateIssue(ctx context.Context, input IssueInput) (Issue, error)
	Activities(ctx context.Context) ([]Activity, error)
	CreateTimeEntry(ctx context.Context, input TimeEntryInput) (TimeEntry, error)
	IssueURL(issueID int) string
}

// Factory construye un cliente por token. Los servicios la reciben inyectada
// para poder usar mocks en tests.
type Factory func(apiKey string) Client

// Account es el usuario autenticado en Redmine.
type Account struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

// Project es un proyecto de Redmine visible para el usuario.
type Project struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Identifier  string `json:"identifier"`
	Description string `json:"description"`
	Status      int    `json:"status"`
}

// Issue es una tarea creada en Redmine.
type Issue struct {
	ID      int    `json:"id"`
	Subject string `json:"subject"`
}

// IssueInput describe la tarea a crear.
type IssueInput struct {
	ProjectID      int
	Subject        string
	AssignedToID   int
	StartDate      time.Time
	DueDate        time.Time
	EstimatedHours float64
}

// Activity es una actividad de registro de tiempo (enumeración de Redmine).
type Activity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TimeEntry es una entrada de tiempo creada en Redmine.
type TimeEntry struct {
	ID    int     `json:"id"`
	Hours float64 `json:"hours"`
}

// TimeEntryInput describe la entrada de tiempo a crear.
type TimeEntryInput struct {
	IssueID    int
	Hours      float64
	SpentOn    time.Time
	Comments   string
	ActivityID int
}

// HTTPClient implementa Client contra un servidor Redmine real.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye un cliente autenticado con X-Redmine-API-Key.
func NewHTTPClient(baseURL, apiKey string, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// NewFactory devuelve una Factory de clientes HTTP contra baseURL.
func NewFactory(baseURL string, logger *zap.Logger) Factory {
	return func(apiKey string) Client {
		return NewHTTPClient(baseURL, apiKey, logger)
	}
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (Account, error) {
	var out struct {
		User Account `json:"user"`
	}
	if err := c.get(ctx, "/users/current.json", nil, &out); err != nil {
		return Account{}, err
	}
	return out.User, nil
}

const projectPageSize = 100

// Projects pagina sobre /projects.json hasta agotar el listado.
func (c *HTTPClient) Projects(ctx context.Context) ([]Project, error) {
	var projects []Project
	offset := 0
	for {
		var out struct {
			Projects   []Project `json:"projects"`
			TotalCount int       `json:"total_count"`
		}
		params := url.Values{}
		params.Set("limit", strconv.Itoa(projectPageSize))
		params.Set("offset", strconv.Itoa(offset))
		if err := c.get(ctx, "/projects.json", params, &out); err != nil {
			return nil, err
		}
		projects = append(projects, out.Projects...)
		offset += len(out.Projects)
		if len(out.Projects) == 0 || offset >= out.TotalCount {
			return projects, nil
		}
	}
}

func (c *HTTPClient) Project(ctx context.Context, id int) (Project, error) {
	var out struct {
		Project Project `json:"project"`
	}
	if err := c.get(ctx, fmt.Sprintf("/projects/%d.json", id), nil, &out); err != nil {
		return Project{}, err
	}
	return out.Project, nil
}

func (c *HTTPClient) CreateIssue(ctx context.Context, input IssueInput) (Issue, error) {
	body := map[string]any{
		"issue": map[string]any{
			"project_id":     input.ProjectID,
			"subject":        input.Subject,
			"assigned_to_id": input.AssignedToID,
			"start_date":     input.StartDate.Format("2006-01-02"),
			"due_date":       input.DueDate.Format("2006-01-02"),
		},
	}
	if input.EstimatedHours > 0 {
		body["issue"].(map[string]any)["estimated_hours"] = input.EstimatedHours
	}

	var out struct {
		Issue Issue `json:"issue"`
	}
	if err := c.post(ctx, "/issues.json", body, &out); err != nil {
		return Issue{}, err
	}
	return out.Issue, nil
}

func (c *HTTPClient) Activities(ctx context.Context) ([]Activity, error) {
	var out struct {
		Activities []Activity `json:"time_entry_activities"`
	}
	if err := c.get(ctx, "/enumerations/time_entry_activities.json", nil, &out); err != nil {
		return nil, err
	}
	return out.Activities, nil
}

func (c *HTTPClient) CreateTimeEntry(ctx context.Context, input TimeEntryInput) (TimeEntry, error) {
	entry := map[string]any{
		"issue_id": input.IssueID,
		"hours":    input.Hours,
		"spent_on": input.SpentOn.Format("2006-01-02"),
		"comments": input.Comments,
	}
	if input.ActivityID > 0 {
		entry["activity_id"] = input.ActivityID
	}

	var out struct {
		TimeEntry TimeEntry `json:"time_entry"`
	}
	if err := c.post(ctx, "/time_entries.json", map[string]any{"time_entry": entry}, &out); err != nil {
		return TimeEntry{}, err
	}
	return out.TimeEntry, nil
}

// IssueURL arma el enlace navegable a una tarea.
func (c *HTTPClient) IssueURL(issueID int) string {
	return fmt.Sprintf("%s/issues/%d", c.baseURL, issueID)
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	req.Header.Set("X-Redmine-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("redmine error response",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return fmt.Errorf("redmine http error: status=%d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
