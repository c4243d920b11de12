package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ukydev/fm-control/internal/models"
)

// ChecklistDestination is the single tab every checklist write is routed to,
// whatever the task category.
const ChecklistDestination = "AC_HVAC_Daily_Checklist"

// ComplaintCategory is the department every fault ticket is filed under.
const ComplaintCategory = "AC / HVAC"

var (
	// ErrRejected is returned when the remote store answers a write without a success marker.
	ErrRejected = errors.New("remote store rejected the write")
	// ErrMalformed is returned when a response body is not the expected JSON.
	ErrMalformed = errors.New("malformed remote store response")
)

// Client talks to the spreadsheet-backed web app.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a remote store client. timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// ChecklistWrite is a completed checklist task.
type ChecklistWrite struct {
	AssetTag   string
	Technician string
	Category   models.ChecklistCategory
	At         time.Time
}

// Complaint is a new ticket row.
type Complaint struct {
	Location     string
	Details      string
	AssetTag     string
	AssignedTech string
	Severity     models.Severity
}

// Closure closes the ticket stored at RowIndex.
type Closure struct {
	RowIndex   int
	Technician string
	Details    string
}

type writeResult struct {
	Result  string `json:"result"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r writeResult) ok() bool {
	return r.Result == "success" || r.Status == "success"
}

// FetchAssets downloads and normalises the asset register.
func (c *Client) FetchAssets(ctx context.Context) ([]models.Asset, error) {
	body, err := c.get(ctx, url.Values{"action": {"get_assets"}})
	if err != nil {
		return nil, fmt.Errorf("get_assets: %w", err)
	}
	assets, err := NormalizeAssets(body)
	if err != nil {
		return nil, fmt.Errorf("get_assets: %w", err)
	}
	return assets, nil
}

// FetchStats downloads the ticket list and checklist history.
func (c *Client) FetchStats(ctx context.Context) (*Stats, error) {
	q := url.Values{
		"action":   {"get_stats"},
		"category": {"All"},
		"date":     {c.now().UTC().Format(time.RFC3339)},
	}
	body, err := c.get(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get_stats: %w", err)
	}
	stats, err := ParseStats(body)
	if err != nil {
		return nil, fmt.Errorf("get_stats: %w", err)
	}
	return stats, nil
}

// SubmitChecklist logs a completed checklist task. The remote handler has
// used several key names over time, so every alias is sent.
func (c *Client) SubmitChecklist(ctx context.Context, w ChecklistWrite) error {
	at := w.At
	if at.IsZero() {
		at = c.now()
	}
	date := at.Format("02/01/2006")
	task := string(w.Category)

	form := url.Values{}
	form.Set("action", "checklist")
	form.Set("category", ChecklistDestination)
	form.Set("sheetName", ChecklistDestination)
	form.Set("assetTag", w.AssetTag)
	form.Set("asset_tag", w.AssetTag)
	form.Set("technician", w.Technician)
	form.Set("tech", w.Technician)
	form.Set("task", task)
	form.Set("type", task)
	form.Set("task_type", task)
	form.Set("status", "OK")
	form.Set("date", date)
	form.Set("formatted_date", date)
	form.Set("timestamp", at.UTC().Format(time.RFC3339))

	return c.post(ctx, form)
}

// Complain files a new ticket.
func (c *Client) Complain(ctx context.Context, cp Complaint) error {
	form := url.Values{}
	form.Set("action", "complain")
	form.Set("category", ComplaintCategory)
	form.Set("location", cp.Location)
	form.Set("details", cp.Details)
	form.Set("assetTag", cp.AssetTag)
	form.Set("assignedTech", cp.AssignedTech)
	if cp.Severity != "" {
		form.Set("severity", string(cp.Severity))
	}
	return c.post(ctx, form)
}

// CloseComplaint marks the ticket at the given sheet row as resolved.
func (c *Client) CloseComplaint(ctx context.Context, cl Closure) error {
	form := url.Values{}
	form.Set("action", "close_complaint")
	form.Set("rowIndex", strconv.Itoa(cl.RowIndex))
	form.Set("technician", cl.Technician)
	form.Set("details", cl.Details)
	return c.post(ctx, form)
}

func (c *Client) get(ctx context.Context, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, form url.Values) error {
	action := form.Get("action")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	var res writeResult
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("%s: %w", action, ErrMalformed)
	}
	if !res.ok() {
		if res.Message != "" {
			return fmt.Errorf("%s: %w: %s", action, ErrRejected, res.Message)
		}
		return fmt.Errorf("%s: %w", action, ErrRejected)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote store status %d", resp.StatusCode)
	}
	return body, nil
}
