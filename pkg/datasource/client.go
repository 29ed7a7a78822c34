package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"f1laptrend/pkg/laps"
	"f1laptrend/pkg/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	circuitSummaryPath  = "/data/%s_lap_times.json"
	driverLapsPath      = "/data/%s_driver_laps.json"
	constructorLapsPath = "/data/constructors/%s.json"
)

// Client fetches the static lap datasets published under a base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// CircuitSummaryURL and friends expose the resource locations, mostly for
// logging and tests.
func (c *Client) CircuitSummaryURL(circuit string) string {
	return c.baseURL + fmt.Sprintf(circuitSummaryPath, url.PathEscape(circuit))
}

func (c *Client) DriverLapsURL(circuit string) string {
	return c.baseURL + fmt.Sprintf(driverLapsPath, url.PathEscape(circuit))
}

func (c *Client) ConstructorLapsURL(circuit string) string {
	return c.baseURL + fmt.Sprintf(constructorLapsPath, url.PathEscape(circuit))
}

// CircuitSummary fetches the pole / fastest lap per year of a circuit. A
// missing file is an error: every catalog circuit is expected to have one.
func (c *Client) CircuitSummary(ctx context.Context, circuit string) ([]model.ReferencePoint, error) {
	u := c.CircuitSummaryURL(circuit)
	body, found, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &HTTPError{URL: u, Status: http.StatusNotFound}
	}

	var raw []model.CircuitLapTimes
	if err := decodeList(body, &raw); err != nil {
		return nil, &FormatError{URL: u, Err: errors.Wrap(err, "decoding circuit summary")}
	}
	points, err := toReferencePoints(raw)
	if err != nil {
		return nil, &FormatError{URL: u, Err: err}
	}
	return points, nil
}

// DriverLaps fetches the per-driver laps of a circuit. A missing file means
// there is no driver data for the circuit and yields an empty list.
func (c *Client) DriverLaps(ctx context.Context, circuit string) ([]model.LapRecord, error) {
	u := c.DriverLapsURL(circuit)
	body, found, err := c.get(ctx, u)
	if err != nil || !found {
		return nil, err
	}

	var raw []model.DriverLap
	if err := decodeList(body, &raw); err != nil {
		return nil, &FormatError{URL: u, Err: errors.Wrap(err, "decoding driver laps")}
	}
	records := make([]model.LapRecord, len(raw))
	for i, d := range raw {
		records[i] = toRecord(d.Year, d.Session, d.DriverID, d.LapTime)
	}
	if err := laps.Validate(records); err != nil {
		return nil, &FormatError{URL: u, Err: err}
	}
	return records, nil
}

// ConstructorLaps fetches the per-constructor laps of a circuit. A missing
// file yields an empty list.
func (c *Client) ConstructorLaps(ctx context.Context, circuit string) ([]model.LapRecord, error) {
	u := c.ConstructorLapsURL(circuit)
	body, found, err := c.get(ctx, u)
	if err != nil || !found {
		return nil, err
	}

	var raw []model.ConstructorLap
	if err := decodeList(body, &raw); err != nil {
		return nil, &FormatError{URL: u, Err: errors.Wrap(err, "decoding constructor laps")}
	}
	records := make([]model.LapRecord, len(raw))
	for i, d := range raw {
		records[i] = toRecord(d.Year, d.Session, d.ConstructorName, d.LapTime)
	}
	if err := laps.Validate(records); err != nil {
		return nil, &FormatError{URL: u, Err: err}
	}
	return records, nil
}

// get returns found=false on 404 and an error for any other non-2xx status.
func (c *Client) get(ctx context.Context, u string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, &NetworkError{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, &NetworkError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("fetched dataset",
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, &HTTPError{URL: u, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &NetworkError{URL: u, Err: errors.Wrap(err, "reading body")}
	}
	return body, true, nil
}

func decodeList(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return errors.New("body is not a JSON list")
	}
	return json.Unmarshal(trimmed, v)
}

func toRecord(year *int, session *string, entity *string, lapTime *float64) model.LapRecord {
	var r model.LapRecord
	if year != nil {
		r.Year = *year
	}
	if session != nil {
		r.Session = model.Session(*session)
	}
	if entity != nil {
		r.EntityID = *entity
	}
	if lapTime != nil {
		r.LapTime = *lapTime
	}
	return r
}

func toReferencePoints(raw []model.CircuitLapTimes) ([]model.ReferencePoint, error) {
	points := make([]model.ReferencePoint, 0, len(raw))
	seen := make(map[int]int, len(raw))
	for i, r := range raw {
		if r.Year == nil || *r.Year <= 0 {
			return nil, errors.Errorf("entry %d: missing or invalid year", i)
		}
		if first, dup := seen[*r.Year]; dup {
			return nil, errors.Errorf("entry %d: year %d duplicates entry %d", i, *r.Year, first)
		}
		seen[*r.Year] = i

		p := model.ReferencePoint{Year: *r.Year}
		if r.Pole != nil {
			if *r.Pole <= 0 {
				return nil, errors.Errorf("entry %d: non-positive pole time", i)
			}
			p.Pole, p.HasPole = *r.Pole, true
		}
		if r.Fastest != nil {
			if *r.Fastest <= 0 {
				return nil, errors.Errorf("entry %d: non-positive fastest time", i)
			}
			p.Fastest, p.HasFastest = *r.Fastest, true
		}
		points = append(points, p)
	}
	return points, nil
}
