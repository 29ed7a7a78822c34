package dashboard

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"f1laptrend/pkg/circuits"
	"f1laptrend/pkg/drivers"
	"f1laptrend/pkg/model"
)

// Inputs is everything the user controls. Constructors == nil means "the
// default selection of the loaded dataset"; an empty non-nil slice means
// nothing is selected.
type Inputs struct {
	Circuit      string        `json:"circuit"`
	Mode         model.Mode    `json:"mode"`
	Session      model.Session `json:"session"`
	Metric       model.Metric  `json:"metric"`
	Drivers      []string      `json:"drivers"`
	Constructors []string      `json:"constructors"`
	ShowPole     bool          `json:"showPole"`
	ShowFastest  bool          `json:"showFastest"`
}

func DefaultInputs() Inputs {
	return Inputs{
		Circuit:     circuits.Default,
		Mode:        model.ModeDriver,
		Session:     model.Qualifying,
		Metric:      model.MetricTime,
		Drivers:     append([]string(nil), drivers.DefaultSelection...),
		ShowPole:    true,
		ShowFastest: true,
	}
}

// WithCircuit switches circuit and drops the constructor selection, which
// belongs to the previous circuit's dataset.
func (in Inputs) WithCircuit(circuit string) Inputs {
	if circuit == in.Circuit {
		return in
	}
	in.Circuit = circuit
	in.Constructors = nil
	return in
}

func (in Inputs) Validate() error {
	if strings.TrimSpace(in.Circuit) == "" {
		return fmt.Errorf("circuit is required")
	}
	if _, err := model.ParseMode(string(in.Mode)); err != nil {
		return err
	}
	if !in.Session.Valid() {
		return fmt.Errorf("unknown session %q", in.Session)
	}
	if _, err := model.ParseMetric(string(in.Metric)); err != nil {
		return err
	}
	return nil
}

// ParseQuery overlays URL query parameters on top of base. Recognised keys:
// mode, session, metric, drivers, constructors, pole, fastest.
func ParseQuery(base Inputs, q url.Values) (Inputs, error) {
	in := base
	var err error
	if v := q.Get("mode"); v != "" {
		if in.Mode, err = model.ParseMode(v); err != nil {
			return in, err
		}
	}
	if v := q.Get("session"); v != "" {
		if in.Session, err = model.ParseSession(v); err != nil {
			return in, err
		}
	}
	if v := q.Get("metric"); v != "" {
		if in.Metric, err = model.ParseMetric(v); err != nil {
			return in, err
		}
	}
	if _, ok := q["drivers"]; ok {
		in.Drivers = splitList(q.Get("drivers"))
	}
	if _, ok := q["constructors"]; ok {
		in.Constructors = splitList(q.Get("constructors"))
	}
	if v := q.Get("pole"); v != "" {
		if in.ShowPole, err = strconv.ParseBool(v); err != nil {
			return in, fmt.Errorf("pole: %w", err)
		}
	}
	if v := q.Get("fastest"); v != "" {
		if in.ShowFastest, err = strconv.ParseBool(v); err != nil {
			return in, fmt.Errorf("fastest: %w", err)
		}
	}
	return in, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
