package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/fm-control/internal/models"
)

// faults are typical field complaints raised by the simulator.
var faults = []string{
	"Not cooling, compressor trips after a few minutes",
	"Water leaking from indoor unit",
	"Loud rattling noise from outdoor unit",
	"Remote not responding, display blank",
	"Gas pressure low, unit blowing warm air",
	"Ice forming on evaporator coil",
	"Bad smell when unit starts",
}

var (
	apiURL    string
	authToken string
	rounds    int
	interval  time.Duration
	faultRate float64
)

var rootCmd = &cobra.Command{
	Use:   "simulator",
	Short: "Simulate field activity against the FM Control API",
	Long: `Simulator plays the field force: each round it picks an active asset,
logs a checklist for it and, now and then, raises a fault ticket.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rounds < 0 {
			return fmt.Errorf("rounds must not be negative")
		}
		if interval <= 0 {
			return fmt.Errorf("interval must be positive")
		}
		if faultRate < 0 || faultRate > 1 {
			return fmt.Errorf("fault-rate must be between 0 and 1")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sim := newSimulator(apiURL, authToken, rand.New(rand.NewSource(time.Now().UnixNano())))
		sim.faultRate = faultRate
		return sim.run(ctx, rounds, interval)
	},
}

func init() {
	rootCmd.Flags().StringVar(&apiURL, "api", envOr("API_BASE_URL", "http://localhost:8080/api"), "API base URL")
	rootCmd.Flags().StringVar(&authToken, "token", os.Getenv("SIM_AUTH_TOKEN"), "bearer token of a technician or supervisor account")
	rootCmd.Flags().IntVar(&rounds, "rounds", 10, "number of rounds, 0 runs until interrupted")
	rootCmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "pause between rounds")
	rootCmd.Flags().Float64Var(&faultRate, "fault-rate", 0.3, "probability of raising a fault each round")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type simulator struct {
	baseURL   string
	token     string
	client    *http.Client
	rng       *rand.Rand
	faultRate float64
}

func newSimulator(baseURL, token string, rng *rand.Rand) *simulator {
	return &simulator{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		rng:     rng,
	}
}

// run plays rounds until the count is reached or ctx is cancelled. A failed
// round is logged and skipped.
func (s *simulator) run(ctx context.Context, rounds int, interval time.Duration) error {
	log.WithFields(log.Fields{
		"api_url":  s.baseURL,
		"rounds":   rounds,
		"interval": interval,
	}).Info("Starting field simulation")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := 0
	for rounds == 0 || done < rounds {
		if err := s.round(ctx); err != nil {
			if errors.Is(err, errUnauthorized) {
				return err
			}
			log.WithError(err).Warn("Simulation round failed")
		}
		done++
		if rounds != 0 && done >= rounds {
			break
		}

		select {
		case <-ctx.Done():
			log.Info("Simulation interrupted")
			return nil
		case <-ticker.C:
		}
	}
	log.WithField("rounds", done).Info("Simulation finished")
	return nil
}

var errUnauthorized = errors.New("token rejected, log in and pass --token")

func (s *simulator) round(ctx context.Context) error {
	var assets []models.Asset
	if err := s.do(ctx, http.MethodGet, "/assets?status="+string(models.AssetActive), nil, &assets); err != nil {
		return fmt.Errorf("list assets: %w", err)
	}
	if len(assets) == 0 {
		return fmt.Errorf("no active assets")
	}
	asset := assets[s.rng.Intn(len(assets))]

	category := models.ChecklistCategories[s.rng.Intn(len(models.ChecklistCategories))]
	var res models.ChecklistResult
	err := s.do(ctx, http.MethodPost, "/checklists", map[string]any{
		"assetId":  asset.ID,
		"category": category,
	}, &res)
	if err != nil {
		return fmt.Errorf("submit checklist: %w", err)
	}
	log.WithFields(log.Fields{
		"asset":    asset.Tag,
		"category": category,
		"synced":   res.Synced,
		"repeat":   res.AlreadyChecked,
	}).Info("Logged checklist")

	if s.rng.Float64() >= s.faultRate {
		return nil
	}

	severity := models.SeverityMinor
	if s.rng.Intn(3) == 0 {
		severity = models.SeverityMajor
	}
	var ticket models.Ticket
	err = s.do(ctx, http.MethodPost, "/tickets", models.NewTicket{
		AssetID:  asset.ID,
		Details:  faults[s.rng.Intn(len(faults))],
		Severity: severity,
		UseAI:    s.rng.Intn(2) == 0,
	}, &ticket)
	if err != nil {
		return fmt.Errorf("raise fault: %w", err)
	}
	log.WithFields(log.Fields{
		"asset":       asset.Tag,
		"ticket_id":   ticket.ID,
		"severity":    ticket.Severity,
		"assigned_to": ticket.AssignedTo,
	}).Info("Raised fault")
	return nil
}

func (s *simulator) do(ctx context.Context, method, path string, body, out any) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, &payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errUnauthorized
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
