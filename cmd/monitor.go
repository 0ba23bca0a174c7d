package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/urfave/cli/v2"
)

type statsResponse struct {
	TotalUsers       int   `json:"total_users"`
	TotalConnections int   `json:"total_connections"`
	UptimeSeconds    int64 `json:"uptime_seconds"`
}

func monitorCmd() *cli.Command {
	return &cli.Command{
		Name:  "monitor",
		Usage: "Terminal dashboard over a running server's stats endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Base URL of the server",
				Value: "http://127.0.0.1:8080",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Poll interval",
				Value: 2 * time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			return runMonitor(c.String("addr"), c.Duration("interval"))
		},
	}
}

func runMonitor(addr string, interval time.Duration) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("init terminal ui: %w", err)
	}
	defer ui.Close()

	summary := widgets.NewParagraph()
	summary.Title = " " + ServiceName + " "
	summary.SetRect(0, 0, 60, 7)

	connPlot := widgets.NewSparkline()
	connPlot.LineColor = ui.ColorGreen
	connGroup := widgets.NewSparklineGroup(connPlot)
	connGroup.Title = " connections "
	connGroup.SetRect(0, 7, 60, 14)

	client := &http.Client{Timeout: 5 * time.Second}
	history := make([]float64, 0, 60)

	refresh := func() {
		stats, err := fetchStats(client, addr)
		if err != nil {
			summary.Text = fmt.Sprintf("endpoint: %s\n\n[poll failed: %v](fg:red)", addr, err)
		} else {
			summary.Text = fmt.Sprintf(
				"endpoint: %s\n\nusers online:  %d\nconnections:   %d\nuptime:        %s",
				addr,
				stats.TotalUsers,
				stats.TotalConnections,
				time.Duration(stats.UptimeSeconds)*time.Second,
			)
			history = append(history, float64(stats.TotalConnections))
			if len(history) > 60 {
				history = history[1:]
			}
			connPlot.Data = history
		}
		ui.Render(summary, connGroup)
	}

	refresh()

	events := ui.PollEvents()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			case "<Resize>":
				ui.Render(summary, connGroup)
			}
		case <-ticker.C:
			refresh()
		}
	}
}

func fetchStats(client *http.Client, addr string) (*statsResponse, error) {
	resp, err := client.Get(addr + "/api/stats")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
