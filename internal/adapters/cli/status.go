package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/spf13/cobra"
)

var serverURL string

// apiClient talks to a running "excavator serve"
type apiClient struct {
	base string
	http *client.Client
}

func newAPIClient(base string) (*apiClient, error) {
	c, err := client.NewClient(client.WithDialTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	return &apiClient{base: base, http: c}, nil
}

// do sends body (if any) as JSON and decodes a 2xx response into out
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(method)
	req.SetRequestURI(c.base + path)
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(raw)
	}

	if err := c.http.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode() >= 300 {
		var apiErr struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error.Code != "" {
			return fmt.Errorf("%s (%d): %s", apiErr.Error.Code, resp.StatusCode(), apiErr.Error.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode())
	}
	if out != nil {
		return json.Unmarshal(resp.Body(), out)
	}
	return nil
}

type statusView struct {
	Agent          string  `json:"agent"`
	State          string  `json:"state"`
	QueueRemaining int     `json:"queue_remaining"`
	Throughput     float64 `json:"throughput"`
	OperationID    string  `json:"operation_id"`
	Mined          int     `json:"mined"`
	Skipped        int     `json:"skipped"`
}

// NewStatusCommand queries and steers a running control API
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show every agent's controller state",
		Long: `Query a running "excavator serve" for controller status.

Examples:
  excavator status
  excavator status pause --agent digger
  excavator status throughput 4 --agent digger`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(serverURL)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			var body struct {
				Agents []statusView `json:"agents"`
			}
			if err := c.do(ctx, consts.MethodGet, "/api/agents", nil, &body); err != nil {
				return err
			}

			fmt.Printf("%-16s %-12s %-10s %-8s %-8s %-10s %s\n",
				"AGENT", "STATE", "REMAINING", "MINED", "SKIPPED", "RATE", "OPERATION")
			fmt.Println("─────────────────────────────────────────────────────────────────────────────────")
			for _, s := range body.Agents {
				printStatusRow(s)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Control API base URL")

	for _, action := range []string{"pause", "resume", "stop"} {
		cmd.AddCommand(newStatusActionCommand(action))
	}
	cmd.AddCommand(newStatusThroughputCommand())
	return cmd
}

func newStatusActionCommand(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: fmt.Sprintf("Ask the agent's controller to %s", action),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := requireAgent()
			if err != nil {
				return err
			}
			c, err := newAPIClient(serverURL)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			var s statusView
			if err := c.do(ctx, consts.MethodPost, "/api/agents/"+agent+"/"+action, nil, &s); err != nil {
				return err
			}
			s.Agent = agent
			printStatusRow(s)
			return nil
		},
	}
}

func newStatusThroughputCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "throughput <blocks-per-second>",
		Short: "Change the agent's removal rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := requireAgent()
			if err != nil {
				return err
			}
			rate, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[0], err)
			}
			c, err := newAPIClient(serverURL)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			var s statusView
			body := map[string]float64{"blocks_per_second": rate}
			if err := c.do(ctx, consts.MethodPut, "/api/agents/"+agent+"/throughput", body, &s); err != nil {
				return err
			}
			s.Agent = agent
			printStatusRow(s)
			return nil
		},
	}
}

func requireAgent() (string, error) {
	if agentName == "" {
		return "", fmt.Errorf("--agent is required")
	}
	return agentName, nil
}

func printStatusRow(s statusView) {
	fmt.Printf("%-16s %-12s %-10d %-8d %-8d %-10.2f %s\n",
		truncate(s.Agent, 16), s.State, s.QueueRemaining, s.Mined, s.Skipped, s.Throughput, s.OperationID)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
